package permissions

import (
	"context"

	"eventcrm/internal/audit"
	"eventcrm/internal/models"
	"eventcrm/internal/store"
)

// Target identifies the entity an action is attempted against. ID is
// empty for create and list-level checks, which never need ownership
// resolution.
type Target struct {
	Kind string
	ID   string
}

// Evaluator answers allow/deny for (actor, action, target). Ownership is
// resolved against the store handle passed per call, so a check issued
// inside a transaction observes that transaction's state. Decisions are
// never cached: ownership can change between invocations.
type Evaluator struct {
	sink audit.Sink
}

func NewEvaluator(sink audit.Sink) *Evaluator {
	return &Evaluator{sink: sink}
}

// Authorize returns nil when the actor may perform the action, or a
// PermissionDenied error carrying the action and resource for the audit
// trail. Every decision, allowed or denied, is recorded.
func (e *Evaluator) Authorize(ctx context.Context, st *store.Store, actor *models.User, action Action, target Target) error {
	allowed, err := e.decide(st, actor, action, target)
	if err != nil {
		return err
	}
	outcome := audit.OutcomeAllowed
	if !allowed {
		outcome = audit.OutcomeDenied
	}
	e.sink.Record(ctx, audit.Entry{
		ActorID:    actor.ID,
		Action:     string(action),
		EntityKind: target.Kind,
		EntityID:   target.ID,
		Outcome:    outcome,
		Metadata:   map[string]interface{}{"role": string(actor.Role)},
	})
	if !allowed {
		return &models.PermissionDeniedError{
			ActorID:    actor.ID,
			Action:     string(action),
			EntityKind: target.Kind,
			EntityID:   target.ID,
		}
	}
	return nil
}

func (e *Evaluator) decide(st *store.Store, actor *models.User, action Action, target Target) (bool, error) {
	switch Lookup(actor.Role, target.Kind, action) {
	case Allow:
		return true, nil
	case AllowIfOwner:
		if target.ID == "" {
			return false, nil
		}
		return e.owns(st, actor, target)
	default:
		return false, nil
	}
}

// owns resolves the ownership relation for the target kind. It follows
// the client -> contract -> event chain through explicit store queries;
// a vanished target surfaces as NotFound rather than a silent deny.
func (e *Evaluator) owns(st *store.Store, actor *models.User, target Target) (bool, error) {
	switch target.Kind {
	case models.KindClient:
		client, err := st.GetClient(target.ID)
		if err != nil {
			return false, err
		}
		return client.CommercialID == actor.ID, nil
	case models.KindContract:
		contract, err := st.GetContract(target.ID)
		if err != nil {
			return false, err
		}
		return contract.CommercialID == actor.ID, nil
	case models.KindEvent:
		event, err := st.GetEvent(target.ID)
		if err != nil {
			return false, err
		}
		if actor.Role == models.RoleSupport {
			return event.HasSupport() && *event.SupportID == actor.ID, nil
		}
		if actor.Role == models.RoleCommercial {
			contract, err := st.GetContract(event.ContractID)
			if err != nil {
				return false, err
			}
			return contract.CommercialID == actor.ID, nil
		}
		return false, nil
	default:
		return false, nil
	}
}
