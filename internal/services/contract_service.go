package services

import (
	"context"

	"go.uber.org/zap"

	"eventcrm/internal/audit"
	"eventcrm/internal/models"
	"eventcrm/internal/permissions"
	"eventcrm/internal/store"
)

// ContractService manages contracts and their Unsigned -> Signed -> Paid
// lifecycle. Transitions are linear: no reverse moves, no skipping, and
// re-applying a transition already in effect is a no-op.
type ContractService struct {
	st    *store.Store
	authz *permissions.Evaluator
	sink  audit.Sink
	lg    *zap.SugaredLogger
}

func NewContractService(st *store.Store, authz *permissions.Evaluator, sink audit.Sink, lg *zap.SugaredLogger) *ContractService {
	return &ContractService{st: st, authz: authz, sink: sink, lg: lg}
}

type CreateContractInput struct {
	Name        string
	Description string
	ClientID    string
	TotalAmount float64
}

type ContractPatch struct {
	Name        *string
	Description *string
	TotalAmount *float64
}

func (s *ContractService) Create(ctx context.Context, actor *models.User, in CreateContractInput) (*models.Contract, error) {
	var created *models.Contract
	err := s.st.Transaction(func(tx *store.Store) error {
		if err := s.authz.Authorize(ctx, tx, actor, permissions.ActionCreate, permissions.Target{Kind: models.KindContract}); err != nil {
			return err
		}
		if in.Name == "" {
			return &models.ValidationError{EntityKind: models.KindContract, Field: "name", Reason: "is required"}
		}
		if in.TotalAmount < 0 {
			return &models.ValidationError{EntityKind: models.KindContract, Field: "total_amount", Reason: "must not be negative"}
		}
		client, err := tx.GetClient(in.ClientID)
		if err != nil {
			return err
		}
		c := models.Contract{
			Name:        in.Name,
			Description: in.Description,
			ClientID:    client.ID,
			// Snapshot of the client's commercial at creation time.
			CommercialID:    client.CommercialID,
			TotalAmount:     in.TotalAmount,
			RemainingAmount: in.TotalAmount,
		}
		if err := tx.CreateContract(&c); err != nil {
			return err
		}
		created = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *ContractService) Get(ctx context.Context, actor *models.User, id string) (*models.Contract, error) {
	if err := s.authz.Authorize(ctx, s.st, actor, permissions.ActionRead, permissions.Target{Kind: models.KindContract, ID: id}); err != nil {
		return nil, err
	}
	return s.st.GetContract(id)
}

// Update changes descriptive fields only. The signed and paid flags move
// exclusively through MarkSigned, MarkPaid and RecordPayment.
func (s *ContractService) Update(ctx context.Context, actor *models.User, id string, patch ContractPatch) (*models.Contract, error) {
	var updated *models.Contract
	err := s.st.Transaction(func(tx *store.Store) error {
		if err := s.authz.Authorize(ctx, tx, actor, permissions.ActionUpdate, permissions.Target{Kind: models.KindContract, ID: id}); err != nil {
			return err
		}
		c, err := tx.GetContract(id)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			c.Name = *patch.Name
		}
		if patch.Description != nil {
			c.Description = *patch.Description
		}
		if patch.TotalAmount != nil {
			if *patch.TotalAmount < 0 {
				return &models.ValidationError{EntityKind: models.KindContract, Field: "total_amount", Reason: "must not be negative"}
			}
			paidSoFar := c.TotalAmount - c.RemainingAmount
			c.TotalAmount = *patch.TotalAmount
			c.RemainingAmount = c.TotalAmount - paidSoFar
			if c.RemainingAmount < 0 {
				return &models.ValidationError{EntityKind: models.KindContract, Field: "total_amount", Reason: "is below the amount already paid"}
			}
		}
		if err := tx.SaveContract(c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete cascades to the contract's events.
func (s *ContractService) Delete(ctx context.Context, actor *models.User, id string) error {
	return s.st.Transaction(func(tx *store.Store) error {
		if err := s.authz.Authorize(ctx, tx, actor, permissions.ActionDelete, permissions.Target{Kind: models.KindContract, ID: id}); err != nil {
			return err
		}
		return tx.DeleteContract(id)
	})
}

// MarkSigned records the client's signature. Recording signatures is a
// GESTION/ADMIN action; signing an already-signed contract is a no-op.
func (s *ContractService) MarkSigned(ctx context.Context, actor *models.User, id string) (*models.Contract, error) {
	var applied bool
	err := s.st.Transaction(func(tx *store.Store) error {
		if err := s.authz.Authorize(ctx, tx, actor, permissions.ActionMarkSigned, permissions.Target{Kind: models.KindContract, ID: id}); err != nil {
			return err
		}
		if _, err := tx.GetContract(id); err != nil {
			return err
		}
		flipped, err := tx.MarkContractSigned(id)
		if err != nil {
			return err
		}
		applied = flipped
		return nil
	})
	if err != nil {
		return nil, err
	}
	if applied {
		s.recordTransition(ctx, actor, permissions.ActionMarkSigned, id, audit.OutcomeApplied)
	}
	return s.st.GetContract(id)
}

// MarkPaid moves a signed contract to paid. Paying an unsigned contract
// is an invalid transition; paying twice is a no-op.
func (s *ContractService) MarkPaid(ctx context.Context, actor *models.User, id string) (*models.Contract, error) {
	var applied bool
	err := s.st.Transaction(func(tx *store.Store) error {
		if err := s.authz.Authorize(ctx, tx, actor, permissions.ActionMarkPaid, permissions.Target{Kind: models.KindContract, ID: id}); err != nil {
			return err
		}
		c, err := tx.GetContract(id)
		if err != nil {
			return err
		}
		if !c.Signed {
			s.recordTransition(ctx, actor, permissions.ActionMarkPaid, id, audit.OutcomeRejected)
			return &models.InvalidTransitionError{
				EntityKind: models.KindContract,
				EntityID:   id,
				Reason:     "cannot mark an unsigned contract paid",
			}
		}
		if c.Paid {
			return nil
		}
		flipped, err := tx.MarkContractPaid(id)
		if err != nil {
			return err
		}
		applied = flipped
		return nil
	})
	if err != nil {
		return nil, err
	}
	if applied {
		s.recordTransition(ctx, actor, permissions.ActionMarkPaid, id, audit.OutcomeApplied)
	}
	return s.st.GetContract(id)
}

// RecordPayment decrements the remaining amount of a signed contract and
// marks it paid once the balance reaches zero.
func (s *ContractService) RecordPayment(ctx context.Context, actor *models.User, id string, amount float64) (*models.Contract, error) {
	var settled bool
	err := s.st.Transaction(func(tx *store.Store) error {
		if err := s.authz.Authorize(ctx, tx, actor, permissions.ActionMarkPaid, permissions.Target{Kind: models.KindContract, ID: id}); err != nil {
			return err
		}
		c, err := tx.GetContract(id)
		if err != nil {
			return err
		}
		if !c.Signed {
			return &models.InvalidTransitionError{
				EntityKind: models.KindContract,
				EntityID:   id,
				Reason:     "cannot record a payment on an unsigned contract",
			}
		}
		if amount <= 0 {
			return &models.ValidationError{EntityKind: models.KindContract, Field: "amount", Reason: "must be positive"}
		}
		if amount > c.RemainingAmount {
			return &models.ValidationError{EntityKind: models.KindContract, Field: "amount", Reason: "exceeds the remaining amount"}
		}
		c.RemainingAmount -= amount
		if c.RemainingAmount == 0 {
			c.Paid = true
			settled = true
		}
		return tx.SaveContract(c)
	})
	if err != nil {
		return nil, err
	}
	if settled {
		s.recordTransition(ctx, actor, permissions.ActionMarkPaid, id, audit.OutcomeApplied)
	}
	return s.st.GetContract(id)
}

// List returns contracts visible to the actor. Commercial actors only see
// contracts attributed to them.
func (s *ContractService) List(ctx context.Context, actor *models.User, f store.ContractFilter) ([]models.Contract, error) {
	if err := s.authz.Authorize(ctx, s.st, actor, permissions.ActionRead, permissions.Target{Kind: models.KindContract}); err != nil {
		return nil, err
	}
	if actor.Role == models.RoleCommercial {
		f.CommercialID = actor.ID
	}
	return s.st.ListContracts(f)
}

func (s *ContractService) recordTransition(ctx context.Context, actor *models.User, action permissions.Action, id, outcome string) {
	s.sink.Record(ctx, audit.Entry{
		ActorID:    actor.ID,
		Action:     string(action),
		EntityKind: models.KindContract,
		EntityID:   id,
		Outcome:    outcome,
		Metadata:   map[string]interface{}{"role": string(actor.Role)},
	})
}
