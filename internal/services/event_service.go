package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"eventcrm/internal/audit"
	"eventcrm/internal/models"
	"eventcrm/internal/permissions"
	"eventcrm/internal/store"
)

// EventService manages events and support assignment. Events only come
// into existence under a contract that has been signed.
type EventService struct {
	st    *store.Store
	authz *permissions.Evaluator
	sink  audit.Sink
	lg    *zap.SugaredLogger
}

func NewEventService(st *store.Store, authz *permissions.Evaluator, sink audit.Sink, lg *zap.SugaredLogger) *EventService {
	return &EventService{st: st, authz: authz, sink: sink, lg: lg}
}

type CreateEventInput struct {
	Name        string
	Description string
	ContractID  string
	StartDate   time.Time
	EndDate     time.Time
	Location    string
	Attendees   int
	Notes       string
}

type EventPatch struct {
	Name        *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Location    *string
	Attendees   *int
	Notes       *string
}

func (s *EventService) Create(ctx context.Context, actor *models.User, in CreateEventInput) (*models.Event, error) {
	var created *models.Event
	err := s.st.Transaction(func(tx *store.Store) error {
		if err := s.authz.Authorize(ctx, tx, actor, permissions.ActionCreate, permissions.Target{Kind: models.KindEvent}); err != nil {
			return err
		}
		contract, err := tx.GetContract(in.ContractID)
		if err != nil {
			return err
		}
		if !contract.Signed {
			s.record(ctx, actor, permissions.ActionCreate, "", audit.OutcomeRejected)
			return &models.InvalidTransitionError{
				EntityKind: models.KindContract,
				EntityID:   contract.ID,
				Reason:     "cannot create an event on an unsigned contract",
			}
		}
		if err := validateEventFields(in.Name, in.Location, in.StartDate, in.EndDate, in.Attendees); err != nil {
			return err
		}
		e := models.Event{
			Name:        in.Name,
			Description: in.Description,
			ContractID:  contract.ID,
			ClientID:    contract.ClientID,
			StartDate:   in.StartDate,
			EndDate:     in.EndDate,
			Location:    in.Location,
			Attendees:   in.Attendees,
			Notes:       in.Notes,
		}
		if err := tx.CreateEvent(&e); err != nil {
			return err
		}
		created = &e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *EventService) Get(ctx context.Context, actor *models.User, id string) (*models.Event, error) {
	if err := s.authz.Authorize(ctx, s.st, actor, permissions.ActionRead, permissions.Target{Kind: models.KindEvent, ID: id}); err != nil {
		return nil, err
	}
	return s.st.GetEvent(id)
}

func (s *EventService) Update(ctx context.Context, actor *models.User, id string, patch EventPatch) (*models.Event, error) {
	var updated *models.Event
	err := s.st.Transaction(func(tx *store.Store) error {
		if err := s.authz.Authorize(ctx, tx, actor, permissions.ActionUpdate, permissions.Target{Kind: models.KindEvent, ID: id}); err != nil {
			return err
		}
		e, err := tx.GetEvent(id)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			e.Name = *patch.Name
		}
		if patch.Description != nil {
			e.Description = *patch.Description
		}
		if patch.StartDate != nil {
			e.StartDate = *patch.StartDate
		}
		if patch.EndDate != nil {
			e.EndDate = *patch.EndDate
		}
		if patch.Location != nil {
			e.Location = *patch.Location
		}
		if patch.Attendees != nil {
			e.Attendees = *patch.Attendees
		}
		if patch.Notes != nil {
			e.Notes = *patch.Notes
		}
		if err := validateEventFields(e.Name, e.Location, e.StartDate, e.EndDate, e.Attendees); err != nil {
			return err
		}
		if err := tx.SaveEvent(e); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *EventService) Delete(ctx context.Context, actor *models.User, id string) error {
	return s.st.Transaction(func(tx *store.Store) error {
		if err := s.authz.Authorize(ctx, tx, actor, permissions.ActionDelete, permissions.Target{Kind: models.KindEvent, ID: id}); err != nil {
			return err
		}
		return tx.DeleteEvent(id)
	})
}

// AssignSupport sets the event's support user. The assignee must carry
// the support role; reassignment overwrites the previous one, last write
// wins.
func (s *EventService) AssignSupport(ctx context.Context, actor *models.User, eventID, supportID string) (*models.Event, error) {
	err := s.st.Transaction(func(tx *store.Store) error {
		if err := s.authz.Authorize(ctx, tx, actor, permissions.ActionAssignSupport, permissions.Target{Kind: models.KindEvent, ID: eventID}); err != nil {
			return err
		}
		if _, err := tx.GetEvent(eventID); err != nil {
			return err
		}
		assignee, err := tx.GetUser(supportID)
		if err != nil {
			return err
		}
		if assignee.Role != models.RoleSupport {
			s.record(ctx, actor, permissions.ActionAssignSupport, eventID, audit.OutcomeRejected)
			return &models.InvalidAssigneeError{UserID: assignee.ID, Role: assignee.Role, Want: models.RoleSupport}
		}
		return tx.SetEventSupport(eventID, &assignee.ID)
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, permissions.ActionAssignSupport, eventID, audit.OutcomeApplied)
	return s.st.GetEvent(eventID)
}

// UnassignSupport clears the event's support slot.
func (s *EventService) UnassignSupport(ctx context.Context, actor *models.User, eventID string) (*models.Event, error) {
	err := s.st.Transaction(func(tx *store.Store) error {
		if err := s.authz.Authorize(ctx, tx, actor, permissions.ActionAssignSupport, permissions.Target{Kind: models.KindEvent, ID: eventID}); err != nil {
			return err
		}
		return tx.SetEventSupport(eventID, nil)
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, permissions.ActionAssignSupport, eventID, audit.OutcomeApplied)
	return s.st.GetEvent(eventID)
}

// List returns events visible to the actor. Support actors see their own
// assignments, commercial actors the events of their clients' contracts.
func (s *EventService) List(ctx context.Context, actor *models.User, f store.EventFilter) ([]models.Event, error) {
	if err := s.authz.Authorize(ctx, s.st, actor, permissions.ActionRead, permissions.Target{Kind: models.KindEvent}); err != nil {
		return nil, err
	}
	switch actor.Role {
	case models.RoleSupport:
		f.SupportID = actor.ID
	case models.RoleCommercial:
		f.CommercialID = actor.ID
	}
	return s.st.ListEvents(f)
}

func validateEventFields(name, location string, start, end time.Time, attendees int) error {
	if name == "" {
		return &models.ValidationError{EntityKind: models.KindEvent, Field: "name", Reason: "is required"}
	}
	if location == "" {
		return &models.ValidationError{EntityKind: models.KindEvent, Field: "location", Reason: "is required"}
	}
	if start.IsZero() || end.IsZero() {
		return &models.ValidationError{EntityKind: models.KindEvent, Field: "dates", Reason: "start and end are required"}
	}
	if end.Before(start) {
		return &models.ValidationError{EntityKind: models.KindEvent, Field: "end_date", Reason: "is before the start date"}
	}
	if attendees < 0 {
		return &models.ValidationError{EntityKind: models.KindEvent, Field: "attendees", Reason: "must not be negative"}
	}
	return nil
}

func (s *EventService) record(ctx context.Context, actor *models.User, action permissions.Action, id, outcome string) {
	s.sink.Record(ctx, audit.Entry{
		ActorID:    actor.ID,
		Action:     string(action),
		EntityKind: models.KindEvent,
		EntityID:   id,
		Outcome:    outcome,
		Metadata:   map[string]interface{}{"role": string(actor.Role)},
	})
}
