package services

import (
	"context"

	"go.uber.org/zap"

	"eventcrm/internal/audit"
	"eventcrm/internal/models"
	"eventcrm/internal/permissions"
	"eventcrm/internal/store"
)

// ClientService manages clients. A client always belongs to a commercial;
// a commercial acting alone becomes the owner of clients they create.
type ClientService struct {
	st    *store.Store
	authz *permissions.Evaluator
	sink  audit.Sink
	lg    *zap.SugaredLogger
}

func NewClientService(st *store.Store, authz *permissions.Evaluator, sink audit.Sink, lg *zap.SugaredLogger) *ClientService {
	return &ClientService{st: st, authz: authz, sink: sink, lg: lg}
}

type CreateClientInput struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	CompanyName  string
	CommercialID string // optional for commercial actors, who own by default
}

type ClientPatch struct {
	FirstName    *string
	LastName     *string
	Email        *string
	Phone        *string
	CompanyName  *string
	CommercialID *string
}

func (s *ClientService) Create(ctx context.Context, actor *models.User, in CreateClientInput) (*models.Client, error) {
	var created *models.Client
	err := s.st.Transaction(func(tx *store.Store) error {
		if err := s.authz.Authorize(ctx, tx, actor, permissions.ActionCreate, permissions.Target{Kind: models.KindClient}); err != nil {
			return err
		}
		if in.Email == "" {
			return &models.ValidationError{EntityKind: models.KindClient, Field: "email", Reason: "is required"}
		}
		ownerID := in.CommercialID
		if ownerID == "" {
			if actor.Role != models.RoleCommercial {
				return &models.ValidationError{EntityKind: models.KindClient, Field: "commercial_id", Reason: "is required"}
			}
			ownerID = actor.ID
		}
		owner, err := tx.GetUser(ownerID)
		if err != nil {
			return err
		}
		if owner.Role != models.RoleCommercial {
			return &models.InvalidAssigneeError{UserID: owner.ID, Role: owner.Role, Want: models.RoleCommercial}
		}
		c := models.Client{
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			Email:        in.Email,
			Phone:        in.Phone,
			CompanyName:  in.CompanyName,
			CommercialID: ownerID,
		}
		if err := tx.CreateClient(&c); err != nil {
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

func (s *ClientService) Get(ctx context.Context, actor *models.User, id string) (*models.Client, error) {
	if err := s.authz.Authorize(ctx, s.st, actor, permissions.ActionRead, permissions.Target{Kind: models.KindClient, ID: id}); err != nil {
		return nil, err
	}
	return s.st.GetClient(id)
}

func (s *ClientService) Update(ctx context.Context, actor *models.User, id string, patch ClientPatch) (*models.Client, error) {
	var updated *models.Client
	err := s.st.Transaction(func(tx *store.Store) error {
		if err := s.authz.Authorize(ctx, tx, actor, permissions.ActionUpdate, permissions.Target{Kind: models.KindClient, ID: id}); err != nil {
			return err
		}
		c, err := tx.GetClient(id)
		if err != nil {
			return err
		}
		if patch.FirstName != nil {
			c.FirstName = *patch.FirstName
		}
		if patch.LastName != nil {
			c.LastName = *patch.LastName
		}
		if patch.Email != nil {
			c.Email = *patch.Email
		}
		if patch.Phone != nil {
			c.Phone = *patch.Phone
		}
		if patch.CompanyName != nil {
			c.CompanyName = *patch.CompanyName
		}
		if patch.CommercialID != nil && *patch.CommercialID != c.CommercialID {
			owner, err := tx.GetUser(*patch.CommercialID)
			if err != nil {
				return err
			}
			if owner.Role != models.RoleCommercial {
				return &models.InvalidAssigneeError{UserID: owner.ID, Role: owner.Role, Want: models.RoleCommercial}
			}
			c.CommercialID = owner.ID
		}
		if err := tx.SaveClient(c); err != nil {
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

// Delete cascades to the client's contracts and their events.
func (s *ClientService) Delete(ctx context.Context, actor *models.User, id string) error {
	return s.st.Transaction(func(tx *store.Store) error {
		if err := s.authz.Authorize(ctx, tx, actor, permissions.ActionDelete, permissions.Target{Kind: models.KindClient, ID: id}); err != nil {
			return err
		}
		return tx.DeleteClient(id)
	})
}

// List returns clients visible to the actor. Commercial actors only see
// their own book unless they are ADMIN/GESTION.
func (s *ClientService) List(ctx context.Context, actor *models.User, f store.ClientFilter) ([]models.Client, error) {
	if err := s.authz.Authorize(ctx, s.st, actor, permissions.ActionRead, permissions.Target{Kind: models.KindClient}); err != nil {
		return nil, err
	}
	if actor.Role == models.RoleCommercial {
		f.CommercialID = actor.ID
	}
	return s.st.ListClients(f)
}
