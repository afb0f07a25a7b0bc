package services

import (
	"context"

	"go.uber.org/zap"

	"eventcrm/internal/audit"
	"eventcrm/internal/auth"
	"eventcrm/internal/models"
	"eventcrm/internal/permissions"
	"eventcrm/internal/store"
)

// UserService manages collaborator accounts. Creation and deletion are a
// GESTION/ADMIN concern; deleting a user who still owns clients or events
// is blocked until Reassign has moved them.
type UserService struct {
	st    *store.Store
	authz *permissions.Evaluator
	sink  audit.Sink
	lg    *zap.SugaredLogger
}

func NewUserService(st *store.Store, authz *permissions.Evaluator, sink audit.Sink, lg *zap.SugaredLogger) *UserService {
	return &UserService{st: st, authz: authz, sink: sink, lg: lg}
}

type CreateUserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      models.Role
}

type UserPatch struct {
	Email     *string
	FirstName *string
	LastName  *string
	Role      *models.Role
	Password  *string
}

func (s *UserService) Create(ctx context.Context, actor *models.User, in CreateUserInput) (*models.User, error) {
	var created *models.User
	err := s.st.Transaction(func(tx *store.Store) error {
		if err := s.authz.Authorize(ctx, tx, actor, permissions.ActionCreate, permissions.Target{Kind: models.KindUser}); err != nil {
			return err
		}
		if in.Username == "" {
			return &models.ValidationError{EntityKind: models.KindUser, Field: "username", Reason: "is required"}
		}
		if in.Email == "" {
			return &models.ValidationError{EntityKind: models.KindUser, Field: "email", Reason: "is required"}
		}
		if in.Password == "" {
			return &models.ValidationError{EntityKind: models.KindUser, Field: "password", Reason: "is required"}
		}
		if !in.Role.Valid() {
			return &models.ValidationError{EntityKind: models.KindUser, Field: "role", Reason: "is not a known role"}
		}
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return err
		}
		u := models.User{
			Username:     in.Username,
			Email:        in.Email,
			PasswordHash: hash,
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			Role:         in.Role,
		}
		if err := tx.CreateUser(&u); err != nil {
			return err
		}
		created = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *UserService) Get(ctx context.Context, actor *models.User, id string) (*models.User, error) {
	if err := s.authz.Authorize(ctx, s.st, actor, permissions.ActionRead, permissions.Target{Kind: models.KindUser, ID: id}); err != nil {
		return nil, err
	}
	return s.st.GetUser(id)
}

func (s *UserService) Update(ctx context.Context, actor *models.User, id string, patch UserPatch) (*models.User, error) {
	var updated *models.User
	err := s.st.Transaction(func(tx *store.Store) error {
		if err := s.authz.Authorize(ctx, tx, actor, permissions.ActionUpdate, permissions.Target{Kind: models.KindUser, ID: id}); err != nil {
			return err
		}
		u, err := tx.GetUser(id)
		if err != nil {
			return err
		}
		if patch.Email != nil {
			u.Email = *patch.Email
		}
		if patch.FirstName != nil {
			u.FirstName = *patch.FirstName
		}
		if patch.LastName != nil {
			u.LastName = *patch.LastName
		}
		if patch.Role != nil {
			if !patch.Role.Valid() {
				return &models.ValidationError{EntityKind: models.KindUser, Field: "role", Reason: "is not a known role"}
			}
			u.Role = *patch.Role
		}
		if patch.Password != nil && *patch.Password != "" {
			hash, err := auth.HashPassword(*patch.Password)
			if err != nil {
				return err
			}
			u.PasswordHash = hash
		}
		if err := tx.SaveUser(u); err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a user. The store blocks deletion with a
// ReferentialIntegrity error while the user still owns clients or is
// assigned to events.
func (s *UserService) Delete(ctx context.Context, actor *models.User, id string) error {
	return s.st.Transaction(func(tx *store.Store) error {
		if err := s.authz.Authorize(ctx, tx, actor, permissions.ActionDelete, permissions.Target{Kind: models.KindUser, ID: id}); err != nil {
			return err
		}
		return tx.DeleteUser(id)
	})
}

// Reassign moves every client owned by fromID to toID, typically as the
// step before deleting fromID. It is a user-management operation, so it
// is gated on user update rights rather than per-client ownership.
func (s *UserService) Reassign(ctx context.Context, actor *models.User, fromID, toID string) (int64, error) {
	var moved int64
	err := s.st.Transaction(func(tx *store.Store) error {
		if err := s.authz.Authorize(ctx, tx, actor, permissions.ActionUpdate, permissions.Target{Kind: models.KindUser, ID: fromID}); err != nil {
			return err
		}
		if _, err := tx.GetUser(fromID); err != nil {
			return err
		}
		to, err := tx.GetUser(toID)
		if err != nil {
			return err
		}
		if to.Role != models.RoleCommercial {
			return &models.InvalidAssigneeError{UserID: to.ID, Role: to.Role, Want: models.RoleCommercial}
		}
		n, err := tx.ReassignClients(fromID, toID)
		if err != nil {
			return err
		}
		moved = n
		return nil
	})
	return moved, err
}

func (s *UserService) List(ctx context.Context, actor *models.User, f store.UserFilter) ([]models.User, error) {
	if err := s.authz.Authorize(ctx, s.st, actor, permissions.ActionRead, permissions.Target{Kind: models.KindUser}); err != nil {
		return nil, err
	}
	return s.st.ListUsers(f)
}
