package store

import (
	"fmt"
	"time"

	"eventcrm/internal/models"
)

// UserFilter narrows ListUsers. Zero values mean no filtering.
type UserFilter struct {
	Role models.Role
}

// CreateUser inserts a new user. Username and email collisions surface as
// DuplicateKey errors naming the offending field.
func (s *Store) CreateUser(u *models.User) error {
	if field, err := s.userUniqueField(u.Username, u.Email, ""); err != nil {
		return err
	} else if field != "" {
		return &models.DuplicateKeyError{EntityKind: models.KindUser, Field: field}
	}
	return translate(s.db.Create(u).Error, models.KindUser, u.ID)
}

func (s *Store) GetUser(id string) (*models.User, error) {
	var u models.User
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err, models.KindUser, id)
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(username string) (*models.User, error) {
	var u models.User
	if err := s.db.First(&u, "username = ?", username).Error; err != nil {
		return nil, translate(err, models.KindUser, username)
	}
	return &u, nil
}

// SaveUser persists an updated user, re-checking unique fields against
// other rows.
func (s *Store) SaveUser(u *models.User) error {
	if field, err := s.userUniqueField(u.Username, u.Email, u.ID); err != nil {
		return err
	} else if field != "" {
		return &models.DuplicateKeyError{EntityKind: models.KindUser, Field: field}
	}
	u.UpdatedAt = time.Now()
	return translate(s.db.Save(u).Error, models.KindUser, u.ID)
}

// DeleteUser removes a user unless they still own clients or are assigned
// to events. Contract commercial snapshots are historical attribution and
// do not block deletion.
func (s *Store) DeleteUser(id string) error {
	return s.Transaction(func(tx *Store) error {
		if _, err := tx.GetUser(id); err != nil {
			return err
		}
		var clients int64
		if err := tx.db.Model(&models.Client{}).Where("commercial_id = ?", id).Count(&clients).Error; err != nil {
			return err
		}
		if clients > 0 {
			return &models.ReferentialIntegrityError{
				EntityKind: models.KindUser,
				EntityID:   id,
				Reason:     fmt.Sprintf("still owns %d client(s), reassign them first", clients),
			}
		}
		var events int64
		if err := tx.db.Model(&models.Event{}).Where("support_id = ?", id).Count(&events).Error; err != nil {
			return err
		}
		if events > 0 {
			return &models.ReferentialIntegrityError{
				EntityKind: models.KindUser,
				EntityID:   id,
				Reason:     fmt.Sprintf("still assigned to %d event(s), reassign them first", events),
			}
		}
		return tx.db.Delete(&models.User{}, "id = ?", id).Error
	})
}

// ReassignClients moves every client owned by fromID to toID and returns
// how many rows moved. Caller validates that toID is a commercial.
func (s *Store) ReassignClients(fromID, toID string) (int64, error) {
	res := s.db.Model(&models.Client{}).
		Where("commercial_id = ?", fromID).
		Updates(map[string]interface{}{"commercial_id": toID, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}

func (s *Store) ListUsers(f UserFilter) ([]models.User, error) {
	q := s.db.Model(&models.User{}).Order("created_at asc")
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	var users []models.User
	return users, q.Find(&users).Error
}

// userUniqueField returns which unique field collides with another row,
// or "" when both are free. exceptID skips the row being updated.
func (s *Store) userUniqueField(username, email, exceptID string) (string, error) {
	var n int64
	q := s.db.Model(&models.User{}).Where("username = ?", username)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return "", err
	}
	if n > 0 {
		return "username", nil
	}
	q = s.db.Model(&models.User{}).Where("email = ?", email)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return "", err
	}
	if n > 0 {
		return "email", nil
	}
	return "", nil
}
