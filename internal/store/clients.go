package store

import (
	"time"

	"eventcrm/internal/models"
)

// ClientFilter narrows ListClients. Zero values mean no filtering.
type ClientFilter struct {
	CommercialID string
}

func (s *Store) CreateClient(c *models.Client) error {
	if taken, err := s.clientEmailTaken(c.Email, ""); err != nil {
		return err
	} else if taken {
		return &models.DuplicateKeyError{EntityKind: models.KindClient, Field: "email"}
	}
	return translate(s.db.Create(c).Error, models.KindClient, c.ID)
}

func (s *Store) GetClient(id string) (*models.Client, error) {
	var c models.Client
	if err := s.db.First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err, models.KindClient, id)
	}
	return &c, nil
}

func (s *Store) SaveClient(c *models.Client) error {
	if taken, err := s.clientEmailTaken(c.Email, c.ID); err != nil {
		return err
	} else if taken {
		return &models.DuplicateKeyError{EntityKind: models.KindClient, Field: "email"}
	}
	c.UpdatedAt = time.Now()
	return translate(s.db.Save(c).Error, models.KindClient, c.ID)
}

// DeleteClient removes the client together with its contracts and their
// events. The cascade is intentional: deleting a client is an explicit
// decision to drop all business attached to it.
func (s *Store) DeleteClient(id string) error {
	return s.Transaction(func(tx *Store) error {
		if _, err := tx.GetClient(id); err != nil {
			return err
		}
		if err := tx.db.Delete(&models.Event{}, "client_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.db.Delete(&models.Contract{}, "client_id = ?", id).Error; err != nil {
			return err
		}
		return tx.db.Delete(&models.Client{}, "id = ?", id).Error
	})
}

func (s *Store) ListClients(f ClientFilter) ([]models.Client, error) {
	q := s.db.Model(&models.Client{}).Order("created_at asc")
	if f.CommercialID != "" {
		q = q.Where("commercial_id = ?", f.CommercialID)
	}
	var clients []models.Client
	return clients, q.Find(&clients).Error
}

func (s *Store) clientEmailTaken(email, exceptID string) (bool, error) {
	var n int64
	q := s.db.Model(&models.Client{}).Where("email = ?", email)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
