package store

import (
	"time"

	"eventcrm/internal/models"
)

// EventFilter narrows ListEvents. CommercialID scopes through the owning
// contract's commercial snapshot, the rest are direct column filters.
type EventFilter struct {
	ContractID   string
	ClientID     string
	SupportID    string
	CommercialID string
	Unassigned   bool
	Upcoming     bool
	Past         bool
}

func (s *Store) CreateEvent(e *models.Event) error {
	return translate(s.db.Create(e).Error, models.KindEvent, e.ID)
}

func (s *Store) GetEvent(id string) (*models.Event, error) {
	var e models.Event
	if err := s.db.First(&e, "id = ?", id).Error; err != nil {
		return nil, translate(err, models.KindEvent, id)
	}
	return &e, nil
}

func (s *Store) SaveEvent(e *models.Event) error {
	e.UpdatedAt = time.Now()
	return translate(s.db.Save(e).Error, models.KindEvent, e.ID)
}

func (s *Store) DeleteEvent(id string) error {
	if _, err := s.GetEvent(id); err != nil {
		return err
	}
	return s.db.Delete(&models.Event{}, "id = ?", id).Error
}

// SetEventSupport overwrites the event's support assignment. Passing nil
// clears it. Last write wins.
func (s *Store) SetEventSupport(id string, supportID *string) error {
	res := s.db.Model(&models.Event{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"support_id": supportID, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &models.NotFoundError{EntityKind: models.KindEvent, EntityID: id}
	}
	return nil
}

func (s *Store) ListEvents(f EventFilter) ([]models.Event, error) {
	q := s.db.Model(&models.Event{}).Order("events.created_at asc")
	if f.ContractID != "" {
		q = q.Where("events.contract_id = ?", f.ContractID)
	}
	if f.ClientID != "" {
		q = q.Where("events.client_id = ?", f.ClientID)
	}
	if f.SupportID != "" {
		q = q.Where("events.support_id = ?", f.SupportID)
	}
	if f.CommercialID != "" {
		q = q.Joins("JOIN contracts ON contracts.id = events.contract_id").
			Where("contracts.commercial_id = ?", f.CommercialID)
	}
	if f.Unassigned {
		q = q.Where("events.support_id IS NULL")
	}
	now := time.Now()
	if f.Upcoming {
		q = q.Where("events.end_date > ?", now)
	}
	if f.Past {
		q = q.Where("events.end_date <= ?", now)
	}
	var events []models.Event
	return events, q.Find(&events).Error
}
