package store

import (
	"time"

	"eventcrm/internal/models"
)

// ContractFilter narrows ListContracts. Nil booleans mean no filtering on
// that flag.
type ContractFilter struct {
	ClientID     string
	CommercialID string
	Signed       *bool
	Paid         *bool
}

func (s *Store) CreateContract(c *models.Contract) error {
	return translate(s.db.Create(c).Error, models.KindContract, c.ID)
}

func (s *Store) GetContract(id string) (*models.Contract, error) {
	var c models.Contract
	if err := s.db.First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err, models.KindContract, id)
	}
	return &c, nil
}

func (s *Store) SaveContract(c *models.Contract) error {
	c.UpdatedAt = time.Now()
	return translate(s.db.Save(c).Error, models.KindContract, c.ID)
}

// DeleteContract removes the contract and cascades to its events.
func (s *Store) DeleteContract(id string) error {
	return s.Transaction(func(tx *Store) error {
		if _, err := tx.GetContract(id); err != nil {
			return err
		}
		if err := tx.db.Delete(&models.Event{}, "contract_id = ?", id).Error; err != nil {
			return err
		}
		return tx.db.Delete(&models.Contract{}, "id = ?", id).Error
	})
}

func (s *Store) ListContracts(f ContractFilter) ([]models.Contract, error) {
	q := s.db.Model(&models.Contract{}).Order("created_at asc")
	if f.ClientID != "" {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.CommercialID != "" {
		q = q.Where("commercial_id = ?", f.CommercialID)
	}
	if f.Signed != nil {
		q = q.Where("signed = ?", *f.Signed)
	}
	if f.Paid != nil {
		q = q.Where("paid = ?", *f.Paid)
	}
	var contracts []models.Contract
	return contracts, q.Find(&contracts).Error
}

// MarkContractSigned flips an unsigned contract to signed and reports
// whether this call applied the flip. The guarded WHERE clause makes two
// concurrent calls race safely: the loser matches zero rows and no-ops.
func (s *Store) MarkContractSigned(id string) (bool, error) {
	res := s.db.Model(&models.Contract{}).
		Where("id = ? AND signed = ?", id, false).
		Updates(map[string]interface{}{"signed": true, "updated_at": time.Now()})
	return res.RowsAffected == 1, res.Error
}

// MarkContractPaid flips a signed, unpaid contract to paid. The caller
// checks lifecycle state first; the guard here only protects against
// concurrent double-application.
func (s *Store) MarkContractPaid(id string) (bool, error) {
	res := s.db.Model(&models.Contract{}).
		Where("id = ? AND signed = ? AND paid = ?", id, true, false).
		Updates(map[string]interface{}{"paid": true, "remaining_amount": 0.0, "updated_at": time.Now()})
	return res.RowsAffected == 1, res.Error
}
