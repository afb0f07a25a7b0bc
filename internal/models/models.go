package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the single role carried by a user. Roles gate every mutating
// operation through the permissions package.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleCommercial Role = "commercial"
	RoleSupport    Role = "support"
	RoleGestion    Role = "gestion"
)

// Roles lists every valid role, in display order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleCommercial, RoleSupport, RoleGestion}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCommercial, RoleSupport, RoleGestion:
		return true
	}
	return false
}

// Entity kind names, used in policy rows, audit entries and typed errors.
const (
	KindUser     = "user"
	KindClient   = "client"
	KindContract = "contract"
	KindEvent    = "event"
)

type User struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FirstName    string    `gorm:"size:64;not null" json:"first_name"`
	LastName     string    `gorm:"size:64;not null" json:"last_name"`
	Role         Role      `gorm:"size:20;not null" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// FullName returns first and last name, falling back to the username.
func (u *User) FullName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}

type Client struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName    string    `gorm:"size:64;not null" json:"first_name"`
	LastName     string    `gorm:"size:64;not null" json:"last_name"`
	Email        string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	Phone        string    `gorm:"size:20" json:"phone"`
	CompanyName  string    `gorm:"size:100" json:"company_name"`
	CommercialID string    `gorm:"type:uuid;index;not null" json:"commercial_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (c *Client) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Contract links a client to an amount of business. CommercialID is a
// snapshot of the client's commercial taken at creation time so historical
// attribution survives a later client reassignment.
type Contract struct {
	ID              string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string    `gorm:"size:100;not null" json:"name"`
	Description     string    `gorm:"size:500" json:"description"`
	ClientID        string    `gorm:"type:uuid;index;not null" json:"client_id"`
	CommercialID    string    `gorm:"type:uuid;index;not null" json:"commercial_id"`
	TotalAmount     float64   `gorm:"not null" json:"total_amount"`
	RemainingAmount float64   `gorm:"not null" json:"remaining_amount"`
	Signed          bool      `gorm:"not null;default:false" json:"signed"`
	Paid            bool      `gorm:"not null;default:false" json:"paid"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (c *Contract) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Event is a booked prestation under a signed contract. SupportID is nil
// until a support user is assigned. ClientID duplicates the contract's
// client so event listings do not need a join.
type Event struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `json:"description"`
	ContractID  string    `gorm:"type:uuid;index;not null" json:"contract_id"`
	ClientID    string    `gorm:"type:uuid;index;not null" json:"client_id"`
	SupportID   *string   `gorm:"type:uuid;index" json:"support_id,omitempty"`
	StartDate   time.Time `gorm:"not null" json:"start_date"`
	EndDate     time.Time `gorm:"not null" json:"end_date"`
	Location    string    `gorm:"size:200;not null" json:"location"`
	Attendees   int       `gorm:"not null;default:0" json:"attendees"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// HasSupport reports whether a support user is assigned.
func (e *Event) HasSupport() bool {
	return e.SupportID != nil && *e.SupportID != ""
}

// IsPast reports whether the event has already ended.
func (e *Event) IsPast(now time.Time) bool {
	return e.EndDate.Before(now)
}

type AuditLog struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorID    *string   `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	Action     string    `gorm:"not null" json:"action"`
	EntityKind string    `gorm:"size:20;not null" json:"entity_kind"`
	EntityID   string    `gorm:"size:64" json:"entity_id"`
	Outcome    string    `gorm:"size:20;not null" json:"outcome"`
	Metadata   JSONB     `gorm:"type:jsonb" json:"metadata"`
	CreatedAt  time.Time `json:"created_at"`
}
