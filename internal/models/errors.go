package models

import "fmt"

// PermissionDeniedError is returned when the actor's role or ownership
// relation does not permit the attempted action.
type PermissionDeniedError struct {
	ActorID    string
	Action     string
	EntityKind string
	EntityID   string
}

func (e *PermissionDeniedError) Error() string {
	if e.EntityID == "" {
		return fmt.Sprintf("permission denied: %s on %s", e.Action, e.EntityKind)
	}
	return fmt.Sprintf("permission denied: %s on %s %s", e.Action, e.EntityKind, e.EntityID)
}

// ValidationError is returned for malformed input: negative amounts, end
// dates before start dates, missing required fields.
type ValidationError struct {
	EntityKind string
	Field      string
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.EntityKind, e.Field, e.Reason)
}

// NotFoundError is returned when a referenced entity id does not exist.
type NotFoundError struct {
	EntityKind string
	EntityID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.EntityKind, e.EntityID)
}

// DuplicateKeyError is returned when a unique field (username, email)
// collides with an existing row.
type DuplicateKeyError struct {
	EntityKind string
	Field      string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s with the same %s already exists", e.EntityKind, e.Field)
}

// InvalidTransitionError is returned when a lifecycle rule is violated,
// e.g. marking an unsigned contract paid or creating an event on an
// unsigned contract.
type InvalidTransitionError struct {
	EntityKind string
	EntityID   string
	Reason     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition on %s %s: %s", e.EntityKind, e.EntityID, e.Reason)
}

// InvalidAssigneeError is returned when a user with the wrong role is put
// in a role-constrained slot (non-support on an event, non-commercial as
// client owner).
type InvalidAssigneeError struct {
	UserID string
	Role   Role
	Want   Role
}

func (e *InvalidAssigneeError) Error() string {
	return fmt.Sprintf("user %s has role %s, want %s", e.UserID, e.Role, e.Want)
}

// ReferentialIntegrityError is returned when a delete is blocked by
// dependent entities.
type ReferentialIntegrityError struct {
	EntityKind string
	EntityID   string
	Reason     string
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("cannot delete %s %s: %s", e.EntityKind, e.EntityID, e.Reason)
}
