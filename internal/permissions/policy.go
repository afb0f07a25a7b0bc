package permissions

import "eventcrm/internal/models"

// Action is something an actor attempts against an entity.
type Action string

const (
	ActionCreate        Action = "create"
	ActionRead          Action = "read"
	ActionUpdate        Action = "update"
	ActionDelete        Action = "delete"
	ActionAssignSupport Action = "assign_support"
	ActionMarkSigned    Action = "mark_signed"
	ActionMarkPaid      Action = "mark_paid"
)

// Effect is the outcome of a policy row lookup.
type Effect int

const (
	Deny Effect = iota
	Allow
	AllowIfOwner
)

// policy is the single declarative permission table. Every role-based
// check in the system goes through it; there are no ad hoc role branches
// in the entity mutators. Missing rows mean Deny.
//
// Ownership meaning per kind: a client is owned by its commercial, a
// contract by the commercial snapshot taken at creation, an event by its
// assigned support user (for support actors) or by the owning contract's
// commercial (for commercial actors).
var policy = map[models.Role]map[string]map[Action]Effect{
	models.RoleAdmin: {
		models.KindUser: {
			ActionCreate: Allow, ActionRead: Allow, ActionUpdate: Allow, ActionDelete: Allow,
		},
		models.KindClient: {
			ActionCreate: Allow, ActionRead: Allow, ActionUpdate: Allow, ActionDelete: Allow,
		},
		models.KindContract: {
			ActionCreate: Allow, ActionRead: Allow, ActionUpdate: Allow, ActionDelete: Allow,
			ActionMarkSigned: Allow, ActionMarkPaid: Allow,
		},
		models.KindEvent: {
			ActionCreate: Allow, ActionRead: Allow, ActionUpdate: Allow, ActionDelete: Allow,
			ActionAssignSupport: Allow,
		},
	},
	models.RoleGestion: {
		models.KindUser: {
			ActionCreate: Allow, ActionRead: Allow, ActionUpdate: Allow, ActionDelete: Allow,
		},
		models.KindClient: {
			ActionRead: Allow,
		},
		models.KindContract: {
			ActionCreate: Allow, ActionRead: Allow, ActionUpdate: Allow,
			ActionMarkSigned: Allow, ActionMarkPaid: Allow,
		},
		models.KindEvent: {
			ActionCreate: Allow, ActionRead: Allow, ActionUpdate: Allow,
			ActionAssignSupport: Allow,
		},
	},
	models.RoleCommercial: {
		models.KindUser: {
			ActionRead: Allow,
		},
		models.KindClient: {
			ActionCreate: Allow, ActionRead: Allow,
			ActionUpdate: AllowIfOwner, ActionDelete: AllowIfOwner,
		},
		models.KindContract: {
			ActionRead: Allow, ActionUpdate: AllowIfOwner,
		},
		models.KindEvent: {
			ActionRead: Allow,
		},
	},
	models.RoleSupport: {
		models.KindUser: {
			ActionRead: Allow,
		},
		models.KindClient: {
			ActionRead: Allow,
		},
		models.KindContract: {
			ActionRead: Allow,
		},
		models.KindEvent: {
			ActionRead: Allow, ActionUpdate: AllowIfOwner,
		},
	},
}

// Lookup returns the policy effect for one (role, kind, action) cell.
func Lookup(role models.Role, kind string, action Action) Effect {
	kinds, ok := policy[role]
	if !ok {
		return Deny
	}
	actions, ok := kinds[kind]
	if !ok {
		return Deny
	}
	effect, ok := actions[action]
	if !ok {
		return Deny
	}
	return effect
}
