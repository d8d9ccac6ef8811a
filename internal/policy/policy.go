package policy

import "scriptqueue/internal/queue"

// Role is the access level attached to an authenticated account.
// RoleNone marks accounts awaiting admin approval.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleNone  Role = "none"
)

// ParseRole maps a stored role string to a Role, defaulting to RoleNone.
func ParseRole(value string) Role {
	switch value {
	case string(RoleAdmin):
		return RoleAdmin
	case string(RoleUser):
		return RoleUser
	default:
		return RoleNone
	}
}

// Approved reports whether the role grants access to queue operations.
func (r Role) Approved() bool {
	return r == RoleAdmin || r == RoleUser
}

// Decision captures what a given account may do with a given queue item.
type Decision struct {
	CanClaim             bool
	CanComplete          bool
	CanEdit              bool
	CanDelete            bool
	CanViewScriptHistory bool
}

// Evaluate computes the access decision for username acting with role on item.
// Admins may edit and delete any item. A worker may claim any pending item,
// complete only items they claimed, and view scripts only for their own
// completed items; how much history a non-admin viewer sees is up to the
// caller.
func Evaluate(role Role, username string, item queue.Item) Decision {
	if !role.Approved() || username == "" {
		return Decision{}
	}

	admin := role == RoleAdmin
	mine := item.ClaimedBy == username

	return Decision{
		CanClaim:             item.Status == queue.StatusPending,
		CanComplete:          item.Status == queue.StatusInProgress && (mine || admin),
		CanEdit:              admin && item.Status != queue.StatusCompleted,
		CanDelete:            admin,
		CanViewScriptHistory: item.Status == queue.StatusCompleted && (admin || mine),
	}
}
