package identity

import (
	"time"

	"scriptqueue/internal/policy"
)

// User is an account known to the dashboard. Role is RoleNone until an admin
// approves the account.
type User struct {
	ID        string
	Email     string
	Username  string
	Role      policy.Role
	CreatedAt time.Time
}

// Claims is the verified content of an access token.
type Claims struct {
	UserID   string
	Username string
}
