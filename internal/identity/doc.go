// Package identity manages accounts, credentials, and role approval.
//
// Accounts sign up with a globally unique email and username and start
// without a role; an admin grants admin or user access before queue
// operations are allowed. Sessions are stateless HS256 tokens; sign-out is
// client-side token disposal.
package identity
