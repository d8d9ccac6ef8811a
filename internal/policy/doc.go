// Package policy decides which queue actions an account may perform.
//
// Decisions are pure functions over the account's role, its username, and
// the current item state. Callers must re-evaluate after every refresh since
// role and item state can change underneath them.
package policy
