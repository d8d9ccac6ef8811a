// Package services defines shared error classification consumed by the store,
// identity, and API layers.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that tag failures with a
//     stable taxonomy (validation, not found, conflict, invalid state, auth,
//     backend unavailable).
//   - HTTPStatus, which translates the taxonomy into API response codes.
//
// Use these helpers when wiring new mutation logic so operational behaviour
// (error handling, observability) stays uniform across the application.
package services
