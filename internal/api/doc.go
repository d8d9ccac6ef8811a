// Package api exposes the dashboard over JSON HTTP.
//
// Routes live under /v1 behind a logging, CORS, recovery, and bearer-token
// middleware chain. Role checks happen per request against the identity
// store, and every store failure maps through the shared error taxonomy to
// an HTTP status. Change notifications stream to clients as server-sent
// events on /v1/events.
package api
