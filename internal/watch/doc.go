// Package watch implements the change-notification stream for the queue
// store.
//
// The store publishes an event after every committed mutation; the dashboard
// store and the SSE endpoint subscribe and respond by re-fetching the full
// collection. Delivery is best-effort with a small per-subscriber buffer, so
// the broker never blocks a writer on a slow reader.
package watch
