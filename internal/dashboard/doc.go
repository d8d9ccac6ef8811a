// Package dashboard keeps an always-fresh in-memory view of the queue.
//
// The persisted queue is the source of truth; every change event triggers a
// full re-fetch that replaces the snapshot wholesale. There is no partial
// patching and a superseded fetch never overwrites a newer one.
package dashboard
