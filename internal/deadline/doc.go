// Package deadline classifies open queue items by deadline proximity and
// emits at most one notification per item and classification for the life
// of the daemon.
package deadline
