// Package daemon composes the scriptqueue services into a single
// long-running process.
//
// One daemon instance owns the SQLite store, the change broker, the
// dashboard snapshot, the periodic deadline scan, and the HTTP API. A file
// lock prevents a second instance from opening the same data directory.
package daemon
