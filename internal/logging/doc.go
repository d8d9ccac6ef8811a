// Package logging builds slog loggers for the daemon and CLI.
//
// It translates config values into console or JSON handlers, fans output to
// stdout plus the daemon log file, and exposes attribute helpers with
// standardized field names so components log item IDs and usernames
// consistently.
package logging
