// Package notifications delivers queue events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Individual event classes (deadlines, completions, errors) can be
// toggled independently in configuration.
//
// Extend this package if you need alternative transports; all daemon code
// depends only on the simple Service interface.
package notifications
