// Package stats derives aggregate figures from queue snapshots.
package stats
