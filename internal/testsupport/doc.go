// Package testsupport centralizes helpers for building test configurations
// and opening throwaway stores backed by per-test temp directories.
package testsupport
