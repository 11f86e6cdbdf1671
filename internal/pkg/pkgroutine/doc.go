// Package pkgroutine contains helpers for running goroutines safely.
//
// The Manager type limits concurrency, collects returned errors, logs panics
// so background work does not crash the process silently, and drives
// periodic jobs such as the upload retention sweep.
package pkgroutine
