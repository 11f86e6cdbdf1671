// Package pkgerror carries the structured error used between use cases and
// the HTTP layer.
//
// An Error has a type (server, business, validation), a code that picks the
// HTTP status, a user-facing message and an optional cause. The router
// renders it as {"detail": ...} and adds "error" with the cause for server
// errors.
package pkgerror
