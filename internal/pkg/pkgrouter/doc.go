// Package pkgrouter wraps HTTP routing and common middleware used by the API.
//
// It provides a small router abstraction over httprouter plus shared concerns
// like JSON encoding, error mapping to {detail, error} bodies, logging,
// recovery, request body limits, origin allow-listing and correlation ID
// propagation.
package pkgrouter
