// Package pkguid provides helpers for generating unique identifiers.
//
// Callers depend on the StringID and NumberID interfaces:
//   - UUIDs tag every request with a correlation ID.
//   - Snowflake IDs version each dataset replacement.
package pkguid
