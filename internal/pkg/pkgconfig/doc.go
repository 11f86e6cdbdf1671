// Package pkgconfig reads configuration through the Config interface.
//
// Viper is the only implementation. It reads an optional YAML file and lets
// environment variables override any key ("upload.max_bytes" is read from
// UPLOAD_MAX_BYTES). Modules take a Config so tests can pass a map-backed fake.
package pkgconfig
