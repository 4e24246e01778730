// Package config handles configuration loading, parsing, and validation
// from various sources (defaults, an optional config.yaml, a .env file and
// environment variables). Vendor credentials are optional: leaving one empty
// switches the matching feature to its mock behavior instead of failing.
package config
