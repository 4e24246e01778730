// Package postgres provides the PostgreSQL implementation of task.Store.
// It handles connection pooling, schema migrations embedded in the binary,
// and the mapping between task records and table rows.
package postgres
