// Package postgres implements the internal/store interfaces on PostgreSQL
// through database/sql and the pgx driver, and carries the embedded goose
// migrations for the schema those stores use.
package postgres
