// Package postgres implements the task and user stores on PostgreSQL through
// database/sql and the pgx driver. The baseline schema is embedded and
// applied with goose when the connection is opened.
package postgres
