// Package store provides persistence for users, advisory requests, and
// property listings.
//
// Two interchangeable backends implement the Store interface: SQLiteStore
// (modernc.org/sqlite, schema bootstrapped in code) for single-node file
// deployments, and PostgresStore (pgx via database/sql, goose-embedded
// migrations) for shared deployments. The backend is selected by the
// database.driver configuration key.
//
// All timestamps are stored as RFC3339 UTC strings in SQLite and as
// timestamptz in Postgres. Lookups that find nothing return ErrNotFound;
// inserts violating a unique credential constraint return
// ErrDuplicateUser.
package store
