// ABOUTME: Embeds goose SQL migrations for the Postgres backend
// ABOUTME: Consumed by store.NewPostgresStore via goose.SetBaseFS

package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
