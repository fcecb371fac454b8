// Package migrations embeds the SQL schema for the local and community stores.
package migrations

import "embed"

// Local holds the migrations for the per-profile agent.db.
//
//go:embed local/*.sql
var Local embed.FS

// Community holds the migrations for a file-backed community store, which
// only ever carries fraud reports.
//
//go:embed community/*.sql
var Community embed.FS
