package community

import (
	"context"

	"github.com/ebosoh/sales-agent/internal/store"
)

// Connect opens the community store named by dsn: a PostgreSQL DSN selects
// Postgres, anything else is treated as a SQLite file path.
func Connect(ctx context.Context, dsn string) (store.Community, error) {
	if IsPostgresDSN(dsn) {
		return Open(ctx, dsn)
	}
	return store.OpenCommunity(dsn)
}
