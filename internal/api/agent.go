// Package api implements the salesagent.v1.Agent control service on top of
// the stores, the monitor and the query views.
package api

import (
	"context"

	"go.uber.org/zap"

	agentv1 "github.com/ebosoh/sales-agent/internal/api/agentv1"
	"github.com/ebosoh/sales-agent/internal/bus"
	"github.com/ebosoh/sales-agent/internal/query"
	"github.com/ebosoh/sales-agent/internal/status"
	"github.com/ebosoh/sales-agent/internal/store"
)

// Monitor is the scraping session as driven from the API.
type Monitor interface {
	Start(ctx context.Context) error
	Stop()
	Status() status.Snapshot
	Err() error
}

// Agent implements agentv1.AgentServer.
type Agent struct {
	db       *store.DB
	views    *query.Service
	monitor  Monitor
	bus      *bus.Bus
	identity string
	profile  string
	logger   *zap.Logger
}

var _ agentv1.AgentServer = (*Agent)(nil)

// Options are the identity values the Agent stamps on responses.
type Options struct {
	Profile string
	// Identity is the user's own phone number or display name, used by
	// Replies and as the reporter of local fraud reports.
	Identity string
}

// NewAgent creates the service.
func NewAgent(db *store.DB, views *query.Service, m Monitor, b *bus.Bus, opts Options, logger *zap.Logger) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		db:       db,
		views:    views,
		monitor:  m,
		bus:      b,
		identity: opts.Identity,
		profile:  opts.Profile,
		logger:   logger.Named("api"),
	}
}
