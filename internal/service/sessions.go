package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/agentdash/agentdash/internal/metrics"
	"github.com/agentdash/agentdash/internal/storage/sqlite"
)

// Sessions hands out one Dashboard per owner, opening it lazily on first
// use. The anonymous owner (empty ID) gets a shared fallback-bound
// dashboard. Binding decisions stay per-dashboard: a dashboard opened
// while the store was unreachable keeps its fallback binding until the
// session is closed.
type Sessions struct {
	store   *sqlite.Store
	budgets map[string]float64
	logger  *slog.Logger
	met     *metrics.Collections

	mu         sync.Mutex
	dashboards map[string]*Dashboard
}

// NewSessions creates the registry. store may be nil to force fallback
// mode for every owner.
func NewSessions(store *sqlite.Store, budgets map[string]float64, logger *slog.Logger, met *metrics.Collections) *Sessions {
	return &Sessions{
		store:      store,
		budgets:    budgets,
		logger:     logger,
		met:        met,
		dashboards: make(map[string]*Dashboard),
	}
}

// Dashboard returns the dashboard for ownerID, opening it if needed.
func (s *Sessions) Dashboard(ctx context.Context, ownerID string) *Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.dashboards[ownerID]; ok {
		return d
	}
	d := OpenDashboard(ctx, DashboardConfig{
		OwnerID: ownerID,
		Store:   s.store,
		Budgets: s.budgets,
		Logger:  s.logger,
		Metrics: s.met,
	})
	s.dashboards[ownerID] = d
	return d
}

// Close shuts down every open dashboard.
func (s *Sessions) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.dashboards {
		d.Close()
	}
	s.dashboards = make(map[string]*Dashboard)
}
