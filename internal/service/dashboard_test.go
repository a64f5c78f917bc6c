package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDashboardFallback(t *testing.T) {
	d := OpenDashboard(context.Background(), DashboardConfig{Logger: testLogger()})
	t.Cleanup(d.Close)

	assert.True(t, d.UsingFallback())

	// Every feature module starts on the demo seed.
	assert.NotEmpty(t, d.Habits.Habits())
	assert.NotEmpty(t, d.Finance.Expenses())
	assert.NotEmpty(t, d.Finance.Payments())
	assert.NotEmpty(t, d.Projects.Projects())
	assert.NotEmpty(t, d.Goals.Goals())

	// Seeded tasks reference seeded projects.
	for _, task := range d.Projects.Tasks() {
		require.True(t, projectIn(d, task.ProjectID), "seed task %s references unknown project", task.ID)
	}
}

func projectIn(d *Dashboard, id string) bool {
	for _, p := range d.Projects.Projects() {
		if p.ID == id {
			return true
		}
	}
	return false
}

func TestSessions(t *testing.T) {
	s := NewSessions(nil, nil, testLogger(), nil)
	t.Cleanup(s.Close)

	ctx := context.Background()
	anon := s.Dashboard(ctx, "")
	again := s.Dashboard(ctx, "")
	assert.Same(t, anon, again, "anonymous sessions share one dashboard")

	other := s.Dashboard(ctx, "owner-1")
	assert.NotSame(t, anon, other)
	assert.True(t, other.UsingFallback(), "no store means fallback for every owner")
}
