package collection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdash/agentdash/internal/models"
	"github.com/agentdash/agentdash/internal/storage"
)

var errStoreDown = errors.New("store down")

// stubTable is an in-test remote adapter with switchable failure modes.
type stubTable struct {
	recs       []*models.Habit
	lastOwner  string
	failList   bool
	failInsert bool
	failUpdate bool
	failRemove bool
}

func (s *stubTable) List(ctx context.Context, ownerID string) ([]*models.Habit, error) {
	s.lastOwner = ownerID
	if s.failList {
		return nil, errStoreDown
	}
	out := make([]*models.Habit, len(s.recs))
	for i, r := range s.recs {
		out[i] = r.Clone()
	}
	return out, nil
}

func (s *stubTable) Insert(ctx context.Context, ownerID string, rec *models.Habit) (*models.Habit, error) {
	s.lastOwner = ownerID
	if s.failInsert {
		return nil, errStoreDown
	}
	s.recs = append(s.recs, rec.Clone())
	return rec.Clone(), nil
}

func (s *stubTable) Update(ctx context.Context, ownerID, id string, rec *models.Habit) (*models.Habit, error) {
	s.lastOwner = ownerID
	if s.failUpdate {
		return nil, errStoreDown
	}
	for i, r := range s.recs {
		if r.ID == id {
			s.recs[i] = rec.Clone()
			return rec.Clone(), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *stubTable) Remove(ctx context.Context, ownerID, id string) error {
	s.lastOwner = ownerID
	if s.failRemove {
		return errStoreDown
	}
	for i, r := range s.recs {
		if r.ID == id {
			s.recs = append(s.recs[:i], s.recs[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

var _ storage.Table[*models.Habit] = (*stubTable)(nil)

func habit(id, name string) *models.Habit {
	return &models.Habit{ID: id, Name: name, Frequency: models.FrequencyDaily, CreatedAt: 1}
}

func openTest(t *testing.T, ownerID string, cfg Config[*models.Habit]) *Collection[*models.Habit] {
	t.Helper()
	c := Open(context.Background(), ownerID, cfg)
	t.Cleanup(c.Close)
	return c
}

func TestOpenBinding(t *testing.T) {
	t.Run("signed-in owner with healthy remote binds remotely", func(t *testing.T) {
		remote := &stubTable{recs: []*models.Habit{habit("h1", "Read")}}
		c := openTest(t, "owner-1", Config[*models.Habit]{Table: "habits", Remote: remote})

		assert.False(t, c.UsingFallback())
		assert.Equal(t, "owner-1", remote.lastOwner)
		require.Len(t, c.List(), 1)
		assert.Equal(t, "Read", c.List()[0].Name)
	})

	t.Run("failing probe binds the seeded fallback", func(t *testing.T) {
		remote := &stubTable{failList: true}
		seed := []*models.Habit{habit("seed-1", "Stretch")}
		c := openTest(t, "owner-1", Config[*models.Habit]{Table: "habits", Remote: remote, Seed: seed})

		assert.True(t, c.UsingFallback())
		require.Len(t, c.List(), 1)
		assert.Equal(t, "Stretch", c.List()[0].Name)
	})

	t.Run("anonymous owner never binds remotely", func(t *testing.T) {
		remote := &stubTable{recs: []*models.Habit{habit("h1", "Read")}}
		c := openTest(t, "", Config[*models.Habit]{Table: "habits", Remote: remote})

		assert.True(t, c.UsingFallback())
		assert.Empty(t, c.List())
	})

	t.Run("fallback binding survives later store health", func(t *testing.T) {
		remote := &stubTable{failList: true}
		c := openTest(t, "owner-1", Config[*models.Habit]{Table: "habits", Remote: remote})
		remote.failList = false

		// The binding decision was made at open; a recovered remote is
		// not consulted again.
		_, err := c.Insert(context.Background(), habit("", "Run"))
		require.NoError(t, err)
		assert.True(t, c.UsingFallback())
		assert.Empty(t, remote.recs)
	})
}

func TestInsert(t *testing.T) {
	t.Run("fills identity and reconciles", func(t *testing.T) {
		remote := &stubTable{}
		c := openTest(t, "owner-1", Config[*models.Habit]{Table: "habits", Remote: remote})

		rec, err := c.Insert(context.Background(), &models.Habit{Name: "Run", Frequency: models.FrequencyDaily})
		require.NoError(t, err)
		assert.NotEmpty(t, rec.ID)
		assert.NotZero(t, rec.CreatedAt)
		assert.Equal(t, StateReconciled, c.State())
		require.Len(t, c.List(), 1)
		require.Len(t, remote.recs, 1)
	})

	t.Run("validation failure never reaches the store", func(t *testing.T) {
		remote := &stubTable{}
		c := openTest(t, "owner-1", Config[*models.Habit]{Table: "habits", Remote: remote})

		_, err := c.Insert(context.Background(), &models.Habit{Frequency: models.FrequencyDaily})
		require.ErrorIs(t, err, ErrValidationRejected)
		assert.Empty(t, c.List())
		assert.Empty(t, remote.recs)
	})

	t.Run("store rejection rolls the snapshot back", func(t *testing.T) {
		remote := &stubTable{}
		c := openTest(t, "owner-1", Config[*models.Habit]{Table: "habits", Remote: remote})

		var sawOptimistic bool
		c.Subscribe(func(recs []*models.Habit) {
			if len(recs) == 1 {
				sawOptimistic = true
			}
		})

		remote.failInsert = true
		_, err := c.Insert(context.Background(), &models.Habit{Name: "Run", Frequency: models.FrequencyDaily})
		require.ErrorIs(t, err, ErrMutationRejected)
		assert.Empty(t, c.List())
		assert.Equal(t, StateRolledBack, c.State())
		assert.True(t, sawOptimistic, "subscriber should observe the optimistic snapshot")
	})
}

func TestUpdate(t *testing.T) {
	t.Run("patch is applied and persisted", func(t *testing.T) {
		remote := &stubTable{recs: []*models.Habit{habit("h1", "Read")}}
		c := openTest(t, "owner-1", Config[*models.Habit]{Table: "habits", Remote: remote})

		rec, err := c.Update(context.Background(), "h1", func(h *models.Habit) { h.Name = "Read more" })
		require.NoError(t, err)
		assert.Equal(t, "Read more", rec.Name)
		assert.Equal(t, "Read more", remote.recs[0].Name)
	})

	t.Run("identity and creation time are immutable", func(t *testing.T) {
		remote := &stubTable{recs: []*models.Habit{habit("h1", "Read")}}
		c := openTest(t, "owner-1", Config[*models.Habit]{Table: "habits", Remote: remote})

		rec, err := c.Update(context.Background(), "h1", func(h *models.Habit) {
			h.ID = "forged"
			h.CreatedAt = 999
		})
		require.NoError(t, err)
		assert.Equal(t, "h1", rec.ID)
		assert.EqualValues(t, 1, rec.CreatedAt)
	})

	t.Run("unknown ID is rejected without store traffic", func(t *testing.T) {
		remote := &stubTable{}
		c := openTest(t, "owner-1", Config[*models.Habit]{Table: "habits", Remote: remote})

		_, err := c.Update(context.Background(), "missing", func(h *models.Habit) {})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("store rejection restores the previous value", func(t *testing.T) {
		remote := &stubTable{recs: []*models.Habit{habit("h1", "Read")}}
		c := openTest(t, "owner-1", Config[*models.Habit]{Table: "habits", Remote: remote})

		remote.failUpdate = true
		_, err := c.Update(context.Background(), "h1", func(h *models.Habit) { h.Name = "Changed" })
		require.ErrorIs(t, err, ErrMutationRejected)
		assert.Equal(t, StateRolledBack, c.State())
		require.Len(t, c.List(), 1)
		assert.Equal(t, "Read", c.List()[0].Name)
	})
}

func TestRemove(t *testing.T) {
	t.Run("deletes and reconciles", func(t *testing.T) {
		remote := &stubTable{recs: []*models.Habit{habit("h1", "Read")}}
		c := openTest(t, "owner-1", Config[*models.Habit]{Table: "habits", Remote: remote})

		require.NoError(t, c.Remove(context.Background(), "h1"))
		assert.Empty(t, c.List())
		assert.Empty(t, remote.recs)
	})

	t.Run("store rejection restores the record in place", func(t *testing.T) {
		remote := &stubTable{recs: []*models.Habit{habit("h1", "Read"), habit("h2", "Run")}}
		c := openTest(t, "owner-1", Config[*models.Habit]{Table: "habits", Remote: remote})

		remote.failRemove = true
		err := c.Remove(context.Background(), "h1")
		require.ErrorIs(t, err, ErrMutationRejected)
		require.Len(t, c.List(), 2)
		assert.Equal(t, "h1", c.List()[0].ID)
		assert.Equal(t, "h2", c.List()[1].ID)
	})

	t.Run("unknown ID is rejected", func(t *testing.T) {
		remote := &stubTable{}
		c := openTest(t, "owner-1", Config[*models.Habit]{Table: "habits", Remote: remote})

		require.ErrorIs(t, c.Remove(context.Background(), "missing"), ErrNotFound)
	})
}

func TestOrdering(t *testing.T) {
	byName := func(a, b *models.Habit) bool { return a.Name < b.Name }

	t.Run("comparator orders every snapshot", func(t *testing.T) {
		remote := &stubTable{recs: []*models.Habit{habit("h1", "Zebra"), habit("h2", "Apple")}}
		c := openTest(t, "owner-1", Config[*models.Habit]{Table: "habits", Remote: remote, Less: byName})

		require.Len(t, c.List(), 2)
		assert.Equal(t, "Apple", c.List()[0].Name)

		_, err := c.Insert(context.Background(), &models.Habit{Name: "Mango", Frequency: models.FrequencyDaily})
		require.NoError(t, err)
		names := []string{c.List()[0].Name, c.List()[1].Name, c.List()[2].Name}
		assert.Equal(t, []string{"Apple", "Mango", "Zebra"}, names)
	})

	t.Run("equal records keep insertion order", func(t *testing.T) {
		same := func(a, b *models.Habit) bool { return false }
		remote := &stubTable{recs: []*models.Habit{habit("h1", "First"), habit("h2", "Second")}}
		c := openTest(t, "owner-1", Config[*models.Habit]{Table: "habits", Remote: remote, Less: same})

		assert.Equal(t, "h1", c.List()[0].ID)
		assert.Equal(t, "h2", c.List()[1].ID)
	})
}

func TestRefresh(t *testing.T) {
	remote := &stubTable{recs: []*models.Habit{habit("h1", "Read")}}
	c := openTest(t, "owner-1", Config[*models.Habit]{Table: "habits", Remote: remote})

	// Change the store behind the collection's back.
	remote.recs = append(remote.recs, habit("h2", "Run"))
	require.NoError(t, c.Refresh(context.Background()))
	assert.Len(t, c.List(), 2)
}

func TestClose(t *testing.T) {
	remote := &stubTable{}
	c := Open(context.Background(), "owner-1", Config[*models.Habit]{Table: "habits", Remote: remote})
	c.Close()

	_, err := c.Insert(context.Background(), habit("", "Run"))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSnapshotImmutability(t *testing.T) {
	remote := &stubTable{recs: []*models.Habit{habit("h1", "Read")}}
	c := openTest(t, "owner-1", Config[*models.Habit]{Table: "habits", Remote: remote})

	before := c.List()
	_, err := c.Insert(context.Background(), &models.Habit{Name: "Run", Frequency: models.FrequencyDaily})
	require.NoError(t, err)

	// The old slice is untouched; the snapshot was replaced wholesale.
	assert.Len(t, before, 1)
	assert.Len(t, c.List(), 2)
}

func TestClockOverride(t *testing.T) {
	fixed := time.Date(2026, time.August, 26, 12, 0, 0, 0, time.UTC)
	remote := &stubTable{}
	c := openTest(t, "owner-1", Config[*models.Habit]{
		Table:  "habits",
		Remote: remote,
		Clock:  func() time.Time { return fixed },
	})

	rec, err := c.Insert(context.Background(), &models.Habit{Name: "Run", Frequency: models.FrequencyDaily})
	require.NoError(t, err)
	assert.Equal(t, fixed.Unix(), rec.CreatedAt)
}
