package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agentdash/agentdash/internal/analytics"
	"github.com/agentdash/agentdash/internal/collection"
	"github.com/agentdash/agentdash/internal/models"
)

// HabitService is the habits feature module: it owns the habit and
// habit-entry collections and applies the period-keying rules on top of
// them.
type HabitService struct {
	habits  *collection.Collection[*models.Habit]
	entries *collection.Collection[*models.HabitEntry]
	logger  *slog.Logger
	clock   func() time.Time
}

// NewHabitService wires the service to its two collections.
func NewHabitService(habits *collection.Collection[*models.Habit], entries *collection.Collection[*models.HabitEntry], logger *slog.Logger) *HabitService {
	return &HabitService{
		habits:  habits,
		entries: entries,
		logger:  logger,
		clock:   time.Now,
	}
}

// Habits returns the current habit snapshot.
func (s *HabitService) Habits() []*models.Habit {
	return s.habits.List()
}

// Entries returns the current entry snapshot across all habits.
func (s *HabitService) Entries() []*models.HabitEntry {
	return s.entries.List()
}

// UsingFallback reports whether the module is working offline.
func (s *HabitService) UsingFallback() bool {
	return s.habits.UsingFallback()
}

// CreateHabit inserts a new habit.
func (s *HabitService) CreateHabit(ctx context.Context, habit *models.Habit) (*models.Habit, error) {
	return s.habits.Insert(ctx, habit)
}

// UpdateHabit applies patch to the habit with the given ID. Frequency
// changes are rejected before the patch reaches the collection.
func (s *HabitService) UpdateHabit(ctx context.Context, id string, patch func(*models.Habit)) (*models.Habit, error) {
	cur, ok := s.findHabit(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHabit, id)
	}
	probe := cur.Clone()
	patch(probe)
	if probe.Frequency != cur.Frequency {
		return nil, ErrFrequencyChange
	}
	return s.habits.Update(ctx, id, patch)
}

// DeleteHabit removes the habit and cascades to its entries. Entry
// removals are best effort: a failure is logged and does not restore the
// habit.
func (s *HabitService) DeleteHabit(ctx context.Context, id string) error {
	if err := s.habits.Remove(ctx, id); err != nil {
		return err
	}
	for _, e := range s.entries.List() {
		if e.HabitID != id {
			continue
		}
		if err := s.entries.Remove(ctx, e.ID); err != nil {
			s.logger.Warn("failed to remove entry for deleted habit",
				"habit_id", id, "entry_id", e.ID, "error", err)
		}
	}
	return nil
}

// Toggle flips the completion flag for the tracking period containing
// date. The date is normalized to the canonical period start before
// matching, so a weekly habit toggled on a Wednesday flips the entry
// keyed to that week's Monday instead of creating a duplicate. Toggling
// the same period twice returns the entry to its original state.
func (s *HabitService) Toggle(ctx context.Context, habitID string, date time.Time) (*models.HabitEntry, error) {
	habit, ok := s.findHabit(habitID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHabit, habitID)
	}

	key := analytics.PeriodStart(habit.Frequency, date)
	for _, e := range s.entries.List() {
		if e.HabitID != habitID {
			continue
		}
		if analytics.PeriodStart(habit.Frequency, e.EntryDate).Equal(key) {
			return s.entries.Update(ctx, e.ID, func(entry *models.HabitEntry) {
				entry.Completed = !entry.Completed
			})
		}
	}

	return s.entries.Insert(ctx, &models.HabitEntry{
		HabitID:   habitID,
		EntryDate: key,
		Completed: true,
	})
}

// Stats derives completion and streak state for one habit.
func (s *HabitService) Stats(habitID string, mode analytics.ViewMode) (analytics.HabitStats, error) {
	habit, ok := s.findHabit(habitID)
	if !ok {
		return analytics.HabitStats{}, fmt.Errorf("%w: %s", ErrUnknownHabit, habitID)
	}
	return analytics.ComputeHabitStats(habit, s.entries.List(), mode, s.clock()), nil
}

func (s *HabitService) findHabit(id string) (*models.Habit, bool) {
	for _, h := range s.habits.List() {
		if h.ID == id {
			return h, true
		}
	}
	return nil, false
}
