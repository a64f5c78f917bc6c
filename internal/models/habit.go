package models

import (
	"errors"
	"time"
)

// HabitFrequency is the tracking cadence of a habit.
type HabitFrequency string

const (
	FrequencyDaily   HabitFrequency = "daily"
	FrequencyWeekly  HabitFrequency = "weekly"
	FrequencyMonthly HabitFrequency = "monthly"
)

// Valid reports whether f is one of the known cadences.
func (f HabitFrequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// Habit represents a tracked habit.
//
// Frequency is immutable after creation: historical entries are keyed by
// the canonical period start for the frequency they were recorded under,
// and there is no migration path for re-keying them.
type Habit struct {
	// ID is the unique identifier for the habit (UUID format).
	ID string `json:"id"`

	// Name is the display name of the habit (e.g., "Drink water").
	Name string `json:"name"`

	// Category groups habits for filtering (e.g., "Health").
	Category string `json:"category"`

	// Frequency is the tracking cadence: daily, weekly or monthly.
	Frequency HabitFrequency `json:"frequency"`

	// Target is the per-period goal count shown in the UI.
	Target int `json:"target"`

	// Color and Icon are presentation tags carried through untouched.
	Color string `json:"color"`
	Icon  string `json:"icon"`

	// CreatedAt is the Unix timestamp when the habit was created.
	CreatedAt int64 `json:"created_at"`
}

func (h *Habit) RecordID() string          { return h.ID }
func (h *Habit) SetRecordID(id string)     { h.ID = id }
func (h *Habit) RecordCreatedAt() int64    { return h.CreatedAt }
func (h *Habit) StampCreatedAt(unix int64) { h.CreatedAt = unix }

// Clone returns a deep copy of the habit.
func (h *Habit) Clone() *Habit {
	c := *h
	return &c
}

// Validate checks basic invariants before the record reaches a store.
func (h *Habit) Validate() error {
	if h.Name == "" {
		return errors.New("habit name is required")
	}
	if !h.Frequency.Valid() {
		return errors.New("habit frequency must be daily, weekly or monthly")
	}
	if h.Target < 0 {
		return errors.New("habit target cannot be negative")
	}
	return nil
}

// HabitEntry records completion of one habit for one tracking period.
//
// EntryDate is always the canonical period start (the day itself for daily
// habits, the week's Monday for weekly, the first of the month for monthly).
// At most one entry exists per (HabitID, EntryDate) pair; toggling a period
// flips the existing entry rather than creating a duplicate.
type HabitEntry struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string `json:"id"`

	// HabitID references the habit this entry belongs to.
	HabitID string `json:"habit_id"`

	// EntryDate is the canonical period start, serialized as ISO-8601.
	EntryDate time.Time `json:"entry_date"`

	// Completed is the tracked flag for the period.
	Completed bool `json:"completed"`

	// CreatedAt is the Unix timestamp when the entry was first created.
	CreatedAt int64 `json:"created_at"`
}

func (e *HabitEntry) RecordID() string          { return e.ID }
func (e *HabitEntry) SetRecordID(id string)     { e.ID = id }
func (e *HabitEntry) RecordCreatedAt() int64    { return e.CreatedAt }
func (e *HabitEntry) StampCreatedAt(unix int64) { e.CreatedAt = unix }

// Clone returns a deep copy of the entry.
func (e *HabitEntry) Clone() *HabitEntry {
	c := *e
	return &c
}

// Validate checks basic invariants before the record reaches a store.
func (e *HabitEntry) Validate() error {
	if e.HabitID == "" {
		return errors.New("habit entry requires a habit id")
	}
	if e.EntryDate.IsZero() {
		return errors.New("habit entry requires an entry date")
	}
	return nil
}
