package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/agentdash/agentdash/internal/models"
)

// ViewMode selects the tracked window for daily habits.
type ViewMode int

const (
	// ViewWeek is the 7-day window for daily habits.
	ViewWeek ViewMode = iota
	// ViewMonth is the 30-day window for daily habits.
	ViewMonth
)

// Window lengths per frequency. Weekly habits always show the last 8
// week-starts, monthly habits the last 6 month-starts; the view mode only
// affects daily habits.
const (
	dailyWeekWindow  = 7
	dailyMonthWindow = 30
	weeklyWindow     = 8
	monthlyWindow    = 6
)

// HabitStats is the derived completion state for one habit.
type HabitStats struct {
	// Completed is the number of tracked periods in the window with a
	// completed entry.
	Completed int `json:"completed"`

	// Total is the window length in periods.
	Total int `json:"total"`

	// CompletionRate is Completed/Total as a percentage, rounded to the
	// nearest integer.
	CompletionRate int `json:"completion_rate"`

	// CurrentStreak counts consecutive completed periods ending at the
	// most recent one; any gap, including a missing entry, ends it.
	CurrentStreak int `json:"current_streak"`

	// BestStreak is the longest run of consecutive completed entries
	// across the habit's full history, not limited to the window.
	BestStreak int `json:"best_streak"`
}

// PeriodStart normalizes t to the canonical start of its tracking period:
// the day itself for daily habits, the week's Monday for weekly habits,
// the first of the month for monthly habits. All period matching keys on
// this value, so a weekly habit toggled on a Wednesday matches the entry
// keyed to that week's Monday.
func PeriodStart(freq models.HabitFrequency, t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	switch freq {
	case models.FrequencyWeekly:
		// time.Weekday numbers Sunday as 0; shift so Monday is the start.
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case models.FrequencyMonthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}

// periodKey reduces t to its canonical period start as a calendar-date
// string. Entries decoded from a store carry a different *time.Location
// than values built from time.Now, so time.Time map keys would compare
// unequal for the same period; the date string is location-independent.
func periodKey(freq models.HabitFrequency, t time.Time) string {
	return PeriodStart(freq, t).Format("2006-01-02")
}

// periodKeys generates the habit's tracked period starts for the active
// window, oldest first, ending at the period containing now.
func periodKeys(freq models.HabitFrequency, mode ViewMode, now time.Time) []time.Time {
	var n int
	switch freq {
	case models.FrequencyWeekly:
		n = weeklyWindow
	case models.FrequencyMonthly:
		n = monthlyWindow
	default:
		n = dailyWeekWindow
		if mode == ViewMonth {
			n = dailyMonthWindow
		}
	}

	latest := PeriodStart(freq, now)
	keys := make([]time.Time, n)
	for i := 0; i < n; i++ {
		step := n - 1 - i
		switch freq {
		case models.FrequencyWeekly:
			keys[i] = latest.AddDate(0, 0, -7*step)
		case models.FrequencyMonthly:
			keys[i] = latest.AddDate(0, -step, 0)
		default:
			keys[i] = latest.AddDate(0, 0, -step)
		}
	}
	return keys
}

// ComputeHabitStats derives completion and streak state for one habit
// from its full entry snapshot. Entries for other habits are ignored, so
// callers may pass the whole collection snapshot.
func ComputeHabitStats(habit *models.Habit, entries []*models.HabitEntry, mode ViewMode, now time.Time) HabitStats {
	// Index completed state by canonical period start.
	completedByKey := make(map[string]bool)
	var own []*models.HabitEntry
	for _, e := range entries {
		if e.HabitID != habit.ID {
			continue
		}
		own = append(own, e)
		if e.Completed {
			completedByKey[periodKey(habit.Frequency, e.EntryDate)] = true
		}
	}

	keys := periodKeys(habit.Frequency, mode, now)
	stats := HabitStats{Total: len(keys)}

	for _, key := range keys {
		if completedByKey[key.Format("2006-01-02")] {
			stats.Completed++
		}
	}
	if stats.Total > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.Completed) / float64(stats.Total) * 100))
	}

	// Current streak: walk the window newest to oldest, stop at the
	// first period without a completed entry.
	for i := len(keys) - 1; i >= 0; i-- {
		if !completedByKey[keys[i].Format("2006-01-02")] {
			break
		}
		stats.CurrentStreak++
	}

	// Best streak: longest run of consecutive completed entries across
	// the habit's full history, in chronological order.
	sort.Slice(own, func(i, j int) bool { return own[i].EntryDate.Before(own[j].EntryDate) })
	run := 0
	for _, e := range own {
		if e.Completed {
			run++
			if run > stats.BestStreak {
				stats.BestStreak = run
			}
		} else {
			run = 0
		}
	}
	if stats.CurrentStreak > stats.BestStreak {
		stats.BestStreak = stats.CurrentStreak
	}

	return stats
}
