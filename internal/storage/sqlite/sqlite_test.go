package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentdash/agentdash/internal/models"
	"github.com/agentdash/agentdash/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "agentdash-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestTable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	habits := NewTable[*models.Habit](store, storage.TableHabits)
	const owner = "owner-1"

	t.Run("Insert generates ID and timestamp", func(t *testing.T) {
		habit, err := habits.Insert(ctx, owner, &models.Habit{
			Name:      "Drink water",
			Frequency: models.FrequencyDaily,
			Target:    8,
		})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		if habit.ID == "" {
			t.Error("Expected habit ID to be generated")
		}
		if habit.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("List returns records oldest first", func(t *testing.T) {
		store := newTestStore(t)
		habits := NewTable[*models.Habit](store, storage.TableHabits)

		for i, name := range []string{"Read", "Run", "Sleep early"} {
			_, err := habits.Insert(ctx, owner, &models.Habit{
				Name:      name,
				Frequency: models.FrequencyDaily,
				CreatedAt: int64(1000 + i),
			})
			if err != nil {
				t.Fatalf("Insert failed: %v", err)
			}
		}

		recs, err := habits.List(ctx, owner)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(recs) != 3 {
			t.Fatalf("Expected 3 habits, got %d", len(recs))
		}
		for i, want := range []string{"Read", "Run", "Sleep early"} {
			if recs[i].Name != want {
				t.Errorf("Habit %d: got %q, want %q", i, recs[i].Name, want)
			}
		}
	})

	t.Run("List is scoped to owner", func(t *testing.T) {
		_, err := habits.Insert(ctx, "someone-else", &models.Habit{
			Name:      "Meditate",
			Frequency: models.FrequencyDaily,
		})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}

		recs, err := habits.List(ctx, "someone-else")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(recs) != 1 {
			t.Fatalf("Expected 1 habit for owner, got %d", len(recs))
		}
		if recs[0].Name != "Meditate" {
			t.Errorf("Got %q, want %q", recs[0].Name, "Meditate")
		}
	})

	t.Run("Update replaces the stored record", func(t *testing.T) {
		habit, err := habits.Insert(ctx, owner, &models.Habit{
			Name:      "Stretch",
			Frequency: models.FrequencyWeekly,
			Target:    2,
		})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}

		habit.Target = 3
		if _, err := habits.Update(ctx, owner, habit.ID, habit); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		recs, err := habits.List(ctx, owner)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		var got *models.Habit
		for _, rec := range recs {
			if rec.ID == habit.ID {
				got = rec
			}
		}
		if got == nil {
			t.Fatal("Updated habit not found in list")
		}
		if got.Target != 3 {
			t.Errorf("Target: got %d, want 3", got.Target)
		}
	})

	t.Run("Update of unknown ID returns ErrNotFound", func(t *testing.T) {
		_, err := habits.Update(ctx, owner, "nonexistent-id", &models.Habit{
			Name:      "Ghost",
			Frequency: models.FrequencyDaily,
		})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Update scoped to wrong owner returns ErrNotFound", func(t *testing.T) {
		habit, err := habits.Insert(ctx, owner, &models.Habit{
			Name:      "Journal",
			Frequency: models.FrequencyDaily,
		})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		_, err = habits.Update(ctx, "someone-else", habit.ID, habit)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Remove deletes the record", func(t *testing.T) {
		habit, err := habits.Insert(ctx, owner, &models.Habit{
			Name:      "Floss",
			Frequency: models.FrequencyDaily,
		})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}

		if err := habits.Remove(ctx, owner, habit.ID); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if err := habits.Remove(ctx, owner, habit.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second remove, got %v", err)
		}
	})

	t.Run("Round-trips time and pointer fields", func(t *testing.T) {
		expenses := NewTable[*models.Expense](store, storage.TableExpenses)

		inserted, err := expenses.Insert(ctx, owner, &models.Expense{
			Category:    "Food",
			Amount:      42.5,
			Description: "Groceries",
			Date:        mustParse(t, "2026-08-15T00:00:00Z"),
		})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}

		recs, err := expenses.List(ctx, owner)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(recs) != 1 {
			t.Fatalf("Expected 1 expense, got %d", len(recs))
		}
		got := recs[0]
		if got.Amount != 42.5 {
			t.Errorf("Amount: got %f, want 42.5", got.Amount)
		}
		if !got.Date.Equal(inserted.Date) {
			t.Errorf("Date: got %v, want %v", got.Date, inserted.Date)
		}
	})
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateUser and lookups", func(t *testing.T) {
		user := models.NewUser("alice@example.com", "Alice", "hash")
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if byEmail == nil || byEmail.ID != user.ID {
			t.Errorf("GetUserByEmail: got %+v, want ID %s", byEmail, user.ID)
		}

		byID, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if byID == nil || byID.Email != user.Email {
			t.Errorf("GetUserByID: got %+v, want email %s", byID, user.Email)
		}
	})

	t.Run("Unknown user returns nil without error", func(t *testing.T) {
		user, err := store.GetUserByEmail(ctx, "nobody@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if user != nil {
			t.Errorf("Expected nil user, got %+v", user)
		}
	})

	t.Run("Duplicate email is rejected", func(t *testing.T) {
		first := models.NewUser("bob@example.com", "Bob", "hash")
		if err := store.CreateUser(ctx, first); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		dup := models.NewUser("bob@example.com", "Bobby", "hash")
		if err := store.CreateUser(ctx, dup); err == nil {
			t.Error("Expected error for duplicate email, got nil")
		}
	})
}

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("Failed to parse time %q: %v", value, err)
	}
	return parsed
}
