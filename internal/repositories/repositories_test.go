package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"podsift/internal/models"
	"podsift/internal/shared"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestTokenRepository(t *testing.T) {
	t.Run("Save And Get", func(t *testing.T) {
		repo := NewTokenRepository(newTestDB(t))

		token := &oauth2.Token{
			AccessToken:  "access",
			RefreshToken: "refresh",
			TokenType:    "Bearer",
			Expiry:       time.Now().Add(time.Hour),
		}

		if err := repo.Save("Spotify", token); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		loaded, err := repo.Get("Spotify")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if loaded.AccessToken != "access" || loaded.RefreshToken != "refresh" {
			t.Errorf("unexpected token fields: %+v", loaded)
		}
	})

	t.Run("Upsert Preserves Refresh Token", func(t *testing.T) {
		repo := NewTokenRepository(newTestDB(t))

		first := &oauth2.Token{AccessToken: "a1", RefreshToken: "r1"}
		if err := repo.Save("Spotify", first); err != nil {
			t.Fatalf("failed to save first token: %v", err)
		}

		// Refresh responses often omit the refresh token.
		second := &oauth2.Token{AccessToken: "a2"}
		if err := repo.Save("Spotify", second); err != nil {
			t.Fatalf("failed to save second token: %v", err)
		}

		loaded, err := repo.Get("Spotify")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if loaded.AccessToken != "a2" {
			t.Errorf("expected updated access token, got %q", loaded.AccessToken)
		}
		if loaded.RefreshToken != "r1" {
			t.Errorf("expected preserved refresh token, got %q", loaded.RefreshToken)
		}
	})

	t.Run("Save Rejects Empty Token", func(t *testing.T) {
		repo := NewTokenRepository(newTestDB(t))

		if err := repo.Save("Spotify", nil); err == nil {
			t.Error("expected error for nil token")
		}
		if err := repo.Save("Spotify", &oauth2.Token{}); err == nil {
			t.Error("expected error for empty access token")
		}
	})

	t.Run("Get Missing Service", func(t *testing.T) {
		repo := NewTokenRepository(newTestDB(t))

		if _, err := repo.Get("Spotify"); !errors.Is(err, sql.ErrNoRows) {
			t.Errorf("expected sql.ErrNoRows, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewTokenRepository(newTestDB(t))

		if err := repo.Save("Spotify", &oauth2.Token{AccessToken: "a"}); err != nil {
			t.Fatalf("failed to save token: %v", err)
		}
		if err := repo.Delete("Spotify"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := repo.Get("Spotify"); err == nil {
			t.Error("expected token to be gone")
		}
	})
}

func testRun(id string) models.RunRecord {
	started := time.Now().Add(-time.Minute)
	return models.RunRecord{
		ID:               id,
		StartedAt:        started,
		FinishedAt:       started.Add(30 * time.Second),
		FiltersTotal:     2,
		FiltersProcessed: 2,
		TotalMatched:     3,
		TotalAdded:       2,
		Filters: []models.FilterOutcome{
			{Position: 0, Name: "interviews", ShowName: "Tech Talks", Matched: 2, Added: 2},
			{Position: 1, Name: "news", Skipped: true},
		},
	}
}

func TestRunRepository(t *testing.T) {
	t.Run("Record And Get", func(t *testing.T) {
		repo := NewRunRepository(newTestDB(t))
		run := testRun(shared.GenerateID())

		if err := repo.Record(run); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		loaded, err := repo.Get(run.ID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if loaded.TotalMatched != 3 || loaded.TotalAdded != 2 {
			t.Errorf("unexpected totals: matched=%d added=%d", loaded.TotalMatched, loaded.TotalAdded)
		}
		if len(loaded.Filters) != 2 {
			t.Fatalf("expected 2 filter outcomes, got %d", len(loaded.Filters))
		}
		if loaded.Filters[0].Name != "interviews" || loaded.Filters[1].Name != "news" {
			t.Error("expected outcomes ordered by position")
		}
		if !loaded.Filters[1].Skipped {
			t.Error("expected second outcome marked skipped")
		}
	})

	t.Run("Record Validates", func(t *testing.T) {
		repo := NewRunRepository(newTestDB(t))

		if err := repo.Record(models.RunRecord{}); err == nil {
			t.Error("expected validation error for empty record")
		}
	})

	t.Run("ListRecent Orders Newest First", func(t *testing.T) {
		repo := NewRunRepository(newTestDB(t))

		older := testRun(shared.GenerateID())
		older.StartedAt = time.Now().Add(-2 * time.Hour)
		newer := testRun(shared.GenerateID())

		if err := repo.Record(older); err != nil {
			t.Fatalf("failed to record older run: %v", err)
		}
		if err := repo.Record(newer); err != nil {
			t.Fatalf("failed to record newer run: %v", err)
		}

		runs, err := repo.ListRecent(10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
		if runs[0].ID != newer.ID {
			t.Error("expected newest run first")
		}

		t.Run("Respects Limit", func(t *testing.T) {
			runs, err := repo.ListRecent(1)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(runs) != 1 {
				t.Errorf("expected 1 run, got %d", len(runs))
			}
		})
	})
}
