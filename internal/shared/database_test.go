package shared

import (
	"errors"
	"testing"
)

func TestDatabase(t *testing.T) {
	t.Run("NewDatabase Rejects Empty Path", func(t *testing.T) {
		if _, err := NewDatabase(""); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("ConfigureDatabase", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		ConfigureDatabase(db, 5, 2)
		if got := db.Stats().MaxOpenConnections; got != 5 {
			t.Errorf("expected 5 max open connections, got %d", got)
		}

		t.Run("Ignores Non-Positive Limits", func(t *testing.T) {
			ConfigureDatabase(db, 0, -1)
			if got := db.Stats().MaxOpenConnections; got != 5 {
				t.Errorf("expected limits unchanged, got %d", got)
			}
		})
	})
}
