package filter

import "testing"

func TestMatcher(t *testing.T) {
	t.Run("Case Insensitive Match", func(t *testing.T) {
		m := NewMatcher([]string{"interview"}, nil)

		if !m.Matches("INTERVIEW: a conversation") {
			t.Error("expected case-insensitive match")
		}
		if !m.Matches("An Interview With Someone") {
			t.Error("expected substring match anywhere in title")
		}
		if m.Matches("Weekly news roundup") {
			t.Error("expected no match for unrelated title")
		}
	})

	t.Run("Any Pattern Matches", func(t *testing.T) {
		m := NewMatcher([]string{"^Bonus:", "mailbag"}, nil)

		if !m.Matches("Bonus: extra content") {
			t.Error("expected anchored pattern to match")
		}
		if !m.Matches("The April Mailbag") {
			t.Error("expected second pattern to match")
		}
		if m.Matches("Regular episode 42") {
			t.Error("expected no match")
		}
	})

	t.Run("Invalid Pattern Skipped", func(t *testing.T) {
		m := NewMatcher([]string{"[unclosed", "valid"}, nil)

		if m.Len() != 1 {
			t.Errorf("expected 1 compiled pattern, got %d", m.Len())
		}
		if !m.Matches("a valid title") {
			t.Error("expected surviving pattern to still match")
		}
	})

	t.Run("No Patterns Never Matches", func(t *testing.T) {
		m := NewMatcher(nil, nil)

		if m.Len() != 0 {
			t.Errorf("expected 0 compiled patterns, got %d", m.Len())
		}
		if m.Matches("anything") {
			t.Error("expected no match with empty pattern set")
		}
	})

	t.Run("All Invalid Never Matches", func(t *testing.T) {
		m := NewMatcher([]string{"[", "("}, nil)

		if m.Matches("anything") {
			t.Error("expected no match when every pattern failed to compile")
		}
	})
}
