package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"podsift/internal/filter"
	"podsift/internal/shared"
	"podsift/internal/tasks"
	tu "podsift/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			spotify := &tu.MockEpisodeService{}

			runner := NewRunner(RunnerOpts{
				Config:  config,
				Logger:  logger,
				Output:  output,
				Spotify: spotify,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.spotify != spotify {
				t.Error("expected spotify to be set")
			}
			if runner.engine == nil {
				t.Error("expected engine to be constructed")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("compact", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]int{"n": 1}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "{\"n\":1}\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("pretty", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]int{"n": 1}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), "\n  ") {
				t.Errorf("expected indented output, got %q", output.String())
			}
		})

		t.Run("write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writeJSON(map[string]int{"n": 1}, false); err == nil {
				t.Error("expected write error")
			}
		})

		t.Run("newline write failure", func(t *testing.T) {
			lw := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &lw})

			if err := runner.writeJSON(map[string]int{"n": 1}, false); err == nil {
				t.Error("expected error when newline write fails")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("count: %d\n", 3); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "count: 3\n" {
			t.Errorf("unexpected output %q", output.String())
		}

		t.Run("writePlainln wraps with newlines", func(t *testing.T) {
			output.Reset()
			if err := runner.writePlainln("done"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "\ndone\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})
	})

	t.Run("renderTable", func(t *testing.T) {
		t.Run("empty headers", func(t *testing.T) {
			if got := renderTable(nil, nil, nil); got != "" {
				t.Errorf("expected empty output, got %q", got)
			}
		})

		t.Run("renders headers and rows", func(t *testing.T) {
			out := renderTable(
				[]string{"Name", "Count"},
				[][]string{{"interviews", "2"}, {"news", "0"}},
				[]columnAlignment{alignLeft, alignRight},
			)

			if !strings.Contains(out, "NAME") && !strings.Contains(out, "Name") {
				t.Errorf("expected header in output:\n%s", out)
			}
			if !strings.Contains(out, "interviews") {
				t.Errorf("expected row in output:\n%s", out)
			}
		})

		t.Run("pads short rows", func(t *testing.T) {
			out := renderTable(
				[]string{"A", "B", "C"},
				[][]string{{"only"}},
				nil,
			)
			if !strings.Contains(out, "only") {
				t.Errorf("expected short row rendered:\n%s", out)
			}
		})
	})

	t.Run("writeSummaryTable", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		summary := &tasks.RunSummary{
			FiltersTotal: 3,
			TotalMatched: 2,
			TotalAdded:   1,
			Results: []filter.Result{
				{Name: "ok-filter", ShowName: "Tech Talks", Matched: 2, Added: 1},
				{Name: "skipped-filter", Skipped: true},
				{Name: "failed-filter", Failed: true, Err: "boom"},
			},
		}

		runner.writeSummaryTable(summary)
		out := output.String()

		if !strings.Contains(out, "ok-filter") {
			t.Errorf("expected filter row:\n%s", out)
		}
		if !strings.Contains(out, "skipped") {
			t.Errorf("expected skipped status:\n%s", out)
		}
		if !strings.Contains(out, "failed: boom") {
			t.Errorf("expected failure status:\n%s", out)
		}
		if !strings.Contains(out, "Total: 2 matched, 1 added across 3 filter(s)") {
			t.Errorf("expected totals line:\n%s", out)
		}
	})
}
