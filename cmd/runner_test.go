package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/desertthunder/lfx/internal/shared"
	"github.com/desertthunder/lfx/internal/tasks"
	tu "github.com/desertthunder/lfx/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			input := strings.NewReader("")
			history := &tu.MockHistory{}
			engine := tasks.NewDiscoveryEngine(history, nil)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "config.toml",
				History:    history,
				Engine:     engine,
				Logger:     logger,
				Output:     output,
				Input:      input,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.history != history {
				t.Error("expected history to be set")
			}
			if runner.engine != engine {
				t.Error("expected engine to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.input != input {
				t.Error("expected input to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil input uses stdin", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Input: nil,
			})

			if runner.input != os.Stdin {
				t.Error("expected input to default to os.Stdin")
			}
		})

		t.Run("derives engine from history", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				History: &tu.MockHistory{},
			})

			if runner.engine == nil {
				t.Error("expected engine to be derived from history service")
			}
		})

		t.Run("leaves engine nil without history", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.engine != nil {
				t.Error("expected engine to stay nil without a history service")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writes plain text without formatting", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("simple text")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "simple text" {
				t.Errorf("expected 'simple text', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) != 6 {
			t.Errorf("expected 6 commands, got %d", len(commands))
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("confirm", func(t *testing.T) {
		t.Run("accepts y", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output, Input: strings.NewReader("y\n")})

			ok, err := runner.confirm("Proceed? [y/N]: ")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !ok {
				t.Error("expected y to approve")
			}
			if output.String() != "Proceed? [y/N]: " {
				t.Errorf("expected prompt to be written, got %q", output.String())
			}
		})

		t.Run("accepts yes in any case", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Input: strings.NewReader("YES\n")})

			ok, err := runner.confirm("Proceed? [y/N]: ")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !ok {
				t.Error("expected YES to approve")
			}
		})

		t.Run("refuses n", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Input: strings.NewReader("n\n")})

			ok, err := runner.confirm("Proceed? [y/N]: ")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if ok {
				t.Error("expected n to refuse")
			}
		})

		t.Run("refuses blank line", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Input: strings.NewReader("\n")})

			ok, err := runner.confirm("Proceed? [y/N]: ")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if ok {
				t.Error("expected blank line to refuse")
			}
		})

		t.Run("refuses on EOF", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Input: strings.NewReader("")})

			ok, err := runner.confirm("Proceed? [y/N]: ")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if ok {
				t.Error("expected EOF to refuse")
			}
		})

		t.Run("formats the prompt", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output, Input: strings.NewReader("y\n")})

			if _, err := runner.confirm("Create a playlist from %d recommendations? [y/N]: ", 3); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if !strings.Contains(output.String(), "from 3 recommendations") {
				t.Errorf("expected formatted prompt, got %q", output.String())
			}
		})
	})

	t.Run("discoveryOpts", func(t *testing.T) {
		t.Run("uses config defaults", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Lastfm.Username = "lanalyze"
			runner := NewRunner(RunnerOpts{Config: config})

			opts := runner.discoveryOpts(0, "")

			if opts.Username != "lanalyze" {
				t.Errorf("expected username from config, got %s", opts.Username)
			}
			if opts.Period != "6month" {
				t.Errorf("expected default period, got %s", opts.Period)
			}
			if opts.HistoryLimit != 10 {
				t.Errorf("expected default history limit, got %d", opts.HistoryLimit)
			}
			if opts.SimilarLimit != 5 {
				t.Errorf("expected default similar limit, got %d", opts.SimilarLimit)
			}
			if opts.ExpandLimit != 2 {
				t.Errorf("expected default expand limit, got %d", opts.ExpandLimit)
			}
			if opts.MaxRecommendations != 10 {
				t.Errorf("expected default max recommendations, got %d", opts.MaxRecommendations)
			}
		})

		t.Run("overrides period and limit", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: shared.DefaultConfig()})

			opts := runner.discoveryOpts(3, "7day")

			if opts.Period != "7day" {
				t.Errorf("expected period override, got %s", opts.Period)
			}
			if opts.MaxRecommendations != 3 {
				t.Errorf("expected limit override, got %d", opts.MaxRecommendations)
			}
		})

		t.Run("ignores non-positive limit", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: shared.DefaultConfig()})

			opts := runner.discoveryOpts(-1, "")

			if opts.MaxRecommendations != 10 {
				t.Errorf("expected config max recommendations, got %d", opts.MaxRecommendations)
			}
		})
	})
}
