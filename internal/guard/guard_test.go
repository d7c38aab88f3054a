package guard

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
)

func newTestGuard(t *testing.T, rulepacksDir string) *ContentGuard {
	t.Helper()
	cfg := &config.Config{
		Guard: config.GuardConfig{
			Enabled:         true,
			RulepacksDir:    rulepacksDir,
			CacheMaxSize:    10,
			CacheTTLSeconds: 60,
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo}))
	guard, err := NewGuard(cfg, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return guard
}

func TestGuardWordBoundary(t *testing.T) {
	guard := newTestGuard(t, "")

	tests := []struct {
		input   string
		blocked bool
	}{
		{"I love classic board games", false},
		{"let's play a passage puzzle", false},
		{"ass", true},
		{"you are an ASS!", true},
		{"what the shit", true},
		{"hello there", false},
		{"a​ss", true},
		{"аss", true}, // Cyrillic 'а'
	}

	for _, tc := range tests {
		if got := guard.IsBlocked(tc.input); got != tc.blocked {
			t.Errorf("IsBlocked(%q) = %v, want %v", tc.input, got, tc.blocked)
		}
	}
}

func TestGuardEvaluateAndEnsureSafe(t *testing.T) {
	dir := t.TempDir()
	rulePath := filepath.Join(dir, "extra.yml")
	data := []byte("version: 1\nrules:\n  - id: extra\n    type: words\n    words: [meanie]\n")
	if err := os.WriteFile(rulePath, data, 0o644); err != nil {
		t.Fatalf("failed to write rulepack: %v", err)
	}

	guard := newTestGuard(t, dir)

	evaluation := guard.Evaluate("you meanie")
	if !evaluation.Blocked() {
		t.Fatalf("expected blocked evaluation")
	}
	if terms := evaluation.Terms(); len(terms) != 1 || terms[0] != "meanie" {
		t.Fatalf("unexpected terms: %v", terms)
	}

	err := guard.EnsureSafe("you meanie")
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected blocked error, got %v", err)
	}

	if guard.Evaluate("hello").Blocked() {
		t.Fatalf("expected safe evaluation")
	}
}

func TestGuardDisabledKeepsBuiltinWords(t *testing.T) {
	dir := t.TempDir()
	data := []byte("version: 1\nrules:\n  - id: extra\n    type: words\n    words: [meanie]\n")
	if err := os.WriteFile(filepath.Join(dir, "extra.yml"), data, 0o644); err != nil {
		t.Fatalf("failed to write rulepack: %v", err)
	}

	cfg := &config.Config{Guard: config.GuardConfig{Enabled: false, RulepacksDir: dir, CacheMaxSize: 1, CacheTTLSeconds: 1}}
	guard, err := NewGuard(cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !guard.IsBlocked("ass") {
		t.Fatalf("builtin words must stay blocked when rulepacks are disabled")
	}
	if guard.IsBlocked("classic") {
		t.Fatalf("word boundary must hold when rulepacks are disabled")
	}
	if guard.IsBlocked("you meanie") {
		t.Fatalf("rulepack words must not load when disabled")
	}
}

func TestTrimForLogKeepsRunes(t *testing.T) {
	input := strings.Repeat("가", 60)
	got := trimForLog(input)
	if !utf8.ValidString(got) {
		t.Fatalf("expected valid utf-8, got %q", got)
	}
	if utf8.RuneCountInString(got) != 50 {
		t.Fatalf("expected 50 runes, got %d", utf8.RuneCountInString(got))
	}
}
