package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/retype/internal/model"
)

type fakeSource struct {
	sessions []model.SessionAggregate
	chars    []model.CharAggregate
	err      error
}

func (f *fakeSource) ListSessions(context.Context, model.StatsConfig) ([]model.SessionAggregate, error) {
	return f.sessions, f.err
}

func (f *fakeSource) ListCharAggregatesForSessions(context.Context, []int64) ([]model.CharAggregate, error) {
	return f.chars, nil
}

func (f *fakeSource) ListCharStatsBySession(context.Context, []int64) (map[int64]map[string]model.CharAggregate, error) {
	return map[int64]map[string]model.CharAggregate{
		1: {" ": {Char: " ", Correct: 1, Incorrect: 3}},
		2: {" ": {Char: " ", Correct: 4}},
	}, nil
}

func sampleSource() *fakeSource {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &fakeSource{
		sessions: []model.SessionAggregate{
			{SessionID: 1, EndedAt: base, Source: "generated:en", WPM: 40, Accuracy: 95, DurationMs: 30000},
			{SessionID: 2, EndedAt: base.Add(time.Hour), Source: "poem", WPM: 60, Accuracy: 98, DurationMs: 45000},
		},
		chars: []model.CharAggregate{
			{Char: "a", Correct: 10},
			{Char: " ", Correct: 5, Incorrect: 5},
		},
	}
}

func TestSessionRowsNewestFirst(t *testing.T) {
	rows := sessionRows(sampleSource().sessions)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][1] != "poem" || rows[0][2] != "60" || rows[0][6] != "45s" {
		t.Fatalf("unexpected first row: %v", rows[0])
	}
}

func TestCharRowsWeakestFirst(t *testing.T) {
	trends := map[string][]float64{" ": {25, 100}}
	rows := charRows(sampleSource().chars, trends)
	if rows[0][0] != "<space>" || rows[0][1] != "50.00%" {
		t.Fatalf("expected space first, got %v", rows[0])
	}
	if rows[0][5] != " @" {
		t.Fatalf("expected rising trend, got %q", rows[0][5])
	}
	if rows[1][5] != "" {
		t.Fatalf("expected empty trend for a, got %q", rows[1][5])
	}
}

func TestViewShowsSummaryAndTabs(t *testing.T) {
	m := NewModel(sampleSource(), model.StatsConfig{})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	view := m.View()
	for _, want := range []string{"2 sessions", "avg 50.0 WPM", "best 60 WPM", "WPM "} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.activeTab != tabChars {
		t.Fatalf("expected char tab after tab key")
	}
	if !strings.Contains(m.View(), "<space>") {
		t.Fatalf("expected char table in view")
	}
}

func TestViewReportsLoadError(t *testing.T) {
	m := NewModel(&fakeSource{err: errors.New("boom")}, model.StatsConfig{})
	if !strings.Contains(m.View(), "Failed to load stats: boom") {
		t.Fatalf("expected error in view, got:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdefgh", 6); got != "abc..." {
		t.Fatalf("unexpected truncate: %q", got)
	}
	if got := truncate("abc", 6); got != "abc" {
		t.Fatalf("unexpected truncate: %q", got)
	}
}
