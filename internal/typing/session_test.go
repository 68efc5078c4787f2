package typing

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestSession(text string) (*Session, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	return New(text, WithClock(clock)), clock
}

func TestCommitVerbatimIsPerfect(t *testing.T) {
	s, clock := newTestSession("hi there")
	for _, r := range "hi there" {
		s.Insert(string(r))
	}
	clock.Advance(48 * time.Second)
	got := s.Sample()
	want := Metrics{WPM: 10, Accuracy: 100, Errors: 0, Progress: 100}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("metrics mismatch (-want +got):\n%s", diff)
	}
	if !s.Complete() {
		t.Fatalf("expected session to be complete")
	}
}

func TestWhitespaceGuard(t *testing.T) {
	s, _ := newTestSession("a b")
	s.Insert("a")
	s.Insert("x")
	if got := s.Cursor(); got != 1 {
		t.Fatalf("expected cursor 1, got %d", got)
	}
	if diff := cmp.Diff(map[int]rune{0: 'a'}, s.Typed()); diff != "" {
		t.Fatalf("typed mismatch (-want +got):\n%s", diff)
	}

	s.Seek(0)
	s.Insert(" ")
	if got := s.Cursor(); got != 0 {
		t.Fatalf("expected mismatched space to be dropped, cursor %d", got)
	}
	if diff := cmp.Diff(map[int]rune{0: 'a'}, s.Typed()); diff != "" {
		t.Fatalf("typed mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchingWhitespaceCommits(t *testing.T) {
	s, _ := newTestSession("a\tb\nc")
	s.Paste("a\tb\nc")
	if got := s.Cursor(); got != 5 {
		t.Fatalf("expected cursor 5, got %d", got)
	}
	if got := s.Sample().Errors; got != 0 {
		t.Fatalf("expected no errors, got %d", got)
	}
}

func TestErrorVisibility(t *testing.T) {
	s, _ := newTestSession("cat")
	s.Insert("c")
	s.Insert("o")
	s.Insert("t")
	if diff := cmp.Diff(map[int]rune{0: 'c', 1: 'o', 2: 't'}, s.Typed()); diff != "" {
		t.Fatalf("typed mismatch (-want +got):\n%s", diff)
	}
	m := s.Sample()
	if m.Errors != 1 || m.Accuracy != 67 {
		t.Fatalf("expected 1 error at 67%%, got %+v", m)
	}
}

func TestScenarioHiThere(t *testing.T) {
	s, clock := newTestSession("hi there")
	s.Insert("h")
	s.Insert("i")
	s.Insert(" ")
	clock.Advance(time.Second)
	m := s.Sample()
	if s.Cursor() != 3 || len(s.Typed()) != 3 || m.Errors != 0 {
		t.Fatalf("unexpected state after 'hi ': cursor=%d typed=%v metrics=%+v", s.Cursor(), s.Typed(), m)
	}

	s.Insert("x")
	m = s.Sample()
	if s.Cursor() != 4 {
		t.Fatalf("expected cursor 4, got %d", s.Cursor())
	}
	if r, ok := s.Typed()[3]; !ok || r != 'x' {
		t.Fatalf("expected x recorded at 3, got %v", s.Typed())
	}
	if m.Errors != 1 || m.Accuracy != 75 {
		t.Fatalf("expected 1 error at 75%%, got %+v", m)
	}

	s.Backspace()
	m = s.Sample()
	if s.Cursor() != 3 {
		t.Fatalf("expected cursor 3, got %d", s.Cursor())
	}
	if _, ok := s.Typed()[3]; ok {
		t.Fatalf("expected entry at 3 to be cleared")
	}
	if m.Errors != 0 || m.Accuracy != 100 {
		t.Fatalf("expected clean metrics, got %+v", m)
	}
}

func TestBackspaceUndoesCommit(t *testing.T) {
	s, _ := newTestSession("typing")
	s.Insert("typ")
	before := s.Typed()
	cursor := s.Cursor()
	s.Insert("q")
	s.Backspace()
	if s.Cursor() != cursor {
		t.Fatalf("expected cursor %d, got %d", cursor, s.Cursor())
	}
	if diff := cmp.Diff(before, s.Typed()); diff != "" {
		t.Fatalf("typed mismatch (-want +got):\n%s", diff)
	}
}

func TestBackspaceAtStartIsNoop(t *testing.T) {
	s, _ := newTestSession("ab")
	s.Backspace()
	if s.Cursor() != 0 || len(s.Typed()) != 0 {
		t.Fatalf("expected untouched state")
	}
}

func TestDeleteKeepsCursor(t *testing.T) {
	s, _ := newTestSession("abc")
	s.Insert("abc")
	s.Seek(1)
	s.Delete()
	if s.Cursor() != 1 {
		t.Fatalf("expected cursor 1, got %d", s.Cursor())
	}
	if diff := cmp.Diff(map[int]rune{0: 'a', 2: 'c'}, s.Typed()); diff != "" {
		t.Fatalf("typed mismatch (-want +got):\n%s", diff)
	}
	s.End()
	s.Delete()
	if len(s.Typed()) != 2 {
		t.Fatalf("expected delete at end to be a no-op")
	}
}

func TestSeekEditAndReturnLeavesHoles(t *testing.T) {
	s, _ := newTestSession("abcdef")
	s.Insert("abcd")
	s.Seek(1)
	s.Delete()
	s.Seek(5)
	s.Insert("f")
	if diff := cmp.Diff(map[int]rune{0: 'a', 2: 'c', 3: 'd', 5: 'f'}, s.Typed()); diff != "" {
		t.Fatalf("typed mismatch (-want +got):\n%s", diff)
	}
	if s.Cursor() != 6 {
		t.Fatalf("expected cursor 6, got %d", s.Cursor())
	}
	if got := s.Sample().Progress; got != 67 {
		t.Fatalf("expected progress 67, got %d", got)
	}
}

func TestSeekIsIdempotent(t *testing.T) {
	a, _ := newTestSession("hello")
	b, _ := newTestSession("hello")
	a.Insert("he")
	b.Insert("he")
	a.Seek(4)
	b.Seek(4)
	b.Seek(4)
	if a.Cursor() != b.Cursor() {
		t.Fatalf("cursor differs: %d vs %d", a.Cursor(), b.Cursor())
	}
	if diff := cmp.Diff(a.Projection(), b.Projection()); diff != "" {
		t.Fatalf("projection differs (-once +twice):\n%s", diff)
	}
}

func TestCursorStaysInBounds(t *testing.T) {
	s, _ := newTestSession("abc")
	events := []Event{
		Step(-5), Seek(-1), Step(1), Seek(99), Insert("zz"), Step(3),
		Seek(2), Insert("xyz"), Step(-10), Home(), End(), Step(1), Backspace(),
	}
	for _, ev := range events {
		s.Handle(ev)
		if c := s.Cursor(); c < 0 || c > 3 {
			t.Fatalf("cursor %d out of bounds after %s", c, ev.Kind)
		}
	}
}

func TestCommitPastEndIsDropped(t *testing.T) {
	s, _ := newTestSession("ab")
	s.Paste("abcd")
	if s.Cursor() != 2 || len(s.Typed()) != 2 {
		t.Fatalf("expected overflow to be dropped, cursor=%d typed=%v", s.Cursor(), s.Typed())
	}
}

func TestDecomposedPasteMatchesComposedReference(t *testing.T) {
	for name, feed := range map[string]func(*Session, string){
		"paste":       (*Session).Paste,
		"insert":      (*Session).Insert,
		"composition": (*Session).CompositionEnd,
	} {
		s, _ := newTestSession("caf\u00e9")
		feed(s, "cafe\u0301")
		want := map[int]rune{0: 'c', 1: 'a', 2: 'f', 3: '\u00e9'}
		if diff := cmp.Diff(want, s.Typed()); diff != "" {
			t.Fatalf("%s: typed mismatch (-want +got):\n%s", name, diff)
		}
		if m := s.Sample(); m.Errors != 0 || m.Progress != 100 || !s.Complete() {
			t.Fatalf("%s: expected a clean commit, got %+v", name, m)
		}
	}
}

func TestEmptyReference(t *testing.T) {
	s, _ := newTestSession("")
	for _, ev := range []Event{Insert("a"), Paste("bc"), Step(1), Seek(3), End(), Backspace(), Delete()} {
		s.Handle(ev)
	}
	if s.Cursor() != 0 || s.Started() {
		t.Fatalf("expected no-op session, cursor=%d started=%v", s.Cursor(), s.Started())
	}
	if diff := cmp.Diff(BaselineMetrics, s.Sample()); diff != "" {
		t.Fatalf("metrics mismatch (-want +got):\n%s", diff)
	}
	p := s.Projection()
	if len(p.Cells) != 0 || !p.AtEnd {
		t.Fatalf("unexpected projection: %+v", p)
	}
}

func TestClockStartsOnFirstCommit(t *testing.T) {
	s, clock := newTestSession("abcd")
	s.Step(1)
	s.Insert(" ")
	if s.Started() {
		t.Fatalf("dropped input must not start the clock")
	}
	clock.Advance(time.Minute)
	s.Insert("b")
	if !s.Started() {
		t.Fatalf("expected clock to start")
	}
	if got := s.Sample().WPM; got != 0 {
		t.Fatalf("expected unchanged wpm with no elapsed time, got %d", got)
	}
	clock.Advance(30 * time.Second)
	if got := s.Sample().WPM; got != 2 {
		t.Fatalf("expected 2 wpm, got %d", got)
	}
}

func TestResetClearsEverything(t *testing.T) {
	s, _ := newTestSession("abc")
	s.CompositionStart()
	s.CompositionUpdate("x")
	s.CompositionEnd("ab")
	s.CompositionStart()
	s.Sample()
	s.Reset()
	if s.Started() || s.Cursor() != 0 || len(s.Typed()) != 0 {
		t.Fatalf("expected clean session after reset")
	}
	if _, composing := s.Composing(); composing {
		t.Fatalf("expected composition to be discarded")
	}
	if diff := cmp.Diff(BaselineMetrics, s.Metrics()); diff != "" {
		t.Fatalf("metrics mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Project(NewReference("abc"), NewTypedMap(3), 0), s.Projection()); diff != "" {
		t.Fatalf("projection mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadReplacesReference(t *testing.T) {
	s, _ := newTestSession("abc")
	s.Insert("ab")
	s.Load("wxyz")
	if s.Reference() != "wxyz" || s.Len() != 4 {
		t.Fatalf("expected new reference, got %q", s.Reference())
	}
	if s.Started() || s.Cursor() != 0 || len(s.Typed()) != 0 {
		t.Fatalf("expected fresh state after load")
	}
	s.End()
	if s.Cursor() != 4 {
		t.Fatalf("expected cursor bound to new length, got %d", s.Cursor())
	}
}

func TestFinishFreezesSession(t *testing.T) {
	s, clock := newTestSession("ab")
	s.Insert("ab")
	clock.Advance(6 * time.Second)
	final := s.Finish()
	if final.WPM != 20 || final.Progress != 100 {
		t.Fatalf("unexpected final metrics: %+v", final)
	}
	s.Backspace()
	clock.Advance(time.Minute)
	if s.Cursor() != 2 || s.Sample() != final {
		t.Fatalf("expected finished session to ignore input and sampling")
	}
	if s.Running() {
		t.Fatalf("expected finished session not to be running")
	}
}

func TestProgressAtEndDoesNotImplyCorrect(t *testing.T) {
	s, _ := newTestSession("ab")
	s.Insert("ax")
	if s.Sample().Progress != 100 {
		t.Fatalf("expected full progress")
	}
	if s.Complete() {
		t.Fatalf("session with errors must not be complete")
	}
}

func TestSummaryCountsKeystrokes(t *testing.T) {
	s, clock := newTestSession("aa b")
	s.Insert("a")
	clock.Advance(200 * time.Millisecond)
	s.Insert("x")
	s.Backspace()
	clock.Advance(300 * time.Millisecond)
	s.Insert("a")
	s.Insert(" ")
	s.Insert("b")
	s.Finish()

	stats, chars := s.Summary()
	if stats.CorrectNonSpace != 3 || stats.IncorrectNonSpace != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.DurationMs != 500 || stats.TextLen != 4 {
		t.Fatalf("unexpected duration or length: %+v", stats)
	}
	byChar := map[string][2]int{}
	for _, c := range chars {
		byChar[c.Char] = [2]int{c.Correct, c.Incorrect}
	}
	if diff := cmp.Diff(map[string][2]int{"a": {2, 1}, "b": {1, 0}}, byChar); diff != "" {
		t.Fatalf("char stats mismatch (-want +got):\n%s", diff)
	}
}
