package typing

import (
	"sync"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/verte-zerg/retype/internal/model"
)

// Clock supplies the current time to a session.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the wall clock.
func WithClock(c Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

type charStat struct {
	correct      int
	incorrect    int
	latencySumMs int64
	latencyCount int64
}

// Session owns the state of one typing attempt against one reference text.
// Every mutation runs to completion under the session lock, so a concurrent
// sampler only ever observes settled state.
type Session struct {
	mu    sync.Mutex
	clock Clock

	ref      *Reference
	typed    *TypedMap
	cursor   *Cursor
	composer Composer
	cells    []Cell

	startedAt  time.Time
	finishedAt time.Time
	finished   bool
	metrics    Metrics

	charStats         map[rune]*charStat
	correctNonSpace   int
	incorrectNonSpace int
	prevCorrectAt     time.Time
}

// New starts a session for text.
func New(text string, opts ...Option) *Session {
	s := &Session{clock: systemClock{}}
	for _, opt := range opts {
		opt(s)
	}
	s.load(text)
	return s
}

// Load replaces the reference text and discards all session state.
func (s *Session) Load(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(text)
}

// Reset clears typed input, cursor, clock and metrics for the current text.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Session) load(text string) {
	s.ref = NewReference(text)
	s.typed = NewTypedMap(s.ref.Len())
	s.cursor = NewCursor(s.ref.Len())
	s.reset()
}

func (s *Session) reset() {
	s.typed.Clear()
	s.cursor.Home()
	s.composer.Discard()
	s.cells = Project(s.ref, s.typed, 0).Cells
	s.startedAt = time.Time{}
	s.finishedAt = time.Time{}
	s.finished = false
	s.metrics = BaselineMetrics
	s.charStats = map[rune]*charStat{}
	s.correctNonSpace = 0
	s.incorrectNonSpace = 0
	s.prevCorrectAt = time.Time{}
}

// Handle applies one raw input event. Events arriving after Finish are ignored.
func (s *Session) Handle(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handle(ev)
}

func (s *Session) handle(ev Event) {
	if s.finished {
		return
	}
	switch ev.Kind {
	case EventCompositionStart:
		s.composer.Start()
		return
	case EventCompositionUpdate:
		s.composer.Update(ev.Text)
		return
	case EventCompositionEnd:
		if text, ok := s.composer.End(ev.Text); ok {
			s.commitText(text)
		}
		return
	}
	// The input method owns every other key while it composes.
	if s.composer.Active() {
		return
	}
	switch ev.Kind {
	case EventInsert, EventPaste:
		// Decomposed input (e.g. a macOS clipboard) must compare against the NFC reference.
		s.commitText(norm.NFC.String(ev.Text))
	case EventSeek:
		s.cursor.Seek(ev.Index)
	case EventStep:
		s.cursor.Step(ev.Delta)
	case EventHome:
		s.cursor.Home()
	case EventEnd:
		s.cursor.End()
	case EventBackspace:
		s.backspace()
	case EventDelete:
		s.delete()
	}
}

// Insert commits directly typed text one rune at a time.
func (s *Session) Insert(text string) { s.Handle(Insert(text)) }

// Paste commits pasted text in source order.
func (s *Session) Paste(text string) { s.Handle(Paste(text)) }

// CompositionStart opens a composition.
func (s *Session) CompositionStart() { s.Handle(CompositionStart()) }

// CompositionUpdate buffers in-progress composition text.
func (s *Session) CompositionUpdate(text string) { s.Handle(CompositionUpdate(text)) }

// CompositionEnd commits the finalized composition text as a unit.
func (s *Session) CompositionEnd(text string) { s.Handle(CompositionEnd(text)) }

// Seek moves the cursor to index, clamped to the text bounds.
func (s *Session) Seek(index int) { s.Handle(Seek(index)) }

// Step moves the cursor by delta, clamped to the text bounds.
func (s *Session) Step(delta int) { s.Handle(Step(delta)) }

// Home moves the cursor to the start.
func (s *Session) Home() { s.Handle(Home()) }

// End moves the cursor past the last rune.
func (s *Session) End() { s.Handle(End()) }

// Backspace steps back and clears the position it lands on.
func (s *Session) Backspace() { s.Handle(Backspace()) }

// Delete clears the position under the cursor without moving it.
func (s *Session) Delete() { s.Handle(Delete()) }

func (s *Session) commitText(text string) {
	for _, r := range text {
		s.commit(r)
	}
}

func (s *Session) commit(r rune) {
	pos := s.cursor.Pos()
	if pos >= s.ref.Len() {
		return
	}
	want := s.ref.At(pos)
	// A mismatch involving whitespace would shift every later position.
	if r != want && (unicode.IsSpace(r) || unicode.IsSpace(want)) {
		return
	}
	now := s.clock.Now()
	if s.startedAt.IsZero() {
		s.startedAt = now
	}
	s.typed.Set(pos, r)
	s.cells[pos] = cellAt(s.ref, s.typed, pos)
	s.cursor.Seek(pos + 1)
	s.account(want, r, now)
}

func (s *Session) backspace() {
	if s.cursor.Pos() == 0 {
		return
	}
	s.cursor.Step(-1)
	s.clear(s.cursor.Pos())
}

func (s *Session) delete() {
	if s.cursor.AtEnd() {
		return
	}
	s.clear(s.cursor.Pos())
}

func (s *Session) clear(pos int) {
	if s.typed.Remove(pos) {
		s.cells[pos] = cellAt(s.ref, s.typed, pos)
	}
}

func (s *Session) account(want, typed rune, now time.Time) {
	if unicode.IsSpace(want) {
		return
	}
	entry, ok := s.charStats[want]
	if !ok {
		entry = &charStat{}
		s.charStats[want] = entry
	}
	if typed != want {
		s.incorrectNonSpace++
		entry.incorrect++
		return
	}
	s.correctNonSpace++
	entry.correct++
	if !s.prevCorrectAt.IsZero() {
		entry.latencySumMs += now.Sub(s.prevCorrectAt).Milliseconds()
		entry.latencyCount++
	}
	s.prevCorrectAt = now
}

// Sample recomputes metrics while the session is running and returns the
// latest snapshot.
func (s *Session) Sample() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running() {
		s.sample(s.clock.Now())
	}
	return s.metrics
}

func (s *Session) sample(now time.Time) {
	s.metrics = Compute(s.ref, s.typed, s.startedAt, now, s.metrics)
}

func (s *Session) running() bool {
	return !s.startedAt.IsZero() && !s.finished
}

// Metrics returns the snapshot taken by the last sample.
func (s *Session) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// Finish takes a final sample and freezes the session until Reset or Load.
func (s *Session) Finish() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return s.metrics
	}
	now := s.clock.Now()
	if !s.startedAt.IsZero() {
		s.sample(now)
	}
	s.finished = true
	s.finishedAt = now
	return s.metrics
}

// Projection returns the current render states and cursor anchor.
func (s *Session) Projection() Projection {
	s.mu.Lock()
	defer s.mu.Unlock()
	cells := make([]Cell, len(s.cells))
	copy(cells, s.cells)
	return Projection{
		Cells:  cells,
		Cursor: s.cursor.Pos(),
		AtEnd:  s.cursor.AtEnd(),
	}
}

// Cursor returns the cursor position.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor.Pos()
}

// Typed returns a copy of the typed entries keyed by position.
func (s *Session) Typed() map[int]rune {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typed.Snapshot()
}

// Attempted returns how many positions hold a typed entry.
func (s *Session) Attempted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typed.Len()
}

// Reference returns the reference text.
func (s *Session) Reference() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ref.String()
}

// Len returns the reference length in runes.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ref.Len()
}

// Started reports whether the first commit has happened.
func (s *Session) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.startedAt.IsZero()
}

// Running reports whether the session is started and not finished.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running()
}

// Finished reports whether Finish has been called.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Composing reports whether a composition is open, and its buffered text.
func (s *Session) Composing() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.composer.Pending(), s.composer.Active()
}

// Complete reports whether every position holds the expected rune. The
// engine never finishes on its own; callers use this or Progress to decide.
func (s *Session) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.typed.Len() != s.ref.Len() {
		return false
	}
	for _, c := range s.cells {
		if c.Status != Correct {
			return false
		}
	}
	return true
}

// Summary reports the session for persistence. Lang and Source are left to
// the caller.
func (s *Session) Summary() (model.SessionStats, []model.CharStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	endedAt := s.finishedAt
	if !s.finished {
		endedAt = s.clock.Now()
	}
	var duration int64
	if !s.startedAt.IsZero() {
		duration = endedAt.Sub(s.startedAt).Milliseconds()
	}
	stats := model.SessionStats{
		StartedAt:         s.startedAt,
		EndedAt:           endedAt,
		TextLen:           s.ref.Len(),
		WPM:               s.metrics.WPM,
		Accuracy:          s.metrics.Accuracy,
		Errors:            s.metrics.Errors,
		Progress:          s.metrics.Progress,
		CorrectNonSpace:   s.correctNonSpace,
		IncorrectNonSpace: s.incorrectNonSpace,
		DurationMs:        duration,
	}
	chars := make([]model.CharStats, 0, len(s.charStats))
	for ch, entry := range s.charStats {
		chars = append(chars, model.CharStats{
			Char:         string(ch),
			Correct:      entry.correct,
			Incorrect:    entry.incorrect,
			LatencySumMs: entry.latencySumMs,
			LatencyCount: entry.latencyCount,
		})
	}
	return stats, chars
}
