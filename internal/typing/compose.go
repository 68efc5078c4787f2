package typing

import "golang.org/x/text/unicode/norm"

// ComposeState is the state of a multi-step input composition.
type ComposeState int

const (
	// Idle means no composition is open.
	Idle ComposeState = iota
	// Composing means the input method is building a result.
	Composing
)

// String implements fmt.Stringer.
func (s ComposeState) String() string {
	if s == Composing {
		return "composing"
	}
	return "idle"
}

// Composer buffers in-progress composition text. Nothing it holds reaches
// the typed map until the composition ends.
type Composer struct {
	state   ComposeState
	pending string
}

// State returns the current composition state.
func (c *Composer) State() ComposeState {
	return c.state
}

// Active reports whether a composition is open.
func (c *Composer) Active() bool {
	return c.state == Composing
}

// Pending returns the buffered, not yet committed text.
func (c *Composer) Pending() string {
	return c.pending
}

// Start opens a composition. Starting an open composition restarts its buffer.
func (c *Composer) Start() {
	c.state = Composing
	c.pending = ""
}

// Update replaces the buffered text. Ignored when idle.
func (c *Composer) Update(text string) {
	if c.state != Composing {
		return
	}
	c.pending = text
}

// End closes the composition and returns the finalized text to commit.
// An empty final text cancels the composition.
func (c *Composer) End(text string) (string, bool) {
	c.state = Idle
	c.pending = ""
	if text == "" {
		return "", false
	}
	return norm.NFC.String(text), true
}

// Discard drops any open composition without committing it.
func (c *Composer) Discard() {
	c.state = Idle
	c.pending = ""
}
