package typing

// Cursor is an insertion index into the reference, always within [0, limit].
type Cursor struct {
	pos   int
	limit int
}

// NewCursor returns a cursor at 0 bounded by limit.
func NewCursor(limit int) *Cursor {
	if limit < 0 {
		limit = 0
	}
	return &Cursor{limit: limit}
}

// Pos returns the current position.
func (c *Cursor) Pos() int {
	return c.pos
}

// Seek moves to index, clamped to the valid range.
func (c *Cursor) Seek(index int) {
	c.pos = c.clamp(index)
}

// Step moves by delta, clamped to the valid range.
func (c *Cursor) Step(delta int) {
	c.pos = c.clamp(c.pos + delta)
}

// Home moves to the start of the text.
func (c *Cursor) Home() {
	c.pos = 0
}

// End moves past the last rune.
func (c *Cursor) End() {
	c.pos = c.limit
}

// AtEnd reports whether the cursor sits past the last rune.
func (c *Cursor) AtEnd() bool {
	return c.pos == c.limit
}

func (c *Cursor) clamp(index int) int {
	switch {
	case index < 0:
		return 0
	case index > c.limit:
		return c.limit
	default:
		return index
	}
}
