package typing

// noRune marks a position without a typed entry.
const noRune rune = -1

// TypedMap records what the user produced at each reference position.
// A position is either untouched or holds exactly one rune.
type TypedMap struct {
	slots []rune
	count int
}

// NewTypedMap returns an empty map covering size positions.
func NewTypedMap(size int) *TypedMap {
	m := &TypedMap{slots: make([]rune, size)}
	m.Clear()
	return m
}

// Set stores r at pos and reports whether the position was previously empty.
func (m *TypedMap) Set(pos int, r rune) bool {
	if pos < 0 || pos >= len(m.slots) {
		return false
	}
	added := m.slots[pos] == noRune
	if added {
		m.count++
	}
	m.slots[pos] = r
	return added
}

// Get returns the rune stored at pos.
func (m *TypedMap) Get(pos int) (rune, bool) {
	if pos < 0 || pos >= len(m.slots) || m.slots[pos] == noRune {
		return 0, false
	}
	return m.slots[pos], true
}

// Remove clears pos and reports whether an entry was removed.
func (m *TypedMap) Remove(pos int) bool {
	if pos < 0 || pos >= len(m.slots) || m.slots[pos] == noRune {
		return false
	}
	m.slots[pos] = noRune
	m.count--
	return true
}

// Len returns the number of positions holding an entry.
func (m *TypedMap) Len() int {
	return m.count
}

// Clear removes every entry.
func (m *TypedMap) Clear() {
	for i := range m.slots {
		m.slots[i] = noRune
	}
	m.count = 0
}

// Each calls fn for every entry in ascending position order.
func (m *TypedMap) Each(fn func(pos int, r rune)) {
	for i, r := range m.slots {
		if r != noRune {
			fn(i, r)
		}
	}
}

// Snapshot returns the entries as a position-keyed map.
func (m *TypedMap) Snapshot() map[int]rune {
	out := make(map[int]rune, m.count)
	m.Each(func(pos int, r rune) {
		out[pos] = r
	})
	return out
}
