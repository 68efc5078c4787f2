package typing

// Status is the render state of a reference position.
type Status int

const (
	// Untouched positions have no typed entry.
	Untouched Status = iota
	// Correct positions hold the expected rune.
	Correct
	// Incorrect positions hold a different rune.
	Incorrect
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "untouched"
	}
}

// Cell is the render state of one reference position.
type Cell struct {
	Char   rune
	Status Status
}

// Projection is the data a renderer consumes: one cell per reference
// position and the cursor anchor. AtEnd is set when the cursor sits past the
// last cell.
type Projection struct {
	Cells  []Cell
	Cursor int
	AtEnd  bool
}

// Project builds the projection for a reference, typed map and cursor.
func Project(ref *Reference, typed *TypedMap, cursor int) Projection {
	cells := make([]Cell, ref.Len())
	for i := range cells {
		cells[i] = cellAt(ref, typed, i)
	}
	return Projection{
		Cells:  cells,
		Cursor: cursor,
		AtEnd:  cursor >= ref.Len(),
	}
}

func cellAt(ref *Reference, typed *TypedMap, pos int) Cell {
	want := ref.At(pos)
	cell := Cell{Char: want}
	if got, ok := typed.Get(pos); ok {
		if got == want {
			cell.Status = Correct
		} else {
			cell.Status = Incorrect
		}
	}
	return cell
}
