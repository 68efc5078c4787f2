package typing

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestProject(t *testing.T) {
	ref := NewReference("cat")
	typed := NewTypedMap(3)
	typed.Set(0, 'c')
	typed.Set(1, 'o')
	got := Project(ref, typed, 2)
	want := Projection{
		Cells: []Cell{
			{Char: 'c', Status: Correct},
			{Char: 'a', Status: Incorrect},
			{Char: 't', Status: Untouched},
		},
		Cursor: 2,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("projection mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectCursorAtEnd(t *testing.T) {
	ref := NewReference("ab")
	got := Project(ref, NewTypedMap(2), 2)
	if !got.AtEnd || got.Cursor != 2 {
		t.Fatalf("expected end anchor, got %+v", got)
	}
}

func TestSessionProjectionMatchesProject(t *testing.T) {
	s, _ := newTestSession("the quick fox")
	events := []Event{
		Insert("thw"), Insert(" "), Paste("quack"), Seek(2), Backspace(),
		Insert("h"), Delete(), Seek(10), Insert("fix"), Step(-1), Delete(),
		CompositionStart(), CompositionUpdate("zz"), CompositionEnd("o"),
	}
	for _, ev := range events {
		s.Handle(ev)
		ref := NewReference(s.Reference())
		typed := NewTypedMap(ref.Len())
		for pos, r := range s.Typed() {
			typed.Set(pos, r)
		}
		want := Project(ref, typed, s.Cursor())
		if diff := cmp.Diff(want, s.Projection()); diff != "" {
			t.Fatalf("cached projection diverged after %s (-want +got):\n%s", ev.Kind, diff)
		}
	}
}

func TestProjectionIsACopy(t *testing.T) {
	s, _ := newTestSession("ab")
	p := s.Projection()
	p.Cells[0].Status = Incorrect
	if s.Projection().Cells[0].Status != Untouched {
		t.Fatalf("projection must not alias session state")
	}
}

func TestStatusString(t *testing.T) {
	for status, want := range map[Status]string{Untouched: "untouched", Correct: "correct", Incorrect: "incorrect"} {
		if got := status.String(); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}
