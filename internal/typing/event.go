package typing

// EventKind classifies a raw input event.
type EventKind int

const (
	// EventInsert is direct character input.
	EventInsert EventKind = iota
	// EventPaste is bulk text insertion.
	EventPaste
	// EventCompositionStart opens a multi-step composition.
	EventCompositionStart
	// EventCompositionUpdate carries in-progress composition text.
	EventCompositionUpdate
	// EventCompositionEnd carries the finalized composition result.
	EventCompositionEnd
	// EventSeek moves the cursor to Index.
	EventSeek
	// EventStep moves the cursor by Delta.
	EventStep
	// EventHome moves the cursor to the start.
	EventHome
	// EventEnd moves the cursor to the end.
	EventEnd
	// EventBackspace clears the position before the cursor.
	EventBackspace
	// EventDelete clears the position under the cursor.
	EventDelete
)

var eventNames = [...]string{
	EventInsert:            "insert",
	EventPaste:             "paste",
	EventCompositionStart:  "composition-start",
	EventCompositionUpdate: "composition-update",
	EventCompositionEnd:    "composition-end",
	EventSeek:              "seek",
	EventStep:              "step",
	EventHome:              "home",
	EventEnd:               "end",
	EventBackspace:         "backspace",
	EventDelete:            "delete",
}

// String implements fmt.Stringer.
func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[k]
}

// Event is one raw input event from the input source.
type Event struct {
	Kind  EventKind
	Text  string
	Index int
	Delta int
}

// Insert builds a direct-input event.
func Insert(text string) Event { return Event{Kind: EventInsert, Text: text} }

// Paste builds a bulk insertion event.
func Paste(text string) Event { return Event{Kind: EventPaste, Text: text} }

// CompositionStart builds a composition-start event.
func CompositionStart() Event { return Event{Kind: EventCompositionStart} }

// CompositionUpdate builds a composition-update event.
func CompositionUpdate(text string) Event {
	return Event{Kind: EventCompositionUpdate, Text: text}
}

// CompositionEnd builds a composition-end event carrying the final text.
func CompositionEnd(text string) Event {
	return Event{Kind: EventCompositionEnd, Text: text}
}

// Seek builds an absolute cursor move.
func Seek(index int) Event { return Event{Kind: EventSeek, Index: index} }

// Step builds a relative cursor move.
func Step(delta int) Event { return Event{Kind: EventStep, Delta: delta} }

// Home builds a move-to-start event.
func Home() Event { return Event{Kind: EventHome} }

// End builds a move-to-end event.
func End() Event { return Event{Kind: EventEnd} }

// Backspace builds a backspace event.
func Backspace() Event { return Event{Kind: EventBackspace} }

// Delete builds a forward-delete event.
func Delete() Event { return Event{Kind: EventDelete} }
