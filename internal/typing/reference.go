// Package typing implements the typing-session input engine.
package typing

import "golang.org/x/text/unicode/norm"

// Reference is the immutable text a session asks the user to reproduce.
type Reference struct {
	runes []rune
}

// NewReference builds a reference from text normalized to NFC.
func NewReference(text string) *Reference {
	return &Reference{runes: []rune(norm.NFC.String(text))}
}

// At returns the rune at position i. Callers keep i within [0, Len()).
func (r *Reference) At(i int) rune {
	return r.runes[i]
}

// Len returns the number of runes in the reference.
func (r *Reference) Len() int {
	return len(r.runes)
}

// String returns the reference as a string.
func (r *Reference) String() string {
	return string(r.runes)
}
