package textsource

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFilterEnglishASCII(t *testing.T) {
	filter := FilterForLang("en")
	if !filter("hello") {
		t.Fatalf("expected hello to pass english filter")
	}
	for _, word := range []string{"résumé", "naïve", "don’t", "co-op"} {
		if filter(word) {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
}

func TestLoadWordsFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "en.txt")
	if err := os.WriteFile(path, []byte("alpha\n\nBeta\n gamma \n"), 0o644); err != nil {
		t.Fatalf("write words: %v", err)
	}
	words, err := LoadWords(path, FilterForLang("en"))
	if err != nil {
		t.Fatalf("load words: %v", err)
	}
	if len(words) != 2 || words[0] != "alpha" || words[1] != "gamma" {
		t.Fatalf("unexpected words: %v", words)
	}
}

func TestWriteWordListRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lists", "de.txt")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("old\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := WriteWordList(path, []string{"über", "straße"}); err != nil {
		t.Fatalf("write words: %v", err)
	}
	words, err := LoadWords(path, FilterForLang("de"))
	if err != nil {
		t.Fatalf("load words: %v", err)
	}
	if len(words) != 2 || words[0] != "über" || words[1] != "straße" {
		t.Fatalf("unexpected words: %v", words)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected no temp files left, got %v (%v)", entries, err)
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize("  first line  \r\nsecond\tline\t\r\n\r\n")
	if got != "first line\nsecond\tline" {
		t.Fatalf("unexpected text: %q", got)
	}
	if got := Normalize("cafe\u0301"); got != "caf\u00e9" {
		t.Fatalf("expected NFC output, got %q", got)
	}
}

func TestLoadTextEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blank.txt")
	if err := os.WriteFile(path, []byte(" \n\t\n"), 0o644); err != nil {
		t.Fatalf("write text: %v", err)
	}
	if _, err := LoadText(path); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"raven.txt", "sonnet-18.txt", "notes.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("text"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	names, err := ListTexts(dir)
	if err != nil {
		t.Fatalf("list texts: %v", err)
	}
	if len(names) != 2 || names[0] != "raven" || names[1] != "sonnet-18" {
		t.Fatalf("unexpected names: %v", names)
	}

	got, err := Resolve(dir, "snt18")
	if err != nil {
		t.Fatalf("resolve fuzzy: %v", err)
	}
	if got != filepath.Join(dir, "sonnet-18.txt") {
		t.Fatalf("unexpected fuzzy match %q", got)
	}

	direct := filepath.Join(dir, "notes.md")
	if got, err := Resolve(dir, direct); err != nil || got != direct {
		t.Fatalf("expected direct path, got %q %v", got, err)
	}

	if _, err := Resolve(dir, "zzzz"); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}
