package textsource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrEmptyText is returned when a text file holds nothing to type.
	ErrEmptyText = errors.New("text is empty")
	// ErrNoMatch is returned when no stored text matches a name.
	ErrNoMatch = errors.New("no matching text")
)

// textExt is the extension of stored practice texts.
const textExt = ".txt"

// Normalize prepares raw file content for practice: line endings become LF,
// trailing whitespace is trimmed from every line and from the text, and the
// result is NFC-normalized.
func Normalize(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	text := strings.TrimSpace(strings.Join(lines, "\n"))
	return norm.NFC.String(text)
}

// LoadText reads a plain-text file as a reference text.
func LoadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := Normalize(string(data))
	if text == "" {
		return "", fmt.Errorf("%s: %w", path, ErrEmptyText)
	}
	return text, nil
}

// ListTexts returns the names of stored texts in dir, sorted.
func ListTexts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), textExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), textExt))
	}
	sort.Strings(names)
	return names, nil
}

// Resolve maps a --text argument to a file path. Existing paths are used as
// is; anything else is matched by name against the texts stored in dir, the
// best fuzzy match winning.
func Resolve(dir, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrNoMatch
	}
	if info, err := os.Stat(query); err == nil && !info.IsDir() {
		return query, nil
	}
	names, err := ListTexts(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%q: %w", query, ErrNoMatch)
		}
		return "", fmt.Errorf("failed to list texts: %w", err)
	}
	for _, name := range names {
		if name == query {
			return filepath.Join(dir, name+textExt), nil
		}
	}
	matches := fuzzy.Find(query, names)
	if len(matches) == 0 {
		return "", fmt.Errorf("%q: %w", query, ErrNoMatch)
	}
	return filepath.Join(dir, matches[0].Str+textExt), nil
}
