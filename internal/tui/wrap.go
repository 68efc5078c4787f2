package tui

import (
	"math"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/retype/internal/typing"
)

type styledRune struct {
	s       string
	width   int
	pos     int
	isSpace bool
	isBreak bool
}

// glyphFor maps whitespace that has no visible shape to a marker glyph.
func glyphFor(r rune) rune {
	switch r {
	case '\n':
		return '⏎'
	case '\t':
		return '→'
	default:
		return r
	}
}

func buildStyledRunes(p typing.Projection, words []wordRange) []styledRune {
	cursorIndex := -1
	if !p.AtEnd {
		cursorIndex = p.Cursor
	}
	currentWord := wordForCursor(words, cursorIndex)

	out := make([]styledRune, 0, len(p.Cells))
	for i, cell := range p.Cells {
		style := pendingStyle
		switch cell.Status {
		case typing.Correct:
			style = correctStyle
		case typing.Incorrect:
			style = incorrectStyle
		default:
			if currentWord != nil && i >= currentWord.start && i < currentWord.end {
				style = currentWordStyle
			}
		}
		if i == cursorIndex {
			style = style.Underline(true)
		}
		displayed := glyphFor(cell.Char)
		out = append(out, styledRune{
			s:       style.Render(string(displayed)),
			width:   runewidth.RuneWidth(displayed),
			pos:     i,
			isSpace: unicode.IsSpace(cell.Char),
			isBreak: cell.Char == '\n',
		})
	}
	return out
}

type wordRange struct {
	start int
	end   int
}

func findWords(targetRunes []rune) []wordRange {
	words := []wordRange{}
	start := -1
	for i, r := range targetRunes {
		if unicode.IsSpace(r) {
			if start != -1 {
				words = append(words, wordRange{start: start, end: i})
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		words = append(words, wordRange{start: start, end: len(targetRunes)})
	}
	return words
}

func wordForCursor(words []wordRange, cursorIndex int) *wordRange {
	if len(words) == 0 || cursorIndex < 0 {
		return nil
	}
	for i, w := range words {
		if cursorIndex < w.end {
			return &words[i]
		}
	}
	return &words[len(words)-1]
}

// wrapLines breaks runes into lines no wider than width. Breaks happen after
// whitespace; a trailing space may overhang by one column so the cursor stays
// visible on it. Newlines always end a line.
func wrapLines(runes []styledRune, width int) [][]styledRune {
	if width <= 0 {
		width = math.MaxInt32
	}
	var lines [][]styledRune
	line := make([]styledRune, 0, 64)
	lineWidth := 0
	lastSpaceIdx := -1

	flush := func(n int) {
		lines = append(lines, append([]styledRune{}, line[:n]...))
		line = append(line[:0], line[n:]...)
		lineWidth = lineWidthOf(line)
		lastSpaceIdx = lastSpaceIndex(line)
	}

	for _, item := range runes {
		if !item.isSpace && lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				flush(lastSpaceIdx + 1)
			} else {
				flush(len(line))
			}
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		if item.isBreak {
			flush(len(line))
		}
	}
	if len(line) > 0 || len(lines) == 0 {
		lines = append(lines, line)
	}
	return lines
}

func renderLines(lines [][]styledRune) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, item := range line {
			b.WriteString(item.s)
		}
	}
	return b.String()
}

// positionAt maps a cell inside the wrapped block to a reference position.
// Clicks right of a line's text land after its last rune.
func positionAt(lines [][]styledRune, x, y int) (int, bool) {
	if y < 0 || y >= len(lines) || x < 0 {
		return 0, false
	}
	line := lines[y]
	if len(line) == 0 {
		return 0, false
	}
	col := 0
	for _, item := range line {
		if x < col+item.width {
			return item.pos, true
		}
		col += item.width
	}
	last := line[len(line)-1]
	if last.isBreak {
		return last.pos, true
	}
	return last.pos + 1, true
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}

// placeOffset mirrors how lipgloss centers a block inside a larger gap.
func placeOffset(gap int) int {
	if gap <= 0 {
		return 0
	}
	return gap - int(math.Round(float64(gap)*0.5))
}
