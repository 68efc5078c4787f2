// Package generator builds reference texts from word lists.
package generator

import (
	"math/rand"
	"strings"
	"time"
	"unicode"
)

// Options controls how a text is assembled.
type Options struct {
	Words    int
	CapsPct  float64
	PunctPct float64
	PunctSet []rune
	// Weak biases word choice toward words containing these runes.
	Weak       map[rune]struct{}
	WeakFactor float64
}

// Generator produces randomized practice texts.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Text joins generated words with single spaces.
func (g *Generator) Text(words []string, opts Options) string {
	return strings.Join(g.Words(words, opts), " ")
}

// Words selects opts.Words words and applies caps/punctuation rules. Selection
// is uniform unless opts.Weak is non-empty.
func (g *Generator) Words(words []string, opts Options) []string {
	if len(words) == 0 || opts.Words <= 0 {
		return nil
	}
	pick := g.uniform(len(words))
	if len(opts.Weak) > 0 {
		pick = g.weighted(weights(words, opts.Weak, opts.WeakFactor))
	}
	result := make([]string, 0, opts.Words)
	for i := 0; i < opts.Words; i++ {
		word := words[pick()]
		word = g.applyCaps(word, opts.CapsPct)
		word = g.applyPunct(word, opts.PunctPct, opts.PunctSet)
		result = append(result, word)
	}
	return result
}

func (g *Generator) uniform(n int) func() int {
	return func() int { return g.rnd.Intn(n) }
}

func (g *Generator) weighted(w []float64) func() int {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return func() int {
		r := g.rnd.Float64() * total
		acc := 0.0
		for i, v := range w {
			acc += v
			if r <= acc {
				return i
			}
		}
		return len(w) - 1
	}
}

func weights(words []string, weak map[rune]struct{}, factor float64) []float64 {
	out := make([]float64, len(words))
	for i, word := range words {
		weakCount := 0
		for _, r := range word {
			if _, ok := weak[r]; ok {
				weakCount++
			}
		}
		out[i] = 1.0 + float64(weakCount)*factor
	}
	return out
}

func (g *Generator) applyCaps(word string, capsPct float64) string {
	if capsPct <= 0 || g.rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func (g *Generator) applyPunct(word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 || g.rnd.Float64() > punctPct {
		return word
	}
	return word + string(punctSet[g.rnd.Intn(len(punctSet))])
}
