package tui

import (
	"context"
	"log/slog"

	"github.com/verte-zerg/retype/internal/generator"
	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/stats"
)

// Text is a reference text and a label for where it came from.
type Text struct {
	Body   string
	Source string
}

// TextSource supplies the reference text for each new session.
type TextSource interface {
	Next(ctx context.Context) Text
}

// StaticSource repeats one loaded text.
type StaticSource struct {
	Text Text
}

// Next implements TextSource.
func (s StaticSource) Next(context.Context) Text {
	return s.Text
}

// WeakCharSource is the part of the store a GeneratedSource consults.
type WeakCharSource interface {
	GetWeakChars(ctx context.Context, window int, lang string) ([]model.CharAggregate, error)
}

// GeneratedSource builds a fresh text from a word list for every session,
// optionally biased toward the characters the user misses most.
type GeneratedSource struct {
	Gen    *generator.Generator
	Words  []string
	Config model.Config
	Store  WeakCharSource
	Logger *slog.Logger

	weakNoticeLogged bool
}

// Next implements TextSource.
func (g *GeneratedSource) Next(ctx context.Context) Text {
	opts := generator.Options{
		Words:      g.Config.Words,
		CapsPct:    g.Config.CapsPct,
		PunctPct:   g.Config.PunctPct,
		PunctSet:   []rune(g.Config.PunctSet),
		WeakFactor: g.Config.WeakFactor,
	}
	if g.Config.FocusWeak {
		opts.Weak = g.weakSet(ctx)
	}
	return Text{
		Body:   g.Gen.Text(g.Words, opts),
		Source: "generated:" + g.Config.Lang,
	}
}

func (g *GeneratedSource) weakSet(ctx context.Context) map[rune]struct{} {
	if g.Store == nil {
		return nil
	}
	aggs, err := g.Store.GetWeakChars(ctx, g.Config.WeakWindow, g.Config.Lang)
	if err != nil {
		g.logger().Warn("failed to load weak chars", "err", err)
		return nil
	}
	if len(aggs) == 0 {
		if !g.weakNoticeLogged {
			g.logger().Info("no stats available for weak-char focus yet; using normal generator")
			g.weakNoticeLogged = true
		}
		return nil
	}
	return stats.SelectWeakChars(aggs, g.Config.WeakTop)
}

func (g *GeneratedSource) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}
