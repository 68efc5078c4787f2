// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/typing"
)

// SessionStore persists finished sessions and reads history for the footer.
type SessionStore interface {
	InsertSession(ctx context.Context, stats model.SessionStats, chars []model.CharStats) (int64, error)
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
}

// Options wires a Model to its collaborators.
type Options struct {
	Config model.Config
	Store  SessionStore
	Source TextSource
	Logger *slog.Logger
	// Clock overrides the session clock in tests.
	Clock typing.Clock
}

// sampleMsg signals that the background sampler refreshed the session.
type sampleMsg struct{}

// Model implements the Bubble Tea typing UI.
type Model struct {
	config model.Config
	store  SessionStore
	source TextSource
	logger *slog.Logger
	clock  typing.Clock

	session *typing.Session
	text    Text
	words   []wordRange
	metrics typing.Metrics
	tick    time.Duration
	samples chan struct{}
	stop    context.CancelFunc

	keys     keyMap
	help     help.Model
	progress progress.Model

	width  int
	height int

	lastWPM int
	lastAcc int
	hasLast bool

	allSessions int
	allWPMSum   int
	allAccSum   int
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = pendingStyle.Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// footerHeight is the progress bar line plus the stats line.
const footerHeight = 2

// NewModel constructs a typing TUI model and loads the first text.
func NewModel(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tick := time.Duration(opts.Config.TickMs) * time.Millisecond
	if tick <= 0 {
		tick = typing.DefaultSampleInterval
	}
	m := &Model{
		config:   opts.Config,
		store:    opts.Store,
		source:   opts.Source,
		logger:   logger,
		clock:    opts.Clock,
		tick:     tick,
		samples:  make(chan struct{}, 1),
		stop:     func() {},
		keys:     defaultKeyMap(),
		help:     help.New(),
		progress: progress.New(progress.WithSolidFill("#C89A3A"), progress.WithoutPercentage()),
	}
	m.loadNext()
	m.loadFooterStats()
	return m
}

// Init implements tea.Model. It starts the metrics sampler, which runs until
// the user quits.
func (m *Model) Init() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.stop = cancel
	go typing.NewSampler(m.session, m.tick, m.notify).Run(ctx)
	return m.waitForSample()
}

// notify coalesces sampler ticks while the UI still has one pending.
func (m *Model) notify(typing.Metrics) {
	select {
	case m.samples <- struct{}{}:
	default:
	}
}

func (m *Model) waitForSample() tea.Cmd {
	return func() tea.Msg {
		<-m.samples
		return sampleMsg{}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = m.contentWidth()
		return m, nil
	case sampleMsg:
		// A tick may predate a reload, so read the session's current snapshot.
		m.metrics = m.session.Metrics()
		return m, m.waitForSample()
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if pos, ok := m.positionAtScreen(msg.X, msg.Y); ok {
				m.session.Seek(pos)
			}
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.stop()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Restart):
		m.session.Reset()
		m.metrics = m.session.Metrics()
		return m, nil
	case key.Matches(msg, m.keys.Next):
		m.loadNext()
		return m, nil
	case key.Matches(msg, m.keys.Backspace):
		m.session.Backspace()
	case key.Matches(msg, m.keys.Delete):
		m.session.Delete()
	case key.Matches(msg, m.keys.Left):
		m.session.Step(-1)
	case key.Matches(msg, m.keys.Right):
		m.session.Step(1)
	case key.Matches(msg, m.keys.Home):
		m.session.Home()
	case key.Matches(msg, m.keys.End):
		m.session.End()
	default:
		if ev, ok := eventForKey(msg); ok {
			m.session.Handle(ev)
		}
	}
	m.afterInput()
	return m, nil
}

// eventForKey translates text-producing keys. Terminals deliver the finished
// result of an input method as one multi-rune message, which is committed as
// a composition unit.
func eventForKey(msg tea.KeyMsg) (typing.Event, bool) {
	if msg.Alt {
		return typing.Event{}, false
	}
	switch msg.Type {
	case tea.KeySpace:
		return typing.Insert(" "), true
	case tea.KeyEnter:
		return typing.Insert("\n"), true
	case tea.KeyTab:
		return typing.Insert("\t"), true
	case tea.KeyRunes:
		text := string(msg.Runes)
		switch {
		case msg.Paste:
			return typing.Paste(text), true
		case len(msg.Runes) > 1:
			return typing.CompositionEnd(text), true
		default:
			return typing.Insert(text), true
		}
	default:
		return typing.Event{}, false
	}
}

// afterInput refreshes metrics and decides completion: the session is done
// once the cursor reached the end and every position holds an entry.
func (m *Model) afterInput() {
	m.metrics = m.session.Sample()
	n := m.session.Len()
	if n == 0 || m.session.Cursor() != n || m.session.Attempted() != n {
		return
	}
	m.finishSession()
	m.loadNext()
}

func (m *Model) loadNext() {
	ctx := context.Background()
	if m.source != nil {
		m.text = m.source.Next(ctx)
	}
	if m.session == nil {
		var opts []typing.Option
		if m.clock != nil {
			opts = append(opts, typing.WithClock(m.clock))
		}
		m.session = typing.New(m.text.Body, opts...)
	} else {
		m.session.Load(m.text.Body)
	}
	m.words = findWords([]rune(m.session.Reference()))
	m.metrics = m.session.Metrics()
}

func (m *Model) finishSession() {
	if !m.session.Started() {
		return
	}
	final := m.session.Finish()
	stats, chars := m.session.Summary()
	stats.Lang = m.config.Lang
	stats.Source = m.text.Source
	m.logger.Info("session finished",
		"source", stats.Source,
		"wpm", final.WPM,
		"accuracy", final.Accuracy,
		"errors", final.Errors,
		"duration_ms", stats.DurationMs,
	)
	if m.store != nil {
		if _, err := m.store.InsertSession(context.Background(), stats, chars); err != nil {
			m.logger.Error("failed to save session", "err", err)
		}
	}
	m.lastWPM = final.WPM
	m.lastAcc = final.Accuracy
	m.hasLast = true
	m.allSessions++
	m.allWPMSum += final.WPM
	m.allAccSum += final.Accuracy
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	sessions, err := m.store.ListSessions(context.Background(), model.StatsConfig{Lang: m.config.Lang})
	if err != nil {
		m.logger.Warn("failed to load session stats", "err", err)
		return
	}
	if len(sessions) == 0 {
		return
	}
	last := sessions[len(sessions)-1]
	m.lastWPM = last.WPM
	m.lastAcc = last.Accuracy
	m.hasLast = true
	for _, s := range sessions {
		m.allSessions++
		m.allWPMSum += s.WPM
		m.allAccSum += s.Accuracy
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.session.Len() == 0 {
		return footerStyle.Render("Nothing to type. ctrl+n loads another text, esc quits.")
	}
	lines := m.lines()
	if m.width == 0 || m.height == 0 {
		return renderLines(lines)
	}
	content := lipgloss.NewStyle().Width(m.blockWidth()).Render(renderLines(lines))
	if m.height <= footerHeight+1 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, content)
	bar := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.progress.ViewAs(float64(m.metrics.Progress)/100))
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderFooter())
	return body + "\n" + bar + "\n" + footerLine
}

func (m *Model) lines() [][]styledRune {
	return wrapLines(buildStyledRunes(m.session.Projection(), m.words), m.contentWidth())
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	w := int(float64(m.width) * 0.70)
	if w < 1 {
		w = 1
	}
	return w
}

// blockWidth leaves room for a space overhanging a full line.
func (m *Model) blockWidth() int {
	return m.contentWidth() + 1
}

func (m *Model) bodyHeight() int {
	if m.height <= footerHeight+1 {
		return m.height
	}
	return m.height - footerHeight
}

// positionAtScreen maps a terminal cell to a reference position using the
// same centering View applies.
func (m *Model) positionAtScreen(x, y int) (int, bool) {
	if m.width == 0 || m.height == 0 {
		return 0, false
	}
	lines := m.lines()
	left := placeOffset(m.width - m.blockWidth())
	top := placeOffset(m.bodyHeight() - len(lines))
	return positionAt(lines, x-left, y-top)
}

func (m *Model) renderFooter() string {
	segments := []string{fmt.Sprintf("%d WPM · %d%% · %d errors · Progress %d%%",
		m.metrics.WPM, m.metrics.Accuracy, m.metrics.Errors, m.metrics.Progress)}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %d WPM · %d%%", m.lastWPM, m.lastAcc))
	}
	if m.allSessions > 0 {
		segments = append(segments, fmt.Sprintf("All-time %.1f WPM · %.1f%%",
			float64(m.allWPMSum)/float64(m.allSessions), float64(m.allAccSum)/float64(m.allSessions)))
	}
	segments = append(segments, m.help.View(m.keys))
	return footerStyle.Render(strings.Join(segments, "  "))
}
