// Package tui is the terminal front end: a bubbletea model rendering the board
// and translating keys into game actions. The bubbletea Update loop is the
// single thread every game mutation runs on.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"go-match/internal/config"
	"go-match/internal/game"
	"go-match/internal/scoring"
	"go-match/internal/store"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// runMsg carries a deferred call into Update.
type runMsg func()

// setupMsg delivers fetched card faces back to the loop.
type setupMsg game.Setup

// Bridge posts deferred game calls into a running program. It is handed to
// schedule.NewDeferred before the program exists and attached afterwards.
type Bridge struct {
	p *tea.Program
}

// Attach binds the bridge to p. Call it before p.Run.
func (b *Bridge) Attach(p *tea.Program) {
	b.p = p
}

// Post implements schedule.Poster.
func (b *Bridge) Post(f func()) {
	if b.p == nil {
		return
	}
	b.p.Send(runMsg(f))
}

// Model is the bubbletea model. It also receives the game's notifications
// as a game.Listener; those calls arrive inside Update.
type Model struct {
	session *game.Session
	prefs   store.KV
	log     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	tier    config.Tier
	opts    config.RoundOptions
	cursor  int
	symbols map[string]int

	moves   int
	elapsed int
	outcome *game.Outcome
	err     error
	loading bool

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	styles  styles
	width   int
}

// New builds the model. prefs may be nil, in which case the theme is not
// persisted.
func New(session *game.Session, prefs store.KV, tier config.Tier, opts config.RoundOptions, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		session: session,
		prefs:   prefs,
		log:     logger.With("component", "tui"),
		ctx:     ctx,
		cancel:  cancel,
		tier:    tier,
		opts:    opts,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		styles:  newStyles(themeDark),
	}
	m.loadTheme()
	return m
}

func (m *Model) loadTheme() {
	if m.prefs == nil {
		return
	}
	var name string
	ok, err := m.prefs.Get(ThemeKey, &name)
	if err != nil {
		m.log.Warn("could not read theme", "error", err)
		return
	}
	if ok {
		m.styles = newStyles(name)
	}
}

func (m *Model) saveTheme() {
	if m.prefs == nil {
		return
	}
	if err := m.prefs.Set(ThemeKey, m.styles.name); err != nil {
		m.log.Warn("could not save theme", "error", err)
	}
}

// MovesChanged implements game.Listener.
func (m *Model) MovesChanged(moves int) { m.moves = moves }

// ElapsedChanged implements game.Listener.
func (m *Model) ElapsedChanged(seconds int) { m.elapsed = seconds }

// BoardChanged implements game.Listener.
func (m *Model) BoardChanged() {
	if m.cursor >= len(m.session.Game.State.Cards) {
		m.cursor = 0
	}
}

// RoundFinished implements game.Listener.
func (m *Model) RoundFinished(o game.Outcome) {
	m.outcome = &o
}

// Init starts the first round.
func (m *Model) Init() tea.Cmd {
	return m.newRound()
}

// newRound resets the board and fetches faces for the selected tier in the
// background.
func (m *Model) newRound() tea.Cmd {
	req, err := m.session.Request(m.tier, m.opts)
	if err != nil {
		m.err = err
		return nil
	}
	m.outcome = nil
	m.err = nil
	m.cursor = 0
	m.symbols = nil
	m.loading = true

	ctx, session := m.ctx, m.session
	fetch := func() tea.Msg {
		return setupMsg(session.Fetch(ctx, req))
	}
	return tea.Batch(m.spinner.Tick, fetch)
}

func (m *Model) begin(setup game.Setup) {
	err := m.session.Begin(setup)
	if errors.Is(err, game.ErrStaleSetup) {
		return
	}
	m.loading = false
	if err != nil {
		m.err = err
		return
	}
	m.symbols = symbolsFor(setup.Images)
}

// symbolsFor numbers the faces in sorted order so the board layout gives
// nothing away.
func symbolsFor(faces []string) map[string]int {
	sorted := append([]string(nil), faces...)
	sort.Strings(sorted)
	out := make(map[string]int, len(sorted))
	for i, f := range sorted {
		out[f] = i
	}
	return out
}

func (m *Model) quit() tea.Cmd {
	m.cancel()
	m.session.Leave()
	return tea.Quit
}

// Update handles keys, deferred calls and fetch results.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runMsg:
		msg()
		return m, nil
	case setupMsg:
		m.begin(game.Setup(msg))
		return m, nil
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	cols := m.columns()
	cards := len(m.session.Game.State.Cards)

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Theme):
		m.styles = m.styles.toggled()
		m.saveTheme()
	case key.Matches(msg, m.keys.Easy):
		return m.switchTier(config.Easy)
	case key.Matches(msg, m.keys.Medium):
		return m.switchTier(config.Medium)
	case key.Matches(msg, m.keys.Hard):
		return m.switchTier(config.Hard)
	case key.Matches(msg, m.keys.TimeLimit):
		m.opts.TimeLimit = !m.opts.TimeLimit
		return m.newRound()
	case key.Matches(msg, m.keys.Preview):
		m.opts.Preview = !m.opts.Preview
		return m.newRound()
	case key.Matches(msg, m.keys.New):
		return m.newRound()
	case cards == 0:
	case key.Matches(msg, m.keys.Up):
		if m.cursor-cols >= 0 {
			m.cursor -= cols
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor+cols < cards {
			m.cursor += cols
		}
	case key.Matches(msg, m.keys.Left):
		if m.cursor%cols > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Right):
		if m.cursor%cols < cols-1 && m.cursor+1 < cards {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Flip):
		m.session.Game.HandleFlip(m.cursor)
	}
	return nil
}

func (m *Model) switchTier(t config.Tier) tea.Cmd {
	m.tier = t
	return m.newRound()
}

func (m *Model) columns() int {
	if round, ok := m.session.Round(); ok && round.Columns > 0 {
		return round.Columns
	}
	if d, err := config.DifficultyFor(m.tier); err == nil {
		return d.Columns
	}
	return 4
}

func (m *Model) bests() scoring.Table {
	return m.session.Bests()
}
