package game

import (
	"context"
	"log/slog"
	"time"

	"go-match/internal/config"
	"go-match/internal/deck"
	"go-match/internal/schedule"
	"go-match/internal/state"
	"go-match/internal/timer"

	"github.com/google/uuid"
)

// Outcome is delivered once per round when it ends.
type Outcome struct {
	RoundID uuid.UUID
	Tier    config.Tier
	Reason  state.Reason
	Time    int
	Moves   int
	NewBest bool
	// Err is set when the score could not be persisted. The round still
	// counts as completed.
	Err error
}

// Listener receives the side effects of the game for display. All calls
// happen on the event loop.
type Listener interface {
	MovesChanged(moves int)
	ElapsedChanged(seconds int)
	BoardChanged()
	RoundFinished(o Outcome)
}

// NopListener ignores every notification.
type NopListener struct{}

func (NopListener) MovesChanged(int)      {}
func (NopListener) ElapsedChanged(int)    {}
func (NopListener) BoardChanged()         {}
func (NopListener) RoundFinished(Outcome) {}

// Recorder is the part of the score ledger the game reports to.
type Recorder interface {
	RecordIfBetter(tier config.Tier, time, moves int) (bool, error)
}

// Game drives the state machine through a round: it owns the clock and every
// deferred action. Each round gets a new generation; deferred actions from an
// older generation are stopped on reset and ignored if they run anyway.
type Game struct {
	State *state.State

	sched    schedule.Scheduler
	clock    *timer.Clock
	ledger   Recorder
	listener Listener
	baseLog  *slog.Logger
	log      *slog.Logger

	roundID uuid.UUID
	gen     uint64
	tasks   []schedule.Task
}

// NewGame initializes an idle game. ledger and listener may be nil.
func NewGame(sched schedule.Scheduler, ledger Recorder, listener Listener, logger *slog.Logger) *Game {
	if listener == nil {
		listener = NopListener{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Game{
		State:    state.NewState(),
		sched:    sched,
		clock:    timer.New(sched),
		ledger:   ledger,
		listener: listener,
		baseLog:  logger,
		log:      logger,
	}
}

// SetListener replaces the listener. It is meant for wiring at startup.
func (g *Game) SetListener(l Listener) {
	if l == nil {
		l = NopListener{}
	}
	g.listener = l
}

// Generation identifies the current round. It changes on every reset.
func (g *Game) Generation() uint64 {
	return g.gen
}

// RoundID returns the identifier of the dealt round, used in logs.
func (g *Game) RoundID() uuid.UUID {
	return g.roundID
}

// Elapsed returns the seconds counted in the current round.
func (g *Game) Elapsed() int {
	return g.clock.Elapsed()
}

// Deal resets the game and lays out a new round without starting it.
func (g *Game) Deal(round config.Round, cards []deck.Card) error {
	g.Reset()
	if err := g.State.Deal(round, cards); err != nil {
		return err
	}
	g.roundID = uuid.New()
	g.log = g.baseLog.With(
		"round_id", g.roundID.String(),
		"tier", string(round.Tier),
		"generation", g.gen,
	)
	g.log.Info("round dealt", "pairs", len(cards)/2, "time_limit", round.TimeLimit, "preview", round.Preview)
	g.listener.BoardChanged()
	return nil
}

// Start opens the dealt round. With preview enabled every card is shown and
// input stays locked for the preview duration before the clock starts.
func (g *Game) Start() error {
	round := g.State.Round
	if round.Preview && round.PreviewFor > 0 {
		if err := g.State.Preview(context.Background()); err != nil {
			return err
		}
		g.listener.BoardChanged()
		g.after(round.PreviewFor, func() {
			if err := g.begin(); err != nil {
				g.log.Error("could not begin round after preview", "error", err)
			}
		})
		return nil
	}
	return g.begin()
}

func (g *Game) begin() error {
	if err := g.State.Begin(context.Background()); err != nil {
		return err
	}
	g.clock.Start(g.handleTick)
	g.log.Debug("round started")
	g.listener.BoardChanged()
	return nil
}

// Reset stops the clock, cancels every deferred action and returns the state
// machine to idle. Anything scheduled before the reset can no longer touch
// the game.
func (g *Game) Reset() {
	g.gen++
	g.cancelAll()
	g.clock.Reset()
	g.State.Reset(context.Background())
	g.roundID = uuid.Nil
	g.log = g.baseLog
	g.listener.BoardChanged()
	g.listener.MovesChanged(0)
	g.listener.ElapsedChanged(0)
}

// HandleFlip forwards a card selection. It reports whether the flip was
// accepted.
func (g *Game) HandleFlip(index int) bool {
	before := g.State.Moves
	if !g.State.Flip(context.Background(), index) {
		return false
	}
	g.listener.BoardChanged()
	if g.State.Moves != before {
		g.listener.MovesChanged(g.State.Moves)
	}

	switch {
	case g.State.MismatchPending():
		g.after(g.State.Round.MismatchDelay, g.unflip)
	case g.State.AllMatched():
		g.complete()
	}
	return true
}

func (g *Game) unflip() {
	if err := g.State.Unflip(context.Background()); err != nil {
		g.log.Warn("could not turn pair back", "error", err)
		return
	}
	g.listener.BoardChanged()
}

func (g *Game) handleTick(elapsed int) {
	g.listener.ElapsedChanged(elapsed)

	round := g.State.Round
	if round.TimeLimit && elapsed >= round.TimeCap && g.State.Playing() {
		g.timeout()
	}
}

func (g *Game) complete() {
	g.clock.Stop()
	o := Outcome{
		RoundID: g.roundID,
		Tier:    g.State.Round.Tier,
		Reason:  state.Completed,
		Time:    g.clock.Elapsed(),
		Moves:   g.State.Moves,
	}

	if g.ledger != nil {
		newBest, err := g.ledger.RecordIfBetter(o.Tier, o.Time, o.Moves)
		if err != nil {
			g.log.Error("could not record score", "error", err)
			o.Err = err
		}
		o.NewBest = newBest
	}

	g.log.Info("round completed", "time", o.Time, "moves", o.Moves, "new_best", o.NewBest)
	g.notify(g.State.Round.CompleteDelay, o)
}

func (g *Game) timeout() {
	g.clock.Stop()
	g.cancelAll()
	if err := g.State.Timeout(context.Background()); err != nil {
		g.log.Warn("could not end round on timeout", "error", err)
		return
	}
	g.listener.BoardChanged()

	o := Outcome{
		RoundID: g.roundID,
		Tier:    g.State.Round.Tier,
		Reason:  state.TimedOut,
		Time:    g.clock.Elapsed(),
		Moves:   g.State.Moves,
	}
	g.log.Info("round timed out", "time", o.Time, "moves", o.Moves)
	g.notify(g.State.Round.TimeoutDelay, o)
}

func (g *Game) notify(delay time.Duration, o Outcome) {
	if delay <= 0 {
		g.listener.RoundFinished(o)
		return
	}
	g.after(delay, func() { g.listener.RoundFinished(o) })
}

// after schedules f for the current generation.
func (g *Game) after(d time.Duration, f func()) {
	gen := g.gen
	var task schedule.Task
	task = g.sched.AfterFunc(d, func() {
		g.forget(task)
		if gen != g.gen {
			return
		}
		f()
	})
	g.tasks = append(g.tasks, task)
}

func (g *Game) forget(task schedule.Task) {
	for i, t := range g.tasks {
		if t == task {
			g.tasks = append(g.tasks[:i], g.tasks[i+1:]...)
			return
		}
	}
}

func (g *Game) cancelAll() {
	for _, t := range g.tasks {
		t.Stop()
	}
	g.tasks = nil
}
