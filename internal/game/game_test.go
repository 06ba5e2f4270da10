package game

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"go-match/internal/config"
	"go-match/internal/deck"
	"go-match/internal/schedule"
	"go-match/internal/state"
)

// MockRecorder implements Recorder for testing.
type MockRecorder struct {
	Calls []recordCall
	Err   error
}

type recordCall struct {
	Tier  config.Tier
	Time  int
	Moves int
}

func (m *MockRecorder) RecordIfBetter(tier config.Tier, time, moves int) (bool, error) {
	m.Calls = append(m.Calls, recordCall{tier, time, moves})
	if m.Err != nil {
		return false, m.Err
	}
	return true, nil
}

// recordingListener keeps every notification.
type recordingListener struct {
	moves    []int
	elapsed  []int
	boards   int
	outcomes []Outcome
}

func (l *recordingListener) MovesChanged(m int)      { l.moves = append(l.moves, m) }
func (l *recordingListener) ElapsedChanged(s int)    { l.elapsed = append(l.elapsed, s) }
func (l *recordingListener) BoardChanged()           { l.boards++ }
func (l *recordingListener) RoundFinished(o Outcome) { l.outcomes = append(l.outcomes, o) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// pairedLayout puts the two cards of pair k at 2k and 2k+1.
func pairedLayout(pairs int) []deck.Card {
	cards := make([]deck.Card, 0, 2*pairs)
	for k := 0; k < pairs; k++ {
		face := fmt.Sprintf("img-%d", k)
		cards = append(cards, deck.Card{ID: 2 * k, FaceValue: face}, deck.Card{ID: 2*k + 1, FaceValue: face})
	}
	return cards
}

func roundFor(tier config.Tier, opts config.RoundOptions) config.Round {
	d, _ := config.DifficultyFor(tier)
	return config.Default().Game.Round(d, opts)
}

type fixture struct {
	sched    *schedule.Manual
	recorder *MockRecorder
	listener *recordingListener
	game     *Game
}

func newFixture(t *testing.T, opts config.RoundOptions) *fixture {
	t.Helper()
	f := &fixture{
		sched:    schedule.NewManual(),
		recorder: &MockRecorder{},
		listener: &recordingListener{},
	}
	f.game = NewGame(f.sched, f.recorder, f.listener, quietLogger())
	if err := f.game.Deal(roundFor(config.Easy, opts), pairedLayout(8)); err != nil {
		t.Fatalf("Deal failed: %v", err)
	}
	if err := f.game.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return f
}

func TestGame_MatchNeedsNoDelay(t *testing.T) {
	f := newFixture(t, config.RoundOptions{})

	if !f.game.HandleFlip(0) || !f.game.HandleFlip(1) {
		t.Fatal("flips should be accepted")
	}
	if f.game.State.Matched != 1 {
		t.Errorf("expected 1 matched pair, got %d", f.game.State.Matched)
	}
	if !f.game.HandleFlip(2) {
		t.Error("a new turn should begin right after a match")
	}
	if len(f.listener.moves) == 0 || f.listener.moves[len(f.listener.moves)-1] != 1 {
		t.Errorf("expected a moves notification of 1, got %v", f.listener.moves)
	}
}

func TestGame_MismatchResolvesAfterDelay(t *testing.T) {
	f := newFixture(t, config.RoundOptions{})

	f.game.HandleFlip(0)
	f.game.HandleFlip(2)

	if f.game.HandleFlip(4) {
		t.Error("board should be locked while the pair resolves")
	}

	f.sched.Advance(999 * time.Millisecond)
	if !f.game.State.MismatchPending() {
		t.Fatal("pair should still be showing before the delay elapses")
	}

	f.sched.Advance(time.Millisecond)
	if f.game.State.Cards[0].Revealed || f.game.State.Cards[2].Revealed {
		t.Error("mismatched cards should be face down after the delay")
	}
	if _, ok := f.game.State.Turn.(state.NoneSelected); !ok {
		t.Errorf("pending selection should clear, got %#v", f.game.State.Turn)
	}
	if !f.game.HandleFlip(4) {
		t.Error("a new turn should begin after the pair resolves")
	}
	if f.game.State.Moves != 1 {
		t.Errorf("expected 1 move, got %d", f.game.State.Moves)
	}
}

func TestGame_Completion(t *testing.T) {
	f := newFixture(t, config.RoundOptions{})

	// One wasted turn, then every pair in order.
	f.sched.Advance(3 * time.Second)
	f.game.HandleFlip(0)
	f.game.HandleFlip(3)
	f.sched.Advance(time.Second)
	for k := 0; k < 8; k++ {
		f.game.HandleFlip(2 * k)
		f.game.HandleFlip(2*k + 1)
	}

	if reason, ok := f.game.State.Finished(); !ok || reason != state.Completed {
		t.Fatalf("round should be completed, got %v", f.game.State.FSM.Current())
	}
	if len(f.recorder.Calls) != 1 {
		t.Fatalf("RecordIfBetter should be called once, got %d", len(f.recorder.Calls))
	}
	call := f.recorder.Calls[0]
	if call.Tier != config.Easy || call.Time != 4 || call.Moves != 9 {
		t.Errorf("unexpected record %+v", call)
	}

	// The notification waits for the final flip to settle.
	if len(f.listener.outcomes) != 0 {
		t.Error("completion should be notified after a short delay")
	}
	f.sched.Advance(300 * time.Millisecond)
	if len(f.listener.outcomes) != 1 {
		t.Fatalf("expected one outcome, got %d", len(f.listener.outcomes))
	}
	o := f.listener.outcomes[0]
	if o.Reason != state.Completed || o.Time != 4 || o.Moves != 9 || !o.NewBest {
		t.Errorf("unexpected outcome %+v", o)
	}
	if o.RoundID != f.game.RoundID() {
		t.Error("outcome should carry the round ID")
	}

	// No more input, and the clock is frozen.
	if f.game.HandleFlip(0) {
		t.Error("no flips after completion")
	}
	f.sched.Advance(10 * time.Second)
	if f.game.Elapsed() != 4 {
		t.Errorf("clock should stop at completion, got %d", f.game.Elapsed())
	}
	if len(f.recorder.Calls) != 1 {
		t.Error("score must be recorded exactly once")
	}
}

func TestGame_CompletionSurvivesPersistenceFailure(t *testing.T) {
	f := newFixture(t, config.RoundOptions{})
	f.recorder.Err = errors.New("disk full")

	for k := 0; k < 8; k++ {
		f.game.HandleFlip(2 * k)
		f.game.HandleFlip(2*k + 1)
	}
	f.sched.Advance(time.Second)

	if len(f.listener.outcomes) != 1 {
		t.Fatalf("completion must still be notified, got %d outcomes", len(f.listener.outcomes))
	}
	o := f.listener.outcomes[0]
	if o.Err == nil || o.NewBest {
		t.Errorf("outcome should carry the persistence error, got %+v", o)
	}
	if o.Reason != state.Completed {
		t.Errorf("expected completed, got %v", o.Reason)
	}
}

func TestGame_Timeout(t *testing.T) {
	f := newFixture(t, config.RoundOptions{TimeLimit: true})

	f.game.HandleFlip(0)
	f.game.HandleFlip(1) // matched, stays face up
	f.game.HandleFlip(2)

	f.sched.Advance(59 * time.Second)
	if !f.game.State.Playing() {
		t.Fatal("round should still be running at 59s")
	}

	f.sched.Advance(time.Second)
	if reason, ok := f.game.State.Finished(); !ok || reason != state.TimedOut {
		t.Fatalf("round should time out at 60s, got %s", f.game.State.FSM.Current())
	}
	for i, c := range f.game.State.Cards {
		if c.Revealed {
			t.Errorf("card %d should be face down after timeout", i)
		}
	}
	if f.game.HandleFlip(4) {
		t.Error("input stays locked after timeout")
	}
	if len(f.recorder.Calls) != 0 {
		t.Error("a timed-out round must not be recorded")
	}

	f.sched.Advance(200 * time.Millisecond)
	if len(f.listener.outcomes) != 1 || f.listener.outcomes[0].Reason != state.TimedOut {
		t.Fatalf("expected a timeout outcome, got %+v", f.listener.outcomes)
	}
	if f.listener.outcomes[0].Time != 60 {
		t.Errorf("expected time 60, got %d", f.listener.outcomes[0].Time)
	}

	f.sched.Advance(5 * time.Second)
	if f.game.Elapsed() != 60 {
		t.Errorf("clock should stop at the cap, got %d", f.game.Elapsed())
	}
}

func TestGame_TimeoutDuringMismatch(t *testing.T) {
	f := newFixture(t, config.RoundOptions{TimeLimit: true})

	f.sched.Advance(59*time.Second + 500*time.Millisecond)
	f.game.HandleFlip(0)
	f.game.HandleFlip(2)

	f.sched.Advance(2 * time.Second)
	if reason, _ := f.game.State.Finished(); reason != state.TimedOut {
		t.Fatalf("expected timeout, got %s", f.game.State.FSM.Current())
	}
	if !f.game.State.Locked() {
		t.Error("a pending unflip must not unlock a timed-out round")
	}
}

func TestGame_NoTimeLimit(t *testing.T) {
	f := newFixture(t, config.RoundOptions{})

	f.sched.Advance(120 * time.Second)
	if !f.game.State.Playing() {
		t.Error("without a time limit the round keeps going")
	}
	if f.game.Elapsed() != 120 {
		t.Errorf("expected 120s elapsed, got %d", f.game.Elapsed())
	}
	if got := f.listener.elapsed[len(f.listener.elapsed)-1]; got != 120 {
		t.Errorf("last elapsed notification should be 120, got %d", got)
	}
}

func TestGame_ResetCancelsPendingMismatch(t *testing.T) {
	f := newFixture(t, config.RoundOptions{})
	f.game.HandleFlip(0)
	f.game.HandleFlip(2)
	oldGen := f.game.Generation()

	// Start a new round before the mismatch delay runs out.
	f.sched.Advance(500 * time.Millisecond)
	if err := f.game.Deal(roundFor(config.Easy, config.RoundOptions{}), pairedLayout(8)); err != nil {
		t.Fatal(err)
	}
	if err := f.game.Start(); err != nil {
		t.Fatal(err)
	}
	if f.game.Generation() == oldGen {
		t.Fatal("a new round should get a new generation")
	}
	f.game.HandleFlip(0)

	f.sched.Advance(2 * time.Second)

	if !f.game.State.Cards[0].Revealed {
		t.Error("the stale unflip must not touch the new round")
	}
	if turn, ok := f.game.State.Turn.(state.OneSelected); !ok || turn.First != 0 {
		t.Errorf("new round should still hold its first selection, got %#v", f.game.State.Turn)
	}
	if f.game.State.Moves != 0 {
		t.Errorf("new round moves should be 0, got %d", f.game.State.Moves)
	}
	if f.game.Elapsed() != 2 {
		t.Errorf("new round clock should count from its own start, got %d", f.game.Elapsed())
	}
}

func TestGame_ResetStopsClock(t *testing.T) {
	f := newFixture(t, config.RoundOptions{TimeLimit: true})
	f.sched.Advance(10 * time.Second)

	f.game.Reset()
	f.sched.Advance(2 * time.Minute)

	if f.game.Elapsed() != 0 {
		t.Errorf("reset clock should stay at 0, got %d", f.game.Elapsed())
	}
	if !f.game.State.FSM.Is(state.StateIdle) {
		t.Errorf("expected idle, got %s", f.game.State.FSM.Current())
	}
	if len(f.listener.outcomes) != 0 {
		t.Error("a reset round must not time out later")
	}
	if f.sched.Pending() != 0 {
		t.Errorf("expected no pending tasks, got %d", f.sched.Pending())
	}
}

func TestGame_Preview(t *testing.T) {
	f := newFixture(t, config.RoundOptions{Preview: true})

	for i, c := range f.game.State.Cards {
		if !c.Revealed {
			t.Fatalf("card %d should be shown during preview", i)
		}
	}
	if f.game.HandleFlip(0) {
		t.Error("input must be locked during preview")
	}

	f.sched.Advance(2 * time.Second)
	if f.game.Elapsed() != 0 {
		t.Error("the clock starts after the preview")
	}

	f.sched.Advance(time.Second)
	for i, c := range f.game.State.Cards {
		if c.Revealed {
			t.Fatalf("card %d should be hidden after preview", i)
		}
	}
	if !f.game.HandleFlip(0) {
		t.Error("flips accepted after preview")
	}

	f.sched.Advance(time.Second)
	if f.game.Elapsed() != 1 {
		t.Errorf("expected 1s after preview, got %d", f.game.Elapsed())
	}
}

func TestGame_ResetDuringPreview(t *testing.T) {
	f := newFixture(t, config.RoundOptions{Preview: true})
	f.game.Reset()
	f.sched.Advance(5 * time.Second)

	if !f.game.State.FSM.Is(state.StateIdle) {
		t.Errorf("stale preview end must not start a round, got %s", f.game.State.FSM.Current())
	}
	if f.game.Elapsed() != 0 {
		t.Errorf("clock should not run, got %d", f.game.Elapsed())
	}
}
