package state

import (
	"context"
	"fmt"

	"go-match/internal/config"
	"go-match/internal/deck"

	"github.com/looplab/fsm"
)

// FSM states.
const (
	StateIdle           = "idle"
	StatePreviewing     = "previewing"
	StateAwaitingFirst  = "awaitingFirst"
	StateAwaitingSecond = "awaitingSecond"
	StateResolving      = "resolving"
	StateFinished       = "finished"
)

// FSM events.
const (
	EventPreview      = "preview"
	EventBegin        = "begin"
	EventSelectFirst  = "selectFirst"
	EventSelectSecond = "selectSecond"
	EventMatched      = "matched"
	EventUnflip       = "unflip"
	EventComplete     = "complete"
	EventTimeout      = "timeout"
	EventReset        = "reset"
)

// Reason says how a round ended.
type Reason int

const (
	Completed Reason = iota + 1
	TimedOut
)

func (r Reason) String() string {
	switch r {
	case Completed:
		return "completed"
	case TimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// Turn is the pending selection of the current round. Exactly one of the
// variants below is held at any time.
type Turn interface {
	isTurn()
}

// NoneSelected: no card is pending.
type NoneSelected struct{}

// OneSelected: the first card of a turn is face up.
type OneSelected struct {
	First int
}

// Resolving: two cards are face up and input is locked until they are
// resolved.
type Resolving struct {
	First, Second int
}

// Finished: the round is over and input stays locked.
type Finished struct {
	Reason Reason
}

func (NoneSelected) isTurn() {}
func (OneSelected) isTurn()  {}
func (Resolving) isTurn()    {}
func (Finished) isTurn()     {}

// State is the round data plus the FSM that guards it. It is not safe for
// concurrent use; callers serialize access on one event loop.
type State struct {
	Round   config.Round
	Cards   []deck.Card
	Moves   int
	Matched int
	Turn    Turn
	FSM     *fsm.FSM
}

// NewState returns an idle state machine with no cards.
func NewState() *State {
	s := &State{Turn: NoneSelected{}}
	s.FSM = fsm.NewFSM(
		StateIdle,
		getStateTransitions(),
		getStateCallbacks(s),
	)
	return s
}

// Deal loads the cards of a new round. It is only valid while idle.
func (s *State) Deal(round config.Round, cards []deck.Card) error {
	if !s.FSM.Is(StateIdle) {
		return fmt.Errorf("cannot deal a round while %s", s.FSM.Current())
	}
	if len(cards) == 0 || len(cards)%2 != 0 {
		return fmt.Errorf("cannot deal %d cards", len(cards))
	}
	s.Round = round
	s.Cards = cards
	s.Moves = 0
	s.Matched = 0
	s.Turn = NoneSelected{}
	return nil
}

// Preview shows every card with input locked.
func (s *State) Preview(ctx context.Context) error {
	return s.FSM.Event(ctx, EventPreview)
}

// Begin hides any previewed cards and opens the first turn.
func (s *State) Begin(ctx context.Context) error {
	if len(s.Cards) == 0 {
		return fmt.Errorf("cannot begin a round without cards")
	}
	return s.FSM.Event(ctx, EventBegin)
}

// Flip applies a player's selection and reports whether it was accepted.
// Selections of unknown, face-up or matched cards, and any selection while
// input is locked, are ignored.
func (s *State) Flip(ctx context.Context, index int) bool {
	if s.Locked() || index < 0 || index >= len(s.Cards) {
		return false
	}
	if c := s.Cards[index]; c.Revealed || c.Matched {
		return false
	}

	event := EventSelectFirst
	if s.FSM.Is(StateAwaitingSecond) {
		event = EventSelectSecond
	}
	return s.FSM.Event(ctx, event, index) == nil
}

// Unflip turns a mismatched pair face down and opens the next turn.
func (s *State) Unflip(ctx context.Context) error {
	return s.FSM.Event(ctx, EventUnflip)
}

// Timeout ends the round because the time limit was reached.
func (s *State) Timeout(ctx context.Context) error {
	return s.FSM.Event(ctx, EventTimeout)
}

// Reset discards the round and returns to idle. Resetting an idle machine is
// a no-op.
func (s *State) Reset(ctx context.Context) {
	if s.FSM.Is(StateIdle) {
		s.clear()
		return
	}
	_ = s.FSM.Event(ctx, EventReset)
}

func getStateTransitions() []fsm.EventDesc {
	playing := []string{StatePreviewing, StateAwaitingFirst, StateAwaitingSecond, StateResolving}
	return fsm.Events{
		{Name: EventPreview, Src: []string{StateIdle}, Dst: StatePreviewing},
		{Name: EventBegin, Src: []string{StateIdle, StatePreviewing}, Dst: StateAwaitingFirst},

		// Turn handling
		{Name: EventSelectFirst, Src: []string{StateAwaitingFirst}, Dst: StateAwaitingSecond},
		{Name: EventSelectSecond, Src: []string{StateAwaitingSecond}, Dst: StateResolving},
		{Name: EventMatched, Src: []string{StateResolving}, Dst: StateAwaitingFirst},
		{Name: EventUnflip, Src: []string{StateResolving}, Dst: StateAwaitingFirst},

		// Round end
		{Name: EventComplete, Src: []string{StateResolving}, Dst: StateFinished},
		{Name: EventTimeout, Src: playing, Dst: StateFinished},
		{Name: EventReset, Src: append(playing, StateFinished), Dst: StateIdle},
	}
}

func getStateCallbacks(s *State) map[string]fsm.Callback {
	return fsm.Callbacks{
		"enter_" + StatePreviewing: func(ctx context.Context, e *fsm.Event) {
			s.revealAll()
		},
		"before_" + EventBegin: func(ctx context.Context, e *fsm.Event) {
			if e.Src == StatePreviewing {
				s.hideAll()
			}
		},
		"enter_" + StateAwaitingFirst: func(ctx context.Context, e *fsm.Event) {
			s.Turn = NoneSelected{}
		},
		"enter_" + StateAwaitingSecond: func(ctx context.Context, e *fsm.Event) {
			first := e.Args[0].(int)
			s.Cards[first].Revealed = true
			s.Turn = OneSelected{First: first}
		},
		"enter_" + StateResolving: func(ctx context.Context, e *fsm.Event) {
			first := s.Turn.(OneSelected).First
			second := e.Args[0].(int)
			s.Cards[second].Revealed = true
			s.Moves++
			s.Turn = Resolving{First: first, Second: second}

			if s.Cards[first].FaceValue != s.Cards[second].FaceValue {
				// Stay locked until the caller unflips the pair.
				return
			}

			s.Cards[first].Matched = true
			s.Cards[second].Matched = true
			s.Matched++

			if s.AllMatched() {
				e.FSM.Event(ctx, EventComplete)
				return
			}
			e.FSM.Event(ctx, EventMatched)
		},
		"before_" + EventUnflip: func(ctx context.Context, e *fsm.Event) {
			if r, ok := s.Turn.(Resolving); ok {
				s.Cards[r.First].Revealed = false
				s.Cards[r.Second].Revealed = false
			}
		},
		"enter_" + StateFinished: func(ctx context.Context, e *fsm.Event) {
			if e.Event == EventTimeout {
				s.hideAll()
				s.Turn = Finished{Reason: TimedOut}
				return
			}
			s.Turn = Finished{Reason: Completed}
		},
		"enter_" + StateIdle: func(ctx context.Context, e *fsm.Event) {
			s.clear()
		},
	}
}
