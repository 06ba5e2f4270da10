package state

// Locked reports whether flips are currently refused: before the round
// starts, during the preview, while a pair is resolving and after the end.
func (s *State) Locked() bool {
	return !s.FSM.Is(StateAwaitingFirst) && !s.FSM.Is(StateAwaitingSecond)
}

// Playing reports whether a round has been dealt and has not finished.
func (s *State) Playing() bool {
	return !s.FSM.Is(StateIdle) && !s.FSM.Is(StateFinished)
}

// MismatchPending reports whether two unequal cards are waiting to be
// turned back over.
func (s *State) MismatchPending() bool {
	return s.FSM.Is(StateResolving)
}

// Finished returns the end reason once the round is over.
func (s *State) Finished() (Reason, bool) {
	f, ok := s.Turn.(Finished)
	if !ok {
		return 0, false
	}
	return f.Reason, true
}

// TotalPairs is the number of pairs dealt.
func (s *State) TotalPairs() int {
	return len(s.Cards) / 2
}

// AllMatched reports whether every pair has been found.
func (s *State) AllMatched() bool {
	return len(s.Cards) > 0 && s.Matched == s.TotalPairs()
}

func (s *State) revealAll() {
	for i := range s.Cards {
		s.Cards[i].Revealed = true
	}
}

func (s *State) hideAll() {
	for i := range s.Cards {
		s.Cards[i].Revealed = false
	}
}

func (s *State) clear() {
	s.Cards = nil
	s.Moves = 0
	s.Matched = 0
	s.Turn = NoneSelected{}
}
