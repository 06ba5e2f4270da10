package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"go-match/internal/config"
	"go-match/internal/deck"
	"go-match/internal/images"
	"go-match/internal/scoring"
)

// ErrStaleSetup is returned by Begin for a setup whose request has been
// superseded by a newer Request or by Leave.
var ErrStaleSetup = errors.New("round setup was superseded")

// Request is a pending round start. It is created on the event loop.
type Request struct {
	Seq   uint64
	Round config.Round
}

// Setup is a Request with its card faces resolved.
type Setup struct {
	Request
	Images []string
}

// Session maps difficulty choices to rounds, acquires the card faces and
// drives the Game through its start/reset lifecycle.
type Session struct {
	Game   *Game
	Ledger *scoring.Ledger

	config config.GameConfig
	source images.Source
	rng    *rand.Rand
	log    *slog.Logger

	seq     uint64
	current *config.Round
}

// NewSession wires a session. ledger may be nil; rng nil uses the global source.
func NewSession(cfg config.GameConfig, source images.Source, g *Game, ledger *scoring.Ledger, rng *rand.Rand, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		Game:   g,
		Ledger: ledger,
		config: cfg,
		source: source,
		rng:    rng,
		log:    logger.With("component", "session"),
	}
}

// Request resets the game and prepares the round configuration for tier.
// Any earlier request becomes stale. Must run on the event loop.
func (s *Session) Request(tier config.Tier, opts config.RoundOptions) (Request, error) {
	d, err := config.DifficultyFor(tier)
	if err != nil {
		return Request{}, err
	}
	s.seq++
	s.current = nil
	s.Game.Reset()
	return Request{Seq: s.seq, Round: s.config.Round(d, opts)}, nil
}

// Fetch resolves the card faces for req. It blocks on I/O, touches no game
// state and may run off the event loop.
func (s *Session) Fetch(ctx context.Context, req Request) Setup {
	return Setup{Request: req, Images: s.source.Images(ctx, req.Round.Pairs)}
}

// Begin builds the deck and starts the round. A configuration error leaves
// the game idle. Must run on the event loop.
func (s *Session) Begin(setup Setup) error {
	if setup.Seq != s.seq {
		s.log.Debug("dropping stale setup", "seq", setup.Seq, "current", s.seq)
		return ErrStaleSetup
	}

	cards, err := deck.Build(setup.Images, setup.Round.Pairs, s.rng)
	if err != nil {
		s.Game.Reset()
		s.log.Error("could not build deck", "tier", string(setup.Round.Tier), "error", err)
		return err
	}
	if err := s.Game.Deal(setup.Round, cards); err != nil {
		s.Game.Reset()
		return fmt.Errorf("dealing round: %w", err)
	}
	if err := s.Game.Start(); err != nil {
		s.Game.Reset()
		return fmt.Errorf("starting round: %w", err)
	}

	round := setup.Round
	s.current = &round
	return nil
}

// Start runs Request, Fetch and Begin in one go. Only for callers that may
// block the event loop, such as tests and headless use.
func (s *Session) Start(ctx context.Context, tier config.Tier, opts config.RoundOptions) error {
	req, err := s.Request(tier, opts)
	if err != nil {
		return err
	}
	return s.Begin(s.Fetch(ctx, req))
}

// Leave abandons the current round: the clock stops, pending actions are
// cancelled and outstanding fetches become stale.
func (s *Session) Leave() {
	s.seq++
	s.current = nil
	s.Game.Reset()
}

// Round returns the configuration of the round being played, if any.
func (s *Session) Round() (config.Round, bool) {
	if s.current == nil {
		return config.Round{}, false
	}
	return *s.current, true
}

// Bests returns the best-score table for display.
func (s *Session) Bests() scoring.Table {
	if s.Ledger == nil {
		return scoring.NewTable()
	}
	return s.Ledger.Table()
}
