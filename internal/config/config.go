package config

import (
	"fmt"
	"strings"
	"time"
)

// Tier names one of the three difficulty levels. It doubles as the key of the
// best-score table.
type Tier string

const (
	Easy   Tier = "easy"
	Medium Tier = "medium"
	Hard   Tier = "hard"
)

// Tiers lists the difficulty tiers in display order.
var Tiers = []Tier{Easy, Medium, Hard}

// Difficulty is the board shape for a tier.
type Difficulty struct {
	Tier    Tier
	Label   string
	Pairs   int
	Columns int
}

var difficulties = map[Tier]Difficulty{
	Easy:   {Tier: Easy, Label: "Easy", Pairs: 8, Columns: 4},
	Medium: {Tier: Medium, Label: "Medium", Pairs: 12, Columns: 6},
	Hard:   {Tier: Hard, Label: "Hard", Pairs: 16, Columns: 8},
}

// DifficultyFor returns the board shape for a tier.
func DifficultyFor(t Tier) (Difficulty, error) {
	d, ok := difficulties[t]
	if !ok {
		return Difficulty{}, fmt.Errorf("unknown difficulty %q", t)
	}
	return d, nil
}

// ParseTier accepts a tier name in any case.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := difficulties[t]; !ok {
		return "", fmt.Errorf("unknown difficulty %q (use easy, medium or hard)", s)
	}
	return t, nil
}

// Config holds all application configuration.
type Config struct {
	Game    GameConfig    `mapstructure:"game" toml:"game" validate:"required"`
	Images  ImagesConfig  `mapstructure:"images" toml:"images" validate:"required"`
	Storage StorageConfig `mapstructure:"storage" toml:"storage"`
	Log     LogConfig     `mapstructure:"log" toml:"log" validate:"required"`
}

// GameConfig holds the round rules. Durations are kept as integers so the
// file stays readable.
type GameConfig struct {
	DefaultDifficulty string `mapstructure:"default_difficulty" toml:"default_difficulty" validate:"required,oneof=easy medium hard"`
	TimeLimit         bool   `mapstructure:"time_limit" toml:"time_limit"`
	TimeCapSeconds    int    `mapstructure:"time_cap_seconds" toml:"time_cap_seconds" validate:"gt=0"`
	Preview           bool   `mapstructure:"preview" toml:"preview"`
	PreviewSeconds    int    `mapstructure:"preview_seconds" toml:"preview_seconds" validate:"gte=0"`
	MismatchDelayMS   int    `mapstructure:"mismatch_delay_ms" toml:"mismatch_delay_ms" validate:"gte=0"`
	CompleteDelayMS   int    `mapstructure:"complete_delay_ms" toml:"complete_delay_ms" validate:"gte=0"`
	TimeoutDelayMS    int    `mapstructure:"timeout_delay_ms" toml:"timeout_delay_ms" validate:"gte=0"`
}

// ImagesConfig configures where card faces come from.
type ImagesConfig struct {
	ListURL        string   `mapstructure:"list_url" toml:"list_url" validate:"required,url"`
	PlaceholderURL string   `mapstructure:"placeholder_url" toml:"placeholder_url" validate:"required,url"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds" toml:"timeout_seconds" validate:"gt=0"`
	Offline        bool     `mapstructure:"offline" toml:"offline"`
	Paths          []string `mapstructure:"paths" toml:"paths"`
}

// StorageConfig points at the key-value file. Empty means the XDG default.
type StorageConfig struct {
	Path string `mapstructure:"path" toml:"path"`
}

// LogConfig controls the slog handler. Empty File means the XDG default.
type LogConfig struct {
	Level string `mapstructure:"level" toml:"level" validate:"required,oneof=debug info warn error"`
	File  string `mapstructure:"file" toml:"file"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Game: GameConfig{
			DefaultDifficulty: string(Medium),
			TimeCapSeconds:    60,
			PreviewSeconds:    3,
			MismatchDelayMS:   1000,
			CompleteDelayMS:   300,
			TimeoutDelayMS:    200,
		},
		Images: ImagesConfig{
			ListURL:        "https://picsum.photos/v2/list",
			PlaceholderURL: "https://picsum.photos/200",
			TimeoutSeconds: 10,
			Paths:          []string{},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// RoundOptions are the per-round toggles the player can change between rounds.
type RoundOptions struct {
	TimeLimit bool
	Preview   bool
}

// Options returns the configured default toggles.
func (g GameConfig) Options() RoundOptions {
	return RoundOptions{TimeLimit: g.TimeLimit, Preview: g.Preview}
}

// Round is the immutable configuration of a single round. It is produced once
// per round start and handed to the state machine.
type Round struct {
	Difficulty
	TimeLimit     bool
	TimeCap       int // seconds
	Preview       bool
	PreviewFor    time.Duration
	MismatchDelay time.Duration
	CompleteDelay time.Duration
	TimeoutDelay  time.Duration
}

// Round builds the round configuration for a difficulty.
func (g GameConfig) Round(d Difficulty, opts RoundOptions) Round {
	return Round{
		Difficulty:    d,
		TimeLimit:     opts.TimeLimit,
		TimeCap:       g.TimeCapSeconds,
		Preview:       opts.Preview,
		PreviewFor:    time.Duration(g.PreviewSeconds) * time.Second,
		MismatchDelay: time.Duration(g.MismatchDelayMS) * time.Millisecond,
		CompleteDelay: time.Duration(g.CompleteDelayMS) * time.Millisecond,
		TimeoutDelay:  time.Duration(g.TimeoutDelayMS) * time.Millisecond,
	}
}
