package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go-match/internal/config"
	"go-match/internal/game"
	"go-match/internal/images"
	"go-match/internal/logging"
	"go-match/internal/schedule"
	"go-match/internal/scoring"
	"go-match/internal/store"
	"go-match/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var configFile string

// RootCmd starts a game when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "go-match",
	Short: "Memory card-matching game for the terminal",
	Long: `go-match lays out face-down cards in a grid. Flip two at a time to find
every matching pair in as few moves and as little time as possible.

The best time for each difficulty is kept between runs. Card faces come from
a remote image list, a local cache, or local files given with --images.

Examples:
  go-match
  go-match --difficulty hard --time-limit
  go-match -d easy --preview --offline`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPlay,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default $XDG_CONFIG_HOME/go-match/config.toml)")

	flags := RootCmd.Flags()
	flags.StringP("difficulty", "d", "", "difficulty: easy, medium or hard (default from config)")
	flags.BoolP("time-limit", "t", false, "end the round when the time cap is reached")
	flags.BoolP("preview", "p", false, "show every card briefly before the round starts")
	flags.Bool("offline", false, "never fetch the image list from the network")
	flags.StringSlice("images", nil, "files or directories listing card faces")

	RootCmd.AddCommand(scoresCmd)
	RootCmd.AddCommand(configCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

// env is what every command needs once configuration is loaded.
type env struct {
	cfg    *config.Config
	log    *slog.Logger
	store  *store.File
	closer io.Closer
}

func (e *env) Close() {
	if e.closer != nil {
		e.closer.Close()
	}
}

func loadEnv() (*env, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	logger, closer, err := logging.Setup(cfg.LogPath(), cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:    cfg,
		log:    logger,
		store:  store.NewFile(cfg.StorePath()),
		closer: closer,
	}, nil
}

func loadLedger(e *env) *scoring.Ledger {
	ledger := scoring.NewLedger(scoring.NewKVStorage(e.store))
	if err := ledger.Load(); err != nil {
		e.log.Error("could not load best scores, starting empty", "error", err)
	}
	return ledger
}

func runPlay(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("go-match needs an interactive terminal")
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	flags := cmd.Flags()
	tierName, _ := flags.GetString("difficulty")
	if tierName == "" {
		tierName = e.cfg.Game.DefaultDifficulty
	}
	tier, err := config.ParseTier(strings.ToLower(tierName))
	if err != nil {
		return err
	}

	opts := e.cfg.Game.Options()
	if flags.Changed("time-limit") {
		opts.TimeLimit, _ = flags.GetBool("time-limit")
	}
	if flags.Changed("preview") {
		opts.Preview, _ = flags.GetBool("preview")
	}
	if flags.Changed("offline") {
		e.cfg.Images.Offline, _ = flags.GetBool("offline")
	}
	if flags.Changed("images") {
		e.cfg.Images.Paths, _ = flags.GetStringSlice("images")
	}

	var source images.Source = images.NewProvider(e.cfg.Images, e.store, e.log)
	if len(e.cfg.Images.Paths) > 0 {
		source = images.NewLocalSource(e.cfg.Images.Paths, source, e.log)
	}

	ledger := loadLedger(e)
	bridge := &tui.Bridge{}
	g := game.NewGame(schedule.NewDeferred(bridge.Post), ledger, nil, e.log)
	session := game.NewSession(e.cfg.Game, source, g, ledger, nil, e.log)
	model := tui.New(session, e.store, tier, opts, e.log)
	g.SetListener(model)

	p := tea.NewProgram(model, tea.WithAltScreen())
	bridge.Attach(p)

	e.log.Info("starting", "tier", string(tier), "time_limit", opts.TimeLimit, "preview", opts.Preview)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
