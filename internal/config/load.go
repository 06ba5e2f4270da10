package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const appName = "go-match"

// EnvPrefix is the prefix of environment overrides, e.g. GOMATCH_GAME_TIME_LIMIT.
const EnvPrefix = "GOMATCH"

// ConfigHome returns XDG_CONFIG_HOME or its default.
func ConfigHome() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DataHome returns XDG_DATA_HOME or its default.
func DataHome() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// StateHome returns XDG_STATE_HOME or its default.
func StateHome() string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, fallback)
}

// FilePath returns the default location of config.toml.
func FilePath() string {
	return filepath.Join(ConfigHome(), appName, "config.toml")
}

// StorePath returns the configured key-value file or the XDG default.
func (c *Config) StorePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return filepath.Join(DataHome(), appName, "store.json")
}

// LogPath returns the configured log file or the XDG default.
func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(StateHome(), appName, appName+".log")
}

// Load reads configuration from path (FilePath when empty) and from
// GOMATCH_* environment variables, which take precedence. A missing file is
// not an error. The result is validated before it is returned.
func Load(path string) (*Config, error) {
	if path == "" {
		path = FilePath()
	}

	v := viper.New()
	setDefaults(v, Default())
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to access config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags of cfg.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("game.default_difficulty", d.Game.DefaultDifficulty)
	v.SetDefault("game.time_limit", d.Game.TimeLimit)
	v.SetDefault("game.time_cap_seconds", d.Game.TimeCapSeconds)
	v.SetDefault("game.preview", d.Game.Preview)
	v.SetDefault("game.preview_seconds", d.Game.PreviewSeconds)
	v.SetDefault("game.mismatch_delay_ms", d.Game.MismatchDelayMS)
	v.SetDefault("game.complete_delay_ms", d.Game.CompleteDelayMS)
	v.SetDefault("game.timeout_delay_ms", d.Game.TimeoutDelayMS)

	v.SetDefault("images.list_url", d.Images.ListURL)
	v.SetDefault("images.placeholder_url", d.Images.PlaceholderURL)
	v.SetDefault("images.timeout_seconds", d.Images.TimeoutSeconds)
	v.SetDefault("images.offline", d.Images.Offline)
	v.SetDefault("images.paths", d.Images.Paths)

	v.SetDefault("storage.path", d.Storage.Path)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}

// WriteDefault writes the default configuration to path, creating the
// directory if needed. An existing file is left alone.
func WriteDefault(path string) (bool, error) {
	if path == "" {
		path = FilePath()
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("error creating config directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return false, fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(Default()); err != nil {
		return false, fmt.Errorf("error encoding config: %w", err)
	}
	return true, nil
}
