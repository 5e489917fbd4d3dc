// Package config loads the settings of the server and the panel.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. TODO_SERVER_ADDR.
const EnvPrefix = "TODO"

// Config is the whole configuration file.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Client ClientConfig `mapstructure:"client"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Addr   string `mapstructure:"addr"`
	DBFile string `mapstructure:"db_file"`
	// HideTeamSidebar is handed to every client and pushed again when it changes.
	HideTeamSidebar bool `mapstructure:"hide_team_sidebar"`
}

type ClientConfig struct {
	URL          string        `mapstructure:"url"`
	User         string        `mapstructure:"user"`
	ToastTimeout time.Duration `mapstructure:"toast_timeout"`
	StaleAfter   time.Duration `mapstructure:"stale_after"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Dir is where the configuration, database and log live unless told otherwise.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".todo"
	}

	return filepath.Join(home, ".todo")
}

func setDefaults(v *viper.Viper) {
	dir := Dir()

	v.SetDefault("server.addr", "localhost:8065")
	v.SetDefault("server.db_file", filepath.Join(dir, "todo.sqlite"))
	v.SetDefault("server.hide_team_sidebar", false)
	v.SetDefault("client.url", "http://localhost:8065")
	v.SetDefault("client.user", os.Getenv("USER"))
	v.SetDefault("client.toast_timeout", 3*time.Second)
	v.SetDefault("client.stale_after", time.Hour)
	v.SetDefault("log.file", filepath.Join(dir, "debug.log"))
	v.SetDefault("log.level", "info")
}

// Loader reads the configuration from a YAML file and the environment.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a Loader for the given file. An empty path means config.yaml in Dir().
func NewLoader(path string) *Loader {
	v := viper.New()

	if path == "" {
		path = filepath.Join(Dir(), "config.yaml")
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return &Loader{v: v}
}

// Load reads the file if it exists and returns the merged configuration.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("error reading config %s: %w", l.v.ConfigFileUsed(), err)
	}

	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	return &cfg, nil
}

// Watch calls fn with the new configuration every time the file changes.
func (l *Loader) Watch(fn func(*Config)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := l.decode()
		if err != nil {
			log.Warn().Err(err).Str("file", e.Name).Msg("ignoring invalid config change")

			return
		}

		log.Info().Str("file", e.Name).Msg("config changed")
		fn(cfg)
	})
	l.v.WatchConfig()
}

// LogLevel parses the configured level, falling back to info.
func (c LogConfig) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Level))
	if err != nil || c.Level == "" {
		return zerolog.InfoLevel
	}

	return level
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError

	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}
