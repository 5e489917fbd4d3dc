package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/matt-steen/todo-relay/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configFile string
	cfg        *config.Config
	loader     *config.Loader
	logFile    *os.File
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "todo",
		Short:         "Shared todo lists: keep your own todos and send todos to others",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logFile != nil {
				logFile.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.todo/config.yaml)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(panelCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(addCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() error {
	loader = config.NewLoader(configFile)

	var err error

	cfg, err = loader.Load()
	if err != nil {
		return err
	}

	return setupLogging(cfg.Log)
}

// setupLogging sends the global logger to the log file, as the panel owns the terminal.
func setupLogging(logCfg config.LogConfig) error {
	filePerms := 0o666
	dirPerms := 0o755

	if err := os.MkdirAll(filepath.Dir(logCfg.File), fs.FileMode(dirPerms)); err != nil {
		return fmt.Errorf("error creating log directory: %w", err)
	}

	var err error

	logFile, err = os.OpenFile(logCfg.File, os.O_RDWR|os.O_CREATE|os.O_APPEND, fs.FileMode(filePerms))
	if err != nil {
		return fmt.Errorf("error opening log file %s: %w", logCfg.File, err)
	}

	zerolog.SetGlobalLevel(logCfg.LogLevel())

	log.Logger = log.With().Caller().Logger().Output(zerolog.ConsoleWriter{
		Out: logFile, TimeFormat: "2006-01-02_15:04:05",
	})

	return nil
}
