// Package root contains the root command for the application
package root

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"fjacquet/moneyview/internal/config"
	"fjacquet/moneyview/internal/container"
	"fjacquet/moneyview/internal/logging"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input  string
	Output string
}

// ConfigFlags override configuration values when set on the command line.
type ConfigFlags struct {
	LogLevel  string
	LogFormat string
	StorePath string
	TagsFile  string
	Delimiter string
	AIEnabled bool
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "moneyview",
		Short: "A CLI tool to import MT940 bank statements and tag their transactions.",
		Long: `moneyview is a CLI tool that reads MT940 bank statements, turns every
booking into a transaction with a stable id and running balance, tags it by
keyword and keeps the result in a local ledger for balance reports.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to moneyview!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: initializeApp,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer == nil {
				return
			}
			if err := AppContainer.Close(); err != nil {
				Log.Warnf("Failed to release resources: %v", err)
			}
			AppContainer = nil
		},
		SilenceUsage: true,
	}

	// SharedFlags are accessible to all commands
	SharedFlags = CommonFlags{}

	// Overrides holds the configuration flags
	Overrides = ConfigFlags{}

	// AppConfig is the configuration loaded before each command
	AppConfig *config.Config

	// AppContainer holds the wired dependencies of the running command
	AppContainer *container.Container

	initOnce sync.Once
)

// Init initializes the root command and all flags. Calling it again is a no-op.
func Init() {
	initOnce.Do(func() {
		flags := Cmd.PersistentFlags()
		flags.StringVarP(&SharedFlags.Input, "input", "i", "", "Input statement file")
		flags.StringVarP(&SharedFlags.Output, "output", "o", "", "Output file")
		flags.StringVar(&Overrides.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
		flags.StringVar(&Overrides.LogFormat, "log-format", "", "Log format (text, json)")
		flags.StringVar(&Overrides.StorePath, "store", "", "Path of the SQLite ledger")
		flags.StringVar(&Overrides.TagsFile, "tags", "", "Path of the tags YAML file")
		flags.StringVar(&Overrides.Delimiter, "csv-delimiter", "", "CSV delimiter character")
		flags.BoolVar(&Overrides.AIEnabled, "ai-enabled", false, "Ask Gemini for a tag when no keyword matches")
	})
}

func initializeApp(cmd *cobra.Command, args []string) error {
	// PersistentPostRun is skipped when a command fails.
	if AppContainer != nil {
		_ = AppContainer.Close()
		AppContainer = nil
	}
	config.LoadEnv(Log)

	cfg, err := config.InitializeConfig()
	if err != nil {
		return err
	}
	applyOverrides(cmd, cfg)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	Log = config.ConfigureLoggingFromConfig(cfg, Log)

	c, err := container.NewContainerWithLogger(Context(cmd), cfg, logging.NewLogrusAdapterFromLogger(Log))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	AppConfig = cfg
	AppContainer = c
	return nil
}

func applyOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = Overrides.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = Overrides.LogFormat
	}
	if flags.Changed("store") {
		cfg.Store.Path = Overrides.StorePath
	}
	if flags.Changed("tags") {
		cfg.Tags.File = Overrides.TagsFile
	}
	if flags.Changed("csv-delimiter") {
		cfg.Export.Delimiter = Overrides.Delimiter
	}
	if flags.Changed("ai-enabled") {
		cfg.AI.Enabled = Overrides.AIEnabled
	}
}

// GetLogrusAdapter returns the command logger behind the logging.Logger interface.
func GetLogrusAdapter() logging.Logger {
	return logging.NewLogrusAdapterFromLogger(Log)
}

// GetContainer returns the container of the running command, or nil outside one.
func GetContainer() *container.Container {
	return AppContainer
}

// RequireContainer returns the container of the running command or an error
// when the command runs without the root pre-run hook.
func RequireContainer() (*container.Container, error) {
	if AppContainer == nil {
		return nil, errors.New("application not initialized")
	}
	return AppContainer, nil
}

// GetConfig returns the configuration of the running command, or nil outside one.
func GetConfig() *config.Config {
	return AppConfig
}

// Context returns the command context, falling back to context.Background.
func Context(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
