package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mcremap/internal/config"
	"mcremap/internal/session"
	"mcremap/internal/slogutil"
)

// getProjectRoot returns the --project directory, or the working directory.
func getProjectRoot() (string, error) {
	if projectFlag != "" {
		return filepath.Abs(projectFlag)
	}
	return os.Getwd()
}

// cliLevel returns the level implied by -v/-q, or nil when neither was given.
func cliLevel() *slog.Level {
	return slogutil.VerbosityLevel(verboseFlag, quietFlag)
}

// loadSettings reads the project configuration, applies flag overrides and
// freezes it.
func loadSettings(root string, overrides func(*config.Config)) (*config.Settings, error) {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	b := config.NewBuilder(cfg)
	if overrides != nil {
		b.Update(overrides)
	}
	return b.Freeze()
}

// withSession opens a session for the current project, runs fn and closes it.
func withSession(cmd *cobra.Command, overrides func(*config.Config), fn func(context.Context, *session.Session) error) error {
	root, err := getProjectRoot()
	if err != nil {
		return err
	}
	settings, err := loadSettings(root, overrides)
	if err != nil {
		return err
	}

	factory := slogutil.NewLoggerFactory(root, settings, cliLevel())
	defer func() { _ = factory.Close() }()
	logger := factory.RemapLogger()
	logger.Debug("Settings frozen", "settings", settings.String())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := session.Open(ctx, session.Options{
		Root:     root,
		Settings: settings,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			logger.Warn("Failed to close session", "error", cerr.Error())
		}
	}()
	return fn(ctx, s)
}

// printResponse writes resp to the command's output in the --format format.
func printResponse(cmd *cobra.Command, resp interface{}) error {
	out, err := FormatResponse(resp, OutputFormat(formatFlag))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}
