// Copyright (c) 2025 SQLPilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sqlpilot/cli/internal/config"
	"sqlpilot/cli/internal/httperrors"
	"sqlpilot/cli/internal/keychain"
	"sqlpilot/cli/internal/logging"
	"sqlpilot/cli/internal/models"
	"sqlpilot/cli/internal/workbench"
	"sqlpilot/cli/internal/xdg"
)

const logFileName = "sqlpilot.log"

// session bundles what a command needs for one invocation.
type session struct {
	cfg    config.Config
	logger *zap.Logger
	wb     *workbench.Workbench
}

// openSession loads configuration, builds the logger and the workbench.
// Callers must defer close.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	logger = logger.With(zap.String("command", cmd.CommandPath()))

	wb, err := workbench.New(cfg,
		workbench.WithLogger(logger),
		workbench.WithNotifier(httperrors.NewTerminal(!noHints)))
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, wb: wb}, nil
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	file, err := xdg.StateFile(logFileName)
	if err != nil {
		file = ""
	}
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: file, Verbose: verbose})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	return logger, nil
}

func (s *session) close() {
	s.wb.Close()
}

// exportDir returns the configured export directory or the XDG data dir.
func (s *session) exportDir() (string, error) {
	if s.cfg.ExportDir != "" {
		return s.cfg.ExportDir, nil
	}
	return xdg.DataDir()
}

// keychain opens the OS keychain on demand; most commands never need it.
func (s *session) keychain() (*keychain.Manager, error) {
	km, err := keychain.NewManager()
	if err != nil {
		s.logger.Warn("keychain unavailable", zap.Error(err))
		return nil, err
	}
	return km, nil
}

// target makes id the active connection, or when id is empty loads the
// connection list so the first one becomes active.
func (s *session) target(ctx context.Context, id string) (models.ConnectionID, error) {
	if id != "" {
		cid := models.ConnectionID(id)
		s.wb.Selector.Select(cid)
		return cid, nil
	}
	if _, err := s.wb.Registry.List(ctx); err != nil {
		return "", err
	}
	active, ok := s.wb.Selector.Active()
	if !ok {
		pterm.Info.Println("No connections registered. Create one with: sqlpilot connections create")
		return "", errReported
	}
	return active, nil
}
