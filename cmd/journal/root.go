package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Proton-105/voice-journal/internal/conversation"
	apperrors "github.com/Proton-105/voice-journal/internal/errors"
	"github.com/Proton-105/voice-journal/internal/kv"
	"github.com/Proton-105/voice-journal/internal/lifecycle"
	"github.com/Proton-105/voice-journal/internal/state"
	"github.com/Proton-105/voice-journal/pkg/config"
	"github.com/Proton-105/voice-journal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// app carries what every subcommand needs once configuration is loaded.
type app struct {
	cfg        *config.Config
	viper      *viper.Viper
	log        *slog.Logger
	errHandler *apperrors.Handler
	closeLog   func()
}

func newRootCmd() *cobra.Command {
	var (
		configDir string
		env       string
	)

	a := &app{}

	root := &cobra.Command{
		Use:           "journal",
		Short:         "Voice journal that turns what you share into credits",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(configDir, env)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.closeLog != nil {
				a.closeLog()
			}
		},
	}

	root.PersistentFlags().StringVar(&configDir, "config-dir", config.DefaultDir, "directory holding <env>.yaml files")
	root.PersistentFlags().StringVar(&env, "env", "", "config environment, defaults to APP_ENV")

	root.AddCommand(
		newConsoleCmd(a),
		newTelegramCmd(a),
		newExportCmd(a),
	)

	return root
}

func (a *app) init(configDir, env string) error {
	cfg, v, err := config.LoadFrom(configDir, env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, closeLog, err := logger.New(*cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	a.cfg = cfg
	a.viper = v
	a.log = log
	a.closeLog = closeLog
	a.errHandler = apperrors.NewHandler(log, cfg.Sentry.Enabled)

	config.Watch(v, log, func(updated *config.Config) {
		if err := logger.SetLevel(updated.Logger.Level); err != nil {
			log.Warn("ignoring log level update", slog.Any("error", err))
			return
		}
		log.Info("log level updated", slog.String("level", updated.Logger.Level))
	})

	log.Info("configuration loaded",
		slog.String("storage", cfg.Storage.Driver),
		slog.String("overflow", cfg.Journal.Overflow),
	)

	return nil
}

// machineConfig returns the conversation settings shared by every driver.
func (a *app) machineConfig(sessionID string, store kv.Store) conversation.Config {
	return conversation.Config{
		SessionID: sessionID,
		Storage:   state.NewRepository(store, a.cfg.Storage.KeyPrefix, a.log),
		Overflow:  conversation.OverflowPolicy(a.cfg.Journal.Overflow),
		Log:       a.log,
	}
}

// runShutdown executes shutdown hooks with a fresh deadline; ctx is usually already canceled.
func (a *app) runShutdown(shutdown *lifecycle.Shutdown) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := shutdown.Execute(ctx); err != nil {
		a.log.Error("shutdown finished with errors", slog.Any("error", err))
	}
}
