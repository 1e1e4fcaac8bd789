package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Proton-105/voice-journal/internal/domain"
	"github.com/Proton-105/voice-journal/internal/state"
	"github.com/Proton-105/voice-journal/internal/valuation"
)

// exportedSession is the persisted view of one session.
type exportedSession struct {
	SessionID string          `json:"session_id" yaml:"session_id"`
	LoggedIn  bool            `json:"logged_in" yaml:"logged_in"`
	Credits   int64           `json:"credits" yaml:"credits"`
	Offer     exportedOffer   `json:"offer" yaml:"offer"`
	Entries   []exportedEntry `json:"entries" yaml:"entries"`
}

type exportedOffer struct {
	Amount int    `json:"amount" yaml:"amount"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
}

type exportedEntry struct {
	Type string    `json:"type" yaml:"type"`
	Text string    `json:"text" yaml:"text"`
	Time time.Time `json:"time" yaml:"time"`
}

func newExportCmd(a *app) *cobra.Command {
	var (
		sessionID string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print a persisted session as YAML or JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if sessionID == "" {
				sessionID = a.cfg.Journal.SessionID
			}
			return a.runExport(cmd.Context(), sessionID, format, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session id, defaults to journal.session_id")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml or json")

	return cmd
}

func (a *app) runExport(ctx context.Context, sessionID, format string, out io.Writer) error {
	b, err := openBackend(ctx, *a.cfg, a.log)
	if err != nil {
		return err
	}
	defer func() { _ = b.close() }()

	repo := state.NewRepository(b.store, a.cfg.Storage.KeyPrefix, a.log)
	session, entries, err := repo.LoadSession(ctx, sessionID)
	if err != nil {
		return err
	}

	return writeExport(out, format, buildExport(sessionID, session, entries))
}

func buildExport(sessionID string, session state.Session, entries []domain.Entry) exportedSession {
	offer := valuation.ComputeOffer(entries)

	exported := exportedSession{
		SessionID: sessionID,
		LoggedIn:  session.LoggedIn,
		Credits:   session.Credits,
		Offer:     exportedOffer{Amount: offer.Amount, Label: offer.Label},
		Entries:   make([]exportedEntry, 0, len(entries)),
	}
	for _, entry := range entries {
		exported.Entries = append(exported.Entries, exportedEntry{
			Type: string(entry.Type),
			Text: entry.Text,
			Time: entry.Time,
		})
	}
	return exported
}

func writeExport(out io.Writer, format string, v exportedSession) error {
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
