package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"finitefield.org/artist-dashboard/internal/dashboard/observability"
	"finitefield.org/artist-dashboard/internal/dashboard/workspace"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		workspaceID string
		format      string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print a workspace snapshot",
		Long:  `Prints everything a workspace holds: profile, checklist with progress, portfolio, booking requests and storage usage.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			backend, err := openBackend(ctx, cfg.Storage, observability.NoopLogger())
			if err != nil {
				return err
			}
			defer backend.Close()

			ws, err := newWorkspaceManager(cfg, backend).Open(workspaceID)
			if err != nil {
				return err
			}
			snap, err := ws.Snapshot(ctx)
			if err != nil {
				return fmt.Errorf("snapshot %s: %w", workspaceID, err)
			}
			return writeSnapshot(cmd.OutOrStdout(), snap, format)
		},
	}
	cmd.Flags().StringVar(&workspaceID, "workspace", "", "workspace id (the session's workspace)")
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	_ = cmd.MarkFlagRequired("workspace")
	return cmd
}

func writeSnapshot(w io.Writer, snap workspace.Snapshot, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case "yaml", "yml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", format)
	}
}
