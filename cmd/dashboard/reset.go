package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"finitefield.org/artist-dashboard/internal/dashboard/observability"
)

func newResetCmd(opts *rootOptions) *cobra.Command {
	var workspaceID string
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every dashboard entry of a workspace",
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
			removed, err := ws.Reset(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries from workspace %s\n", removed, ws.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&workspaceID, "workspace", "", "workspace id (the session's workspace)")
	_ = cmd.MarkFlagRequired("workspace")
	return cmd
}
