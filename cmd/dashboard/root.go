package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"finitefield.org/artist-dashboard/internal/dashboard/config"
	"finitefield.org/artist-dashboard/internal/dashboard/storage"
	"finitefield.org/artist-dashboard/internal/dashboard/storage/firestorestore"
	"finitefield.org/artist-dashboard/internal/dashboard/storage/sqlitestore"
	"finitefield.org/artist-dashboard/internal/dashboard/workspace"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "dashboard",
		Short: "Artist release dashboard",
		Long: `Serves a single-page dashboard for independent artists: profile,
release checklist, portfolio and booking requests. Each browser works in
its own workspace; export and reset operate on one workspace by id.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "config file path")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newResetCmd(opts))
	return root
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// openBackend selects the storage driver named in cfg.
func openBackend(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (storage.Backend, error) {
	switch strings.ToLower(cfg.Driver) {
	case config.DriverMemory:
		logger.Warn("using in-memory storage: workspaces are lost on restart")
		return storage.NewMemoryBackend(), nil
	case config.DriverFirestore:
		opts := []firestorestore.ProviderOption{firestorestore.WithDialTimeout(cfg.FirestoreDialTimeout)}
		if cfg.FirestoreCredentials != "" {
			opts = append(opts, firestorestore.WithClientOptions(option.WithCredentialsFile(cfg.FirestoreCredentials)))
		}
		provider := firestorestore.NewProvider(firestorestore.Config{
			ProjectID:    cfg.FirestoreProject,
			EmulatorHost: cfg.FirestoreEmulator,
		}, opts...)
		if _, err := provider.Client(ctx); err != nil {
			_ = provider.Close()
			return nil, fmt.Errorf("connecting to firestore: %w", err)
		}
		return firestorestore.New(provider), nil
	default:
		store, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite %s: %w", cfg.SQLitePath, err)
		}
		return store, nil
	}
}

func newWorkspaceManager(cfg *config.Config, backend storage.Backend) *workspace.Manager {
	return workspace.NewManager(backend, workspace.Options{
		QuotaBytes:     cfg.Storage.QuotaBytes,
		MaxAvatarBytes: cfg.Uploads.MaxAvatarBytes,
	})
}
