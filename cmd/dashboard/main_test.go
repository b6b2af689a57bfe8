package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"finitefield.org/artist-dashboard/internal/dashboard/booking"
	"finitefield.org/artist-dashboard/internal/dashboard/navigation"
	"finitefield.org/artist-dashboard/internal/dashboard/portfolio"
	"finitefield.org/artist-dashboard/internal/dashboard/storage/sqlitestore"
	"finitefield.org/artist-dashboard/internal/dashboard/workspace"
)

func writeConfig(t *testing.T) (cfgPath, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "dashboard.db")
	cfgPath = filepath.Join(dir, "dashboard.yml")
	content := "storage:\n  driver: sqlite\n  sqlite_path: " + dbPath + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	return cfgPath, dbPath
}

func seed(t *testing.T, dbPath, id string) {
	t.Helper()
	ctx := context.Background()
	store, err := sqlitestore.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	ws, err := workspace.NewManager(store, workspace.Options{}).Open(id)
	require.NoError(t, err)
	_, err = ws.Profile.Save(ctx, map[string]string{"stageName": "Kumo"})
	require.NoError(t, err)
	_, err = ws.Checklist.SetDone(ctx, "mix", true)
	require.NoError(t, err)
	releases, err := ws.Portfolio.Collection(portfolio.Releases)
	require.NoError(t, err)
	_, err = releases.Add(ctx, portfolio.Fields{Title: "Debut EP"})
	require.NoError(t, err)
	_, err = ws.Booking.Submit(ctx, booking.Request{Name: "Ada", Email: "ada@example.com", Platform: "Zoom", Rate: "150"})
	require.NoError(t, err)
	_, err = ws.Navigation.Activate(ctx, navigation.Portfolio)
	require.NoError(t, err)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExportAndReset(t *testing.T) {
	cfgPath, dbPath := writeConfig(t)
	seed(t, dbPath, "ws-1")

	out, err := run(t, "--config", cfgPath, "export", "--workspace", "ws-1", "--format", "json")
	require.NoError(t, err)

	var snap workspace.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	require.Equal(t, "ws-1", snap.Workspace)
	require.Equal(t, "portfolio", snap.LastPanel)
	require.Equal(t, "Kumo", snap.Profile["stageName"])
	require.Equal(t, 1, snap.Progress.Completed)
	require.Equal(t, 7, snap.Progress.Total)
	require.Len(t, snap.Portfolio["releases"], 1)
	require.Len(t, snap.Bookings, 1)
	require.Equal(t, "Ada", snap.Bookings[0].Name)
	require.Positive(t, snap.UsageBytes)

	out, err = run(t, "--config", cfgPath, "reset", "--workspace", "ws-1")
	require.NoError(t, err)
	require.Contains(t, out, "from workspace ws-1")

	out, err = run(t, "--config", cfgPath, "export", "--workspace", "ws-1")
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &raw))
	require.Equal(t, "menu", raw["lastPanel"])
	require.Equal(t, 0, raw["usageBytes"])
}

func TestExportRequiresWorkspace(t *testing.T) {
	cfgPath, _ := writeConfig(t)

	_, err := run(t, "--config", cfgPath, "export")
	require.Error(t, err)

	_, err = run(t, "--config", cfgPath, "export", "--workspace", "ws-1", "--format", "xml")
	require.ErrorContains(t, err, "unknown format")
}
