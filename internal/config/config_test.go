package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thebtf/auto-memory-bridge/pkg/models"
)

func TestDefaultIsValidOnceMemoryDirIsSet(t *testing.T) {
	cfg := Default()
	cfg.MemoryDir = filepath.Join(t.TempDir(), "memory")
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsRelativeMemoryDir(t *testing.T) {
	cfg := Default()
	cfg.MemoryDir = "relative/path"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownSyncMode(t *testing.T) {
	cfg := Default()
	cfg.MemoryDir = t.TempDir()
	cfg.SyncMode = "bogus"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownPruneStrategy(t *testing.T) {
	cfg := Default()
	cfg.MemoryDir = t.TempDir()
	cfg.PruneStrategy = "bogus"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsOutOfRangeMinConfidence(t *testing.T) {
	cfg := Default()
	cfg.MemoryDir = t.TempDir()
	cfg.MinConfidence = 1.5
	require.Error(t, cfg.Validate())
}

func TestTopicFilenameFallsBackToDefault(t *testing.T) {
	cfg := Default()
	delete(cfg.TopicMapping, models.CategoryDebugging)
	require.Equal(t, "debugging.md", cfg.TopicFilename(models.CategoryDebugging))
}

func TestLoadOverridesMergesRecognizedFieldsOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"sync_mode": "on-write",
		"max_index_lines": 42,
		"unknown_field": "ignored"
	}`), 0o644))

	cfg := Default()
	require.NoError(t, LoadOverrides(cfg, path))

	require.Equal(t, SyncOnWrite, cfg.SyncMode)
	require.Equal(t, 42, cfg.MaxIndexLines)
}

func TestLoadOverridesIgnoresInvalidEnumValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sync_mode": "not-a-real-mode"}`), 0o644))

	cfg := Default()
	require.NoError(t, LoadOverrides(cfg, path))
	require.Equal(t, SyncOnSessionEnd, cfg.SyncMode, "invalid override must not replace the default")
}

func TestLoadOverridesMissingFileIsNotAnError(t *testing.T) {
	cfg := Default()
	require.NoError(t, LoadOverrides(cfg, filepath.Join(t.TempDir(), "absent.json")))
	require.Equal(t, SyncOnSessionEnd, cfg.SyncMode)
}
