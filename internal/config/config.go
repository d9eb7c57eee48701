// Package config provides configuration management for the
// auto-memory bridge: a JSON settings file merged atop Default().
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/thebtf/auto-memory-bridge/pkg/models"
)

// SyncMode controls when recorded insights are projected to the
// Memory Directory.
type SyncMode string

const (
	// SyncOnWrite appends to the topic file and regenerates the index
	// immediately on every recordInsight call.
	SyncOnWrite SyncMode = "on-write"
	// SyncOnSessionEnd buffers insights until the caller explicitly
	// calls syncToAutoMemory.
	SyncOnSessionEnd SyncMode = "on-session-end"
	// SyncPeriodic buffers insights and additionally schedules a
	// recurring sync every SyncIntervalMs.
	SyncPeriodic SyncMode = "periodic"
)

// IsValid reports whether m is one of the three known sync modes.
func (m SyncMode) IsValid() bool {
	switch m {
	case SyncOnWrite, SyncOnSessionEnd, SyncPeriodic:
		return true
	default:
		return false
	}
}

// PruneStrategy controls which bullets the index curator drops first
// when the generated index exceeds MaxIndexLines.
type PruneStrategy string

const (
	// PruneFIFO drops the oldest bullets within a section first.
	PruneFIFO PruneStrategy = "fifo"
	// PruneLRU is treated identically to PruneFIFO: the curator has no
	// access-recency signal for a bullet once it's on disk.
	PruneLRU PruneStrategy = "lru"
	// PruneConfidenceWeighted orders bullets by models.RankScore before
	// a sync writes them, then degrades to PruneFIFO at curation time
	// once confidence metadata has been stripped from the markdown.
	PruneConfidenceWeighted PruneStrategy = "confidence-weighted"
)

// IsValid reports whether s is one of the three known prune strategies.
func (s PruneStrategy) IsValid() bool {
	switch s {
	case PruneFIFO, PruneLRU, PruneConfidenceWeighted:
		return true
	default:
		return false
	}
}

const (
	// DefaultMaxIndexLines is the default soft cap on MEMORY.md's line
	// count; the external runtime truncates at 200, so the default
	// leaves headroom.
	DefaultMaxIndexLines = 180

	// DefaultMaxTopicFileLines bounds an individual topic file before
	// the topic writer prunes its oldest bullets.
	DefaultMaxTopicFileLines = 500

	// DefaultSyncIntervalMs is the default periodic-sync tick interval.
	DefaultSyncIntervalMs = 5 * 60 * 1000

	// DefaultMinConfidence is the minimum Store-entry confidence a sync
	// pulls in from the `learnings` namespace query.
	DefaultMinConfidence = 0.5

	// DefaultSyncedKeysCapacity bounds the in-memory syncedKeys set.
	DefaultSyncedKeysCapacity = 10000
)

// Config holds the bridge's tunables. The embedding caller owns
// loading this from whatever settings file or environment it uses;
// the bridge itself only ever consumes a *Config value.
type Config struct {
	MemoryDir          string                       `json:"memory_dir"`
	SyncMode           SyncMode                     `json:"sync_mode"`
	PruneStrategy      PruneStrategy                `json:"prune_strategy"`
	TopicMapping       map[models.Category]string   `json:"-"`
	SyncIntervalMs     int                          `json:"sync_interval_ms"`
	MaxIndexLines      int                          `json:"max_index_lines"`
	MaxTopicFileLines  int                          `json:"max_topic_file_lines"`
	MinConfidence      float64                      `json:"min_confidence"`
	SyncedKeysCapacity int                          `json:"synced_keys_capacity"`
}

// DefaultTopicMapping returns the default category -> filename
// mapping.
func DefaultTopicMapping() map[models.Category]string {
	return map[models.Category]string{
		models.CategoryProjectPatterns: "project-patterns.md",
		models.CategoryDebugging:       "debugging.md",
		models.CategoryArchitecture:    "architecture.md",
		models.CategoryPerformance:     "performance.md",
		models.CategorySecurity:        "security.md",
		models.CategoryPreferences:     "preferences.md",
		models.CategorySwarmResults:    "swarm-results.md",
	}
}

// Default returns a Config with the documented defaults. MemoryDir is
// left empty; callers resolve it with bridgepath.ResolveMemoryDir and
// assign it before calling Validate.
func Default() *Config {
	return &Config{
		SyncMode:           SyncOnSessionEnd,
		PruneStrategy:      PruneFIFO,
		TopicMapping:       DefaultTopicMapping(),
		SyncIntervalMs:     DefaultSyncIntervalMs,
		MaxIndexLines:      DefaultMaxIndexLines,
		MaxTopicFileLines:  DefaultMaxTopicFileLines,
		MinConfidence:      DefaultMinConfidence,
		SyncedKeysCapacity: DefaultSyncedKeysCapacity,
	}
}

// SettingsPath returns the path to the bridge's JSON settings
// override file (~/.claude/auto-memory-bridge/settings.json).
func SettingsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".claude", "auto-memory-bridge", "settings.json"), nil
}

// Load builds a Config from Default() merged with any settings file
// override, then assigns memoryDir and validates the result.
func Load(memoryDir string) (*Config, error) {
	cfg := Default()
	cfg.MemoryDir = memoryDir

	path, err := SettingsPath()
	if err == nil {
		if lerr := LoadOverrides(cfg, path); lerr != nil {
			return nil, lerr
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks construction-time invariants: an absolute memory
// directory and a recognized sync mode / prune strategy. Configuration
// errors fail bridge construction rather than surfacing later.
func (c *Config) Validate() error {
	if c.MemoryDir == "" || !filepath.IsAbs(c.MemoryDir) {
		return fmt.Errorf("config: memory dir must be an absolute path, got %q", c.MemoryDir)
	}
	if !c.SyncMode.IsValid() {
		return fmt.Errorf("config: invalid sync mode %q", c.SyncMode)
	}
	if !c.PruneStrategy.IsValid() {
		return fmt.Errorf("config: invalid prune strategy %q", c.PruneStrategy)
	}
	if c.MaxIndexLines <= 0 {
		return fmt.Errorf("config: max index lines must be positive, got %d", c.MaxIndexLines)
	}
	if c.MaxTopicFileLines <= 0 {
		return fmt.Errorf("config: max topic file lines must be positive, got %d", c.MaxTopicFileLines)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("config: min confidence must be in [0,1], got %v", c.MinConfidence)
	}
	return nil
}

// TopicFilename resolves the filename for a category, falling back to
// "<category>.md" when no override exists in TopicMapping.
func (c *Config) TopicFilename(category models.Category) string {
	if name, ok := c.TopicMapping[category]; ok && name != "" {
		return name
	}
	return category.DefaultTopicFilename()
}

// LoadOverrides reads a JSON settings file and merges recognized
// fields over cfg. Unknown keys are ignored rather than rejected.
// A missing file is not an error.
func LoadOverrides(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil // malformed settings file: keep defaults
	}

	if v, ok := settings["sync_mode"].(string); ok && SyncMode(v).IsValid() {
		cfg.SyncMode = SyncMode(v)
	}
	if v, ok := settings["prune_strategy"].(string); ok && PruneStrategy(v).IsValid() {
		cfg.PruneStrategy = PruneStrategy(v)
	}
	if v, ok := settings["sync_interval_ms"].(float64); ok && v > 0 {
		cfg.SyncIntervalMs = int(v)
	}
	if v, ok := settings["max_index_lines"].(float64); ok && v > 0 {
		cfg.MaxIndexLines = int(v)
	}
	if v, ok := settings["max_topic_file_lines"].(float64); ok && v > 0 {
		cfg.MaxTopicFileLines = int(v)
	}
	if v, ok := settings["min_confidence"].(float64); ok && v >= 0 && v <= 1 {
		cfg.MinConfidence = v
	}
	if v, ok := settings["synced_keys_capacity"].(float64); ok && v > 0 {
		cfg.SyncedKeysCapacity = int(v)
	}

	return nil
}

var (
	globalOnce sync.Once
	global     *Config
	globalErr  error
)

// Get returns the process-wide Config, loading it once with
// bridgepath-resolved memoryDir. Subsequent calls ignore memoryDir and
// return the cached value.
func Get(memoryDir string) (*Config, error) {
	globalOnce.Do(func() {
		global, globalErr = Load(memoryDir)
	})
	return global, globalErr
}
