// Package bridge implements the bridge coordinator: the public
// surface that records insights, syncs them out to markdown, imports
// existing markdown back into the Store, and curates the bounded
// entrypoint index.
package bridge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/thebtf/auto-memory-bridge/internal/classifier"
	"github.com/thebtf/auto-memory-bridge/internal/config"
	"github.com/thebtf/auto-memory-bridge/internal/dedup"
	"github.com/thebtf/auto-memory-bridge/internal/events"
	"github.com/thebtf/auto-memory-bridge/internal/indexcurator"
	"github.com/thebtf/auto-memory-bridge/internal/markdown"
	"github.com/thebtf/auto-memory-bridge/internal/storedriver"
	"github.com/thebtf/auto-memory-bridge/internal/topicwriter"
	"github.com/thebtf/auto-memory-bridge/pkg/models"
)

// learningsNamespace is the Store namespace a sync queries for recent
// high-confidence entries.
const learningsNamespace = "learnings"

// importNamespace is the Store namespace import candidates are
// inserted into.
const importNamespace = "auto-memory"

// SyncResult is the outcome of a single syncToAutoMemory call.
type SyncResult struct {
	Errors     []string          `json:"errors,omitempty"`
	Categories []models.Category `json:"categories"`
	Synced     int               `json:"synced"`
	Duration   time.Duration     `json:"duration"`
}

// ImportResult is the outcome of a single importFromAutoMemory call.
type ImportResult struct {
	Errors   []string      `json:"errors,omitempty"`
	Files    []string      `json:"files"`
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration"`
}

// Status is the snapshot returned by GetStatus.
type Status struct {
	MemoryDir        string    `json:"memory_dir"`
	Files            []string  `json:"files"`
	Exists           bool      `json:"exists"`
	IndexLines       int       `json:"index_lines"`
	BufferedInsights int       `json:"buffered_insights"`
	LastSyncTime     time.Time `json:"last_sync_time"`
}

// Bridge coordinates the two memory representations. It owns the
// insight buffer, the synced-keys dedup set, the insight counter, the
// event emitter, and the Store handle.
type Bridge struct {
	mu             sync.Mutex
	cfg            *config.Config
	store          storedriver.Store
	writer         *topicwriter.Writer
	curator        *indexcurator.Curator
	emitter        *events.Emitter
	log            zerolog.Logger
	buffer         []models.Insight
	synced         *dedup.KeySet
	insightCounter int
	lastSyncTime   time.Time
	destroyed      bool
	timerStop      chan struct{}
	timerDone      chan struct{}
	nowFunc        func() time.Time
}

// New constructs an active Bridge over cfg and store. In periodic sync
// mode, the recurring timer is started immediately.
func New(cfg *config.Config, store storedriver.Store, log zerolog.Logger) (*Bridge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &Bridge{
		cfg:     cfg,
		store:   store,
		writer:  topicwriter.New(cfg.MemoryDir, cfg.MaxTopicFileLines),
		curator: indexcurator.New(cfg),
		emitter: events.NewEmitter(),
		log:     log.With().Str("component", "bridge").Logger(),
		synced:  dedup.NewKeySet(cfg.SyncedKeysCapacity),
		nowFunc: time.Now,
	}

	if cfg.SyncMode == config.SyncPeriodic {
		b.startTimer()
	}

	return b, nil
}

// Subscribe registers fn for events named name (see the emitted-events
// table: insight:recorded, sync:completed, sync:failed,
// import:completed, index:curated).
func (b *Bridge) Subscribe(name string, fn events.Listener) any {
	return b.emitter.Subscribe(name, fn)
}

// Unsubscribe removes a listener previously returned by Subscribe.
func (b *Bridge) Unsubscribe(token any) {
	b.emitter.Unsubscribe(token)
}

// errDestroyed is returned by RecordInsight, SyncToAutoMemory,
// ImportFromAutoMemory, CurateIndex and ListTopics once Destroy has
// been called; operating on a destroyed bridge is a programming error.
var errDestroyed = fmt.Errorf("bridge: operation attempted on a destroyed bridge")

func (b *Bridge) checkActive() error {
	if b.destroyed {
		return errDestroyed
	}
	return nil
}

// RecordInsight clamps confidence, classifies the insight if its
// category is not already valid, upserts it into the Store, appends
// it to the buffer, and marks its key synced. In on-write mode it also
// immediately appends to the topic file and recurates the index.
func (b *Bridge) RecordInsight(ctx context.Context, insight models.Insight) error {
	b.mu.Lock()
	if err := b.checkActive(); err != nil {
		b.mu.Unlock()
		return err
	}

	insight.Confidence = models.ClampConfidence(insight.Confidence)
	if !insight.Category.IsValid() {
		insight.Category = models.CategoryProjectPatterns
	}

	b.insightCounter++
	key := fmt.Sprintf("insight:%s:%d:%d", insight.Category, b.nowFunc().UnixMilli(), b.insightCounter)

	entry := models.StoreEntry{
		Key:       key,
		Content:   insight.Summary,
		Namespace: learningsNamespace,
		Tags:      []string{"insight", string(insight.Category)},
		Metadata: map[string]any{
			"category":    string(insight.Category),
			"summary":     insight.Summary,
			"confidence":  insight.Confidence,
			"contentHash": dedup.HashContent(insight.Summary),
		},
		UpdatedAt: b.nowFunc(),
	}

	storeID, err := b.store.Store(ctx, learningsNamespace, entry)
	if err != nil {
		b.mu.Unlock()
		return fmt.Errorf("bridge: store insight: %w", err)
	}
	insight.StoreID = storeID

	b.buffer = append(b.buffer, insight)
	b.synced.Add(key)
	syncMode := b.cfg.SyncMode
	b.mu.Unlock()

	b.emitter.Emit("insight:recorded", insight)

	if syncMode == config.SyncOnWrite {
		filename := b.cfg.TopicFilename(insight.Category)
		if _, err := b.writer.AppendInsight(filename, insight.Category, insight); err != nil {
			return fmt.Errorf("bridge: append insight on-write: %w", err)
		}
		if err := b.curator.CurateIndex(); err != nil {
			return fmt.Errorf("bridge: curate index on-write: %w", err)
		}
	}

	return nil
}

// SyncToAutoMemory drains the buffer, pulls in recent high-confidence
// Store entries not already synced this session, writes per-category
// topic files, and regenerates the index.
func (b *Bridge) SyncToAutoMemory(ctx context.Context) (SyncResult, error) {
	start := b.nowFunc()

	b.mu.Lock()
	if err := b.checkActive(); err != nil {
		b.mu.Unlock()
		return SyncResult{}, err
	}

	if err := os.MkdirAll(b.cfg.MemoryDir, 0o755); err != nil {
		b.mu.Unlock()
		result := SyncResult{Duration: b.nowFunc().Sub(start)}
		b.emitter.Emit("sync:failed", map[string]any{"error": err.Error(), "durationMs": result.Duration.Milliseconds()})
		return result, nil
	}

	drained := b.buffer
	b.buffer = nil
	lastSync := b.lastSyncTime
	b.mu.Unlock()

	var result SyncResult

	storeEntries, queryErr := b.store.Query(ctx, storedriver.QueryOptions{
		Namespace:     learningsNamespace,
		MinConfidence: b.cfg.MinConfidence,
		Since:         lastSync,
		Limit:         50,
	})
	if queryErr != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("store query: %v", queryErr))
	}

	combined := make([]models.Insight, 0, len(drained)+len(storeEntries))
	combined = append(combined, drained...)

	b.mu.Lock()
	for _, entry := range storeEntries {
		if b.synced.Has(entry.Key) {
			continue
		}
		b.synced.Add(entry.Key)
		cat := classifier.Classify(entry)
		combined = append(combined, models.Insight{
			Category:   cat,
			Summary:    entry.MetadataString("summary"),
			Source:     entry.MetadataString("source"),
			Confidence: models.ClampConfidence(entry.MetadataFloat("confidence")),
			StoreID:    entry.ID,
		})
	}
	b.mu.Unlock()

	byCategory := make(map[models.Category][]models.Insight)
	for _, ins := range combined {
		byCategory[ins.Category] = append(byCategory[ins.Category], ins)
	}

	categories := make([]models.Category, 0, len(byCategory))
	for cat, insights := range byCategory {
		categories = append(categories, cat)
		filename := b.cfg.TopicFilename(cat)

		// Under confidence-weighted pruning, write the lowest-ranked
		// insights first so they become the oldest bullets and are the
		// first ones the curator's fifo prune drops; the
		// highest-ranked insight in this batch lands last and survives
		// longest.
		if b.cfg.PruneStrategy == config.PruneConfidenceWeighted {
			sort.SliceStable(insights, func(i, j int) bool {
				return models.RankScore(insights[i].Category, insights[i].Confidence) <
					models.RankScore(insights[j].Category, insights[j].Confidence)
			})
		}

		for _, ins := range insights {
			wrote, err := b.writer.AppendInsight(filename, cat, ins)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", filename, err))
				continue
			}
			if wrote {
				result.Synced++
			}
		}
	}
	result.Categories = categories

	if err := b.curator.CurateIndex(); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("curate index: %v", err))
	}

	b.mu.Lock()
	b.lastSyncTime = start
	b.mu.Unlock()

	result.Duration = b.nowFunc().Sub(start)
	b.emitter.Emit("sync:completed", map[string]any{
		"synced":     result.Synced,
		"categories": result.Categories,
		"errors":     result.Errors,
		"durationMs": result.Duration.Milliseconds(),
	})

	return result, nil
}

// ImportFromAutoMemory walks every markdown file in the memory
// directory, parses it into sections, and batch-inserts any section
// whose content hash isn't already present in the Store.
func (b *Bridge) ImportFromAutoMemory(ctx context.Context) (ImportResult, error) {
	start := b.nowFunc()

	b.mu.Lock()
	if err := b.checkActive(); err != nil {
		b.mu.Unlock()
		return ImportResult{}, err
	}
	memoryDir := b.cfg.MemoryDir
	b.mu.Unlock()

	entries, err := os.ReadDir(memoryDir)
	if err != nil {
		if os.IsNotExist(err) {
			return ImportResult{Files: nil, Duration: b.nowFunc().Sub(start)}, nil
		}
		return ImportResult{}, fmt.Errorf("bridge: read memory dir: %w", err)
	}

	type candidate struct {
		entry models.StoreEntry
		hash  string
	}

	var candidates []candidate
	result := ImportResult{}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		result.Files = append(result.Files, e.Name())

		data, readErr := os.ReadFile(filepath.Join(memoryDir, e.Name()))
		if readErr != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", e.Name(), readErr))
			continue
		}

		sections := markdown.ParseMarkdownEntries(string(data))
		stem := strings.TrimSuffix(e.Name(), ".md")

		for _, sec := range sections {
			hash := dedup.HashContent(sec.Content)
			candidates = append(candidates, candidate{
				hash: hash,
				entry: models.StoreEntry{
					Key:       fmt.Sprintf("auto-memory:%s:%s", e.Name(), sec.Heading),
					Content:   sec.Content,
					Namespace: importNamespace,
					Tags:      []string{"auto-memory", stem},
					Metadata:  map[string]any{"contentHash": hash, "heading": sec.Heading},
					UpdatedAt: b.nowFunc(),
				},
			})
		}
	}

	if len(candidates) == 0 {
		result.Duration = b.nowFunc().Sub(start)
		b.emitter.Emit("import:completed", map[string]any{
			"imported": 0, "skipped": 0, "files": result.Files, "durationMs": result.Duration.Milliseconds(),
		})
		return result, nil
	}

	existing, queryErr := b.store.Query(ctx, storedriver.QueryOptions{Namespace: importNamespace})
	existingHashes := make(map[string]bool, len(existing))
	if queryErr == nil {
		for _, e := range existing {
			if h := e.MetadataString("contentHash"); h != "" {
				existingHashes[h] = true
			}
		}
	}

	var toInsert []models.StoreEntry
	for _, c := range candidates {
		if existingHashes[c.hash] {
			result.Skipped++
			continue
		}
		toInsert = append(toInsert, c.entry)
	}

	if len(toInsert) > 0 {
		inserted, insErr := b.store.BulkInsert(ctx, importNamespace, toInsert)
		if insErr != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("bulk insert: %v", insErr))
		} else {
			result.Imported = len(inserted)
		}
	}

	result.Duration = b.nowFunc().Sub(start)
	b.emitter.Emit("import:completed", map[string]any{
		"imported": result.Imported, "skipped": result.Skipped, "files": result.Files, "durationMs": result.Duration.Milliseconds(),
	})
	return result, nil
}

// CurateIndex regenerates MEMORY.md from the current topic files and
// emits index:curated.
func (b *Bridge) CurateIndex() error {
	b.mu.Lock()
	if err := b.checkActive(); err != nil {
		b.mu.Unlock()
		return err
	}
	b.mu.Unlock()

	if err := b.curator.CurateIndex(); err != nil {
		return err
	}

	lines := 0
	if data, err := os.ReadFile(filepath.Join(b.cfg.MemoryDir, indexcurator.IndexFilename)); err == nil {
		lines = strings.Count(string(data), "\n")
	}
	b.emitter.Emit("index:curated", map[string]any{"lines": lines})
	return nil
}

// GetStatus returns a snapshot of the bridge's on-disk and in-memory
// state. I/O errors are swallowed into exists:false rather than
// propagated.
func (b *Bridge) GetStatus() Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	status := Status{
		MemoryDir:        b.cfg.MemoryDir,
		BufferedInsights: len(b.buffer),
		LastSyncTime:     b.lastSyncTime,
	}

	entries, err := os.ReadDir(b.cfg.MemoryDir)
	if err != nil {
		status.Exists = false
		return status
	}
	status.Exists = true

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		status.Files = append(status.Files, e.Name())
	}

	if data, err := os.ReadFile(filepath.Join(b.cfg.MemoryDir, indexcurator.IndexFilename)); err == nil {
		status.IndexLines = strings.Count(string(data), "\n")
	}

	return status
}

// GetIndexPath returns the absolute path to MEMORY.md.
func (b *Bridge) GetIndexPath() string {
	return filepath.Join(b.cfg.MemoryDir, indexcurator.IndexFilename)
}

// GetTopicPath returns the absolute path to category's topic file.
func (b *Bridge) GetTopicPath(category models.Category) string {
	return filepath.Join(b.cfg.MemoryDir, b.cfg.TopicFilename(category))
}

// GetMemoryDir returns the absolute memory directory path.
func (b *Bridge) GetMemoryDir() string {
	return b.cfg.MemoryDir
}

// TopicInfo describes one topic file's on-disk state.
type TopicInfo struct {
	ModTime  time.Time       `json:"mod_time"`
	Category models.Category `json:"category"`
	Filename string          `json:"filename"`
	Lines    int             `json:"lines"`
}

// ListTopics enumerates the configured topic files that currently
// exist on disk, along with their line counts and modification times.
func (b *Bridge) ListTopics() ([]TopicInfo, error) {
	b.mu.Lock()
	if err := b.checkActive(); err != nil {
		b.mu.Unlock()
		return nil, err
	}
	memoryDir := b.cfg.MemoryDir
	mapping := b.cfg.TopicMapping
	b.mu.Unlock()

	out := make([]TopicInfo, 0, len(mapping))
	for cat, filename := range mapping {
		info, err := os.Stat(filepath.Join(memoryDir, filename))
		if err != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(memoryDir, filename))
		if err != nil {
			continue
		}
		out = append(out, TopicInfo{
			Category: cat,
			Filename: filename,
			Lines:    strings.Count(string(data), "\n"),
			ModTime:  info.ModTime(),
		})
	}
	return out, nil
}

// Destroy stops the periodic timer (if running) and removes all event
// listeners. Safe to call more than once.
func (b *Bridge) Destroy() {
	b.mu.Lock()
	if b.destroyed {
		b.mu.Unlock()
		return
	}
	b.destroyed = true
	stop := b.timerStop
	done := b.timerDone
	b.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	b.emitter.RemoveAllListeners()
}

// startTimer launches the periodic sync goroutine used by
// config.SyncPeriodic. Errors from the tick's sync surface only as
// events; Destroy cancels the timer.
func (b *Bridge) startTimer() {
	b.timerStop = make(chan struct{})
	b.timerDone = make(chan struct{})

	go func() {
		defer close(b.timerDone)
		ticker := time.NewTicker(time.Duration(b.cfg.SyncIntervalMs) * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-b.timerStop:
				return
			case <-ticker.C:
				_, _ = b.SyncToAutoMemory(context.Background())
			}
		}
	}()
}
