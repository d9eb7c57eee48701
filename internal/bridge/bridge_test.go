package bridge

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"

	"github.com/thebtf/auto-memory-bridge/internal/config"
	"github.com/thebtf/auto-memory-bridge/internal/storedriver"
	"github.com/thebtf/auto-memory-bridge/pkg/models"
)

type BridgeSuite struct {
	suite.Suite
	dir   string
	store *storedriver.MemoryStore
}

func TestBridgeSuite(t *testing.T) {
	suite.Run(t, new(BridgeSuite))
}

func (s *BridgeSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.store = storedriver.NewMemoryStore()
}

func (s *BridgeSuite) newBridge(mode config.SyncMode) *Bridge {
	cfg := config.Default()
	cfg.MemoryDir = s.dir
	cfg.SyncMode = mode
	b, err := New(cfg, s.store, zerolog.Nop())
	s.Require().NoError(err)
	return b
}

// S1 — record then sync creates file and index.
func (s *BridgeSuite) TestRecordThenSyncCreatesFileAndIndex() {
	b := s.newBridge(config.SyncOnSessionEnd)

	err := b.RecordInsight(context.Background(), models.Insight{
		Category:   models.CategoryDebugging,
		Summary:    "HNSW index requires initialization before search",
		Source:     "agent:tester",
		Confidence: 0.95,
	})
	s.Require().NoError(err)

	_, err = b.SyncToAutoMemory(context.Background())
	s.Require().NoError(err)

	debugging, err := os.ReadFile(filepath.Join(s.dir, "debugging.md"))
	s.Require().NoError(err)

	want := regexp.MustCompile(`^- HNSW index requires initialization before search _\(agent:tester, \d{4}-\d{2}-\d{2}, conf: 0\.95\)_$`)
	found := false
	for _, line := range strings.Split(string(debugging), "\n") {
		if want.MatchString(line) {
			found = true
			break
		}
	}
	s.True(found, "debugging.md missing expected bullet, got: %s", debugging)

	index, err := os.ReadFile(filepath.Join(s.dir, "MEMORY.md"))
	s.Require().NoError(err)
	s.Contains(string(index), "## Debugging")
	s.Contains(string(index), "- HNSW index requires initialization before search")
}

// S2 — repeated sync does not duplicate.
func (s *BridgeSuite) TestRepeatedSyncDoesNotDuplicate() {
	b := s.newBridge(config.SyncOnSessionEnd)

	err := b.RecordInsight(context.Background(), models.Insight{
		Category:   models.CategoryDebugging,
		Summary:    "HNSW index requires initialization before search",
		Source:     "agent:tester",
		Confidence: 0.95,
	})
	s.Require().NoError(err)

	_, err = b.SyncToAutoMemory(context.Background())
	s.Require().NoError(err)
	_, err = b.SyncToAutoMemory(context.Background())
	s.Require().NoError(err)

	data, err := os.ReadFile(filepath.Join(s.dir, "debugging.md"))
	s.Require().NoError(err)

	s.Equal(1, strings.Count(string(data), "HNSW index requires"))
}

// S3 — on-write mode is immediate.
func (s *BridgeSuite) TestOnWriteModeIsImmediate() {
	b := s.newBridge(config.SyncOnWrite)

	err := b.RecordInsight(context.Background(), models.Insight{
		Category:   models.CategoryPerformance,
		Summary:    "Batch writes cut p99 latency in half",
		Source:     "agent:perf",
		Confidence: 0.8,
	})
	s.Require().NoError(err)

	data, err := os.ReadFile(filepath.Join(s.dir, "performance.md"))
	s.Require().NoError(err)
	s.Contains(string(data), "Batch writes cut p99 latency in half")
}

// S4 — index cap is enforced.
func (s *BridgeSuite) TestIndexCapEnforced() {
	var b strings.Builder
	b.WriteString("# Debugging\n\n")
	for i := 0; i < 200; i++ {
		b.WriteString("- Item ")
		b.WriteString(strconv.Itoa(i))
		b.WriteString("\n")
	}
	s.Require().NoError(os.MkdirAll(s.dir, 0o755))
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, "debugging.md"), []byte(b.String()), 0o644))

	cfg := config.Default()
	cfg.MemoryDir = s.dir
	cfg.MaxIndexLines = 10
	cfg.PruneStrategy = config.PruneFIFO
	br, err := New(cfg, s.store, zerolog.Nop())
	s.Require().NoError(err)

	s.Require().NoError(br.CurateIndex())

	index, err := os.ReadFile(filepath.Join(s.dir, "MEMORY.md"))
	s.Require().NoError(err)

	lines := strings.Split(strings.TrimRight(string(index), "\n"), "\n")
	s.LessOrEqual(len(lines), 10)
	s.Contains(string(index), "Item 199")
	s.NotContains(string(index), "Item 0\n")
}

// S5 — classifier fallback.
func (s *BridgeSuite) TestClassifierFallback() {
	b := s.newBridge(config.SyncOnSessionEnd)

	_, err := s.store.Store(context.Background(), learningsNamespace, models.StoreEntry{
		Key:     "external:1",
		Content: "Prefer composition over embedding for this package",
		Tags:    []string{"insight"},
		Metadata: map[string]any{
			"summary":    "Prefer composition over embedding for this package",
			"confidence": 0.7,
		},
		UpdatedAt: time.Now(),
	})
	s.Require().NoError(err)

	_, err = b.SyncToAutoMemory(context.Background())
	s.Require().NoError(err)

	data, err := os.ReadFile(filepath.Join(s.dir, "project-patterns.md"))
	s.Require().NoError(err)
	s.Contains(string(data), "Prefer composition over embedding for this package")
}

// S6 — read-only file does not block other topics.
func (s *BridgeSuite) TestReadOnlyFileDoesNotBlockOtherTopics() {
	s.Require().NoError(os.MkdirAll(s.dir, 0o755))
	debuggingPath := filepath.Join(s.dir, "debugging.md")
	s.Require().NoError(os.WriteFile(debuggingPath, []byte("# Debugging\n\n"), 0o444))
	s.T().Cleanup(func() { _ = os.Chmod(debuggingPath, 0o644) })

	b := s.newBridge(config.SyncOnSessionEnd)

	err := b.RecordInsight(context.Background(), models.Insight{
		Category:   models.CategoryDebugging,
		Summary:    "Readonly-file regression guard",
		Source:     "agent:tester",
		Confidence: 0.6,
	})
	s.Require().NoError(err)
	err = b.RecordInsight(context.Background(), models.Insight{
		Category:   models.CategoryPerformance,
		Summary:    "Connection pooling halves request latency",
		Source:     "agent:tester",
		Confidence: 0.6,
	})
	s.Require().NoError(err)

	result, err := b.SyncToAutoMemory(context.Background())
	s.Require().NoError(err)

	foundDebuggingErr := false
	for _, e := range result.Errors {
		if strings.Contains(e, "debugging.md") {
			foundDebuggingErr = true
		}
	}
	s.True(foundDebuggingErr, "expected an error referring to debugging.md, got: %v", result.Errors)

	perf, err := os.ReadFile(filepath.Join(s.dir, "performance.md"))
	s.Require().NoError(err)
	s.Contains(string(perf), "Connection pooling halves request latency")

	s.FileExists(filepath.Join(s.dir, "MEMORY.md"))
}

func (s *BridgeSuite) TestDestroyIsIdempotent() {
	b := s.newBridge(config.SyncOnSessionEnd)
	b.Destroy()
	b.Destroy()

	err := b.RecordInsight(context.Background(), models.Insight{
		Category: models.CategoryDebugging, Summary: "should not be recorded",
	})
	s.ErrorIs(err, errDestroyed)
}
