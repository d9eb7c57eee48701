package topicwriter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thebtf/auto-memory-bridge/pkg/models"
)

func TestAppendInsightCreatesFileWithHeader(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, 500)

	wrote, err := w.AppendInsight("debugging.md", models.CategoryDebugging, models.Insight{
		Summary:    "HNSW index requires initialization before search",
		Source:     "agent:tester",
		Confidence: 0.95,
	})
	require.NoError(t, err)
	require.True(t, wrote)

	data, err := os.ReadFile(filepath.Join(dir, "debugging.md"))
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	require.Equal(t, "# Debugging", lines[0])
	require.Contains(t, string(data), "HNSW index requires initialization before search")
}

func TestAppendInsightDedupsIdenticalSummary(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, 500)

	insight := models.Insight{Summary: "Repeated insight", Source: "agent:x", Confidence: 0.5}

	wrote, err := w.AppendInsight("debugging.md", models.CategoryDebugging, insight)
	require.NoError(t, err)
	require.True(t, wrote)

	wrote, err = w.AppendInsight("debugging.md", models.CategoryDebugging, insight)
	require.NoError(t, err)
	require.False(t, wrote, "second append of an identical summary must be a no-op")

	data, err := os.ReadFile(filepath.Join(dir, "debugging.md"))
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(string(data), "Repeated insight"))
}

func TestPruneTopicFileUnchangedWhenUnderBudget(t *testing.T) {
	content := "# Debugging\n\n- one\n- two\n"
	got := pruneTopicFile(content, 10)
	require.Equal(t, content, got)
}

func TestPruneTopicFileDropsOldestBulletsOverBudget(t *testing.T) {
	var b strings.Builder
	b.WriteString("# Debugging\n\n")
	for i := 0; i < 50; i++ {
		b.WriteString("- item ")
		b.WriteString(string(rune('0' + i%10)))
		b.WriteString("\n")
	}

	pruned := pruneTopicFile(b.String(), 12)
	lines := strings.Split(strings.TrimRight(pruned, "\n"), "\n")

	require.LessOrEqual(t, len(lines), 12)
	require.Equal(t, "# Debugging", lines[0])
	require.Contains(t, pruned, "item 9", "newest bullet must survive")
}

func TestAppendInsightPrunesWhenOverMaxLines(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, 5)

	for i := 0; i < 20; i++ {
		_, err := w.AppendInsight("debugging.md", models.CategoryDebugging, models.Insight{
			Summary:    "insight number " + string(rune('a'+i)),
			Source:     "agent:x",
			Confidence: 0.5,
		})
		require.NoError(t, err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "debugging.md"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.LessOrEqual(t, len(lines), 5)
	require.Contains(t, string(data), "insight number "+string(rune('a'+19)))
}
