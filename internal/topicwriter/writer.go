// Package topicwriter appends classified insights to per-category
// markdown files under the Memory Directory, pruning the oldest
// bullets once a file outgrows its line budget.
package topicwriter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/thebtf/auto-memory-bridge/internal/dedup"
	"github.com/thebtf/auto-memory-bridge/internal/markdown"
	"github.com/thebtf/auto-memory-bridge/pkg/models"
)

// Writer appends insights to topic files under a fixed memory
// directory, enforcing a per-file line budget.
type Writer struct {
	memoryDir string
	maxLines  int
	nowFunc   func() time.Time
}

// New creates a Writer rooted at memoryDir, pruning any topic file
// that grows past maxLines.
func New(memoryDir string, maxLines int) *Writer {
	return &Writer{
		memoryDir: memoryDir,
		maxLines:  maxLines,
		nowFunc:   time.Now,
	}
}

// AppendInsight writes insight to the topic file for filename,
// creating the file with a category header if it doesn't exist yet.
// It returns (wrote=false, nil) when the summary already appears in
// the file, so callers can skip counting it as newly synced.
func (w *Writer) AppendInsight(filename string, category models.Category, insight models.Insight) (wrote bool, err error) {
	path := filepath.Join(w.memoryDir, filename)

	content, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return false, fmt.Errorf("topicwriter: read %s: %w", filename, err)
		}
		content = []byte(headerFor(category))
	}

	text := string(content)
	if dedup.HasSummaryLine(text, insight.Summary) {
		return false, nil
	}

	date := w.nowFunc().UTC().Format("2006-01-02")
	line := markdown.FormatInsightLine(insight, date)

	base := strings.TrimRight(text, "\n")
	sep := "\n"
	if !strings.HasPrefix(base, "- ") && !strings.Contains(base, "\n- ") {
		// First bullet in the file: keep a blank line between the
		// header block and the bullet list.
		sep = "\n\n"
	}
	text = base + sep + line + "\n"
	text = pruneTopicFile(text, w.maxLines)

	if err := os.MkdirAll(w.memoryDir, 0o755); err != nil {
		return false, fmt.Errorf("topicwriter: mkdir %s: %w", w.memoryDir, err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return false, fmt.Errorf("topicwriter: write %s: %w", filename, err)
	}

	return true, nil
}

// headerFor renders the fixed `# <Label>` header a brand-new topic
// file starts with.
func headerFor(category models.Category) string {
	return fmt.Sprintf("# %s\n\n", category.Label())
}

// pruneTopicFile drops the oldest bullet lines from content until its
// total line count is at or below maxLines. The leading header block
// (everything up to and including the first bullet's preceding blank
// line) is never dropped. Continuation lines (two-space indented)
// belonging to a dropped bullet are dropped with it.
func pruneTopicFile(content string, maxLines int) string {
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if len(lines) <= maxLines {
		return content
	}

	headerEnd := len(lines)
	for i, l := range lines {
		if strings.HasPrefix(l, "- ") {
			headerEnd = i
			break
		}
	}

	header := lines[:headerEnd]
	body := lines[headerEnd:]

	// Group body lines into bullets: each group starts with a "- "
	// line and includes any following indented continuation lines.
	type bullet struct{ lines []string }
	var bullets []bullet
	for _, l := range body {
		if strings.HasPrefix(l, "- ") || len(bullets) == 0 {
			bullets = append(bullets, bullet{lines: []string{l}})
			continue
		}
		last := &bullets[len(bullets)-1]
		last.lines = append(last.lines, l)
	}

	budget := maxLines - len(header)
	if budget < 0 {
		budget = 0
	}

	// Keep the newest bullets first, dropping oldest until we fit.
	total := 0
	for _, b := range bullets {
		total += len(b.lines)
	}
	start := 0
	for start < len(bullets) && total > budget {
		total -= len(bullets[start].lines)
		start++
	}

	var out []string
	out = append(out, header...)
	for _, b := range bullets[start:] {
		out = append(out, b.lines...)
	}

	return strings.Join(out, "\n") + "\n"
}
