// Package indexcurator regenerates the bounded MEMORY.md entrypoint
// index from the per-category topic files.
package indexcurator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/thebtf/auto-memory-bridge/internal/config"
	"github.com/thebtf/auto-memory-bridge/internal/markdown"
	"github.com/thebtf/auto-memory-bridge/pkg/models"
)

// IndexTitle is the fixed top-level heading MEMORY.md is generated
// with.
const IndexTitle = "# Claude Flow V3 Project Memory"

// IndexFilename is the bounded entrypoint index's filename, excluded
// from topic-file enumeration.
const IndexFilename = "MEMORY.md"

// Curator rebuilds the Memory Directory's entrypoint index from its
// topic files.
type Curator struct {
	memoryDir     string
	maxIndexLines int
	topicMapping  map[models.Category]string
}

// New creates a Curator rooted at memoryDir.
func New(cfg *config.Config) *Curator {
	return &Curator{
		memoryDir:     cfg.MemoryDir,
		maxIndexLines: cfg.MaxIndexLines,
		topicMapping:  cfg.TopicMapping,
	}
}

// CurateIndex enumerates every topic file in the memory directory,
// groups their summary bullets by category, and writes MEMORY.md as a
// fixed-title index of summary bullets, each section closed by a
// "See `<file>`" line pointing at its topic file, pruned to fit
// maxIndexLines.
func (c *Curator) CurateIndex() error {
	entries, err := os.ReadDir(c.memoryDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("indexcurator: read dir %s: %w", c.memoryDir, err)
	}

	filenameToCategory := make(map[string]models.Category, len(c.topicMapping))
	for cat, name := range c.topicMapping {
		filenameToCategory[name] = cat
	}

	type group struct {
		category models.Category
		filename string
		bullets  []string
	}
	var groups []group

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == IndexFilename || !strings.HasSuffix(name, ".md") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(c.memoryDir, name))
		if err != nil {
			continue // unreadable topic file must not block curating the rest
		}

		summaries := markdown.ExtractSummaries(string(data))
		if len(summaries) == 0 {
			continue
		}

		cat, ok := filenameToCategory[name]
		if !ok {
			cat = models.CategoryProjectPatterns
		}

		groups = append(groups, group{category: cat, filename: name, bullets: summaries})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].category.Label() < groups[j].category.Label()
	})

	// Fixed overhead per non-empty group: "## Label\n\n" + ref line +
	// its trailing blank line = 4 lines, plus one line per bullet.
	const overheadPerGroup = 4
	const titleLines = 2

	total := titleLines
	for _, g := range groups {
		total += overheadPerGroup + len(g.bullets)
	}

	// Prune-to-fit, O(n): drop the oldest (front) bullet of the
	// earliest group with bullets remaining until the projected total
	// fits maxIndexLines, dropping a group's overhead too once it runs
	// dry. This is the fifo/lru path; confidence-weighted ordering
	// happens earlier, at topic-write time, since by curation time the
	// markdown carries no confidence metadata left to weight against.
	start := make([]int, len(groups)) // index of the oldest surviving bullet per group
	need := total - c.maxIndexLines
	for i := 0; need > 0 && i < len(groups); {
		g := &groups[i]
		if start[i] >= len(g.bullets) {
			i++
			continue
		}
		start[i]++
		need--
		if start[i] >= len(g.bullets) {
			need -= overheadPerGroup
		}
	}

	var b strings.Builder
	b.WriteString(IndexTitle)
	b.WriteString("\n\n")

	for i, g := range groups {
		kept := g.bullets[start[i]:]
		if len(kept) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", g.category.Label())
		for _, s := range kept {
			fmt.Fprintf(&b, "- %s\n", s)
		}
		fmt.Fprintf(&b, "See `%s` for full details.\n\n", g.filename)
	}

	if err := os.MkdirAll(c.memoryDir, 0o755); err != nil {
		return fmt.Errorf("indexcurator: mkdir %s: %w", c.memoryDir, err)
	}
	return os.WriteFile(filepath.Join(c.memoryDir, IndexFilename), []byte(b.String()), 0o644)
}
