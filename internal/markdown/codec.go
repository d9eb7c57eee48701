// Package markdown implements the subset of markdown used by the
// Memory Directory: topic-file sections, bullet-list insights, and
// the metadata annotation that carries source/date/confidence inline
// with a bullet's summary text.
package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/thebtf/auto-memory-bridge/pkg/models"
)

// Section is a single `## heading` block parsed out of a document.
type Section struct {
	Heading string
	Content string
}

var sectionHeadingRe = regexp.MustCompile(`^## (.+)$`)

// ParseMarkdownEntries splits a document on lines beginning with
// "## ", ignoring any content before the first such line. Each
// section's heading is the trimmed text after "## "; its content is
// every subsequent line up to the next "## " (or EOF), joined with
// "\n" and trimmed of leading/trailing whitespace.
func ParseMarkdownEntries(text string) []Section {
	lines := strings.Split(text, "\n")

	var sections []Section
	var heading string
	var body []string
	inSection := false

	flush := func() {
		if inSection {
			sections = append(sections, Section{
				Heading: heading,
				Content: strings.TrimSpace(strings.Join(body, "\n")),
			})
		}
	}

	for _, line := range lines {
		if m := sectionHeadingRe.FindStringSubmatch(line); m != nil {
			flush()
			heading = strings.TrimSpace(m[1])
			body = body[:0]
			inSection = true
			continue
		}
		if inSection {
			body = append(body, line)
		}
	}
	flush()

	return sections
}

var bulletRe = regexp.MustCompile(`^- (.+)$`)

// metadataAnnotationRe matches the trailing italic metadata suffix of
// the form " _(source, 2024-01-02, conf: 0.95)_".
var metadataAnnotationRe = regexp.MustCompile(` _\([^)]*\)_\s*$`)

// ExtractSummaries selects bullet lines ("^- .+") from text, rejects
// cross-reference bullets ("- See `file`..."), and strips any trailing
// metadata annotation so the returned strings are clean summaries.
func ExtractSummaries(text string) []string {
	var summaries []string
	for _, line := range strings.Split(text, "\n") {
		m := bulletRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		bulletText := m[1]
		if isCrossReference(bulletText) {
			continue
		}
		summaries = append(summaries, StripMetadataAnnotation(bulletText))
	}
	return summaries
}

// isCrossReference reports whether a bullet's text is a cross
// reference to another file ("See `file.md`...") rather than an
// insight.
func isCrossReference(bulletText string) bool {
	const prefix = "See `"
	return strings.HasPrefix(bulletText, prefix)
}

// StripMetadataAnnotation removes the trailing " _(...)_" suffix from
// a stored bullet's text so the index can show clean summary text.
func StripMetadataAnnotation(summary string) string {
	return metadataAnnotationRe.ReplaceAllString(summary, "")
}

// FormatInsightLine renders an Insight as its markdown bullet
// representation: the summary line carries the metadata annotation;
// a multi-line detail is appended as indented continuation lines.
// Single-line details are not appended — they live only in the Store.
func FormatInsightLine(insight models.Insight, date string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- %s _(%s, %s, conf: %.2f)_",
		insight.Summary, insight.Source, date, models.ClampConfidence(insight.Confidence))

	if insight.Detail != "" && strings.Contains(insight.Detail, "\n") {
		for _, line := range strings.Split(insight.Detail, "\n") {
			b.WriteString("\n  ")
			b.WriteString(line)
		}
	}

	return b.String()
}
