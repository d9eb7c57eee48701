package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashContentStableAndDistinct(t *testing.T) {
	a := HashContent("use composition over inheritance")
	b := HashContent("use composition over inheritance")
	c := HashContent("use inheritance over composition")

	assert.Equal(t, a, b, "HashContent must be stable for identical input")
	assert.NotEqual(t, a, c, "HashContent must differ for distinct input")
	assert.Len(t, a, 16, "HashContent truncates to 16 hex digits")
}

func TestHasSummaryLine(t *testing.T) {
	tests := []struct {
		name    string
		content string
		summary string
		want    bool
	}{
		{
			"exact_match_with_metadata",
			"# Debugging\n\n- Use Int8 for small counters _(agent:x, 2024-01-01, conf: 0.9)_\n",
			"Use Int8 for small counters",
			true,
		},
		{
			"substring_of_longer_bullet_does_not_match",
			"# Debugging\n\n- Do not use Int8 for wide ranges _(agent:x, 2024-01-01, conf: 0.9)_\n",
			"Use Int8",
			false,
		},
		{
			"absent_summary",
			"# Debugging\n\n- Something unrelated\n",
			"Use Int8 for small counters",
			false,
		},
		{
			"empty_summary_never_matches",
			"# Debugging\n\n- \n",
			"",
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HasSummaryLine(tt.content, tt.summary)
			assert.Equal(t, tt.want, got)
		})
	}
}
