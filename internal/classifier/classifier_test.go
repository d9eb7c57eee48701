package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thebtf/auto-memory-bridge/pkg/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		entry models.StoreEntry
		want  models.Category
	}{
		{
			"explicit_category_wins",
			models.StoreEntry{Metadata: map[string]any{"category": "security"}, Tags: []string{"bug"}},
			models.CategorySecurity,
		},
		{
			"invalid_explicit_category_falls_through_to_tags",
			models.StoreEntry{Metadata: map[string]any{"category": "not-a-real-category"}, Tags: []string{"bug"}},
			models.CategoryDebugging,
		},
		{
			"tag_matching_closed_set_directly",
			models.StoreEntry{Tags: []string{"architecture"}},
			models.CategoryArchitecture,
		},
		{
			"alias_bug_maps_to_debugging",
			models.StoreEntry{Tags: []string{"bug"}},
			models.CategoryDebugging,
		},
		{
			"alias_swarm_maps_to_swarm_results",
			models.StoreEntry{Tags: []string{"swarm"}},
			models.CategorySwarmResults,
		},
		{
			"alias_agent_maps_to_swarm_results",
			models.StoreEntry{Tags: []string{"agent"}},
			models.CategorySwarmResults,
		},
		{
			"alias_perf_maps_to_performance",
			models.StoreEntry{Tags: []string{"perf"}},
			models.CategoryPerformance,
		},
		{
			"alias_benchmark_maps_to_performance",
			models.StoreEntry{Tags: []string{"benchmark"}},
			models.CategoryPerformance,
		},
		{
			"no_category_no_matching_tag_defaults",
			models.StoreEntry{Tags: []string{"insight", "unrelated"}},
			models.CategoryProjectPatterns,
		},
		{
			"no_metadata_no_tags_defaults",
			models.StoreEntry{},
			models.CategoryProjectPatterns,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.entry))
		})
	}
}
