// Package classifier maps an opaque Store entry onto the closed set
// of topic categories, preferring explicit metadata over tags and
// falling back to a default bucket.
package classifier

import (
	"strings"

	"github.com/thebtf/auto-memory-bridge/pkg/models"
)

// aliasCategories maps a loose tag spelling onto a canonical category
// when the tag itself isn't already one of the closed set.
var aliasCategories = map[string]models.Category{
	"bug":       models.CategoryDebugging,
	"swarm":     models.CategorySwarmResults,
	"agent":     models.CategorySwarmResults,
	"perf":      models.CategoryPerformance,
	"benchmark": models.CategoryPerformance,
}

// Classify maps a Store entry to a category:
//  1. metadata.category, if it's a member of the closed set.
//  2. the first tag matching a closed-set category or a known alias.
//  3. CategoryProjectPatterns, the default bucket.
func Classify(entry models.StoreEntry) models.Category {
	if cat := models.Category(entry.MetadataString("category")); cat.IsValid() {
		return cat
	}

	for _, tag := range entry.Tags {
		norm := strings.ToLower(strings.TrimSpace(tag))
		if cat := models.Category(norm); cat.IsValid() {
			return cat
		}
		if cat, ok := aliasCategories[norm]; ok {
			return cat
		}
	}

	return models.CategoryProjectPatterns
}
