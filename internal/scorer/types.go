package scorer

import (
	"strings"

	"github.com/sells-group/placelist-cli/internal/model"
)

// hintTypeTags maps a category-hint keyword to the directory type tags it is
// compatible with. Hints are matched as substrings of the lowercased hint
// text, so "Hindu temple" and "temple complex" both hit the "temple" row.
var hintTypeTags = map[string][]string{
	"temple":    {"hindu_temple", "place_of_worship", "church", "mosque", "synagogue"},
	"church":    {"church", "place_of_worship"},
	"mosque":    {"mosque", "place_of_worship"},
	"gurudwara": {"place_of_worship"},
	"monastery": {"place_of_worship", "tourist_attraction"},
	"fort":      {"tourist_attraction", "historical_landmark", "museum"},
	"palace":    {"tourist_attraction", "historical_landmark", "museum"},
	"monument":  {"tourist_attraction", "historical_landmark"},
	"museum":    {"museum", "art_gallery", "tourist_attraction"},
	"beach":     {"natural_feature"},
	"lake":      {"natural_feature"},
	"waterfall": {"natural_feature", "tourist_attraction"},
	"hill":      {"natural_feature", "tourist_attraction"},
	"cave":      {"natural_feature", "tourist_attraction"},
	"park":      {"park", "national_park", "amusement_park"},
	"garden":    {"park", "tourist_attraction"},
	"zoo":       {"zoo"},
	"market":    {"shopping_mall", "department_store", "store"},
	"bazaar":    {"shopping_mall", "store"},
	"restaurant": {"restaurant", "food", "cafe"},
	"viewpoint":  {"tourist_attraction", "natural_feature"},
}

// scopeTypeTags lists the tags any candidate in a given scope may carry.
var scopeTypeTags = map[model.Scope][]string{
	model.ScopeDestination: {
		"locality", "sublocality", "administrative_area_level_1",
		"administrative_area_level_2", "political",
	},
	model.ScopePointOfInterest: {
		"point_of_interest", "tourist_attraction", "establishment",
	},
	model.ScopeNaturalFeature: {
		"natural_feature", "park", "campground",
	},
}

// AllowedTypes derives the set of directory type tags considered compatible
// with a query's category hint and scope.
func AllowedTypes(categoryHint string, scope model.Scope) map[string]struct{} {
	allowed := make(map[string]struct{})

	hint := strings.ToLower(categoryHint)
	for keyword, tags := range hintTypeTags {
		if hint != "" && strings.Contains(hint, keyword) {
			for _, tag := range tags {
				allowed[tag] = struct{}{}
			}
		}
	}

	for _, tag := range scopeTypeTags[scope] {
		allowed[tag] = struct{}{}
	}
	return allowed
}
