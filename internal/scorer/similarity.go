package scorer

import (
	"math"
	"strings"

	"github.com/sells-group/placelist-cli/internal/normalize"
)

// NameSimilarity returns a token-set overlap ratio in [0, 100]. Token order
// is irrelevant: "Red Fort Delhi" vs "Delhi Red Fort" scores 100. When one
// token set fully contains the other the score is 100; otherwise it is the
// Jaccard ratio of the two sets. This is the single similarity
// implementation for the whole pipeline.
func NameSimilarity(a, b string) int {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	inter := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			inter++
		}
	}
	if inter == len(ta) || inter == len(tb) {
		return 100
	}

	union := len(ta) + len(tb) - inter
	return int(math.Round(100 * float64(inter) / float64(union)))
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(normalize.Normalize(stripPunct(s)))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

var punctReplacer = strings.NewReplacer(",", " ", ".", " ", "-", " ", "'", "", "(", " ", ")", " ", "/", " ")

func stripPunct(s string) string {
	return punctReplacer.Replace(s)
}
