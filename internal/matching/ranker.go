package matching

import (
	"fmt"
	"sort"

	"github.com/scholarmatch/scholarmatch/internal/scholar"
)

// DefaultTopN is the cutoff applied when a caller does not ask for a
// specific number of matches.
const DefaultTopN = 5

// Rank scores every opportunity for the profile and returns the topN
// results ordered by score, highest first. Equal scores keep their input
// order so the ranking stays deterministic. topN of zero yields an empty
// result; a negative topN is an error.
func Rank(profile *scholar.Profile, opps []*scholar.Opportunity, topN int) ([]*scholar.MatchResult, error) {
	if topN < 0 {
		return nil, fmt.Errorf("%w: topN must not be negative, got %d", scholar.ErrInvalidInput, topN)
	}

	results := make([]*scholar.MatchResult, 0, len(opps))
	for _, opp := range opps {
		result, err := Score(profile, opp)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topN < len(results) {
		results = results[:topN]
	}

	return results, nil
}
