package service

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const maxSuggestions = 3

// suggestNames returns up to maxSuggestions of candidates close to name, best
// match first. Candidates containing name as a fuzzy subsequence rank first;
// otherwise candidates within a small edit distance are offered.
func suggestNames(name string, candidates []string) []string {
	name = strings.TrimSpace(name)
	if name == "" || len(candidates) == 0 {
		return nil
	}
	ranks := fuzzy.RankFindNormalizedFold(name, candidates)
	if len(ranks) == 0 {
		limit := max(2, len(name)/3)
		lower := strings.ToLower(name)
		for i, c := range candidates {
			if d := fuzzy.LevenshteinDistance(lower, strings.ToLower(c)); d <= limit {
				ranks = append(ranks, fuzzy.Rank{Source: name, Target: c, Distance: d, OriginalIndex: i})
			}
		}
	}
	sort.Stable(ranks)

	out := make([]string, 0, maxSuggestions)
	seen := make(map[string]bool, maxSuggestions)
	for _, r := range ranks {
		if seen[r.Target] {
			continue
		}
		seen[r.Target] = true
		out = append(out, r.Target)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
