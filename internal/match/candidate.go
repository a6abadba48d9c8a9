package match

import (
	"sort"
)

// Candidate is a known name scored against a misspelled one.
type Candidate struct {
	Name  string
	Score float64 // see Score
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// RankCandidates scores every known name against word.
// Returns candidates sorted by score (descending).
func RankCandidates(word string, names []string) CandidateList {
	candidates := make(CandidateList, 0, len(names))

	for _, name := range names {
		if name == word {
			continue
		}

		candidates = append(candidates, Candidate{Name: name, Score: Score(word, name)})
	}

	// Sort by score (descending), then by name for determinism
	sort.Sort(candidates)

	return candidates
}

// Suggest returns the names close enough to word to be offered as a
// "did you mean" hint, best first.
func Suggest(word string, names []string) []string {
	var out []string
	for _, c := range RankCandidates(word, names).AboveThreshold(DefaultMinScore).Top(DefaultMaxSuggestions) {
		out = append(out, c.Name)
	}

	return out
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by score descending, then by name for determinism.
func (c CandidateList) Less(i, j int) bool {
	// Higher score comes first
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}
	// Tie-breaker: alphabetical by name
	return c[i].Name < c[j].Name
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}
	return c[:n]
}

// AboveThreshold returns candidates with score above the threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList
	for _, cand := range c {
		if cand.Score >= threshold {
			result = append(result, cand)
		}
	}
	return result
}

// Suggestion thresholds.
const (
	// DefaultMinScore is the minimum score for a name to be suggested.
	DefaultMinScore = 0.6
	// DefaultMaxSuggestions caps the number of names suggested at once.
	DefaultMaxSuggestions = 3
)
