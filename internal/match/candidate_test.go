package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankCandidates(t *testing.T) {
	candidates := RankCandidates("Simpel", []string{"Simple", "SimpleStruct", "Empty", "Simpel"})

	// exact matches are not candidates
	require.Len(t, candidates, 3)
	assert.Equal(t, "Simple", candidates[0].Name)
	assert.Equal(t, "Empty", candidates[2].Name)

	for i := 1; i < len(candidates); i++ {
		assert.GreaterOrEqual(t, candidates[i-1].Score, candidates[i].Score)
	}
}

func TestRankCandidates_TieBreakByName(t *testing.T) {
	candidates := RankCandidates("ab", []string{"ac", "aa"})

	require.Len(t, candidates, 2)
	assert.Equal(t, "aa", candidates[0].Name)
	assert.Equal(t, "ac", candidates[1].Name)
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		word     string
		names    []string
		expected []string
	}{
		{"prefx", []string{"prefix"}, []string{"prefix"}},
		{"Prefix", []string{"prefix"}, []string{"prefix"}},
		{"path", []string{"prefix"}, nil},
		{"Colr", []string{"Color", "Shape", "Colour"}, []string{"Color", "Colour"}},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.expected, Suggest(tt.word, tt.names))
		})
	}
}

func TestCandidateList_Empty(t *testing.T) {
	var c CandidateList

	assert.Empty(t, c.Top(3))
	assert.Empty(t, c.AboveThreshold(0))
}
