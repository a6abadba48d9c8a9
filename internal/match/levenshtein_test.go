package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a        string
		b        string
		expected int
	}{
		{"", "", 0},
		{"hello", "hello", 0},
		{"", "abc", 3},
		{"a", "b", 1},
		{"ab", "abc", 1},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"algorithm", "altruistic", 6},
		{"Hello", "hello", 1},

		// Runes, not bytes.
		{"größe", "grosse", 2},
		{"π", "p", 1},

		// Directive keys
		{"prefx", "prefix", 1},
		{"perfix", "prefix", 2},
		{"path", "prefix", 5},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.expected, Levenshtein(tt.b, tt.a))
		})
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		a        string
		b        string
		expected float64
	}{
		{"", "", 1},
		{"Prefix", "prefix", 1},
		{"SimpleStruct", "simple_struct", 1},
		{"JSONValue", "json_value", 1},
		{"prefx", "prefix", 1 - 1.0/6},
		{"TupleStruct", "TuplStruct", 1 - 1.0/11},
		{"abc", "xyz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Score(tt.a, tt.b), 0.001)
		})
	}
}

func BenchmarkScore(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Score("SimpleStructID", "simple_struct_id")
	}
}
