package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScorer_NameSimilarity(t *testing.T) {
	scorer := NewScorer()

	t.Run("identical names score 1.0", func(t *testing.T) {
		assert.Equal(t, 1.0, scorer.NameSimilarity("Maria Souza", "Maria Souza"))
	})

	t.Run("accents and casing do not count against the match", func(t *testing.T) {
		assert.Equal(t, 1.0, scorer.NameSimilarity("Joao Silva", "JOÃO  Silva"))
	})

	t.Run("symmetry", func(t *testing.T) {
		pairs := [][2]string{
			{"João Silva", "Joana Silveira"},
			{"Ana", "Mariana"},
			{"", "someone"},
		}
		for _, pair := range pairs {
			assert.Equal(t,
				scorer.NameSimilarity(pair[0], pair[1]),
				scorer.NameSimilarity(pair[1], pair[0]),
				"pair %v", pair)
		}
	})

	t.Run("one empty name scores 0.0", func(t *testing.T) {
		assert.Equal(t, 0.0, scorer.NameSimilarity("", "Maria Souza"))
	})

	t.Run("unrelated names score low", func(t *testing.T) {
		assert.Less(t, scorer.NameSimilarity("João Silva", "Maria Souza"), 0.5)
	})
}

func TestScorer_Levenshtein(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		a, b     string
		expected float64
	}{
		{"", "", 1.0},
		{"abc", "abc", 1.0},
		{"abcd", "abcx", 0.75},
		{"ab", "ac", 0.5},
		{"abc", "", 0.0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, scorer.Levenshtein(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestScorer_ValueSimilarity(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		name     string
		a, b     float64
		expected float64
	}{
		{"both zero", 0, 0, 1.0},
		{"one zero", 0, 50, 0.0},
		{"other zero", 50, 0, 0.0},
		{"equal amounts", 100, 100, 1.0},
		{"half the amount", 100, 50, 0.5},
		{"symmetric", 50, 100, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, scorer.ValueSimilarity(tt.a, tt.b))
		})
	}
}

func TestScorer_DateSimilarity(t *testing.T) {
	scorer := NewScorer()
	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		daysDiff int
		expected float64
	}{
		{"same day", 0, 1.0},
		{"exactly 7 days", 7, 1.0},
		{"8 days", 8, 0.8},
		{"31 days", 31, 0.6},
		{"91 days", 91, 0.4},
		{"181 days", 181, 0.2},
		{"a year apart", 365, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := base.AddDate(0, 0, tt.daysDiff)
			assert.Equal(t, tt.expected, scorer.DateSimilarity(base, other))
			assert.Equal(t, tt.expected, scorer.DateSimilarity(other, base))
		})
	}

	t.Run("zero time scores 0.0", func(t *testing.T) {
		assert.Equal(t, 0.0, scorer.DateSimilarity(time.Time{}, base))
		assert.Equal(t, 0.0, scorer.DateSimilarity(base, time.Time{}))
	})
}
