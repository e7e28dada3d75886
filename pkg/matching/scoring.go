package matching

import (
	"math"
	"time"

	"github.com/Ramsey-B/clover/pkg/normalizers"
)

// Scorer provides the similarity algorithms used to link accounts to orders.
// Every method returns a score in [0.0, 1.0] and never fails: inputs it
// cannot interpret score as the worst case, not as an error.
type Scorer struct{}

// NewScorer creates a new Scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// NameSimilarity compares two customer names. Both sides are normalized
// first, then scored by Levenshtein ratio, so accents, casing and stray
// punctuation do not count against the match.
func (s *Scorer) NameSimilarity(a, b string) float64 {
	return s.Levenshtein(normalizers.CustomerName(a), normalizers.CustomerName(b))
}

// Levenshtein returns the edit-distance similarity between two strings,
// 1.0 for identical strings down to 0.0 when every position differs.
func (s *Scorer) Levenshtein(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(s.levenshteinDistance(ra, rb))/float64(maxLen)
}

// levenshteinDistance calculates the edit distance with two rolling rows.
func (s *Scorer) levenshteinDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	row := make([]int, len(b)+1)
	prevRow := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prevRow[j] = j
	}

	for i := 1; i <= len(a); i++ {
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			row[j] = min(min(row[j-1]+1, prevRow[j]+1), prevRow[j-1]+cost)
		}
		row, prevRow = prevRow, row
	}

	return prevRow[len(b)]
}

// ValueSimilarity compares two monetary amounts by relative difference.
// Two zero amounts are a perfect match, one zero amount is no match at
// all, and anything else decays linearly with the relative gap.
func (s *Scorer) ValueSimilarity(a, b float64) float64 {
	if a == 0 && b == 0 {
		return 1.0
	}
	if a == 0 || b == 0 {
		return 0.0
	}

	larger := math.Max(math.Abs(a), math.Abs(b))
	return math.Max(0, 1.0-math.Abs(a-b)/larger)
}

// DateSimilarity scores two timestamps by how far apart they fall. The
// score steps down in bands rather than decaying linearly, because order
// and ledger timestamps routinely drift by days without meaning anything.
// A zero time on either side scores 0.0.
//
//	within 7 days  -> 1.0
//	within 30 days -> 0.8
//	within 90 days -> 0.6
//	within 180 days -> 0.4
//	beyond that    -> 0.2
func (s *Scorer) DateSimilarity(a, b time.Time) float64 {
	if a.IsZero() || b.IsZero() {
		return 0.0
	}

	daysDiff := math.Abs(a.Sub(b).Hours() / 24)

	switch {
	case daysDiff <= 7:
		return 1.0
	case daysDiff <= 30:
		return 0.8
	case daysDiff <= 90:
		return 0.6
	case daysDiff <= 180:
		return 0.4
	default:
		return 0.2
	}
}
