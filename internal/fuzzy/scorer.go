package fuzzy

import "unicode"

// Scorer calculates match scores. Higher scores indicate better matches.
type Scorer interface {
	// Score rates a match given the normalized query runes, the original
	// label runes, and the rune positions that matched.
	Score(queryRunes, labelRunes []rune, positions []int) float64
}

// DefaultScorer rewards dense, early, boundary-aligned matches and shorter
// labels; it penalizes gaps and late starts.
type DefaultScorer struct{}

// Score implements the Scorer interface.
func (DefaultScorer) Score(queryRunes, labelRunes []rune, positions []int) float64 {
	if len(positions) == 0 {
		return 0
	}

	score := 100.0

	// Consecutive runs.
	for i := 1; i < len(positions); i++ {
		if positions[i] == positions[i-1]+1 {
			score += 20
		}
	}

	// Word boundaries.
	for _, idx := range positions {
		if isWordBoundary(labelRunes, idx) {
			score += 15
		}
	}

	// First match at the very start.
	if positions[0] == 0 {
		score += 25
	}

	// Gaps between matches.
	if len(positions) > 1 {
		totalGap := positions[len(positions)-1] - positions[0] - len(positions) + 1
		if totalGap > 0 {
			score -= float64(totalGap) * 2
		}
	}

	// Late start.
	score -= float64(positions[0])

	// Shorter labels are more specific.
	if len(labelRunes) < 20 {
		score += float64(20 - len(labelRunes))
	}

	// Exact prefix.
	if len(labelRunes) >= len(queryRunes) {
		isPrefix := true
		for i, qr := range queryRunes {
			if unicode.ToLower(labelRunes[i]) != qr {
				isPrefix = false
				break
			}
		}
		if isPrefix {
			score += 50
		}
	}

	// Any match scores at least 1.
	if score < 1 {
		score = 1
	}
	return score
}

// isWordBoundary checks if the rune at idx starts a word.
func isWordBoundary(runes []rune, idx int) bool {
	if idx == 0 {
		return true
	}
	if idx >= len(runes) {
		return false
	}

	prev := runes[idx-1]
	curr := runes[idx]

	if unicode.IsSpace(prev) || unicode.IsPunct(prev) {
		return true
	}

	// CamelCase boundary.
	if unicode.IsLower(prev) && unicode.IsUpper(curr) {
		return true
	}

	return false
}
