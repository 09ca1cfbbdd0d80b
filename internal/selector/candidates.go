// Package selector implements the indentation picker: the candidate list,
// the selection state machine driving any host UI, and the settings write
// performed on confirmation.
package selector

import (
	"fmt"

	"github.com/dshills/tabstop/internal/fuzzy"
)

// ToggleID is the sentinel candidate ID for the spaces/tabs toggle entry.
// Numeric candidate IDs double as their indent width.
const ToggleID = 16

// maxMatches caps how many results a single query may produce.
const maxMatches = 100

// DefaultCandidates returns the static selectable indentation options, in
// display order.
func DefaultCandidates() []fuzzy.Candidate {
	return []fuzzy.Candidate{
		{ID: ToggleID, Label: "Toggle Spaces/Tabs"},
		{ID: 2, Label: "2 spaces"},
		{ID: 4, Label: "4 spaces"},
		{ID: 8, Label: "8 spaces"},
	}
}

// CandidatesWithWidths appends extra numeric width candidates after the
// builtins, preserving insertion order. Widths that collide with a builtin
// candidate or the toggle sentinel are skipped.
func CandidatesWithWidths(extra []int) []fuzzy.Candidate {
	candidates := DefaultCandidates()

	seen := make(map[int]bool, len(candidates))
	for _, c := range candidates {
		seen[c.ID] = true
	}

	for _, width := range extra {
		if width <= 0 || seen[width] {
			continue
		}
		seen[width] = true
		candidates = append(candidates, fuzzy.Candidate{
			ID:    width,
			Label: fmt.Sprintf("%d spaces", width),
		})
	}
	return candidates
}
