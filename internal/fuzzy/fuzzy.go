// Package fuzzy ranks labeled candidates against a user-typed query.
package fuzzy

import (
	"sort"
	"strings"
)

// Candidate is a searchable item.
type Candidate struct {
	// ID identifies the candidate to the caller.
	ID int
	// Label is the string matched against.
	Label string
}

// Match is a ranked result with highlight information. Produced fresh per
// query; never persisted.
type Match struct {
	// CandidateID is the matched candidate's ID.
	CandidateID int
	// Text is the candidate's label.
	Text string
	// Positions are the rune indices in the label that matched the query,
	// in ascending order.
	Positions []int
	// Score is the relevance score (higher is better).
	Score float64
}

// Matcher performs fuzzy subsequence matching over candidate labels.
type Matcher struct {
	scorer Scorer
}

// NewMatcher creates a matcher with the default scorer.
func NewMatcher() *Matcher {
	return &Matcher{scorer: DefaultScorer{}}
}

// SetScorer replaces the scoring algorithm.
func (m *Matcher) SetScorer(scorer Scorer) {
	m.scorer = scorer
}

// Match ranks candidates against the query, case-insensitively, returning
// at most limit results ordered by score descending with original candidate
// order breaking ties.
//
// An empty query is a fast path: all candidates in original order, nil
// positions, score 0. The scorer never runs on an empty query.
func (m *Matcher) Match(candidates []Candidate, query string, limit int) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		return emptyQueryMatches(candidates, limit)
	}

	queryRunes := []rune(strings.ToLower(query))

	results := make([]Match, 0, len(candidates))
	for _, candidate := range candidates {
		positions, ok := subsequencePositions(queryRunes, candidate.Label)
		if !ok {
			continue
		}
		score := m.scorer.Score(queryRunes, []rune(candidate.Label), positions)
		results = append(results, Match{
			CandidateID: candidate.ID,
			Text:        candidate.Label,
			Positions:   positions,
			Score:       score,
		})
	}

	// Stable sort keeps original candidate order for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// MatchAsync runs Match on its own goroutine and delivers the result to
// complete. Supersession of stale results is the caller's concern.
func (m *Matcher) MatchAsync(candidates []Candidate, query string, limit int, complete func([]Match)) {
	// Snapshot so later caller mutations cannot race the scan.
	snapshot := make([]Candidate, len(candidates))
	copy(snapshot, candidates)

	go func() {
		complete(m.Match(snapshot, query, limit))
	}()
}

// subsequencePositions finds the query runes in label, in order,
// case-insensitively, using a greedy left-to-right scan. ok is false when
// any query rune is unmatched.
func subsequencePositions(queryRunes []rune, label string) ([]int, bool) {
	labelRunes := []rune(strings.ToLower(label))

	positions := make([]int, 0, len(queryRunes))
	queryIdx := 0
	for i := 0; i < len(labelRunes) && queryIdx < len(queryRunes); i++ {
		if labelRunes[i] == queryRunes[queryIdx] {
			positions = append(positions, i)
			queryIdx++
		}
	}

	if queryIdx != len(queryRunes) {
		return nil, false
	}
	return positions, true
}

// emptyQueryMatches is the empty-query pass-through.
func emptyQueryMatches(candidates []Candidate, limit int) []Match {
	count := len(candidates)
	if limit > 0 && limit < count {
		count = limit
	}

	results := make([]Match, count)
	for i := 0; i < count; i++ {
		results[i] = Match{
			CandidateID: candidates[i].ID,
			Text:        candidates[i].Label,
		}
	}
	return results
}
