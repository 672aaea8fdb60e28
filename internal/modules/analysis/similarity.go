package analysis

import "strings"

const (
	keywordWeight = 0.5
	pillarWeight  = 0.3
	titleWeight   = 0.4

	// Four thresholds for four call sites. Comparisons are strictly
	// greater-than everywhere.
	ClusterThreshold        = 0.3
	LinkThreshold           = 0.2
	HighSimilarityThreshold = 0.7
	PublishedThreshold      = 0.5
)

// Similarity scores two rows in [0, 1]:
// keyword containment * 0.5 + exact category match * 0.3 + title word
// containment * 0.4, capped at 1. Containment counts a's tokens found
// anywhere in b over max(len(a), len(b)), duplicates counting per
// occurrence, so Similarity(a, b) != Similarity(b, a) in general.
func Similarity(a, b Row) float64 {
	kw := containmentRatio(SplitKeywords(a.RawKeywords), SplitKeywords(b.RawKeywords))
	pillar := 0.0
	if a.Category == b.Category {
		pillar = pillarWeight
	}
	title := containmentRatio(splitTitleWords(a.Title), splitTitleWords(b.Title))
	score := kw*keywordWeight + pillar + title*titleWeight
	if score > 1 {
		score = 1
	}
	return score
}

// SplitKeywords splits a raw comma-delimited keyword string into
// trimmed, lowercased tokens. Empty tokens are dropped; duplicates are
// kept.
func SplitKeywords(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.ToLower(strings.TrimSpace(p))
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// splitTitleWords splits on single spaces only, no punctuation
// stripping.
func splitTitleWords(title string) []string {
	words := make([]string, 0, 8)
	for _, w := range strings.Split(strings.ToLower(title), " ") {
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// containmentRatio counts tokens of a that appear anywhere in b,
// divided by max(len(a), len(b)). Both empty yields 0 rather than a
// division by zero.
func containmentRatio(a, b []string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0
	}
	inB := make(map[string]bool, len(b))
	for _, t := range b {
		inB[t] = true
	}
	shared := 0
	for _, t := range a {
		if inB[t] {
			shared++
		}
	}
	return float64(shared) / float64(maxLen)
}
