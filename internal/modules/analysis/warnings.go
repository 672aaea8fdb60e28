package analysis

import "sort"

// Similar-row listings are capped to the strongest five matches.
const maxSimilarRows = 5

// SimilarRows lists every other row scoring above ClusterThreshold
// against rows[i], descending by score, capped to maxSimilarRows.
func SimilarRows(rows []Row, i int) []ScoredRow {
	if i < 0 || i >= len(rows) {
		return []ScoredRow{}
	}
	similar := []ScoredRow{}
	for j := range rows {
		if j == i {
			continue
		}
		score := Similarity(rows[i], rows[j])
		if score > ClusterThreshold {
			similar = append(similar, ScoredRow{RowIndex: j, Score: score})
		}
	}
	sort.SliceStable(similar, func(x, y int) bool {
		return similar[x].Score > similar[y].Score
	})
	if len(similar) > maxSimilarRows {
		similar = similar[:maxSimilarRows]
	}
	return similar
}

// RowWarnings derives duplicate-topic flags from the capped similar
// list: a neighbor above HighSimilarityThreshold, and a published
// neighbor above PublishedThreshold. A published neighbor outside the
// top five never warns.
func RowWarnings(rows []Row, i int) Warnings {
	var w Warnings
	for _, s := range SimilarRows(rows, i) {
		if s.Score > HighSimilarityThreshold {
			w.HighSimilarity = true
		}
		if rows[s.RowIndex].PublishedURL != "" && s.Score > PublishedThreshold {
			w.PublishedConflict = true
		}
	}
	return w
}
