package analysis

import (
	"sort"
	"strings"
)

// DefaultTheme is assigned when no vocabulary entry matches the anchor.
const DefaultTheme = "General"

// themeVocabulary is scanned in order against the anchor's lowercased
// title + keywords; the first substring hit wins.
var themeVocabulary = []struct {
	match string
	label string
}{
	{"wine tasting", "Wine Tasting"},
	{"wedding", "Wedding"},
	{"vineyard", "Vineyard"},
	{"events", "Events"},
	{"sustainability", "Sustainability"},
	{"harvest", "Harvest"},
}

// Clusters groups rows greedily in original order. The first unclaimed
// row anchors a cluster of every unclaimed row scoring above
// ClusterThreshold against it; claimed rows are never revisited, so the
// partition depends on input order. Rows with no qualifying neighbor
// stay unclustered. The input slice is never mutated.
func Clusters(rows []Row) []Cluster {
	return clustersWith(rows, similarityMatrix(rows))
}

func clustersWith(rows []Row, scores [][]float64) []Cluster {
	claimed := make([]bool, len(rows))
	clusters := []Cluster{}
	for i := range rows {
		if claimed[i] {
			continue
		}
		var members []ScoredRow
		for j := range rows {
			if j == i || claimed[j] {
				continue
			}
			if score := scores[i][j]; score > ClusterThreshold {
				members = append(members, ScoredRow{RowIndex: j, Score: score})
			}
		}
		if len(members) == 0 {
			continue
		}
		sort.SliceStable(members, func(x, y int) bool {
			return members[x].Score > members[y].Score
		})
		claimed[i] = true
		for _, m := range members {
			claimed[m.RowIndex] = true
		}
		clusters = append(clusters, Cluster{
			ID:          len(clusters) + 1,
			AnchorIndex: i,
			Members:     members,
			Theme:       themeFor(rows[i]),
		})
	}
	return clusters
}

func themeFor(anchor Row) string {
	haystack := strings.ToLower(anchor.Title + " " + anchor.RawKeywords)
	for _, entry := range themeVocabulary {
		if strings.Contains(haystack, entry.match) {
			return entry.label
		}
	}
	return DefaultTheme
}
