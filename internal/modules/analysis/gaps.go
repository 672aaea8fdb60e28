package analysis

import (
	"math"
	"strings"
)

// UnknownCategory labels rows with an empty category in the
// distribution and gap outputs. Scoring still compares the raw value.
const UnknownCategory = "Unknown"

const gapTargetShare = 0.2

func categoryLabel(r Row) string {
	if strings.TrimSpace(r.Category) == "" {
		return UnknownCategory
	}
	return r.Category
}

func PillarDistribution(rows []Row) map[string]int {
	dist := map[string]int{}
	for _, r := range rows {
		dist[categoryLabel(r)]++
	}
	return dist
}

// ContentGaps reports categories falling short of an even-spread target
// of ceil(20% of total rows). Zero-gap categories are omitted; output
// follows first appearance order of the categories.
func ContentGaps(rows []Row) []ContentGap {
	counts := map[string]int{}
	var order []string
	for _, r := range rows {
		label := categoryLabel(r)
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}
	suggested := int(math.Ceil(gapTargetShare * float64(len(rows))))
	gaps := []ContentGap{}
	for _, label := range order {
		gap := suggested - counts[label]
		if gap <= 0 {
			continue
		}
		gaps = append(gaps, ContentGap{
			Category:       label,
			CurrentCount:   counts[label],
			SuggestedCount: suggested,
			Gap:            gap,
		})
	}
	return gaps
}
