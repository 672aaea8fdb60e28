package analysis

// A row gets at most this many link suggestions, taken in original row
// order, not by score.
const maxLinkSuggestions = 3

// InternalLinks suggests cross-links between already-published rows.
// For each row with a published URL, other published rows scoring above
// LinkThreshold contribute their URLs, first maxLinkSuggestions in row
// order. Rows with no suggestions are omitted.
func InternalLinks(rows []Row) []LinkOpportunity {
	return internalLinksWith(rows, similarityMatrix(rows))
}

func internalLinksWith(rows []Row, scores [][]float64) []LinkOpportunity {
	out := []LinkOpportunity{}
	for i := range rows {
		if rows[i].PublishedURL == "" {
			continue
		}
		var urls []string
		for j := range rows {
			if j == i || rows[j].PublishedURL == "" {
				continue
			}
			if scores[i][j] > LinkThreshold {
				urls = append(urls, rows[j].PublishedURL)
				if len(urls) == maxLinkSuggestions {
					break
				}
			}
		}
		if len(urls) > 0 {
			out = append(out, LinkOpportunity{SourceRowIndex: i, SuggestedURLs: urls})
		}
	}
	return out
}
