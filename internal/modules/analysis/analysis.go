// Package analysis scores content-calendar rows for topic overlap and
// derives clusters, internal-link suggestions, pillar distribution and
// content gaps from the scores.
//
// Everything here is a pure function over an in-memory row slice: no
// I/O, no stored state, full O(n^2) recomputation on every call. Scores
// are asymmetric (containment, not Jaccard) and clustering is greedy in
// original row order. Both are behavioral contracts relied on by stored
// snapshots; see the package tests.
package analysis

// Row is one content-calendar entry. RawKeywords stays comma-delimited;
// splitting happens here. Description is display-only and never scored.
type Row struct {
	Title        string `json:"title"`
	RawKeywords  string `json:"raw_keywords"`
	Category     string `json:"category"`
	PublishedURL string `json:"published_url"`
	Description  string `json:"description"`
}

// ScoredRow points at a row by index in the input slice.
type ScoredRow struct {
	RowIndex int     `json:"row_index"`
	Score    float64 `json:"score"`
}

type Cluster struct {
	ID          int         `json:"id"`
	AnchorIndex int         `json:"anchor_index"`
	Members     []ScoredRow `json:"members"`
	Theme       string      `json:"theme"`
}

type LinkOpportunity struct {
	SourceRowIndex int      `json:"source_row_index"`
	SuggestedURLs  []string `json:"suggested_urls"`
}

type ContentGap struct {
	Category       string `json:"category"`
	CurrentCount   int    `json:"current_count"`
	SuggestedCount int    `json:"suggested_count"`
	Gap            int    `json:"gap"`
}

// Warnings are independent flags; both may fire for the same row.
type Warnings struct {
	HighSimilarity    bool `json:"high_similarity"`
	PublishedConflict bool `json:"published_conflict"`
}

type Report struct {
	TotalRows          int               `json:"total_rows"`
	PublishedCount     int               `json:"published_count"`
	PillarDistribution map[string]int    `json:"pillar_distribution"`
	Clusters           []Cluster         `json:"clusters"`
	InternalLinks      []LinkOpportunity `json:"internal_link_opportunities"`
	ContentGaps        []ContentGap      `json:"content_gaps"`
}

// Analyze runs the full report over rows. Pure and total: no error
// paths, empty input yields an empty report. Pair scoring fans out
// across CPUs; the clustering and link passes then run sequentially
// over the shared score matrix.
func Analyze(rows []Row) Report {
	published := 0
	for _, r := range rows {
		if r.PublishedURL != "" {
			published++
		}
	}
	scores := similarityMatrix(rows)
	return Report{
		TotalRows:          len(rows),
		PublishedCount:     published,
		PillarDistribution: PillarDistribution(rows),
		Clusters:           clustersWith(rows, scores),
		InternalLinks:      internalLinksWith(rows, scores),
		ContentGaps:        ContentGaps(rows),
	}
}
