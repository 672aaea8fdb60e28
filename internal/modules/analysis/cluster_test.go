package analysis

import "testing"

func clusteredIndexes(t *testing.T, clusters []Cluster) map[int]bool {
	t.Helper()
	seen := map[int]bool{}
	mark := func(idx int) {
		if seen[idx] {
			t.Fatalf("row %d appears in two clusters", idx)
		}
		seen[idx] = true
	}
	for _, c := range clusters {
		mark(c.AnchorIndex)
		for _, m := range c.Members {
			mark(m.RowIndex)
		}
	}
	return seen
}

func TestClustersPartitionRows(t *testing.T) {
	rows := []Row{
		{RawKeywords: "wine, tasting", Category: "A"},
		{RawKeywords: "wine, tasting", Category: "A"},
		{RawKeywords: "wine, notes", Category: "A"},
		{RawKeywords: "cheese, pairing", Category: "B"},
		{RawKeywords: "cheese, boards", Category: "B"},
		{RawKeywords: "hiking", Category: "C"},
	}
	clusters := Clusters(rows)
	if len(clusters) != 2 {
		t.Fatalf("got %d clusters, want 2: %+v", len(clusters), clusters)
	}
	if clusters[0].ID != 1 || clusters[1].ID != 2 {
		t.Fatalf("cluster ids = %d, %d, want 1, 2", clusters[0].ID, clusters[1].ID)
	}
	if clusters[0].AnchorIndex != 0 || clusters[1].AnchorIndex != 3 {
		t.Fatalf("anchors = %d, %d, want 0, 3", clusters[0].AnchorIndex, clusters[1].AnchorIndex)
	}
	first := clusters[0].Members
	if len(first) != 2 || first[0].RowIndex != 1 || first[1].RowIndex != 2 {
		t.Fatalf("first cluster members = %+v, want rows 1 then 2", first)
	}
	if first[0].Score < first[1].Score {
		t.Fatalf("members not sorted by descending score: %+v", first)
	}
	seen := clusteredIndexes(t, clusters)
	if seen[5] {
		t.Fatalf("row 5 has no qualifying neighbor but was clustered")
	}
}

func TestClustersOrderDependent(t *testing.T) {
	x := Row{Title: "X", RawKeywords: "alpha", Category: "P"}
	y := Row{Title: "Y", RawKeywords: "alpha, beta", Category: "P"}
	z := Row{Title: "Z", RawKeywords: "beta", Category: "P"}
	// x-y and y-z score 0.55; x-z is exactly 0.3 and stays below the
	// strict threshold.
	forward := Clusters([]Row{x, y, z})
	if len(forward) != 1 || forward[0].AnchorIndex != 0 {
		t.Fatalf("forward order: %+v, want one cluster anchored at row 0", forward)
	}
	if len(forward[0].Members) != 1 || forward[0].Members[0].RowIndex != 1 {
		t.Fatalf("forward members = %+v, want row 1 only", forward[0].Members)
	}

	reversed := Clusters([]Row{z, y, x})
	if len(reversed) != 1 || reversed[0].AnchorIndex != 0 {
		t.Fatalf("reversed order: %+v, want one cluster anchored at row 0", reversed)
	}
	if len(reversed[0].Members) != 1 || reversed[0].Members[0].RowIndex != 1 {
		t.Fatalf("reversed members = %+v, want row 1 only", reversed[0].Members)
	}
	// Same rows, different partition: forward leaves z out, reversed
	// leaves x out. The greedy order sensitivity is contractual.
}

func TestClustersIsolatedRowStaysUnclustered(t *testing.T) {
	rows := []Row{
		{RawKeywords: "solo", Category: "A"},
		{RawKeywords: "different", Category: "B"},
	}
	if got := Clusters(rows); len(got) != 0 {
		t.Fatalf("got %+v, want no clusters", got)
	}
	if got := Clusters(nil); len(got) != 0 {
		t.Fatalf("nil rows: got %+v, want no clusters", got)
	}
}

func TestClusterThemeFromAnchor(t *testing.T) {
	cases := []struct {
		anchor Row
		want   string
	}{
		{Row{Title: "Vineyard Tour Notes", RawKeywords: "tours"}, "Vineyard"},
		{Row{Title: "Spring Events", RawKeywords: "wine tasting, wedding"}, "Wine Tasting"}, // vocabulary order wins
		{Row{Title: "Quarterly Planning", RawKeywords: "ops"}, DefaultTheme},
	}
	for _, tc := range cases {
		// pair the anchor with a near-identical row so a cluster forms
		twin := tc.anchor
		rows := []Row{tc.anchor, twin}
		clusters := Clusters(rows)
		if len(clusters) != 1 {
			t.Fatalf("anchor %q: got %d clusters, want 1", tc.anchor.Title, len(clusters))
		}
		if clusters[0].Theme != tc.want {
			t.Fatalf("anchor %q: theme = %q, want %q", tc.anchor.Title, clusters[0].Theme, tc.want)
		}
	}
}
