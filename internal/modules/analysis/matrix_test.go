package analysis

import (
	"fmt"
	"testing"
)

func TestSimilarityMatrixMatchesDirectScoring(t *testing.T) {
	rows := make([]Row, 0, 40)
	for i := 0; i < 40; i++ {
		row := Row{
			Title:       fmt.Sprintf("post %d about wine", i),
			RawKeywords: fmt.Sprintf("wine, tasting, topic%d", i%7),
			Category:    fmt.Sprintf("cat%d", i%3),
		}
		if i%2 == 0 {
			row.PublishedURL = fmt.Sprintf("https://example.com/%d", i)
		}
		rows = append(rows, row)
	}
	m := similarityMatrix(rows)
	if len(m) != len(rows) {
		t.Fatalf("matrix has %d rows, want %d", len(m), len(rows))
	}
	for i := range rows {
		if len(m[i]) != len(rows) {
			t.Fatalf("matrix row %d has %d cols, want %d", i, len(m[i]), len(rows))
		}
		if m[i][i] != 0 {
			t.Fatalf("diagonal [%d][%d] = %v, want 0", i, i, m[i][i])
		}
		for j := range rows {
			if j == i {
				continue
			}
			if want := Similarity(rows[i], rows[j]); m[i][j] != want {
				t.Fatalf("m[%d][%d] = %v, want %v", i, j, m[i][j], want)
			}
		}
	}
}

func TestSimilarityMatrixEmpty(t *testing.T) {
	if m := similarityMatrix(nil); len(m) != 0 {
		t.Fatalf("empty input produced %d rows", len(m))
	}
}
