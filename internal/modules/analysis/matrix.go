package analysis

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// similarityMatrix scores every ordered row pair. m[i][j] is
// Similarity(rows[i], rows[j]); the diagonal stays zero. Rows are
// scored in parallel, one goroutine per row slot, so the result is
// identical to a sequential fill.
func similarityMatrix(rows []Row) [][]float64 {
	m := make([][]float64, len(rows))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range rows {
		i := i
		g.Go(func() error {
			scores := make([]float64, len(rows))
			for j := range rows {
				if j == i {
					continue
				}
				scores[j] = Similarity(rows[i], rows[j])
			}
			m[i] = scores
			return nil
		})
	}
	// Workers are pure and never return an error.
	_ = g.Wait()
	return m
}
