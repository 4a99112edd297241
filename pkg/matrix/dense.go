package matrix

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// MaxDenseSize bounds the side of dense matrices.
const MaxDenseSize = 20000

// Dense is a square row-major matrix.
type Dense struct {
	N    int
	Data []float64
}

// At returns the value at row i, column j.
func (d *Dense) At(i, j int) float64 {
	return d.Data[i*d.N+j]
}

func (d *Dense) add(i, j int, v float64) {
	d.Data[i*d.N+j] += v
}

// Dense builds D + Dᵀ - k·diag(D) with k = 2 when removeDiag is set and 1 otherwise,
// so the result is symmetric whatever triangle entries were stored in.
func (s *Sparse) Dense(removeDiag bool) (*Dense, error) {
	if s.Size > MaxDenseSize {
		return nil, errors.Wrapf(ErrTooLarge, "%d rows, at most %d", s.Size, MaxDenseSize)
	}

	d := &Dense{N: s.Size, Data: make([]float64, s.Size*s.Size)}

	k := 1.0
	if removeDiag {
		k = 2
	}

	for i, v := range s.Data {
		r, c := s.Rows[i], s.Cols[i]
		d.add(r, c, v)
		d.add(c, r, v)

		if r == c {
			d.add(r, c, -k*v)
		}
	}

	return d, nil
}

// Percentile returns the q-th percentile (0 to 100) of values using linear interpolation between
// closest ranks. NaN values are ignored, an empty input yields NaN.
func Percentile(values []float64, q float64) float64 {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}

	if len(sorted) == 0 {
		return math.NaN()
	}

	sort.Float64s(sorted)

	q = math.Max(0, math.Min(100, q))
	pos := q / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))

	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

func sortBy[T any](s []T, less func(a, b T) bool) {
	sort.Slice(s, func(i, j int) bool { return less(s[i], s[j]) })
}
