package matrix

import (
	"sort"
)

// Bin is the genomic interval of a matrix row.
type Bin struct {
	Chrom string
	Start int
	End   int
}

// Sparse is a square contact matrix in coordinate format. Entries may be stored in either triangle,
// Dense treats the matrix as symmetric.
type Sparse struct {
	Size int
	Rows []int
	Cols []int
	Data []float64
	// Bins holds the position of each row when known.
	Bins []Bin
}

// NNZ is the number of stored entries.
func (s *Sparse) NNZ() int {
	return len(s.Data)
}

// Add appends an entry and grows the matrix when needed.
func (s *Sparse) Add(row, col int, value float64) {
	s.Rows = append(s.Rows, row)
	s.Cols = append(s.Cols, col)
	s.Data = append(s.Data, value)

	if row >= s.Size {
		s.Size = row + 1
	}

	if col >= s.Size {
		s.Size = col + 1
	}
}

// Sum returns the sum of stored entries.
func (s *Sparse) Sum() float64 {
	total := 0.0
	for _, v := range s.Data {
		total += v
	}

	return total
}

type coord struct{ row, col int }

// coalesce folds entries into the upper triangle, sums duplicates and sorts by row then column.
func (s *Sparse) coalesce() {
	merged := make(map[coord]float64, len(s.Data))

	for i, v := range s.Data {
		r, c := s.Rows[i], s.Cols[i]
		if r > c {
			r, c = c, r
		}

		merged[coord{r, c}] += v
	}

	keys := make([]coord, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].row != keys[j].row {
			return keys[i].row < keys[j].row
		}

		return keys[i].col < keys[j].col
	})

	s.Rows = make([]int, len(keys))
	s.Cols = make([]int, len(keys))
	s.Data = make([]float64, len(keys))

	for i, k := range keys {
		s.Rows[i], s.Cols[i], s.Data[i] = k.row, k.col, merged[k]
	}
}

// remap builds a new coalesced matrix of the given size by sending each row index through index.
func (s *Sparse) remap(size int, index func(int) int, bins []Bin) *Sparse {
	res := &Sparse{
		Size: size,
		Rows: make([]int, len(s.Data)),
		Cols: make([]int, len(s.Data)),
		Data: make([]float64, len(s.Data)),
		Bins: bins,
	}

	for i, v := range s.Data {
		res.Rows[i] = index(s.Rows[i])
		res.Cols[i] = index(s.Cols[i])
		res.Data[i] = v
	}

	res.coalesce()

	return res
}
