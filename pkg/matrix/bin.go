package matrix

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Binning is a parsed binning request, either a number of rows or a number of base pairs.
type Binning struct {
	Factor    int
	BasePairs int
}

// ParseBinning reads "N" as a row factor and "Nbp", "Nkb" or "NMb" as a window in base pairs.
func ParseBinning(s string) (Binning, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Binning{Factor: 1}, nil
	}

	multiplier := 0
	lower := strings.ToLower(s)

	for suffix, m := range map[string]int{"bp": 1, "kb": 1000, "mb": 1000000} {
		if strings.HasSuffix(lower, suffix) {
			multiplier = m
			s = s[:len(s)-len(suffix)]

			break
		}
	}

	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return Binning{}, errors.Wrapf(ErrInvalidBinning, "got %q", s)
	}

	if multiplier == 0 {
		return Binning{Factor: n}, nil
	}

	return Binning{BasePairs: n * multiplier}, nil
}

// Apply bins s according to the request. A factor of 1 returns s unchanged.
func (b Binning) Apply(s *Sparse) (*Sparse, error) {
	if b.BasePairs > 0 {
		return s.BinBasePairs(b.BasePairs)
	}

	if b.Factor > 1 {
		return s.Bin(b.Factor), nil
	}

	return s, nil
}

// Bin groups factor consecutive rows (and columns) into one.
func (s *Sparse) Bin(factor int) *Sparse {
	if factor <= 1 {
		return s
	}

	size := (s.Size + factor - 1) / factor

	var bins []Bin
	if len(s.Bins) > 0 {
		bins = make([]Bin, size)
		for i := range bins {
			first := s.Bins[i*factor]
			last := s.Bins[min((i+1)*factor, len(s.Bins))-1]
			bins[i] = Bin{Chrom: first.Chrom, Start: first.Start, End: last.End}
		}
	}

	return s.remap(size, func(i int) int { return i / factor }, bins)
}

// BinBasePairs groups rows into genomic windows of size base pairs, chromosome by chromosome.
// Windows are ordered by first appearance of their chromosome, then by position.
func (s *Sparse) BinBasePairs(size int) (*Sparse, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrInvalidBinning, "got %d", size)
	}

	if len(s.Bins) == 0 {
		return nil, ErrNoPositions
	}

	type window struct {
		chrom string
		idx   int
	}

	chromOrder := make(map[string]int)
	for _, b := range s.Bins {
		if _, ok := chromOrder[b.Chrom]; !ok {
			chromOrder[b.Chrom] = len(chromOrder)
		}
	}

	windows := make(map[window]struct{})
	for _, b := range s.Bins {
		windows[window{b.Chrom, b.Start / size}] = struct{}{}
	}

	ordered := make([]window, 0, len(windows))
	for w := range windows {
		ordered = append(ordered, w)
	}

	sortBy(ordered, func(a, b window) bool {
		if a.chrom != b.chrom {
			return chromOrder[a.chrom] < chromOrder[b.chrom]
		}

		return a.idx < b.idx
	})

	newIdx := make(map[window]int, len(ordered))
	bins := make([]Bin, len(ordered))

	for i, w := range ordered {
		newIdx[w] = i
		bins[i] = Bin{Chrom: w.chrom, Start: w.idx * size, End: (w.idx + 1) * size}
	}

	mapping := make([]int, len(s.Bins))
	for i, b := range s.Bins {
		mapping[i] = newIdx[window{b.Chrom, b.Start / size}]
	}

	return s.remap(len(ordered), func(i int) int { return mapping[i] }, bins), nil
}
