package matrix

import "github.com/pkg/errors"

const (
	NormSCN = "SCN"

	scnIterations = 20
)

// Normalize returns a normalised copy of s. Only sequential component normalisation (SCN) is supported:
// columns then rows of the symmetrised matrix are scaled to unit L1 norm, repeatedly.
// Empty rows stay empty.
func (s *Sparse) Normalize(norm string) (*Sparse, error) {
	if norm != NormSCN {
		return nil, errors.Wrapf(ErrUnknownNorm, "got %q", norm)
	}

	full := s.symmetric()

	for range scnIterations {
		scaleL1(full, full.Cols)
		scaleL1(full, full.Rows)
	}

	res := &Sparse{Size: s.Size, Bins: s.Bins}
	for i, v := range full.Data {
		// both triangles are stored, halve them on the way back
		if full.Rows[i] != full.Cols[i] {
			v /= 2
		}

		res.Add(full.Rows[i], full.Cols[i], v)
	}

	res.Size = s.Size
	res.coalesce()

	return res, nil
}

// symmetric returns a coalesced copy with both triangles stored.
func (s *Sparse) symmetric() *Sparse {
	upper := &Sparse{Size: s.Size}
	upper.Rows = append(upper.Rows, s.Rows...)
	upper.Cols = append(upper.Cols, s.Cols...)
	upper.Data = append(upper.Data, s.Data...)
	upper.coalesce()

	full := &Sparse{Size: s.Size}
	for i, v := range upper.Data {
		r, c := upper.Rows[i], upper.Cols[i]
		full.Add(r, c, v)

		if r != c {
			full.Add(c, r, v)
		}
	}

	full.Size = s.Size

	return full
}

// scaleL1 divides each entry by the sum of entries sharing the same index in axis.
func scaleL1(s *Sparse, axis []int) {
	sums := make([]float64, s.Size)
	for i, v := range s.Data {
		sums[axis[i]] += v
	}

	for i := range s.Data {
		if sum := sums[axis[i]]; sum != 0 {
			s.Data[i] /= sum
		}
	}
}
