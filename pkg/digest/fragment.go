package digest

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/nmendiboure/hicstuff/pkg/fasta"
)

// Fragment is a restriction fragment. ID starts at 1 on each contig, positions are 0-based and
// half open.
type Fragment struct {
	ID    int
	Chrom string
	Start int
	End   int
	GC    float64
}

// Size is the fragment length in bp.
func (f Fragment) Size() int {
	return f.End - f.Start
}

// String renders the fragments_list.txt row.
func (f Fragment) String() string {
	return strings.Join([]string{
		strconv.Itoa(f.ID),
		f.Chrom,
		strconv.Itoa(f.Start),
		strconv.Itoa(f.End),
		strconv.Itoa(f.Size()),
		strconv.FormatFloat(f.GC, 'f', -1, 64),
	}, "\t")
}

// Contig is a digested sequence.
type Contig struct {
	Name      string
	Length    int
	Fragments []Fragment
	// CumulFrags is the number of fragments on the contigs before this one.
	CumulFrags int
}

// String renders the info_contigs.txt row.
func (c Contig) String() string {
	return strings.Join([]string{
		c.Name,
		strconv.Itoa(c.Length),
		strconv.Itoa(len(c.Fragments)),
		strconv.Itoa(c.CumulFrags),
	}, "\t")
}

// DigestRecord cuts rec and merges fragments shorter than minSize into the next one.
// A short last fragment is merged into the previous one.
func DigestRecord(rec *fasta.Record, cutter Cutter, minSize int) Contig {
	bounds := mergeSmall(rec.Len(), cutter.Cuts(rec.Seq), minSize)

	contig := Contig{Name: rec.ID, Length: rec.Len()}
	if rec.Len() == 0 {
		return contig
	}

	contig.Fragments = make([]Fragment, 0, len(bounds)-1)

	for i := 1; i < len(bounds); i++ {
		start, end := bounds[i-1], bounds[i]
		contig.Fragments = append(contig.Fragments, Fragment{
			ID:    i,
			Chrom: rec.ID,
			Start: start,
			End:   end,
			GC:    gcContent(rec.Seq[start:end]),
		})
	}

	return contig
}

func mergeSmall(length int, cuts []int, minSize int) []int {
	bounds := []int{0}

	for _, pos := range cuts {
		if pos-bounds[len(bounds)-1] < minSize {
			continue
		}

		bounds = append(bounds, pos)
	}

	if n := len(bounds); n > 1 && length-bounds[n-1] < minSize {
		bounds = bounds[:n-1]
	}

	return append(bounds, length)
}

func gcContent(seq []byte) float64 {
	if len(seq) == 0 {
		return 0
	}

	upper := bytes.ToUpper(seq)
	gc := bytes.Count(upper, []byte("G")) + bytes.Count(upper, []byte("C"))

	return float64(gc) / float64(len(seq))
}
