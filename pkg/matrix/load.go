package matrix

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Load reads a contact map in GRAAL or 2D bedgraph format.
func Load(r io.Reader) (*Sparse, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)

	var (
		m       *Sparse
		bedBins *binIndex
		number  int
	)

	for sc.Scan() {
		number++

		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		if m == nil {
			m = &Sparse{}

			switch len(fields) {
			case 3:
				// GRAAL always starts with a header, numeric or not
				continue
			case 7:
				bedBins = newBinIndex()
			default:
				return nil, errors.Wrapf(ErrUnknownFormat, "line %d has %d columns", number, len(fields))
			}
		}

		var err error
		if bedBins != nil {
			err = addBedgraphLine(m, bedBins, fields)
		} else {
			err = addGRAALLine(m, fields)
		}

		if err != nil {
			return nil, errors.Wrapf(err, "line %d", number)
		}
	}

	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "unable to read contact map")
	}

	if m == nil || m.NNZ() == 0 {
		return nil, ErrEmptyMatrix
	}

	if bedBins != nil {
		bins, index := bedBins.sorted()

		return m.remap(len(bins), index, bins), nil
	}

	m.coalesce()

	return m, nil
}

// LoadFile reads a contact map from path.
func LoadFile(path string) (*Sparse, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open contact map %s", path)
	}
	defer file.Close()

	m, err := Load(file)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load %s", path)
	}

	return m, nil
}

func addGRAALLine(m *Sparse, fields []string) error {
	if len(fields) != 3 {
		return errors.Wrapf(ErrUnknownFormat, "expected 3 columns, got %d", len(fields))
	}

	row, errRow := strconv.Atoi(fields[0])
	col, errCol := strconv.Atoi(fields[1])
	value, errVal := strconv.ParseFloat(fields[2], 64)

	if errRow != nil || errCol != nil || errVal != nil {
		return errors.Errorf("invalid GRAAL entry %q", strings.Join(fields, " "))
	}

	if row < 0 || col < 0 {
		return errors.Errorf("negative index in %q", strings.Join(fields, " "))
	}

	m.Add(row, col, value)

	return nil
}

type binIndex struct {
	bins  []Bin
	index map[Bin]int
}

func newBinIndex() *binIndex {
	return &binIndex{index: make(map[Bin]int)}
}

func (b *binIndex) get(bin Bin) int {
	if idx, ok := b.index[bin]; ok {
		return idx
	}

	b.index[bin] = len(b.bins)
	b.bins = append(b.bins, bin)

	return len(b.bins) - 1
}

// sorted orders the bins by chromosome of first appearance, start and end, and returns the
// mapping from loading order to that order.
func (b *binIndex) sorted() ([]Bin, func(int) int) {
	chromOrder := make(map[string]int)
	for _, bin := range b.bins {
		if _, ok := chromOrder[bin.Chrom]; !ok {
			chromOrder[bin.Chrom] = len(chromOrder)
		}
	}

	order := make([]int, len(b.bins))
	for i := range order {
		order[i] = i
	}

	sortBy(order, func(i, j int) bool {
		bi, bj := b.bins[i], b.bins[j]

		switch {
		case bi.Chrom != bj.Chrom:
			return chromOrder[bi.Chrom] < chromOrder[bj.Chrom]
		case bi.Start != bj.Start:
			return bi.Start < bj.Start
		default:
			return bi.End < bj.End
		}
	})

	bins := make([]Bin, len(order))
	position := make([]int, len(order))

	for pos, idx := range order {
		bins[pos] = b.bins[idx]
		position[idx] = pos
	}

	return bins, func(i int) int { return position[i] }
}

func addBedgraphLine(m *Sparse, bins *binIndex, fields []string) error {
	if len(fields) != 7 {
		return errors.Wrapf(ErrUnknownFormat, "expected 7 columns, got %d", len(fields))
	}

	ints := [4]int{}

	for i, idx := range [4]int{1, 2, 4, 5} {
		v, err := strconv.Atoi(fields[idx])
		if err != nil {
			return errors.Wrapf(err, "column %d", idx+1)
		}

		ints[i] = v
	}

	value, err := strconv.ParseFloat(fields[6], 64)
	if err != nil {
		return errors.Wrap(err, "column 7")
	}

	row := bins.get(Bin{Chrom: fields[0], Start: ints[0], End: ints[1]})
	col := bins.get(Bin{Chrom: fields[3], Start: ints[2], End: ints[3]})
	m.Add(row, col, value)

	return nil
}
