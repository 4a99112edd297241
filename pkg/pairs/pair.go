// Package pairs reads and writes Hi-C pairs stored in 2D BED files.
//
// Each line holds the two reads of a pair:
//
//	chrA startA endA indiceA strandA chrB startB endB indiceB strandB
//
// Indices are 0-based and give the restriction fragment each read was attributed to.
package pairs

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrColumnCount is returned for lines that do not have the 10 expected fields.
var ErrColumnCount = errors.New(
	"input does not have 10 columns: expected twice chr start end indice strand, once for each read of the pair")

// TypeInter is the type of pairs whose reads lie on different chromosomes.
const TypeInter = "inter"

// Pair is a Hi-C pair. For intrachromosomal pairs, read 1 always has the smallest start.
type Pair struct {
	Chr1    string
	Start1  int
	End1    int
	Indice1 int
	Strand1 string
	Chr2    string
	Start2  int
	End2    int
	Indice2 int
	Strand2 string
	// NSites is the number of restriction sites separating both reads.
	NSites int
	// Type is the concatenation of both strands for intrachromosomal pairs, TypeInter otherwise.
	Type string
}

// Intra reports whether both reads are on the same chromosome.
func (p Pair) Intra() bool {
	return p.Chr1 == p.Chr2
}

// Parse parses a 2D BED line and reorders intrachromosomal pairs.
func Parse(line string) (Pair, error) {
	fields := strings.Fields(line)
	if len(fields) != 10 {
		return Pair{}, errors.Wrapf(ErrColumnCount, "got %d columns", len(fields))
	}

	var (
		pair Pair
		ints [6]int
	)

	for i, idx := range [6]int{1, 2, 3, 6, 7, 8} {
		v, err := strconv.Atoi(fields[idx])
		if err != nil {
			return Pair{}, errors.Wrapf(err, "column %d", idx+1)
		}

		ints[i] = v
	}

	pair.Chr1, pair.Start1, pair.End1, pair.Indice1, pair.Strand1 = fields[0], ints[0], ints[1], ints[2], fields[4]
	pair.Chr2, pair.Start2, pair.End2, pair.Indice2, pair.Strand2 = fields[5], ints[3], ints[4], ints[5], fields[9]

	if pair.Intra() && pair.Start2 < pair.Start1 {
		pair.Strand1, pair.Strand2 = pair.Strand2, pair.Strand1
		pair.Start1, pair.Start2 = pair.Start2, pair.Start1
		pair.End1, pair.End2 = pair.End2, pair.End1
		pair.Indice1, pair.Indice2 = pair.Indice2, pair.Indice1
	}

	pair.NSites = pair.Indice2 - pair.Indice1

	if pair.Intra() {
		pair.Type = pair.Strand1 + pair.Strand2
	} else {
		pair.Type = TypeInter
	}

	return pair, nil
}

// String formats the pair as a tab separated 2D BED line, without the trailing newline.
func (p Pair) String() string {
	var b strings.Builder

	b.Grow(64)

	for i, field := range []string{
		p.Chr1, strconv.Itoa(p.Start1), strconv.Itoa(p.End1), strconv.Itoa(p.Indice1), p.Strand1,
		p.Chr2, strconv.Itoa(p.Start2), strconv.Itoa(p.End2), strconv.Itoa(p.Indice2), p.Strand2,
	} {
		if i > 0 {
			b.WriteByte('\t')
		}

		b.WriteString(field)
	}

	return b.String()
}
