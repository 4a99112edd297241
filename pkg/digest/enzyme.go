package digest

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrUnknownEnzyme = errors.New("unknown restriction enzyme")
	ErrInvalidChunk  = errors.New("chunk size must be a positive integer")
)

// Enzyme is a recognition site and the offset of the cut on the forward strand.
type Enzyme struct {
	Name string
	Site string
	Cut  int
}

// Enzymes holds the supported enzymes, keyed by lower case name.
var Enzymes = map[string]Enzyme{
	"alui":    {Name: "AluI", Site: "AGCT", Cut: 2},
	"bamhi":   {Name: "BamHI", Site: "GGATCC", Cut: 1},
	"bglii":   {Name: "BglII", Site: "AGATCT", Cut: 1},
	"cviaii":  {Name: "CviAII", Site: "CATG", Cut: 1},
	"cviqi":   {Name: "CviQI", Site: "GTAC", Cut: 1},
	"ddei":    {Name: "DdeI", Site: "CTNAG", Cut: 1},
	"dpnii":   {Name: "DpnII", Site: "GATC", Cut: 0},
	"ecori":   {Name: "EcoRI", Site: "GAATTC", Cut: 1},
	"hindiii": {Name: "HindIII", Site: "AAGCTT", Cut: 1},
	"hinfi":   {Name: "HinfI", Site: "GANTC", Cut: 1},
	"mboi":    {Name: "MboI", Site: "GATC", Cut: 0},
	"msei":    {Name: "MseI", Site: "TTAA", Cut: 1},
	"ncoi":    {Name: "NcoI", Site: "CCATGG", Cut: 1},
	"nlaiii":  {Name: "NlaIII", Site: "CATG", Cut: 4},
	"sau3ai":  {Name: "Sau3AI", Site: "GATC", Cut: 0},
	"xhoi":    {Name: "XhoI", Site: "CTCGAG", Cut: 1},
}

var iupac = map[rune]string{
	'A': "A", 'C': "C", 'G': "G", 'T': "T",
	'R': "[AG]", 'Y': "[CT]", 'S': "[CG]", 'W': "[AT]", 'K': "[GT]", 'M': "[AC]",
	'B': "[CGT]", 'D': "[AGT]", 'H': "[ACT]", 'V': "[ACG]", 'N': "[ACGT]",
}

// Cutter returns the cut positions of a sequence, sorted and strictly inside (0, len(seq)).
type Cutter interface {
	Cuts(seq []byte) []int
	String() string
}

// NewCutter parses an enzyme name, a comma separated list of enzyme names or a chunk size in bp.
func NewCutter(value string) (Cutter, error) {
	value = strings.TrimSpace(value)

	if size, err := strconv.Atoi(value); err == nil {
		if size <= 0 {
			return nil, errors.Wrapf(ErrInvalidChunk, "got %d", size)
		}

		return chunkCutter(size), nil
	}

	cutter := &enzymeCutter{}

	for _, name := range strings.Split(value, ",") {
		enz, ok := Enzymes[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownEnzyme, "%q", name)
		}

		re, err := sitePattern(enz.Site)
		if err != nil {
			return nil, errors.Wrapf(err, "enzyme %s", enz.Name)
		}

		cutter.enzymes = append(cutter.enzymes, enz)
		cutter.patterns = append(cutter.patterns, re)
	}

	return cutter, nil
}

func sitePattern(site string) (*regexp.Regexp, error) {
	var b strings.Builder

	b.WriteString("(?i)")

	for _, base := range strings.ToUpper(site) {
		class, ok := iupac[base]
		if !ok {
			return nil, errors.Errorf("invalid base %q in site %s", base, site)
		}

		b.WriteString(class)
	}

	return regexp.Compile(b.String()) //nolint:wrapcheck
}

type chunkCutter int

func (c chunkCutter) Cuts(seq []byte) []int {
	var cuts []int
	for pos := int(c); pos < len(seq); pos += int(c) {
		cuts = append(cuts, pos)
	}

	return cuts
}

func (c chunkCutter) String() string {
	return strconv.Itoa(int(c)) + "bp chunks"
}

type enzymeCutter struct {
	enzymes  []Enzyme
	patterns []*regexp.Regexp
}

func (e *enzymeCutter) Cuts(seq []byte) []int {
	seen := make(map[int]struct{})

	for i, re := range e.patterns {
		// sites may overlap, so the search restarts one base after each match
		for start := 0; start < len(seq); {
			loc := re.FindIndex(seq[start:])
			if loc == nil {
				break
			}

			pos := start + loc[0] + e.enzymes[i].Cut
			if pos > 0 && pos < len(seq) {
				seen[pos] = struct{}{}
			}

			start += loc[0] + 1
		}
	}

	cuts := make([]int, 0, len(seen))
	for pos := range seen {
		cuts = append(cuts, pos)
	}

	sort.Ints(cuts)

	return cuts
}

func (e *enzymeCutter) String() string {
	names := make([]string, len(e.enzymes))
	for i, enz := range e.enzymes {
		names[i] = enz.Name
	}

	return strings.Join(names, ",")
}
