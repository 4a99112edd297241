package iteralign

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	flagUnmapped      = 0x4
	flagSecondary     = 0x100
	flagSupplementary = 0x800
)

var ErrMalformedSam = errors.New("malformed sam record")

// samLine is a parsed SAM line, headers only carry their text.
type samLine struct {
	text   string
	header bool
	qname  string
	flag   int
	mapq   int
}

func parseSamLine(text string) (samLine, error) {
	if strings.HasPrefix(text, "@") {
		return samLine{text: text, header: true}, nil
	}

	fields := strings.SplitN(text, "\t", 6)
	if len(fields) < 5 {
		return samLine{}, errors.Wrapf(ErrMalformedSam, "got %d columns", len(fields))
	}

	flag, err := strconv.Atoi(fields[1])
	if err != nil {
		return samLine{}, errors.Wrapf(ErrMalformedSam, "flag %q", fields[1])
	}

	mapq, err := strconv.Atoi(fields[4])
	if err != nil {
		return samLine{}, errors.Wrapf(ErrMalformedSam, "mapq %q", fields[4])
	}

	return samLine{text: text, qname: fields[0], flag: flag, mapq: mapq}, nil
}

func (s samLine) primary() bool {
	return s.flag&(flagSecondary|flagSupplementary) == 0
}

func (s samLine) alignedWith(minQuality int) bool {
	return s.flag&flagUnmapped == 0 && s.mapq >= minQuality
}
