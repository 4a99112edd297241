package matrix

import "github.com/pkg/errors"

var (
	ErrUnknownFormat  = errors.New("unknown contact map format: expected 3 (GRAAL) or 7 (bedgraph) columns")
	ErrEmptyMatrix    = errors.New("contact map is empty")
	ErrTooLarge       = errors.New("contact map is too large to load, try binning more")
	ErrNoPositions    = errors.New("contact map has no genomic positions, binning in base pairs needs a bedgraph input")
	ErrInvalidBinning = errors.New("binning must be a positive integer, optionally followed by bp, kb or Mb")
	ErrUnknownNorm    = errors.New("unknown normalisation")
)
