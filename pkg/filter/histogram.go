package filter

import (
	"io"

	"github.com/pkg/errors"

	"github.com/nmendiboure/hicstuff/pkg/pairs"
)

const (
	// DefaultMaxSites is the number of distances, in restriction fragments, considered for estimation.
	DefaultMaxSites = 500
	// DefaultSampleSize is the number of pairs read from the top of the library for estimation.
	DefaultSampleSize = 999_999
)

// IntraTypes are the intrachromosomal event types, in display order.
var IntraTypes = []string{"++", "--", "+-", "-+"}

// Legend names each intrachromosomal event type.
var Legend = map[string]string{
	"++": "++ (weirds)",
	"--": "-- (weirds)",
	"+-": "+- (uncuts)",
	"-+": "-+ (loops)",
}

// Histogram counts intrachromosomal pairs by type and number of restriction sites between reads.
type Histogram struct {
	MaxSites int
	Counts   map[string][]float64
	// Pairs is the number of pairs read, interchromosomal included.
	Pairs int
}

// NewHistogram creates an empty histogram over maxSites distances.
func NewHistogram(maxSites int) *Histogram {
	if maxSites <= 0 {
		maxSites = DefaultMaxSites
	}

	counts := make(map[string][]float64, len(IntraTypes))
	for _, typ := range IntraTypes {
		counts[typ] = make([]float64, maxSites)
	}

	return &Histogram{MaxSites: maxSites, Counts: counts}
}

// Add counts a pair. Interchromosomal pairs and pairs further than MaxSites are ignored.
func (h *Histogram) Add(p pairs.Pair) {
	h.Pairs++

	counts, ok := h.Counts[p.Type]
	if !ok || p.NSites < 0 || p.NSites >= h.MaxSites {
		return
	}

	counts[p.NSites]++
}

// ReadHistogram builds a histogram from the first sampleSize pairs of r.
func ReadHistogram(r io.Reader, maxSites, sampleSize int) (*Histogram, error) {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	h := NewHistogram(maxSites)
	sc := pairs.NewScanner(r)

	for h.Pairs < sampleSize && sc.Scan() {
		h.Add(sc.Pair())
	}

	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "unable to build event histogram")
	}

	return h, nil
}
