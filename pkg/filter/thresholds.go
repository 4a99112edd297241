package filter

import (
	"math"
	"sort"

	"github.com/nmendiboure/hicstuff/pkg/pairs"
)

// madToStdev converts a median absolute deviation to a normal standard deviation.
const madToStdev = 0.67449

// median returns the median of the finite values, NaN if there are none.
func median(values []float64) float64 {
	finite := make([]float64, 0, len(values))

	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}

	if len(finite) == 0 {
		return math.NaN()
	}

	sort.Float64s(finite)

	mid := len(finite) / 2
	if len(finite)%2 == 1 {
		return finite[mid]
	}

	return (finite[mid-1] + finite[mid]) / 2
}

// logCounts returns the log of each count, NaN for empty bins.
func logCounts(counts []float64) []float64 {
	res := make([]float64, len(counts))

	for i, c := range counts {
		if c <= 0 {
			res[i] = math.NaN()

			continue
		}

		res[i] = math.Log(c)
	}

	return res
}

// EstimateThresholds infers the uncut and loop thresholds from h.
//
// At each distance, the median of the log counts of the four intrachromosomal types is the expected
// abundance. The median absolute deviation of all log counts around those medians gives the expected
// deviation. The threshold of a type is the closest distance where its log count lies within the
// expected deviation of the median. Empty bins are left out of every median.
func EstimateThresholds(h *Histogram) (pairs.Thresholds, error) {
	logs := make(map[string][]float64, len(IntraTypes))
	for _, typ := range IntraTypes {
		logs[typ] = logCounts(h.Counts[typ])
	}

	siteMedians := make([]float64, h.MaxSites)
	deviations := make([]float64, 0, h.MaxSites*len(IntraTypes))

	for site := range h.MaxSites {
		column := make([]float64, 0, len(IntraTypes))
		for _, typ := range IntraTypes {
			column = append(column, logs[typ][site])
		}

		siteMedians[site] = median(column)

		for _, v := range column {
			deviations = append(deviations, math.Abs(v-siteMedians[site]))
		}
	}

	expStdev := median(deviations) / madToStdev

	uncut, loop := -1, -1

	for site := h.MaxSites - 1; site >= 0; site-- {
		if within(logs["+-"][site], siteMedians[site], expStdev) {
			uncut = site
		}

		if within(logs["-+"][site], siteMedians[site], expStdev) {
			loop = site
		}
	}

	if uncut < 0 || loop < 0 {
		return pairs.Thresholds{}, ErrThresholdEstimation
	}

	return pairs.Thresholds{Uncut: uncut, Loop: loop}, nil
}

// within is false as soon as one operand is NaN.
func within(value, center, dev float64) bool {
	return math.Abs(value-center) <= dev
}
