package filter

import (
	"math"
	"sync"

	"github.com/nmendiboure/hicstuff/pkg/pairs"
)

// Summary is the composition of a filtered library.
type Summary struct {
	mu sync.Mutex

	Uncuts     int
	Loops      int
	Weirds     int
	Intra      int
	Inter      int
	Thresholds pairs.Thresholds
}

// Add counts one classified pair.
func (s *Summary) Add(event pairs.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch event {
	case pairs.EventUncut:
		s.Uncuts++
	case pairs.EventLoop:
		s.Loops++
	case pairs.EventWeird:
		s.Weirds++
	case pairs.EventIntra:
		s.Intra++
	case pairs.EventInter:
		s.Inter++
	}
}

// Kept is the number of pairs written to the output.
func (s *Summary) Kept() int {
	return s.Intra + s.Inter
}

// Discarded is the number of pairs filtered out.
func (s *Summary) Discarded() int {
	return s.Uncuts + s.Loops + s.Weirds
}

// Total is the number of pairs read.
func (s *Summary) Total() int {
	return s.Kept() + s.Discarded()
}

// InterRatio is the percentage of interchromosomal pairs among kept pairs, rounded to 2 decimals.
func (s *Summary) InterRatio() float64 {
	if s.Inter == 0 {
		return 0
	}

	return round2(100 * float64(s.Inter) / float64(s.Kept()))
}

// KeptPercent is the percentage of pairs kept, rounded to 2 decimals.
func (s *Summary) KeptPercent() float64 {
	if s.Total() == 0 {
		return 0
	}

	return round2(100 * float64(s.Kept()) / float64(s.Total()))
}

// Fractions returns the share of each event among all pairs, in the order
// uncuts, loops, weirds, intra, inter.
func (s *Summary) Fractions() []float64 {
	counts := []int{s.Uncuts, s.Loops, s.Weirds, s.Intra, s.Inter}
	res := make([]float64, len(counts))

	total := s.Total()
	if total == 0 {
		return res
	}

	for i, c := range counts {
		res[i] = float64(c) / float64(total)
	}

	return res
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
