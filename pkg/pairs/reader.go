package pairs

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const maxLineSize = 1 << 20

// Scanner reads pairs line by line. Blank lines are skipped.
type Scanner struct {
	sc   *bufio.Scanner
	pair Pair
	line int
	err  error
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	return &Scanner{sc: sc}
}

// Scan advances to the next pair. It returns false at the end of the input or on error.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}

	for s.sc.Scan() {
		s.line++

		text := s.sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		pair, err := Parse(text)
		if err != nil {
			s.err = errors.Wrapf(err, "line %d", s.line)

			return false
		}

		s.pair = pair

		return true
	}

	s.err = errors.Wrap(s.sc.Err(), "unable to read pairs")

	return false
}

// Pair returns the last pair read.
func (s *Scanner) Pair() Pair {
	return s.pair
}

// Line returns the number of lines read so far.
func (s *Scanner) Line() int {
	return s.line
}

// Err returns the first error met, nil at a clean end of input.
func (s *Scanner) Err() error {
	return s.err
}
