package iteralign

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

var ErrMalformedFastq = errors.New("malformed fastq record")

// Read is a FASTQ record. It is comparable so that steps can drop reads by returning the zero value.
type Read struct {
	ID   string
	Seq  string
	Qual string
}

// Truncate returns the read cut to at most n bases.
func (r Read) Truncate(n int) Read {
	if len(r.Seq) <= n {
		return r
	}

	return Read{ID: r.ID, Seq: r.Seq[:n], Qual: r.Qual[:n]}
}

// Name is the read identifier as written in SAM files: the header up to its first whitespace.
func (r Read) Name() string {
	fields := strings.Fields(r.ID)
	if len(fields) == 0 {
		return ""
	}

	return fields[0]
}

func (r Read) String() string {
	return "@" + r.ID + "\n" + r.Seq + "\n+\n" + r.Qual + "\n"
}

// FastqReader streams four line FASTQ records.
type FastqReader struct {
	sc   *bufio.Scanner
	line int
}

func NewFastqReader(r io.Reader) *FastqReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)

	return &FastqReader{sc: sc}
}

func (f *FastqReader) next() (string, bool) {
	for f.sc.Scan() {
		f.line++

		if text := strings.TrimRight(f.sc.Text(), "\r"); text != "" {
			return text, true
		}
	}

	return "", false
}

// Read returns the next record, or io.EOF at the end of the input.
func (f *FastqReader) Read() (Read, error) {
	header, ok := f.next()
	if !ok {
		if err := f.sc.Err(); err != nil {
			return Read{}, errors.Wrap(err, "unable to read fastq")
		}

		return Read{}, io.EOF
	}

	start := f.line

	if !strings.HasPrefix(header, "@") {
		return Read{}, errors.Wrapf(ErrMalformedFastq, "line %d: header must start with @", start)
	}

	var lines [3]string

	for i := range lines {
		text, ok := f.next()
		if !ok {
			return Read{}, errors.Wrapf(ErrMalformedFastq, "record at line %d is truncated", start)
		}

		lines[i] = text
	}

	if !strings.HasPrefix(lines[1], "+") {
		return Read{}, errors.Wrapf(ErrMalformedFastq, "record at line %d: missing + separator", start)
	}

	if len(lines[0]) != len(lines[2]) {
		return Read{}, errors.Wrapf(ErrMalformedFastq, "record at line %d: sequence and quality lengths differ", start)
	}

	return Read{ID: header[1:], Seq: lines[0], Qual: lines[2]}, nil
}
