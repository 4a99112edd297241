// Package fasta reads and writes FASTA genomes and summarises their scaffolds.
package fasta

import (
	"bufio"
	"bytes"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// LineWidth is the sequence line width used by Writer.
const LineWidth = 60

var ErrMissingHeader = errors.New("sequence data before the first header")

// Record is a FASTA entry. ID is the first word of the header.
type Record struct {
	ID          string
	Description string
	Seq         []byte
}

// Len is the sequence length.
func (r *Record) Len() int {
	return len(r.Seq)
}

// Reader streams records from a FASTA file. Sequence lines may be of any length.
type Reader struct {
	br      *bufio.Reader
	pending string
	line    int
	done    bool
}

func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, 64*1024)}
}

// Read returns the next record, or io.EOF once the input is exhausted.
func (r *Reader) Read() (*Record, error) {
	if r.done {
		return nil, io.EOF
	}

	header := r.pending
	r.pending = ""

	for header == "" {
		h, err := r.next(nil)
		if errors.Is(err, io.EOF) {
			r.done = true

			return nil, io.EOF
		}

		if err != nil {
			return nil, err
		}

		header = h
	}

	rec := newRecord(header)

	var seq bytes.Buffer

	for {
		h, err := r.next(&seq)
		if errors.Is(err, io.EOF) {
			r.done = true

			break
		}

		if err != nil {
			return nil, errors.Wrapf(err, "unable to read record %s", rec.ID)
		}

		if h != "" {
			r.pending = h

			break
		}
	}

	rec.Seq = seq.Bytes()

	return rec, nil
}

// next consumes one line. A header line is returned as is. Sequence bytes go to seq as they
// are read; a nil seq means no header was seen yet. io.EOF is returned after the last line.
func (r *Reader) next(seq *bytes.Buffer) (string, error) {
	r.line++

	var (
		header  []byte
		started bool
		isHead  bool
	)

	for {
		chunk, err := r.br.ReadSlice('\n')

		text := chunk
		if !started {
			text = bytes.TrimLeft(text, " \t\r\n")

			if len(text) > 0 {
				started = true
				isHead = text[0] == '>'

				if !isHead && seq == nil {
					return "", errors.Wrapf(ErrMissingHeader, "line %d", r.line)
				}
			}
		}

		switch {
		case !started:
		case isHead:
			header = append(header, text...)
		default:
			seq.Write(bytes.TrimSpace(text))
		}

		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if isHead {
				return strings.TrimSpace(string(header)), nil
			}

			return "", io.EOF
		case err != nil:
			return "", errors.Wrap(err, "unable to read fasta")
		case isHead:
			return strings.TrimSpace(string(header)), nil
		default:
			return "", nil
		}
	}
}

func newRecord(header string) *Record {
	header = strings.TrimPrefix(header, ">")
	id, desc, _ := strings.Cut(header, " ")

	return &Record{ID: id, Description: strings.TrimSpace(desc)}
}

// ReadAll loads every record of r.
func ReadAll(r io.Reader) ([]*Record, error) {
	reader := NewReader(r)

	var records []*Record

	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}

		if err != nil {
			return nil, err
		}

		records = append(records, rec)
	}
}

// Writer writes records wrapped at LineWidth.
type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) Write(rec *Record) error {
	header := ">" + rec.ID
	if rec.Description != "" {
		header += " " + rec.Description
	}

	if _, err := w.w.WriteString(header + "\n"); err != nil {
		return errors.Wrapf(err, "unable to write record %s", rec.ID)
	}

	for start := 0; start < len(rec.Seq); start += LineWidth {
		end := min(start+LineWidth, len(rec.Seq))

		if _, err := w.w.Write(rec.Seq[start:end]); err != nil {
			return errors.Wrapf(err, "unable to write record %s", rec.ID)
		}

		if err := w.w.WriteByte('\n'); err != nil {
			return errors.Wrapf(err, "unable to write record %s", rec.ID)
		}
	}

	return nil
}

// Flush writes any buffered data.
func (w *Writer) Flush() error {
	return errors.Wrap(w.w.Flush(), "unable to flush fasta")
}

// ScaffoldLengths returns the lengths of scaffolds longer than threshold, in decreasing order.
func ScaffoldLengths(r io.Reader, threshold int) ([]int, error) {
	reader := NewReader(r)

	var lengths []int

	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		if rec.Len() > threshold {
			lengths = append(lengths, rec.Len())
		}
	}

	sort.Sort(sort.Reverse(sort.IntSlice(lengths)))

	return lengths, nil
}

// Reorder writes the records of r longer than threshold to w, longest first.
// Records of equal length keep their input order.
func Reorder(r io.Reader, w io.Writer, threshold int) (int, error) {
	records, err := ReadAll(r)
	if err != nil {
		return 0, err
	}

	kept := records[:0]
	for _, rec := range records {
		if rec.Len() > threshold {
			kept = append(kept, rec)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Len() > kept[j].Len() })

	writer := NewWriter(w)
	for _, rec := range kept {
		if err := writer.Write(rec); err != nil {
			return 0, err
		}
	}

	return len(kept), writer.Flush()
}
