package filter

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nmendiboure/hicstuff/pkg/pairs"
)

// promptSites is the number of distances shown before asking for thresholds.
const promptSites = 15

// Highlighter decorates the names of the events the user is asked about.
type Highlighter interface {
	Uncut(text string) string
	Loop(text string) string
}

type plain struct{}

func (plain) Uncut(text string) string { return text }
func (plain) Loop(text string) string  { return text }

// WriteHistogram prints the counts of the first sites of h as a table.
func WriteHistogram(w io.Writer, h *Histogram, sites int) error {
	if sites > h.MaxSites {
		sites = h.MaxSites
	}

	var b strings.Builder

	b.WriteString("sites")

	for _, typ := range IntraTypes {
		fmt.Fprintf(&b, "\t%s", Legend[typ])
	}

	b.WriteByte('\n')

	for site := range sites {
		b.WriteString(strconv.Itoa(site))

		for _, typ := range IntraTypes {
			fmt.Fprintf(&b, "\t%.0f", h.Counts[typ][site])
		}

		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())

	return errors.Wrap(err, "unable to write histogram")
}

// ParseThresholds reads thresholds written as "uncut-loop" or "uncut,loop".
func ParseThresholds(value string) (pairs.Thresholds, error) {
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == '-' || r == ',' })
	if len(parts) != 2 {
		return pairs.Thresholds{}, errors.Wrapf(ErrInvalidThreshold, "expected uncut-loop, got %q", value)
	}

	uncut, err := parseThreshold(parts[0])
	if err != nil {
		return pairs.Thresholds{}, err
	}

	loop, err := parseThreshold(parts[1])
	if err != nil {
		return pairs.Thresholds{}, err
	}

	return pairs.Thresholds{Uncut: uncut, Loop: loop}, nil
}

func parseThreshold(value string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || v < 0 {
		return 0, errors.Wrapf(ErrInvalidThreshold, "%q is not a positive integer", value)
	}

	return v, nil
}

// PromptThresholds shows the first distances of h on out and asks for both thresholds on in.
// A nil hl prints the event names as is.
func PromptThresholds(in io.Reader, out io.Writer, h *Histogram, hl Highlighter) (pairs.Thresholds, error) {
	if hl == nil {
		hl = plain{}
	}

	err := WriteHistogram(out, h, promptSites)
	if err != nil {
		return pairs.Thresholds{}, err
	}

	fmt.Fprintf(out, "Please enter the number of restriction fragments separating reads in a Hi-C pair "+
		"below which %s and %s events will be excluded\n", hl.Loop("loops"), hl.Uncut("uncuts"))

	reader := bufio.NewReader(in)

	ask := func(label string) (int, error) {
		fmt.Fprintf(out, "Enter threshold for the %s events: ", label)

		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return 0, errors.Wrap(err, "unable to read threshold")
		}

		return parseThreshold(line)
	}

	uncut, err := ask(hl.Uncut("uncuts") + " (+-)")
	if err != nil {
		return pairs.Thresholds{}, err
	}

	loop, err := ask(hl.Loop("loops") + " (-+)")
	if err != nil {
		return pairs.Thresholds{}, err
	}

	return pairs.Thresholds{Uncut: uncut, Loop: loop}, nil
}
