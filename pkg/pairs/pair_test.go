package pairs_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmendiboure/hicstuff/pkg/pairs"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		line     string
		expected pairs.Pair
	}{
		"inter": {
			line: "a 1 3 0 - b 2 4 1 -",
			expected: pairs.Pair{
				Chr1: "a", Start1: 1, End1: 3, Indice1: 0, Strand1: "-",
				Chr2: "b", Start2: 2, End2: 4, Indice2: 1, Strand2: "-",
				NSites: 1, Type: pairs.TypeInter,
			},
		},
		"intra ordered": {
			line: "chr1\t10\t60\t2\t+\tchr1\t500\t550\t7\t-",
			expected: pairs.Pair{
				Chr1: "chr1", Start1: 10, End1: 60, Indice1: 2, Strand1: "+",
				Chr2: "chr1", Start2: 500, End2: 550, Indice2: 7, Strand2: "-",
				NSites: 5, Type: "+-",
			},
		},
		"intra reordered": {
			line: "chr1 500 550 7 + chr1 10 60 2 -",
			expected: pairs.Pair{
				Chr1: "chr1", Start1: 10, End1: 60, Indice1: 2, Strand1: "-",
				Chr2: "chr1", Start2: 500, End2: 550, Indice2: 7, Strand2: "+",
				NSites: 5, Type: "-+",
			},
		},
		"inter not reordered": {
			line: "chr2 500 550 7 + chr1 10 60 2 -",
			expected: pairs.Pair{
				Chr1: "chr2", Start1: 500, End1: 550, Indice1: 7, Strand1: "+",
				Chr2: "chr1", Start2: 10, End2: 60, Indice2: 2, Strand2: "-",
				NSites: -5, Type: pairs.TypeInter,
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := pairs.Parse(tc.line)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	_, err := pairs.Parse("a 1 3 0 - b 2 4 1")
	require.ErrorIs(t, err, pairs.ErrColumnCount)

	_, err = pairs.Parse("a 1 x 0 - b 2 4 1 -")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column 3")
}

func TestString(t *testing.T) {
	t.Parallel()

	p, err := pairs.Parse("chr1 500 550 7 + chr1 10 60 2 -")
	require.NoError(t, err)
	assert.Equal(t, "chr1\t10\t60\t2\t-\tchr1\t500\t550\t7\t+", p.String())

	again, err := pairs.Parse(p.String())
	require.NoError(t, err)
	assert.Equal(t, p, again)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	thr := pairs.Thresholds{Uncut: 3, Loop: 2}

	tcs := map[string]struct {
		line     string
		expected pairs.Event
	}{
		"inter":                {"a 1 2 0 + b 1 2 0 +", pairs.EventInter},
		"weird same fragment":  {"a 1 2 4 + a 5 6 4 +", pairs.EventWeird},
		"loop below threshold": {"a 1 2 4 - a 5 6 5 +", pairs.EventLoop},
		"loop at threshold":    {"a 1 2 4 - a 5 6 6 +", pairs.EventIntra},
		"uncut below":          {"a 1 2 4 + a 5 6 6 -", pairs.EventUncut},
		"uncut at threshold":   {"a 1 2 4 + a 5 6 7 -", pairs.EventIntra},
		"same strand far":      {"a 1 2 4 + a 5 6 5 +", pairs.EventIntra},
		"opposite same frag":   {"a 1 2 4 + a 5 6 4 -", pairs.EventUncut},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p, err := pairs.Parse(tc.line)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, pairs.Classify(p, thr), tc.expected.String())
		})
	}
}

func TestScanner(t *testing.T) {
	t.Parallel()

	input := "a 1 2 0 + b 1 2 0 +\n\nchr1 500 550 7 + chr1 10 60 2 -\n"
	sc := pairs.NewScanner(strings.NewReader(input))

	got := []pairs.Pair{}
	for sc.Scan() {
		got = append(got, sc.Pair())
	}

	require.NoError(t, sc.Err())
	assert.Len(t, got, 2)
	assert.Equal(t, 3, sc.Line())
}

func TestScannerError(t *testing.T) {
	t.Parallel()

	sc := pairs.NewScanner(strings.NewReader("a 1 2 0 + b 1 2 0 +\nbroken\n"))
	assert.True(t, sc.Scan())
	assert.False(t, sc.Scan())
	require.ErrorIs(t, sc.Err(), pairs.ErrColumnCount)
	assert.Contains(t, sc.Err().Error(), "line 2")
}

func ExampleParse() {
	p, _ := pairs.Parse("a 1 3 0 - b 2 4 1 -")
	fmt.Println(p.NSites, p.Type)
	// Output: 1 inter
}
