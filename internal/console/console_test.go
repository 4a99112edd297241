package console_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmendiboure/hicstuff/internal/console"
	"github.com/nmendiboure/hicstuff/pkg/filter"
	"github.com/nmendiboure/hicstuff/pkg/pairs"
)

func TestPlainOutput(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	c := console.New(&out, false)
	assert.Equal(t, "loops", c.Loop("loops"))
	assert.Equal(t, "uncuts", c.Uncut("uncuts"))

	c.Thresholds(pairs.Thresholds{Uncut: 3, Loop: 2})
	assert.Equal(t, "Filtering with thresholds: uncuts=3 loops=2\n", out.String())
}

func TestSummary(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	console.New(&out, true).Summary(&filter.Summary{Uncuts: 1, Loops: 2, Weirds: 1, Intra: 3, Inter: 1})

	assert.Equal(t, "Library composition\n"+
		"4 pairs discarded: Loops: 2, Uncuts: 1, weirds: 1\n"+
		"4 pairs kept (50.00%)\n"+
		"25.00% interchromosomal pairs among kept pairs\n", out.String())
}

func TestComposition(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	console.New(&out, false).Composition(&filter.Summary{Intra: 1, Inter: 1})

	assert.Contains(t, out.String(), "intra   ████████████████████ 50.00%")
	assert.Contains(t, out.String(), "uncuts   0.00%")
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, console.IsTerminal(&bytes.Buffer{}))

	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	assert.False(t, console.IsTerminal(f))
}
