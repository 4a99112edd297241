package fasta_test

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmendiboure/hicstuff/pkg/fasta"
)

const genome = `>seq1 first contig
ACGTACGTAC
GTAC

>seq2
AC
>seq3 third
ACGTACGTACGTACGTACGT
`

func TestReader(t *testing.T) {
	t.Parallel()

	records, err := fasta.ReadAll(strings.NewReader(genome))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "seq1", records[0].ID)
	assert.Equal(t, "first contig", records[0].Description)
	assert.Equal(t, "ACGTACGTACGTAC", string(records[0].Seq))
	assert.Equal(t, 2, records[1].Len())
	assert.Empty(t, records[1].Description)
	assert.Equal(t, 20, records[2].Len())
}

func TestReaderErrors(t *testing.T) {
	t.Parallel()

	_, err := fasta.ReadAll(strings.NewReader("\nACGT\n>seq\nAC\n"))
	assert.True(t, errors.Is(err, fasta.ErrMissingHeader))
	assert.ErrorContains(t, err, "line 2")

	records, err := fasta.ReadAll(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)

	reader := fasta.NewReader(strings.NewReader(">only\n"))
	rec, err := reader.Read()
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Len())

	_, err = reader.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderLongLines(t *testing.T) {
	t.Parallel()

	// whole chromosomes on one line, past any line buffer
	seq := strings.Repeat("ACGT", 5<<20)
	input := ">chr1\n" + seq + "\r\n>chr2 " + strings.Repeat("x", 100<<10) + "\n" + seq[:10]

	lengths, err := fasta.ScaffoldLengths(strings.NewReader(input), 5)
	require.NoError(t, err)
	assert.Equal(t, []int{len(seq), 10}, lengths)

	records, err := fasta.ReadAll(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, seq, string(records[0].Seq))
	assert.Equal(t, "chr2", records[1].ID)
	assert.Len(t, records[1].Description, 100<<10)
}

func TestWriter(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	w := fasta.NewWriter(&out)
	require.NoError(t, w.Write(&fasta.Record{ID: "chr1", Description: "test", Seq: bytes.Repeat([]byte("A"), 130)}))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, ">chr1 test", lines[0])
	assert.Len(t, lines[1], fasta.LineWidth)
	assert.Len(t, lines[3], 10)
}

func TestScaffoldLengths(t *testing.T) {
	t.Parallel()

	lengths, err := fasta.ScaffoldLengths(strings.NewReader(genome), 2)
	require.NoError(t, err)
	assert.Equal(t, []int{20, 14}, lengths)

	lengths, err = fasta.ScaffoldLengths(strings.NewReader(genome), 100)
	require.NoError(t, err)
	assert.Empty(t, lengths)
}

func TestReorder(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	n, err := fasta.Reorder(strings.NewReader(genome), &out, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records, err := fasta.ReadAll(&out)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "seq3", records[0].ID)
	assert.Equal(t, "seq1", records[1].ID)
	assert.Equal(t, "ACGTACGTACGTAC", string(records[1].Seq))
}

func ExampleScaffoldLengths() {
	lengths, _ := fasta.ScaffoldLengths(strings.NewReader(">a\nACGT\n>b\nACGTACGT\n>c\nA\n"), 1)
	fmt.Println(lengths)
	// Output: [8 4]
}
