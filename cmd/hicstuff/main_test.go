package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func runWith(t *testing.T, stdin string, args ...string) result {
	t.Helper()

	cfg := filepath.Join(t.TempDir(), ".hicstuff.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("log_level: debug\nno_color: true\n"), 0o600))

	var stdout, stderr bytes.Buffer

	code := run(context.Background(), append([]string{"--config", cfg}, args...), strings.NewReader(stdin), &stdout, &stderr)

	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestVersion(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer

	code := run(context.Background(), []string{"--version"}, strings.NewReader(""), &stdout, &bytes.Buffer{})
	assert.Equal(t, exitOK, code)
	assert.Equal(t, version+"\n", stdout.String())

	res := runWith(t, "", "version")
	assert.Equal(t, exitOK, res.code)
	assert.Equal(t, version+"\n", res.stdout)
}

func TestUsageErrors(t *testing.T) {
	t.Parallel()

	cases := map[string][]string{
		"no command":         {},
		"unknown command":    {"assemble"},
		"missing argument":   {"digest", "--enzyme", "DpnII"},
		"missing enzyme":     {"digest", "genome.fa"},
		"unknown enzyme":     {"digest", "--enzyme", "FooI", "genome.fa"},
		"unknown flag":       {"view", "--colour", "map.txt"},
		"bad thresholds":     {"filter", "--thresholds", "a-b", "in", "out"},
		"exclusive options":  {"filter", "--interactive", "--thresholds", "1-2", "in", "out"},
		"iteralign required": {"iteralign", "reads.fq"},
		"bad binning":        {"view", "--binning", "ten", "map.txt"},
		"bad max":            {"view", "--max", "0", "map.txt"},
	}

	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			res := runWith(t, "", args...)
			assert.Equal(t, exitUsage, res.code, res.stderr)
		})
	}
}

func TestBadLogLevel(t *testing.T) {
	t.Parallel()

	res := runWith(t, "", "--log-level", "loud", "version")
	assert.Equal(t, exitUsage, res.code)
}

func TestDigestCommand(t *testing.T) {
	t.Parallel()

	genome := writeFile(t, "genome.fa", ">chr1\nAAGATCAAGATCAAAA\n>chr2\nCCCC\n")
	outDir := filepath.Join(t.TempDir(), "frags")
	graph := filepath.Join(t.TempDir(), "digest.dot")

	res := runWith(t, "", "digest", "-e", "DpnII", "--outdir", outDir, "--graph", graph, genome)
	require.Equal(t, exitOK, res.code, res.stderr)

	info, err := os.ReadFile(filepath.Join(outDir, "info_contigs.txt"))
	require.NoError(t, err)
	assert.Equal(t, "contig\tlength\tn_frags\tcumul_length\nchr1\t16\t3\t0\nchr2\t4\t1\t3\n", string(info))

	dot, err := os.ReadFile(graph)
	require.NoError(t, err)
	assert.Contains(t, string(dot), "digest")
	assert.Contains(t, res.stderr, "genome digested")
	assert.Contains(t, res.stderr, "run_id=")
}

func TestDigestMissingGenome(t *testing.T) {
	t.Parallel()

	res := runWith(t, "", "digest", "-e", "DpnII", filepath.Join(t.TempDir(), "missing.fa"))
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.stderr, "command failed")
}

const library = `chr1 100 150 10 + chr1 200 250 11 -
chr1 100 150 10 - chr1 200 250 11 +
chr1 100 150 10 + chr1 200 250 10 +
chr1 900 950 30 + chr1 100 150 10 -
chr1 100 150 10 + chr2 100 150 50 +
`

func TestFilterCommand(t *testing.T) {
	t.Parallel()

	input := writeFile(t, "pairs.bed", library)
	output := filepath.Join(t.TempDir(), "filtered.bed")

	res := runWith(t, "", "filter", "--thresholds", "3-2", "--plot_summary", input, output)
	require.Equal(t, exitOK, res.code, res.stderr)

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(content), "\n"))

	assert.Contains(t, res.stderr, "Filtering with thresholds: uncuts=3 loops=2")
	assert.Contains(t, res.stderr, "3 pairs discarded")
	assert.Contains(t, res.stderr, "Event composition")
}

func TestFilterInteractive(t *testing.T) {
	t.Parallel()

	input := writeFile(t, "pairs.bed", library)
	output := filepath.Join(t.TempDir(), "filtered.bed")

	res := runWith(t, "0\n0\n", "filter", "--interactive", input, output)
	require.Equal(t, exitOK, res.code, res.stderr)

	assert.Contains(t, res.stderr, "Enter threshold for the uncuts (+-) events")
	assert.Contains(t, res.stderr, "uncuts=0 loops=0")

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(content), "\n"))
}

func TestViewCommand(t *testing.T) {
	t.Parallel()

	contacts := writeFile(t, "abs_fragments_contacts_weighted.txt", "id_a\tid_b\tn\n0\t1\t3\n1\t2\t5\n2\t3\t1\n0\t3\t2\n")
	output := filepath.Join(t.TempDir(), "map.png")

	res := runWith(t, "", "view", "--normalize", "--binning", "2", "--output", output, contacts)
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.FileExists(t, output)
	assert.Empty(t, res.stdout)
}

func TestFastaCommands(t *testing.T) {
	t.Parallel()

	genome := writeFile(t, "genome.fa", ">a\nACGT\n>b\nACGTACGT\n>c\nA\n")

	res := runWith(t, "", "scaffolds", "--threshold", "1", genome)
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, "0\t8\n1\t4\n", res.stdout)

	output := filepath.Join(t.TempDir(), "sorted.fa")

	res = runWith(t, "", "reorder", "--threshold", "1", genome, output)
	require.Equal(t, exitOK, res.code, res.stderr)

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, ">b\nACGTACGT\n>a\nACGT\n", string(content))
}
