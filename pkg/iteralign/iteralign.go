// Package iteralign maps Hi-C reads iteratively: reads are first truncated to a short length and
// aligned, those that do not map uniquely are extended and aligned again until they map or
// reach their full length. Short alignments are less likely to span a ligation junction.
package iteralign

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/nmendiboure/hicstuff/internal/logging"
	"github.com/nmendiboure/hicstuff/pkg/pipeline"
	"github.com/nmendiboure/hicstuff/pkg/pipeline/model"
)

const (
	DefaultMinLen     = 20
	DefaultStep       = 10
	DefaultMinQuality = 30

	stepBuffer = 256
)

var ErrNoReads = errors.New("no reads to align")

// Config describes an iterative alignment.
type Config struct {
	Reads   string
	Genome  string
	OutSAM  string
	TempDir string
	Threads int
	// MinLen is the length of the first round, Step the extension between rounds.
	MinLen     int
	Step       int
	MinQuality int
	// Logger reports each round; nil discards the reports.
	Logger     *slog.Logger
	// PipelineOptions are handed to every round's pipelines.
	PipelineOptions []model.PipelineOption
}

func (c Config) withDefaults() Config {
	if c.MinLen <= 0 {
		c.MinLen = DefaultMinLen
	}

	if c.Step <= 0 {
		c.Step = DefaultStep
	}

	if c.MinQuality <= 0 {
		c.MinQuality = DefaultMinQuality
	}

	if c.Threads <= 0 {
		c.Threads = 1
	}

	if c.TempDir == "" {
		c.TempDir = "."
	}

	if c.Logger == nil {
		c.Logger = logging.Discard()
	}

	return c
}

// Round reports one alignment round.
type Round struct {
	Length  int
	Reads   int
	Aligned int
}

// Result reports a whole alignment.
type Result struct {
	Rounds    []Round
	Total     int
	Aligned   int
	Unaligned int
}

// Align runs the iterative alignment of cfg.Reads on cfg.Genome and writes every kept alignment to
// cfg.OutSAM. Reads still unaligned at full length are written as the aligner reported them.
// The temporary directory created under cfg.TempDir is removed before returning.
func Align(ctx context.Context, cfg Config, aligner Aligner) (*Result, error) {
	cfg = cfg.withDefaults()

	maxLen, total, err := scanReads(cfg.Reads)
	if err != nil {
		return nil, err
	}

	if total == 0 {
		return nil, errors.Wrapf(ErrNoReads, "in %s", cfg.Reads)
	}

	tmp, err := os.MkdirTemp(cfg.TempDir, "hicstuff-iteralign-")
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create a temporary directory in %s", cfg.TempDir)
	}
	defer os.RemoveAll(tmp)

	cfg.Logger.Info("indexing genome", "aligner", aligner.Name(), "genome", cfg.Genome)

	index, err := aligner.Index(ctx, cfg.Genome, tmp)
	if err != nil {
		return nil, err
	}

	out, err := os.Create(cfg.OutSAM)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create %s", cfg.OutSAM)
	}
	defer out.Close()

	bw := bufio.NewWriter(out)
	res := &Result{Total: total}

	var remaining map[string]struct{}

	for length := min(cfg.MinLen, maxLen); ; length = min(length+cfg.Step, maxLen) {
		final := length >= maxLen

		round, next, err := alignRound(ctx, cfg, aligner, index, tmp, length, remaining, bw, final, len(res.Rounds) == 0)
		if err != nil {
			return nil, errors.Wrapf(err, "round at %dbp", length)
		}

		res.Rounds = append(res.Rounds, round)
		res.Aligned += round.Aligned

		cfg.Logger.Info("alignment round done",
			"length", round.Length, "reads", round.Reads, "aligned", round.Aligned, "left", len(next))

		remaining = next
		if final || len(remaining) == 0 {
			break
		}
	}

	res.Unaligned = res.Total - res.Aligned

	err = bw.Flush()
	if err != nil {
		return nil, errors.Wrapf(err, "unable to flush %s", cfg.OutSAM)
	}

	return res, errors.Wrapf(out.Close(), "unable to close %s", cfg.OutSAM)
}

func scanReads(path string) (int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "unable to open reads %s", path)
	}
	defer file.Close()

	reader := NewFastqReader(file)
	maxLen, total := 0, 0

	for {
		read, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return maxLen, total, nil
		}

		if err != nil {
			return 0, 0, errors.Wrapf(err, "unable to scan %s", path)
		}

		total++
		maxLen = max(maxLen, len(read.Seq))
	}
}

// alignRound truncates the remaining reads (all of them when remaining is nil), aligns them and
// sorts the alignments. It returns the names of the reads to extend.
func alignRound(
	ctx context.Context,
	cfg Config,
	aligner Aligner,
	index, tmp string,
	length int,
	remaining map[string]struct{},
	out *bufio.Writer,
	final, withHeader bool,
) (Round, map[string]struct{}, error) {
	round := Round{Length: length}
	fastq := filepath.Join(tmp, fmt.Sprintf("truncated_%d.fq", length))
	sam := filepath.Join(tmp, fmt.Sprintf("aligned_%d.sam", length))

	n, err := truncateReads(ctx, cfg, fastq, length, remaining)
	if err != nil {
		return round, nil, err
	}

	round.Reads = n
	if n == 0 {
		return round, nil, nil
	}

	err = aligner.Align(ctx, index, fastq, sam, cfg.Threads)
	if err != nil {
		return round, nil, err
	}

	aligned, next, err := sortAlignments(ctx, cfg, sam, out, final, withHeader)
	if err != nil {
		return round, nil, err
	}

	round.Aligned = aligned

	return round, next, nil
}

func truncateReads(ctx context.Context, cfg Config, path string, length int, remaining map[string]struct{}) (int, error) {
	in, err := os.Open(cfg.Reads)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to open reads %s", cfg.Reads)
	}
	defer in.Close()

	file, err := os.Create(path)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to create %s", path)
	}
	defer file.Close()

	pipe, err := pipeline.New(ctx, cfg.PipelineOptions...)
	if err != nil {
		return 0, errors.Wrap(err, "unable to create truncate pipeline")
	}

	reads, err := pipeline.AddRootStep(pipe, "read", func(ctx context.Context, rootChan chan<- Read) error {
		reader := NewFastqReader(in)

		for {
			read, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}

			if err != nil {
				return err
			}

			select {
			case <-ctx.Done():
				return ctx.Err() //nolint:wrapcheck // wrapped by the pipeline
			case rootChan <- read:
			}
		}
	}, pipeline.StepBufferSize(stepBuffer))
	if err != nil {
		return 0, errors.Wrap(err, "unable to add read step")
	}

	// remaining is only read while the pipeline runs, concurrent lookups are safe
	truncated, err := pipeline.AddStepOneToOneOrZero(pipe, "truncate", reads, func(_ context.Context, read Read) (Read, error) {
		if remaining != nil {
			if _, ok := remaining[read.Name()]; !ok {
				return Read{}, nil
			}
		}

		return read.Truncate(length), nil
	}, pipeline.StepConcurrency(cfg.Threads), pipeline.StepBufferSize(stepBuffer))
	if err != nil {
		return 0, errors.Wrap(err, "unable to add truncate step")
	}

	bw := bufio.NewWriter(file)
	written := 0

	err = pipeline.AddSink(pipe, "write", truncated, func(_ context.Context, read Read) error {
		written++
		_, err := bw.WriteString(read.String())

		return errors.Wrap(err, "unable to write truncated read")
	})
	if err != nil {
		return 0, errors.Wrap(err, "unable to add write sink")
	}

	err = pipe.Run()
	if err != nil {
		return 0, errors.Wrap(err, "unable to truncate reads")
	}

	err = bw.Flush()
	if err != nil {
		return 0, errors.Wrapf(err, "unable to flush %s", path)
	}

	return written, errors.Wrapf(file.Close(), "unable to close %s", path)
}

func sortAlignments(ctx context.Context, cfg Config, sam string, out *bufio.Writer, final, withHeader bool) (int, map[string]struct{}, error) {
	file, err := os.Open(sam)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "unable to open alignments %s", sam)
	}
	defer file.Close()

	pipe, err := pipeline.New(ctx, cfg.PipelineOptions...)
	if err != nil {
		return 0, nil, errors.Wrap(err, "unable to create sort pipeline")
	}

	lines, err := pipeline.AddRootStep(pipe, "read", func(ctx context.Context, rootChan chan<- string) error {
		sc := bufio.NewScanner(file)
		sc.Buffer(make([]byte, 64*1024), 1<<20)

		for sc.Scan() {
			if sc.Text() == "" {
				continue
			}

			select {
			case <-ctx.Done():
				return ctx.Err() //nolint:wrapcheck // wrapped by the pipeline
			case rootChan <- sc.Text():
			}
		}

		return errors.Wrap(sc.Err(), "unable to read alignments")
	}, pipeline.StepBufferSize(stepBuffer))
	if err != nil {
		return 0, nil, errors.Wrap(err, "unable to add read step")
	}

	records, err := pipeline.AddStepOneToOneOrZero(pipe, "parse", lines, func(_ context.Context, text string) (samLine, error) {
		line, err := parseSamLine(text)
		if err != nil {
			return samLine{}, err
		}

		// later rounds repeat the header, secondary alignments follow their primary
		if (line.header && !withHeader) || (!line.header && !line.primary()) {
			return samLine{}, nil
		}

		return line, nil
	}, pipeline.StepBufferSize(stepBuffer))
	if err != nil {
		return 0, nil, errors.Wrap(err, "unable to add parse step")
	}

	keep := func(line samLine) bool {
		return line.header || final || line.alignedWith(cfg.MinQuality)
	}

	splitter, err := pipeline.AddSplitterFn(pipe, "sort", records, []pipeline.SplitterFn[samLine]{
		func(line samLine) (bool, error) { return keep(line), nil },
		func(line samLine) (bool, error) { return !keep(line), nil },
	}, pipeline.SplitterBufferSize[samLine](stepBuffer))
	if err != nil {
		return 0, nil, errors.Wrap(err, "unable to add sort splitter")
	}

	kept, _ := splitter.Get()
	rejected, _ := splitter.Get()

	aligned := 0

	err = pipeline.AddSink(pipe, "keep", kept, func(_ context.Context, line samLine) error {
		if !line.header && line.alignedWith(cfg.MinQuality) {
			aligned++
		}

		_, err := out.WriteString(line.text + "\n")

		return errors.Wrap(err, "unable to write alignment")
	})
	if err != nil {
		return 0, nil, errors.Wrap(err, "unable to add keep sink")
	}

	next := make(map[string]struct{})

	err = pipeline.AddSink(pipe, "extend", rejected, func(_ context.Context, line samLine) error {
		next[line.qname] = struct{}{}

		return nil
	})
	if err != nil {
		return 0, nil, errors.Wrap(err, "unable to add extend sink")
	}

	err = pipe.Run()
	if err != nil {
		return 0, nil, errors.Wrap(err, "unable to sort alignments")
	}

	return aligned, next, nil
}
