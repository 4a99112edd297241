package filter

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/nmendiboure/hicstuff/pkg/pairs"
	"github.com/nmendiboure/hicstuff/pkg/pipeline"
	"github.com/nmendiboure/hicstuff/pkg/pipeline/model"
)

const stepBuffer = 256

type line struct {
	number int
	text   string
}

type classified struct {
	pair  pairs.Pair
	event pairs.Event
}

// Filter streams the pairs of r to w, leaving out weirds and the loops and uncuts closer than thr.
// Kept pairs are written in input order, after reordering of intrachromosomal reads.
// pipeOpts are handed to the underlying pipeline, to measure or draw it.
func Filter(ctx context.Context, r io.Reader, w io.Writer, thr pairs.Thresholds, pipeOpts ...model.PipelineOption) (*Summary, error) {
	pipe, err := pipeline.New(ctx, pipeOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create filter pipeline")
	}

	summary := &Summary{Thresholds: thr}
	bw := bufio.NewWriter(w)

	err = buildFilterPipeline(pipe, r, bw, thr, summary)
	if err != nil {
		return nil, err
	}

	err = pipe.Run()
	if err != nil {
		return nil, errors.Wrap(err, "unable to filter pairs")
	}

	err = bw.Flush()
	if err != nil {
		return nil, errors.Wrap(err, "unable to flush filtered pairs")
	}

	return summary, nil
}

func buildFilterPipeline(pipe *pipeline.Pipeline, r io.Reader, w *bufio.Writer, thr pairs.Thresholds, summary *Summary) error {
	lines, err := pipeline.AddRootStep(pipe, "read", func(ctx context.Context, rootChan chan<- line) error {
		return readLines(ctx, r, rootChan)
	}, pipeline.StepBufferSize(stepBuffer))
	if err != nil {
		return errors.Wrap(err, "unable to add read step")
	}

	parsed, err := pipeline.AddStepOneToOne(pipe, "parse", lines, func(_ context.Context, l line) (pairs.Pair, error) {
		p, err := pairs.Parse(l.text)
		if err != nil {
			return pairs.Pair{}, errors.Wrapf(err, "line %d", l.number)
		}

		return p, nil
	}, pipeline.StepBufferSize(stepBuffer))
	if err != nil {
		return errors.Wrap(err, "unable to add parse step")
	}

	events, err := pipeline.AddStepOneToOne(pipe, "classify", parsed, func(_ context.Context, p pairs.Pair) (classified, error) {
		return classified{pair: p, event: pairs.Classify(p, thr)}, nil
	}, pipeline.StepBufferSize(stepBuffer))
	if err != nil {
		return errors.Wrap(err, "unable to add classify step")
	}

	splitter, err := pipeline.AddSplitter(pipe, "split", events, 2, pipeline.SplitterBufferSize[classified](stepBuffer))
	if err != nil {
		return errors.Wrap(err, "unable to add splitter")
	}

	toWrite, _ := splitter.Get()
	toCount, _ := splitter.Get()

	kept, err := pipeline.AddStepOneToOneOrZero(pipe, "keep", toWrite, func(_ context.Context, c classified) (pairs.Pair, error) {
		if !c.event.Kept() {
			return pairs.Pair{}, nil
		}

		return c.pair, nil
	}, pipeline.StepBufferSize(stepBuffer))
	if err != nil {
		return errors.Wrap(err, "unable to add keep step")
	}

	err = pipeline.AddSink(pipe, "write", kept, func(_ context.Context, p pairs.Pair) error {
		_, err := w.WriteString(p.String() + "\n")

		return errors.Wrap(err, "unable to write pair")
	})
	if err != nil {
		return errors.Wrap(err, "unable to add write sink")
	}

	err = pipeline.AddSink(pipe, "summary", toCount, func(_ context.Context, c classified) error {
		summary.Add(c.event)

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "unable to add summary sink")
	}

	return nil
}

func readLines(ctx context.Context, r io.Reader, out chan<- line) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)

	number := 0

	for sc.Scan() {
		number++

		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err() //nolint:wrapcheck // wrapped by the pipeline
		case out <- line{number: number, text: text}:
		}
	}

	return errors.Wrap(sc.Err(), "unable to read pairs")
}
