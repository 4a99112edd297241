package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/nmendiboure/hicstuff/pkg/pipeline/model"
)

// Pipeline is a pipeline of steps.
type Pipeline struct {
	ctx       context.Context //nolint:containedctx // steps are bound to the pipeline lifetime
	cancel    context.CancelFunc
	errs      *stepErrors
	opts      []model.PipelineOption
	startTime time.Time
	goFn      []func(ctx context.Context)
}

// New creates a new pipeline bound to ctx.
func New(ctx context.Context, opts ...model.PipelineOption) (*Pipeline, error) {
	dCtx, cancel := context.WithCancel(ctx)
	pipe := &Pipeline{
		ctx:       dCtx,
		cancel:    cancel,
		errs:      &stepErrors{},
		startTime: time.Now(),
		opts:      opts,
	}

	for _, opt := range opts {
		err := opt.New()
		if err != nil {
			cancel()

			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

// Run starts every step and waits for the pipeline to finish.
// The first error cancels the remaining steps and is returned.
func (p *Pipeline) Run() error {
	defer p.cancel()

	for _, fn := range p.goFn {
		go fn(p.ctx)
	}

	err := p.errs.wait(p.cancel)
	if err != nil {
		return err
	}

	return p.finishRun()
}

func (p *Pipeline) finishRun() error {
	for _, opt := range p.opts {
		err := opt.Finish()
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}

// register adds a step goroutine and its error channel to the pipeline.
func (p *Pipeline) register(name string, errC <-chan error, fn func(ctx context.Context)) {
	p.goFn = append(p.goFn, fn)
	p.errs.add(name, errC)
}
