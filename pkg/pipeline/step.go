package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/nmendiboure/hicstuff/pkg/pipeline/model"
)

// transformFn is the shape every step function is reduced to.
type transformFn[I any, O any] func(ctx context.Context, input I) ([]O, error)

func detailsOf[T any](step *model.Step[T]) *model.StepInfo {
	if step.Details == nil {
		return model.StartStep.Details
	}

	return step.Details
}

func sequentialFn[I any, O any](
	ctx context.Context,
	goIdx int,
	opts []model.PipelineOption,
	input *model.Step[I],
	output *model.Step[O],
	fn transformFn[I, O],
) error {
	for {
		startIter := time.Now()
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "go routine %d", goIdx)
		case in, ok := <-input.Output:
			if !ok {
				return nil
			}

			startFn := time.Now()

			outs, err := fn(ctx, in)
			if err != nil {
				return errors.Wrapf(err, "go routine %d", goIdx)
			}

			endFn := time.Since(startFn)

			for _, out := range outs {
				// check the context again so that running go routines
				// stop adding new elements to the pipeline
				select {
				case <-ctx.Done():
					return errors.Wrapf(ctx.Err(), "go routine %d", goIdx)
				case output.Output <- out:
				}
			}

			for _, opt := range opts {
				err := opt.OnStepOutput(detailsOf(input), output.Details, time.Since(startIter)-endFn, endFn)
				if err != nil {
					return errors.Wrap(err, "unable to run step output option")
				}
			}
		}
	}
}

func concurrentFn[I any, O any](
	ctx context.Context,
	opts []model.PipelineOption,
	input *model.Step[I],
	output *model.Step[O],
	fn transformFn[I, O],
) error {
	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(output.Details.Concurrent)

	// each consumer stops as soon as one of them fails
	for goIdx := range output.Details.Concurrent {
		errGrp.Go(func() error {
			return sequentialFn(dCtx, goIdx, opts, input, output, fn)
		})
	}

	return errGrp.Wait() //nolint:wrapcheck // already wrapped by each consumer
}

func runStep[I any, O any](
	ctx context.Context,
	opts []model.PipelineOption,
	input *model.Step[I],
	output *model.Step[O],
	fn transformFn[I, O],
) error {
	if output.Details.Concurrent <= 1 {
		output.Details.Concurrent = 1

		return sequentialFn(ctx, 0, opts, input, output, fn)
	}

	return concurrentFn(ctx, opts, input, output, fn)
}

func runOneToOne[I any, O any](
	ctx context.Context,
	opts []model.PipelineOption,
	input *model.Step[I],
	output *model.Step[O],
	oneToOneFn func(context.Context, I) (O, error),
) error {
	return runStep(ctx, opts, input, output, func(ctx context.Context, in I) ([]O, error) {
		out, err := oneToOneFn(ctx, in)
		if err != nil {
			return nil, err
		}

		return []O{out}, nil
	})
}

func runOneToOneOrZero[I any, O comparable](
	ctx context.Context,
	opts []model.PipelineOption,
	input *model.Step[I],
	output *model.Step[O],
	oneToOneFn func(context.Context, I) (O, error),
) error {
	var zero O

	return runStep(ctx, opts, input, output, func(ctx context.Context, in I) ([]O, error) {
		out, err := oneToOneFn(ctx, in)
		if err != nil {
			return nil, err
		}

		if out == zero {
			return nil, nil
		}

		return []O{out}, nil
	})
}

func runOneToMany[I any, O any](
	ctx context.Context,
	opts []model.PipelineOption,
	input *model.Step[I],
	output *model.Step[O],
	oneToManyFn func(context.Context, I) ([]O, error),
) error {
	return runStep(ctx, opts, input, output, oneToManyFn)
}

func prepareStep[I, O any](pipe *Pipeline, name string, input *model.Step[I], opts ...StepOption) (*model.Step[O], error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}

	if input == nil {
		return nil, ErrInputMustBeSet
	}

	details := &model.StepInfo{
		Type:       model.NormalStepType,
		Name:       name,
		Concurrent: 1,
	}
	for _, opt := range opts {
		opt(details)
	}

	for _, opt := range pipe.opts {
		err := opt.PrepareStep(detailsOf(input), details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to run before step function")
		}
	}

	return &model.Step[O]{
		Details: details,
		Output:  make(chan O, details.BufferSize),
	}, nil
}

func addStep[I any, O any](
	pipe *Pipeline,
	input *model.Step[I],
	step *model.Step[O],
	stepToStepFn func(ctx context.Context, input *model.Step[I], output *model.Step[O]) error,
) *model.Step[O] {
	errC := make(chan error, 1)

	pipe.register(step.Details.Name, errC, func(ctx context.Context) {
		defer func() {
			close(errC)
			close(step.Output)
		}()

		err := stepToStepFn(ctx, input, step)
		if err != nil {
			errC <- err
		}
	})

	return step
}

// AddStepOneToOne adds a step producing exactly one output for each input.
func AddStepOneToOne[I any, O any](
	pipe *Pipeline,
	name string,
	input *model.Step[I],
	oneToOneFn func(context.Context, I) (O, error),
	opts ...StepOption,
) (*model.Step[O], error) {
	step, err := prepareStep[I, O](pipe, name, input, opts...)
	if err != nil {
		return nil, err
	}

	return addStep(pipe, input, step, func(ctx context.Context, in *model.Step[I], out *model.Step[O]) error {
		return runOneToOne(ctx, pipe.opts, in, out, oneToOneFn)
	}), nil
}

// AddStepOneToOneOrZero adds a step producing at most one output for each input.
// Zero values returned by oneToOneFn are dropped.
func AddStepOneToOneOrZero[I any, O comparable](
	pipe *Pipeline,
	name string,
	input *model.Step[I],
	oneToOneFn func(context.Context, I) (O, error),
	opts ...StepOption,
) (*model.Step[O], error) {
	step, err := prepareStep[I, O](pipe, name, input, opts...)
	if err != nil {
		return nil, err
	}

	return addStep(pipe, input, step, func(ctx context.Context, in *model.Step[I], out *model.Step[O]) error {
		return runOneToOneOrZero(ctx, pipe.opts, in, out, oneToOneFn)
	}), nil
}

// AddStepOneToMany adds a step producing any number of outputs for each input.
func AddStepOneToMany[I any, O any](
	pipe *Pipeline,
	name string,
	input *model.Step[I],
	oneToManyFn func(context.Context, I) ([]O, error),
	opts ...StepOption,
) (*model.Step[O], error) {
	step, err := prepareStep[I, O](pipe, name, input, opts...)
	if err != nil {
		return nil, err
	}

	return addStep(pipe, input, step, func(ctx context.Context, in *model.Step[I], out *model.Step[O]) error {
		return runOneToMany(ctx, pipe.opts, in, out, oneToManyFn)
	}), nil
}
