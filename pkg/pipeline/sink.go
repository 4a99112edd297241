package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/nmendiboure/hicstuff/pkg/pipeline/model"
)

func prepareSink[I any](pipe *Pipeline, name string, input *model.Step[I]) (*model.StepInfo, error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}

	if input == nil {
		return nil, ErrInputMustBeSet
	}

	details := &model.StepInfo{
		Type:       model.SinkStepType,
		Name:       name,
		Concurrent: 1,
	}

	for _, opt := range pipe.opts {
		err := opt.PrepareSink(detailsOf(input), details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to run before sink function")
		}
	}

	return details, nil
}

func afterSink(pipe *Pipeline, details *model.StepInfo) error {
	for _, opt := range pipe.opts {
		err := opt.AfterSink(details, time.Since(pipe.startTime))
		if err != nil {
			return errors.Wrap(err, "unable to run after sink function")
		}
	}

	return nil
}

func runSink[I any](
	ctx context.Context,
	pipe *Pipeline,
	input *model.Step[I],
	details *model.StepInfo,
	sinkFn func(ctx context.Context, input I) error,
) error {
	for {
		startIter := time.Now()
		select {
		case <-ctx.Done():
			return ctx.Err() //nolint:wrapcheck // wrapped with the sink name by the pipeline
		case in, ok := <-input.Output:
			if !ok {
				return afterSink(pipe, details)
			}

			startFn := time.Now()

			err := sinkFn(ctx, in)
			if err != nil {
				return err
			}

			endFn := time.Since(startFn)

			for _, opt := range pipe.opts {
				err := opt.OnSinkOutput(detailsOf(input), details, time.Since(startIter)-endFn, endFn)
				if err != nil {
					return errors.Wrap(err, "unable to run sink output option")
				}
			}
		}
	}
}

// AddSink adds a step consuming every entry of input.
func AddSink[I any](pipe *Pipeline, name string, input *model.Step[I], sinkFn func(ctx context.Context, input I) error) error {
	details, err := prepareSink(pipe, name, input)
	if err != nil {
		return err
	}

	errC := make(chan error, 1)

	pipe.register(name, errC, func(ctx context.Context) {
		defer close(errC)

		err := runSink(ctx, pipe, input, details, sinkFn)
		if err != nil {
			errC <- err
		}
	})

	return nil
}

// AddSinkFromChan adds a sink that receives the raw input channel.
func AddSinkFromChan[I any](pipe *Pipeline, name string, input *model.Step[I], stepFn func(ctx context.Context, input <-chan I) error) error {
	details, err := prepareSink(pipe, name, input)
	if err != nil {
		return err
	}

	errC := make(chan error, 1)

	pipe.register(name, errC, func(ctx context.Context) {
		defer close(errC)

		err := stepFn(ctx, input.Output)
		if err == nil {
			err = afterSink(pipe, details)
		}

		if err != nil {
			errC <- err
		}
	})

	return nil
}
