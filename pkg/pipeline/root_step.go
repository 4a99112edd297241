package pipeline

import (
	"context"

	"github.com/pkg/errors"

	"github.com/nmendiboure/hicstuff/pkg/pipeline/model"
)

// AddRootStep adds a step feeding the pipeline. stepFn owns rootChan until it returns,
// the channel is closed afterwards.
func AddRootStep[O any](
	pipe *Pipeline,
	name string,
	stepFn func(ctx context.Context, rootChan chan<- O) error,
	opts ...StepOption,
) (*model.Step[O], error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}

	details := &model.StepInfo{
		Type:       model.RootStepType,
		Name:       name,
		Concurrent: 1,
	}
	for _, opt := range opts {
		opt(details)
	}

	for _, opt := range pipe.opts {
		err := opt.PrepareStep(model.StartStep.Details, details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to run before step function")
		}
	}

	step := &model.Step[O]{
		Details: details,
		Output:  make(chan O, details.BufferSize),
	}
	errC := make(chan error, 1)

	pipe.register(name, errC, func(ctx context.Context) {
		defer func() {
			close(step.Output)
			close(errC)
		}()

		err := stepFn(ctx, step.Output)
		if err != nil {
			errC <- err
		}
	})

	return step, nil
}
