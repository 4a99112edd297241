package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/nmendiboure/hicstuff/pkg/pipeline/model"
)

// Splitter fans the entries of one step out to several branches.
type Splitter[I any] struct {
	mu            sync.Mutex
	currIdx       int
	mainStep      *model.Step[I]
	splittedSteps []*model.Step[I]
	bufferSize    int
	Total         int
}

// Get returns the next branch, false once every branch has been handed out.
func (s *Splitter[I]) Get() (*model.Step[I], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currIdx >= len(s.splittedSteps) {
		return nil, false
	}

	step := s.splittedSteps[s.currIdx]
	s.currIdx++

	return step, true
}

// SplitterFn decides whether an entry goes to a branch.
type SplitterFn[I any] func(input I) (bool, error)

func newSplitter[I any](pipe *Pipeline, name string, input *model.Step[I], total int, opts ...SplitterOption[I]) (*Splitter[I], error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}

	if input == nil {
		return nil, ErrInputMustBeSet
	}

	if total <= 0 {
		return nil, ErrSplitterTotal
	}

	splitter := &Splitter[I]{
		Total: total,
		mainStep: &model.Step[I]{
			Details: &model.StepInfo{
				Type:       model.SplitterStepType,
				Name:       name,
				Concurrent: 1,
			},
		},
	}
	for _, opt := range opts {
		opt(splitter)
	}

	if splitter.bufferSize == 0 {
		splitter.bufferSize = 1
	}

	splitter.mainStep.Details.BufferSize = splitter.bufferSize

	for _, opt := range pipe.opts {
		err := opt.PrepareSplitter(detailsOf(input), splitter.mainStep.Details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to run before splitter function")
		}
	}

	splitter.splittedSteps = make([]*model.Step[I], total)
	for i := range total {
		splitter.splittedSteps[i] = &model.Step[I]{
			Details: splitter.mainStep.Details,
			Output:  make(chan I, splitter.bufferSize),
		}
	}

	return splitter, nil
}

func (s *Splitter[I]) run(ctx context.Context, pipe *Pipeline, input *model.Step[I], fns []SplitterFn[I]) error {
	defer func() {
		for _, step := range s.splittedSteps {
			close(step.Output)
		}
	}()

	for {
		startIter := time.Now()
		select {
		case <-ctx.Done():
			return ctx.Err() //nolint:wrapcheck // wrapped with the splitter name by the pipeline
		case entry, ok := <-input.Output:
			if !ok {
				return nil
			}

			startFn := time.Now()

			for i, step := range s.splittedSteps {
				if fns != nil {
					keep, err := fns[i](entry)
					if err != nil {
						return errors.Wrapf(err, "unable to run splitter function %d", i)
					}

					if !keep {
						continue
					}
				}

				select {
				case <-ctx.Done():
					return ctx.Err() //nolint:wrapcheck // see above
				case step.Output <- entry:
				}
			}

			endFn := time.Since(startFn)

			for _, opt := range pipe.opts {
				err := opt.OnSplitterOutput(detailsOf(input), s.mainStep.Details, time.Since(startIter)-endFn, endFn)
				if err != nil {
					return errors.Wrap(err, "unable to run splitter output option")
				}
			}
		}
	}
}

func (s *Splitter[I]) register(pipe *Pipeline, input *model.Step[I], fns []SplitterFn[I]) {
	errC := make(chan error, 1)

	pipe.register(s.mainStep.Details.Name, errC, func(ctx context.Context) {
		defer close(errC)

		err := s.run(ctx, pipe, input, fns)
		if err != nil {
			errC <- err
		}
	})
}

// AddSplitter copies every entry of input to total branches.
func AddSplitter[I any](pipe *Pipeline, name string, input *model.Step[I], total int, opts ...SplitterOption[I]) (*Splitter[I], error) {
	splitter, err := newSplitter(pipe, name, input, total, opts...)
	if err != nil {
		return nil, err
	}

	splitter.register(pipe, input, nil)

	return splitter, nil
}

// AddSplitterFn sends each entry of input to the branches whose function accepts it.
// Branch i is fed by fns[i].
func AddSplitterFn[I any](pipe *Pipeline, name string, input *model.Step[I], fns []SplitterFn[I], opts ...SplitterOption[I]) (*Splitter[I], error) {
	splitter, err := newSplitter(pipe, name, input, len(fns), opts...)
	if err != nil {
		return nil, err
	}

	splitter.register(pipe, input, fns)

	return splitter, nil
}
