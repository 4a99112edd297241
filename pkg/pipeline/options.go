package pipeline

import "github.com/nmendiboure/hicstuff/pkg/pipeline/model"

// StepOption configures a step.
type StepOption func(s *model.StepInfo)

// StepConcurrency sets the number of goroutines running the step function.
func StepConcurrency(concurrent int) StepOption {
	return func(s *model.StepInfo) {
		s.Concurrent = concurrent
	}
}

// StepBufferSize sets the capacity of the step output channel.
func StepBufferSize(bufferSize int) StepOption {
	return func(s *model.StepInfo) {
		s.BufferSize = bufferSize
	}
}

// SplitterOption configures a splitter.
type SplitterOption[I any] func(s *Splitter[I])

// SplitterBufferSize sets the capacity of each branch buffer.
func SplitterBufferSize[I any](bufferSize int) SplitterOption[I] {
	return func(s *Splitter[I]) {
		s.bufferSize = bufferSize
	}
}
