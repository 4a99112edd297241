package pipeline

import (
	"context"
	"testing"

	"github.com/nmendiboure/hicstuff/pkg/pipeline/model"
)

// counting emits 0 to total-1, then closes.
func counting(t *testing.T, total int) chan int {
	t.Helper()

	c := make(chan int)

	go func() {
		defer close(c)

		for i := range total {
			c <- i
		}
	}()

	return c
}

// countingUntilCancel emits values up to offset, then cancels without closing,
// so a consumer can only stop through its context.
func countingUntilCancel(t *testing.T, total, offset int, cancel context.CancelFunc) chan int {
	t.Helper()

	c := make(chan int)

	go func() {
		for i := range total {
			if i == offset {
				cancel()

				return
			}

			c <- i
		}
	}()

	return c
}

// driveStep runs a step in the background the way addStep does: the output is closed
// once run returns. It returns everything written to output and the step error.
func driveStep(t *testing.T, output *model.Step[int], run func() error) (<-chan []int, <-chan error) {
	t.Helper()

	got := make(chan []int, 1)
	errC := make(chan error, 1)

	go func() {
		res := []int{}
		for v := range output.Output {
			res = append(res, v)
		}

		got <- res
	}()

	go func() {
		defer close(output.Output)

		errC <- run()
	}()

	return got, errC
}

// drain unblocks a producer left behind by a failed step.
func drain[T any](c chan T) {
	for range c { //nolint:revive // drain
	}
}
