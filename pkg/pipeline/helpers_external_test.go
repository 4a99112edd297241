package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nmendiboure/hicstuff/pkg/pipeline"
	"github.com/nmendiboure/hicstuff/pkg/pipeline/model"
)

func addCounter(t *testing.T, pipe *pipeline.Pipeline, total int) *model.Step[int] {
	t.Helper()

	step, err := pipeline.AddRootStep(pipe, "counter", func(ctx context.Context, rootChan chan<- int) error {
		for i := range total {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case rootChan <- i:
			}
		}

		return nil
	})
	require.NoError(t, err)

	return step
}

func addCollector(t *testing.T, pipe *pipeline.Pipeline, name string, input *model.Step[int]) *[]int {
	t.Helper()

	got := []int{}
	err := pipeline.AddSink(pipe, name, input, func(_ context.Context, in int) error {
		got = append(got, in)

		return nil
	})
	require.NoError(t, err)

	return &got
}
