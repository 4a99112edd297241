package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmendiboure/hicstuff/pkg/pipeline"
	"github.com/nmendiboure/hicstuff/pkg/pipeline/drawer"
	"github.com/nmendiboure/hicstuff/pkg/pipeline/measure"
	"github.com/nmendiboure/hicstuff/pkg/pipeline/model"
)

func identity(_ context.Context, in int) (int, error) {
	return in, nil
}

func TestNilArguments(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(context.Background())
	require.NoError(t, err)

	_, err = pipeline.AddRootStep(nil, "root", func(context.Context, chan<- int) error { return nil })
	require.ErrorIs(t, err, pipeline.ErrPipelineMustBeSet)

	_, err = pipeline.AddStepOneToOne(nil, "step", &model.Step[int]{}, identity)
	require.ErrorIs(t, err, pipeline.ErrPipelineMustBeSet)

	_, err = pipeline.AddStepOneToOne[int, int](pipe, "step", nil, identity)
	require.ErrorIs(t, err, pipeline.ErrInputMustBeSet)

	_, err = pipeline.AddStepOneToOneOrZero[int, int](pipe, "step", nil, identity)
	require.ErrorIs(t, err, pipeline.ErrInputMustBeSet)

	_, err = pipeline.AddStepOneToMany[int, int](pipe, "step", nil, func(context.Context, int) ([]int, error) { return nil, nil })
	require.ErrorIs(t, err, pipeline.ErrInputMustBeSet)

	_, err = pipeline.AddSplitter[int](pipe, "split", nil, 2)
	require.ErrorIs(t, err, pipeline.ErrInputMustBeSet)

	err = pipeline.AddSink[int](pipe, "sink", nil, func(context.Context, int) error { return nil })
	require.ErrorIs(t, err, pipeline.ErrInputMustBeSet)
}

func TestAddSplitterZero(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(context.Background())
	require.NoError(t, err)

	_, err = pipeline.AddSplitter(pipe, "split", &model.Step[int]{}, 0)
	require.ErrorIs(t, err, pipeline.ErrSplitterTotal)

	_, err = pipeline.AddSplitterFn(pipe, "split", &model.Step[int]{}, nil)
	require.ErrorIs(t, err, pipeline.ErrSplitterTotal)
}

func TestSimplePipeline(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(context.Background())
	require.NoError(t, err)

	root := addCounter(t, pipe, 10)
	doubled, err := pipeline.AddStepOneToOne(pipe, "double", root, func(_ context.Context, in int) (int, error) {
		return in * 2, nil
	})
	require.NoError(t, err)

	got := addCollector(t, pipe, "collect", doubled)

	require.NoError(t, pipe.Run())
	assert.Equal(t, []int{0, 2, 4, 6, 8, 10, 12, 14, 16, 18}, *got)
}

func TestConcurrentStep(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(context.Background())
	require.NoError(t, err)

	root := addCounter(t, pipe, 100)
	step, err := pipeline.AddStepOneToOne(pipe, "identity", root, identity, pipeline.StepConcurrency(8), pipeline.StepBufferSize(4))
	require.NoError(t, err)

	got := addCollector(t, pipe, "collect", step)

	require.NoError(t, pipe.Run())

	expected := make([]int, 100)
	for i := range expected {
		expected[i] = i
	}

	assert.ElementsMatch(t, expected, *got)
}

func TestOneToOneOrZeroAndOneToMany(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(context.Background())
	require.NoError(t, err)

	root := addCounter(t, pipe, 6)
	odds, err := pipeline.AddStepOneToOneOrZero(pipe, "odds", root, func(_ context.Context, in int) (int, error) {
		if in%2 == 0 {
			return 0, nil
		}

		return in, nil
	})
	require.NoError(t, err)

	repeated, err := pipeline.AddStepOneToMany(pipe, "repeat", odds, func(_ context.Context, in int) ([]int, error) {
		return []int{in, in}, nil
	})
	require.NoError(t, err)

	got := addCollector(t, pipe, "collect", repeated)

	require.NoError(t, pipe.Run())
	assert.Equal(t, []int{1, 1, 3, 3, 5, 5}, *got)
}

func TestSplitterPipeline(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(context.Background())
	require.NoError(t, err)

	root := addCounter(t, pipe, 5)
	splitter, err := pipeline.AddSplitter(pipe, "split", root, 2, pipeline.SplitterBufferSize[int](3))
	require.NoError(t, err)

	first, ok := splitter.Get()
	require.True(t, ok)
	second, ok := splitter.Get()
	require.True(t, ok)
	_, ok = splitter.Get()
	require.False(t, ok)

	got1 := addCollector(t, pipe, "first", first)
	got2 := addCollector(t, pipe, "second", second)

	require.NoError(t, pipe.Run())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, *got1)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, *got2)
}

func TestSplitterFnPipeline(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(context.Background())
	require.NoError(t, err)

	root := addCounter(t, pipe, 6)
	splitter, err := pipeline.AddSplitterFn(pipe, "route", root, []pipeline.SplitterFn[int]{
		func(in int) (bool, error) { return in < 3, nil },
		func(in int) (bool, error) { return in >= 3, nil },
	})
	require.NoError(t, err)

	low, _ := splitter.Get()
	high, _ := splitter.Get()
	gotLow := addCollector(t, pipe, "low", low)
	gotHigh := addCollector(t, pipe, "high", high)

	require.NoError(t, pipe.Run())
	assert.Equal(t, []int{0, 1, 2}, *gotLow)
	assert.Equal(t, []int{3, 4, 5}, *gotHigh)
}

func TestPipelineStepError(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(context.Background())
	require.NoError(t, err)

	root := addCounter(t, pipe, 1000)
	step, err := pipeline.AddStepOneToOne(pipe, "fail at 5", root, func(_ context.Context, in int) (int, error) {
		if in == 5 {
			return 0, assert.AnError
		}

		return in, nil
	})
	require.NoError(t, err)

	addCollector(t, pipe, "collect", step)

	err = pipe.Run()
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "fail at 5")
}

func TestPipelineSinkError(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(context.Background())
	require.NoError(t, err)

	root := addCounter(t, pipe, 1000)
	err = pipeline.AddSink(pipe, "sink", root, func(_ context.Context, in int) error {
		if in == 3 {
			return assert.AnError
		}

		return nil
	})
	require.NoError(t, err)

	require.ErrorIs(t, pipe.Run(), assert.AnError)
}

func TestPipelineErrorStopsEndlessRoot(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(t.Context())
	require.NoError(t, err)

	root, err := pipeline.AddRootStep(pipe, "endless", func(ctx context.Context, rootChan chan<- int) error {
		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case rootChan <- i:
			}
		}
	})
	require.NoError(t, err)

	err = pipeline.AddSink(pipe, "write", root, func(_ context.Context, in int) error {
		if in == 3 {
			return assert.AnError
		}

		return nil
	})
	require.NoError(t, err)

	err = pipe.Run()
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "write")
}

func TestPipelineRootError(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(context.Background())
	require.NoError(t, err)

	root, err := pipeline.AddRootStep(pipe, "root", func(_ context.Context, rootChan chan<- int) error {
		rootChan <- 1

		return assert.AnError
	})
	require.NoError(t, err)

	addCollector(t, pipe, "collect", root)

	require.ErrorIs(t, pipe.Run(), assert.AnError)
}

func TestPipelineCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	pipe, err := pipeline.New(ctx)
	require.NoError(t, err)

	root := addCounter(t, pipe, 1_000_000)
	err = pipeline.AddSink(pipe, "sink", root, func(_ context.Context, in int) error {
		if in == 10 {
			cancel()
		}

		return nil
	})
	require.NoError(t, err)

	require.ErrorIs(t, pipe.Run(), context.Canceled)
}

func TestSinkFromChan(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(context.Background())
	require.NoError(t, err)

	root := addCounter(t, pipe, 4)
	sum := 0
	err = pipeline.AddSinkFromChan(pipe, "sum", root, func(_ context.Context, input <-chan int) error {
		for in := range input {
			sum += in
		}

		return nil
	})
	require.NoError(t, err)

	require.NoError(t, pipe.Run())
	assert.Equal(t, 6, sum)
}

func TestPipelineMeasureAndDrawer(t *testing.T) {
	t.Parallel()

	dotFile := filepath.Join(t.TempDir(), "pipeline.dot")
	msr := measure.NewDefaultMeasure()

	pipe, err := pipeline.New(context.Background(),
		measure.PipelineMeasure(msr),
		drawer.PipelineDrawer(drawer.NewDOTDrawer(dotFile), msr),
	)
	require.NoError(t, err)

	root := addCounter(t, pipe, 20)
	step, err := pipeline.AddStepOneToOne(pipe, "parse", root, identity)
	require.NoError(t, err)

	splitter, err := pipeline.AddSplitter(pipe, "split", step, 2)
	require.NoError(t, err)

	first, _ := splitter.Get()
	second, _ := splitter.Get()
	addCollector(t, pipe, "write", first)
	addCollector(t, pipe, "summary", second)

	require.NoError(t, pipe.Run())

	assert.ElementsMatch(t, []string{"start", "end", "counter", "parse", "split", "write", "summary"}, msr.Names())
	assert.Equal(t, int64(20), msr.GetMetric("parse").Count())
	assert.Equal(t, int64(20), msr.GetMetric("write").Count())
	assert.Positive(t, msr.GetMetric("write").GetTotalDuration())

	content, err := os.ReadFile(dotFile)
	require.NoError(t, err)

	dot := string(content)
	assert.True(t, strings.HasPrefix(dot, "strict digraph"))
	assert.Contains(t, dot, `"start" -> "counter"`)
	assert.Contains(t, dot, `"parse" -> "split"`)
	assert.Contains(t, dot, `"split" -> "write"`)
	assert.Contains(t, dot, `"summary" -> "end"`)
}
