package measure_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmendiboure/hicstuff/pkg/pipeline/measure"
	"github.com/nmendiboure/hicstuff/pkg/pipeline/model"
)

func TestAddMetricKeepsFirst(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()

	first := msr.AddMetric("parse", 2)
	first.AddDuration(time.Millisecond)

	again := msr.AddMetric("parse", 8)
	assert.Same(t, first, again)
	assert.Equal(t, int64(1), msr.GetMetric("parse").Count())
	assert.Nil(t, msr.GetMetric("write"))

	msr.AddMetric("classify", 1)
	assert.Equal(t, []string{"classify", "parse"}, msr.Names())
	assert.Len(t, msr.AllMetrics(), 2)
}

func TestMetricAverages(t *testing.T) {
	t.Parallel()

	mt := measure.NewDefaultMeasure().AddMetric("truncate", 2)
	assert.Zero(t, mt.AVGDuration())

	var wg sync.WaitGroup

	for _, d := range []time.Duration{2 * time.Millisecond, 4 * time.Millisecond} {
		wg.Add(1)

		go func() {
			defer wg.Done()

			mt.AddDuration(d)
			mt.AddTransportDuration("read", 2*d)
		}()
	}

	wg.Wait()

	assert.Equal(t, int64(2), mt.Count())
	assert.Equal(t, 3*time.Millisecond, mt.AVGDuration())

	avg := mt.AVGTransportDuration()
	require.Contains(t, avg, "read")
	// averaged over inputs, then over the two concurrent consumers
	assert.Equal(t, 3*time.Millisecond, avg["read"].Elapsed)

	avg["read"].Elapsed = 0
	assert.Equal(t, 12*time.Millisecond, mt.AllTransports()["read"].Elapsed)

	mt.SetTotalDuration(time.Second)
	assert.Equal(t, time.Second, mt.GetTotalDuration())
}

func TestPipelineMeasure(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()
	opt := measure.PipelineMeasure(msr)

	read := &model.StepInfo{Name: "read", Concurrent: 1}
	write := &model.StepInfo{Name: "write", Concurrent: 1}

	require.NoError(t, opt.New())
	require.NoError(t, opt.PrepareStep(model.StartStep.Details, read))
	require.NoError(t, opt.PrepareSink(read, write))

	require.NoError(t, opt.OnSinkOutput(read, write, time.Millisecond, 2*time.Millisecond))
	require.NoError(t, opt.AfterSink(write, 5*time.Millisecond))
	// unknown steps are ignored
	require.NoError(t, opt.OnStepOutput(read, &model.StepInfo{Name: "ghost"}, 0, 0))
	require.NoError(t, opt.Finish())

	assert.Equal(t, []string{"end", "read", "start", "write"}, msr.Names())
	assert.Equal(t, int64(1), msr.GetMetric("write").Count())
	assert.Equal(t, 5*time.Millisecond, msr.GetMetric("write").GetTotalDuration())
}
