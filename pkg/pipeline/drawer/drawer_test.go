package drawer_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmendiboure/hicstuff/pkg/pipeline/drawer"
	"github.com/nmendiboure/hicstuff/pkg/pipeline/measure"
	"github.com/nmendiboure/hicstuff/pkg/pipeline/model"
)

func TestDOTDrawer(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "pipeline.dot")
	d := drawer.NewDOTDrawer(file)

	require.NoError(t, d.AddStep("read"))
	require.NoError(t, d.AddStep("write"))
	require.NoError(t, d.AddLink("read", "write"))
	require.NoError(t, d.AddLink("read", "write"))
	assert.Error(t, d.AddStep("read"))

	msr := measure.NewDefaultMeasure()
	mt := msr.AddMetric("write", 1)
	mt.AddDuration(2 * time.Millisecond)
	mt.AddTransportDuration("read", time.Millisecond)
	msr.AddMetric("read", 1)

	require.NoError(t, d.AddMeasure(msr))
	require.NoError(t, d.SetTotalTime("write", time.Now()))
	require.NoError(t, d.Draw())

	content, err := os.ReadFile(file)
	require.NoError(t, err)

	dot := string(content)
	assert.True(t, strings.HasPrefix(dot, "strict digraph {"))
	assert.Contains(t, dot, `"read" -> "write"`)
	assert.Contains(t, dot, `label="1ms"`)
	assert.Contains(t, dot, "2ms x1")

	assert.Error(t, d.SetTotalTime("sort", time.Now()))
}

func TestRender(t *testing.T) {
	t.Parallel()

	g := graph.New(graph.StringHash, graph.Directed())
	require.NoError(t, g.AddVertex("b"))
	require.NoError(t, g.AddVertex("a"))
	require.NoError(t, g.AddEdge("a", "b"))

	var out bytes.Buffer

	require.NoError(t, drawer.Render(g, &out, drawer.GraphAttribute("rankdir", "LR")))

	dot := out.String()
	assert.Contains(t, dot, `rankdir="LR"`)
	assert.Less(t, strings.Index(dot, `"a"`), strings.Index(dot, `"b"`))
}

func TestPipelineDrawer(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "pipeline.dot")
	opt := drawer.PipelineDrawer(drawer.NewDOTDrawer(file), nil)

	read := &model.StepInfo{Name: "read"}
	split := &model.StepInfo{Name: "split"}
	write := &model.StepInfo{Name: "write"}

	require.NoError(t, opt.New())
	require.NoError(t, opt.PrepareStep(model.StartStep.Details, read))
	require.NoError(t, opt.PrepareSplitter(read, split))
	require.NoError(t, opt.PrepareSink(split, write))
	require.NoError(t, opt.Finish())

	content, err := os.ReadFile(file)
	require.NoError(t, err)

	for _, edge := range []string{`"start" -> "read"`, `"read" -> "split"`, `"split" -> "write"`, `"write" -> "end"`} {
		assert.Contains(t, string(content), edge)
	}
}
