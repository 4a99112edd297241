package render_test

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmendiboure/hicstuff/pkg/matrix"
	"github.com/nmendiboure/hicstuff/pkg/render"
)

func diagonal(t *testing.T, n int) *matrix.Dense {
	t.Helper()

	m := &matrix.Sparse{}
	for i := range n {
		m.Add(i, i, float64(i+1))
	}

	d, err := m.Dense(false)
	require.NoError(t, err)

	return d
}

func TestColormap(t *testing.T) {
	t.Parallel()

	reds, err := render.NewColormap("reds")
	require.NoError(t, err)
	assert.Equal(t, "Reds", reds.Name)

	assert.Equal(t, color.RGBA{R: 0xff, G: 0xf5, B: 0xf0, A: 0xff}, reds.At(0))
	assert.Equal(t, color.RGBA{R: 0x67, G: 0x00, B: 0x0d, A: 0xff}, reds.At(1))
	assert.Equal(t, reds.At(0), reds.At(-3))
	assert.Equal(t, reds.At(1), reds.At(42))
	// halfway lands on the fifth stop
	assert.Equal(t, color.RGBA{R: 0xfb, G: 0x6a, B: 0x4a, A: 0xff}, reds.At(0.5))

	_, err = render.NewColormap("viridis")
	assert.True(t, errors.Is(err, render.ErrUnknownColormap))
	assert.Contains(t, render.Colormaps(), "Reds")
}

func TestHeatmap(t *testing.T) {
	t.Parallel()

	vmax := 4.0

	img, err := render.Heatmap(diagonal(t, 4), render.Options{VMax: &vmax, Scale: 3})
	require.NoError(t, err)

	assert.Equal(t, 12, img.Bounds().Dx())
	assert.Equal(t, 12, img.Bounds().Dy())

	reds, err := render.NewColormap(render.DefaultColormap)
	require.NoError(t, err)

	assert.Equal(t, reds.At(0), img.At(4, 0))
	assert.Equal(t, reds.At(1), img.At(11, 11))
	assert.Equal(t, reds.At(0.5), img.At(4, 4))
}

func TestHeatmapColorbar(t *testing.T) {
	t.Parallel()

	img, err := render.Heatmap(diagonal(t, 40), render.Options{Colorbar: true})
	require.NoError(t, err)

	assert.Equal(t, 40+2+2, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())
}

func TestHeatmapErrors(t *testing.T) {
	t.Parallel()

	_, err := render.Heatmap(&matrix.Dense{}, render.Options{})
	assert.True(t, errors.Is(err, render.ErrEmptyImage))

	_, err = render.Heatmap(diagonal(t, 2), render.Options{Colormap: "jet"})
	assert.True(t, errors.Is(err, render.ErrUnknownColormap))
}

func TestSavePNG(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "map.png")

	written, err := render.SavePNG(path, diagonal(t, 5), render.Options{Scale: 2})
	require.NoError(t, err)
	assert.Equal(t, path, written)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())
}

func TestSavePNGTemp(t *testing.T) {
	t.Parallel()

	written, err := render.SavePNG("", diagonal(t, 3), render.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(written) })

	assert.FileExists(t, written)
	assert.Equal(t, ".png", filepath.Ext(written))
}
