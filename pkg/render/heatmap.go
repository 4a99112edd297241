// Package render draws contact maps as PNG heatmaps.
package render

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/nmendiboure/hicstuff/pkg/matrix"
)

const (
	DefaultSaturation = 99
	DefaultColormap   = "Reds"

	colorbarGap = 2
)

var ErrEmptyImage = errors.New("cannot draw an empty matrix")

// Options tunes the heatmap. A nil VMax saturates at the Saturation percentile of the matrix.
type Options struct {
	VMin       float64
	VMax       *float64
	Saturation float64
	Colormap   string
	// Scale is the side in pixels of one matrix cell.
	Scale    int
	Colorbar bool
}

func (o Options) withDefaults() Options {
	if o.Saturation <= 0 {
		o.Saturation = DefaultSaturation
	}

	if o.Colormap == "" {
		o.Colormap = DefaultColormap
	}

	if o.Scale < 1 {
		o.Scale = 1
	}

	return o
}

// Heatmap draws d with one square of opts.Scale pixels per cell.
func Heatmap(d *matrix.Dense, opts Options) (image.Image, error) {
	if d == nil || d.N == 0 {
		return nil, ErrEmptyImage
	}

	opts = opts.withDefaults()

	cmap, err := NewColormap(opts.Colormap)
	if err != nil {
		return nil, err
	}

	vmax := matrix.Percentile(d.Data, opts.Saturation)
	if opts.VMax != nil {
		vmax = *opts.VMax
	}

	side := d.N * opts.Scale
	width := side

	var barWidth int
	if opts.Colorbar {
		barWidth = max(side/20, 1)
		width += colorbarGap + barWidth
	}

	img := image.NewRGBA(image.Rect(0, 0, width, side))

	for i := range d.N {
		for j := range d.N {
			c := cmap.At(scale(d.At(i, j), opts.VMin, vmax))
			fill(img, j*opts.Scale, i*opts.Scale, opts.Scale, opts.Scale, c)
		}
	}

	if opts.Colorbar {
		fill(img, side, 0, colorbarGap, side, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})

		for y := range side {
			t := 1 - float64(y)/float64(max(side-1, 1))
			fill(img, side+colorbarGap, y, barWidth, 1, cmap.At(t))
		}
	}

	return img, nil
}

func scale(v, vmin, vmax float64) float64 {
	if vmax <= vmin {
		if v > vmin {
			return 1
		}

		return 0
	}

	return (v - vmin) / (vmax - vmin)
}

func fill(img *image.RGBA, x, y, w, h int, c color.RGBA) {
	for dy := range h {
		for dx := range w {
			img.SetRGBA(x+dx, y+dy, c)
		}
	}
}

// WritePNG encodes img to w.
func WritePNG(w io.Writer, img image.Image) error {
	return errors.Wrap(png.Encode(w, img), "unable to encode png")
}

// SavePNG draws d and writes it to path. An empty path writes to a new temporary file.
// It returns the path written.
func SavePNG(path string, d *matrix.Dense, opts Options) (string, error) {
	img, err := Heatmap(d, opts)
	if err != nil {
		return "", err
	}

	var file *os.File
	if path == "" {
		file, err = os.CreateTemp("", "hicstuff-*.png")
	} else {
		file, err = os.Create(path)
	}

	if err != nil {
		return "", errors.Wrap(err, "unable to create image file")
	}

	if err := WritePNG(file, img); err != nil {
		file.Close()

		return "", err
	}

	if err := file.Close(); err != nil {
		return "", errors.Wrap(err, "unable to close image file")
	}

	return file.Name(), nil
}
