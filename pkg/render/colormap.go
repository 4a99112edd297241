package render

import (
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"
	colors "gopkg.in/go-playground/colors.v1"
)

// ErrUnknownColormap is returned for a colormap name missing from the registry.
var ErrUnknownColormap = errors.New("unknown colormap")

// ColorBrewer sequential ramps, 9 classes.
var ramps = map[string][]string{
	"Reds":   {"#fff5f0", "#fee0d2", "#fcbba1", "#fc9272", "#fb6a4a", "#ef3b2c", "#cb181d", "#a50f15", "#67000d"},
	"Blues":  {"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b"},
	"Greys":  {"#ffffff", "#f0f0f0", "#d9d9d9", "#bdbdbd", "#969696", "#737373", "#525252", "#252525", "#000000"},
	"YlOrRd": {"#ffffcc", "#ffeda0", "#fed976", "#feb24c", "#fd8d3c", "#fc4e2a", "#e31a1c", "#bd0026", "#800026"},
}

// Colormap maps values in [0, 1] onto a piecewise linear ramp.
type Colormap struct {
	Name  string
	stops []color.RGBA
}

// Colormaps lists the available colormap names.
func Colormaps() []string {
	names := make([]string, 0, len(ramps))
	for name := range ramps {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// NewColormap builds a registered colormap. Names are matched case-insensitively.
func NewColormap(name string) (*Colormap, error) {
	for key, hexes := range ramps {
		if !strings.EqualFold(key, name) {
			continue
		}

		stops := make([]color.RGBA, len(hexes))

		for i, h := range hexes {
			hex, err := colors.ParseHEX(h)
			if err != nil {
				return nil, errors.Wrapf(err, "colormap %s", key)
			}

			rgb := hex.ToRGB()
			stops[i] = color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 0xff}
		}

		return &Colormap{Name: key, stops: stops}, nil
	}

	return nil, errors.Wrapf(ErrUnknownColormap, "%q, expected one of %s", name, strings.Join(Colormaps(), ", "))
}

// At returns the colour for t, clamped to [0, 1]. NaN maps to the lowest colour.
func (c *Colormap) At(t float64) color.RGBA {
	if math.IsNaN(t) || t <= 0 {
		return c.stops[0]
	}

	if t >= 1 {
		return c.stops[len(c.stops)-1]
	}

	pos := t * float64(len(c.stops)-1)
	lo := int(pos)
	frac := pos - float64(lo)
	a, b := c.stops[lo], c.stops[lo+1]

	return color.RGBA{
		R: lerp(a.R, b.R, frac),
		G: lerp(a.G, b.G, frac),
		B: lerp(a.B, b.B, frac),
		A: 0xff,
	}
}

func lerp(a, b uint8, frac float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*frac))
}
