package list

import (
	"fmt"
	"math"

	"github.com/dstrobel/einkauf/internal/model"
)

// palette covers the usual handful of supermarkets a household shops at.
// Distinct store names beyond it get procedurally spaced hues.
var palette = []string{
	"#2563EB", // blue
	"#D97706", // amber
	"#059669", // emerald
	"#DC2626", // red
	"#7C3AED", // violet
	"#DB2777", // pink
	"#0D9488", // teal
	"#65A30D", // lime
}

const (
	goldenAngle   = 137.508
	overflowSat   = 0.70
	overflowLight = 0.45
)

// StoreColors assigns a display color to every distinct, non-blank
// supermarket name in the slice, in order of first appearance. The first
// len(palette) names take the fixed palette; overflow index i gets the hue
// round(i*137.508) mod 360 at fixed saturation/lightness, so arbitrarily many
// stores stay visually distinct. The assignment is recomputed per load and
// not stable across changing store sets.
func StoreColors(items []model.Item) map[string]string {
	colors := make(map[string]string)
	i := 0
	for _, it := range items {
		name := supermarketOf(it)
		if name == "" {
			continue
		}
		if _, ok := colors[name]; ok {
			continue
		}
		colors[name] = colorAt(i)
		i++
	}
	return colors
}

func colorAt(i int) string {
	if i < len(palette) {
		return palette[i]
	}
	hue := math.Mod(math.Round(float64(i)*goldenAngle), 360)
	return hslToHex(hue, overflowSat, overflowLight)
}

// hslToHex converts an HSL triple (h in degrees, s and l in [0,1]) to a
// #RRGGBB string.
func hslToHex(h, s, l float64) string {
	c := (1 - math.Abs(2*l-1)) * s
	hp := h / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))

	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	m := l - c/2
	toByte := func(v float64) int {
		return int(math.Round((v + m) * 255))
	}
	return fmt.Sprintf("#%02X%02X%02X", toByte(r), toByte(g), toByte(b))
}
