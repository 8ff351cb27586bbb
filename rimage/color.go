package rimage

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// ParseColor parses a "#rrggbb" or "#rgb" color.
func ParseColor(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid color %q", hex)
	}
	return c.Clamped(), nil
}

// Complement returns the color on the opposite side of the hue circle, keeping saturation and
// value. It is used to draw markers that stand out from the model color.
func Complement(c color.Color) color.Color {
	cc, ok := colorful.MakeColor(c)
	if !ok {
		return color.White
	}
	h, s, v := cc.Hsv()
	if h += 180; h >= 360 {
		h -= 360
	}
	return colorful.Hsv(h, s, v).Clamped()
}
