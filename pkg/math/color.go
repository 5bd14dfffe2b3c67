package math

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidColor is returned for strings that are not #RRGGBB or #AARRGGBB.
var ErrInvalidColor = errors.New("invalid color")

// Color is an RGBA color with normalized channels in [0, 1].
type Color struct {
	R, G, B, A float32
}

// White is opaque white, the default tint.
var White = Color{1, 1, 1, 1}

// ParseColor parses "#RRGGBB" or "#AARRGGBB". The leading '#' is optional
// since older Tiled versions omit it. RRGGBB yields alpha 1.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	a := uint8(0xff)
	if len(hex) == 8 {
		a = uint8(v >> 24)
	}
	return Color{
		R: float32(uint8(v>>16)) / 255,
		G: float32(uint8(v>>8)) / 255,
		B: float32(uint8(v)) / 255,
		A: float32(a) / 255,
	}, nil
}

// RGBA8 returns the channels quantized to bytes.
func (c Color) RGBA8() (r, g, b, a uint8) {
	return quantize(c.R), quantize(c.G), quantize(c.B), quantize(c.A)
}

// Hex returns the color as "#AARRGGBB".
func (c Color) Hex() string {
	r, g, b, a := c.RGBA8()
	return fmt.Sprintf("#%02x%02x%02x%02x", a, r, g, b)
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return c.Hex()
}

func quantize(f float32) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return 255
	default:
		return uint8(f*255 + 0.5)
	}
}
