package main

import (
	"fmt"
	"image"
	"strconv"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"
)

// RGB holds an 8-bit color value.
type RGB struct {
	R, G, B uint8
}

func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Dist2 returns the squared Euclidean distance between two colors.
func Dist2(a, b RGB) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// WithinTolerance reports whether two colors sit within the given squared
// distance of each other.
func WithinTolerance(a, b RGB, tolerance int) bool {
	return Dist2(a, b) <= tolerance
}

// Sampler reads back single screen pixels at absolute coordinates.
type Sampler interface {
	SamplePixel(x, y int) (RGB, error)
}

// captureSampler grabs a 1x1 rectangle via kbinani/screenshot.
type captureSampler struct{}

func (captureSampler) SamplePixel(x, y int) (RGB, error) {
	img, err := screenshot.CaptureRect(image.Rect(x, y, x+1, y+1))
	if err != nil {
		return RGB{}, fmt.Errorf("sampling pixel at (%d,%d): %w", x, y, err)
	}
	return RGB{R: img.Pix[0], G: img.Pix[1], B: img.Pix[2]}, nil
}

// robotgoSampler reads pixels through robotgo's hex-string API.
type robotgoSampler struct{}

func (robotgoSampler) SamplePixel(x, y int) (RGB, error) {
	hex := robotgo.GetPixelColor(x, y)
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("sampling pixel at (%d,%d): unexpected color %q", x, y, hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("sampling pixel at (%d,%d): parsing %q: %w", x, y, hex, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// NewSampler tries screenshot-based sampling first and falls back to robotgo.
// Returns the sampler and the name of the method in use.
func NewSampler() (Sampler, string) {
	if screenshot.NumActiveDisplays() > 0 {
		bounds := screenshot.GetDisplayBounds(0)
		if _, err := (captureSampler{}).SamplePixel(bounds.Min.X, bounds.Min.Y); err == nil {
			return captureSampler{}, "screenshot"
		}
	}
	return robotgoSampler{}, "robotgo"
}
