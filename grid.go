package main

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"os"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP format
)

// PixelGrid is a row-major W×H array of target colors, resized down from the
// source image. Immutable once built.
type PixelGrid struct {
	W, H   int
	Pixels []RGB
}

// At returns the color of grid cell (x, y).
func (g *PixelGrid) At(x, y int) RGB {
	return g.Pixels[y*g.W+x]
}

// Hash returns a hex digest over dimensions and pixel data. Used as part of
// the session signature to detect a changed image between pause and resume.
func (g *PixelGrid) Hash() string {
	h := sha256.New()
	var dims [8]byte
	binary.LittleEndian.PutUint32(dims[0:4], uint32(g.W))
	binary.LittleEndian.PutUint32(dims[4:8], uint32(g.H))
	h.Write(dims[:])
	for _, p := range g.Pixels {
		h.Write([]byte{p.R, p.G, p.B})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// LoadGrid decodes the image at path and resizes it to a w×h grid.
// Supported formats: JPEG, PNG, GIF, WebP.
func LoadGrid(path string, w, h int) (*PixelGrid, error) {
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image (format: %s): %w", format, err)
	}
	return GridFromImage(img, w, h), nil
}

// GridFromImage composites the image over white (transparent areas become
// white, matching the blank canvas) and scales it to the grid size.
func GridFromImage(img image.Image, w, h int) *PixelGrid {
	flat := image.NewRGBA(img.Bounds())
	draw.Draw(flat, flat.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, img.Bounds().Min, draw.Over)

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), flat, flat.Bounds(), xdraw.Src, nil)

	pixels := make([]RGB, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := y*scaled.Stride + x*4
			pixels[y*w+x] = RGB{
				R: scaled.Pix[off],
				G: scaled.Pix[off+1],
				B: scaled.Pix[off+2],
			}
		}
	}
	return &PixelGrid{W: w, H: h, Pixels: pixels}
}
