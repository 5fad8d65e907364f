package main

import (
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"

	"github.com/kbinani/screenshot"
)

// Frame is a captured screen region. Pixels are addressed by absolute screen
// coordinates so callers can reuse the same cell-center math they use for
// single-pixel sampling.
type Frame struct {
	rect Rect
	img  *image.RGBA
}

// At returns the pixel at absolute screen coordinates (x, y). Coordinates
// outside the captured region return black.
func (f *Frame) At(x, y int) RGB {
	ix := x - f.rect.X
	iy := y - f.rect.Y
	if ix < 0 || iy < 0 || ix >= f.rect.W || iy >= f.rect.H {
		return RGB{}
	}
	off := iy*f.img.Stride + ix*4
	return RGB{R: f.img.Pix[off], G: f.img.Pix[off+1], B: f.img.Pix[off+2]}
}

// FrameGrabber captures a whole screen region in one call. Verification
// passes grab the canvas once per pass instead of issuing hundreds of
// single-pixel reads.
type FrameGrabber interface {
	CaptureRegion(r Rect) (*Frame, error)
}

// screenshotGrabber captures regions via kbinani/screenshot.
type screenshotGrabber struct{}

func (screenshotGrabber) CaptureRegion(r Rect) (*Frame, error) {
	img, err := screenshot.CaptureRect(image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H))
	if err != nil {
		return nil, fmt.Errorf("capturing region %v: %w", r, err)
	}
	return &Frame{rect: r, img: img}, nil
}

// ffmpegGrabber shells out to ffmpeg for a single x11grab frame per capture.
type ffmpegGrabber struct {
	display string
}

func newFFmpegGrabber() (FrameGrabber, error) {
	if !hasExecutable("ffmpeg") {
		return nil, fmt.Errorf("ffmpeg not found")
	}
	display := os.Getenv("DISPLAY")
	if display == "" {
		return nil, fmt.Errorf("DISPLAY not set")
	}
	return ffmpegGrabber{display: display}, nil
}

func (g ffmpegGrabber) CaptureRegion(r Rect) (*Frame, error) {
	cmd := exec.Command("ffmpeg",
		"-nostdin",
		"-loglevel", "error",
		"-f", "x11grab",
		"-video_size", fmt.Sprintf("%dx%d", r.W, r.H),
		"-i", fmt.Sprintf("%s.0+%d,%d", g.display, r.X, r.Y),
		"-frames:v", "1",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting ffmpeg: %w", err)
	}

	buf := make([]byte, r.W*r.H*3)
	_, readErr := io.ReadFull(stdout, buf)
	waitErr := cmd.Wait()
	if readErr != nil {
		return nil, fmt.Errorf("reading ffmpeg frame: %w", readErr)
	}
	if waitErr != nil {
		return nil, fmt.Errorf("ffmpeg: %w", waitErr)
	}

	img := image.NewRGBA(image.Rect(0, 0, r.W, r.H))
	for i := 0; i < r.W*r.H; i++ {
		img.Pix[i*4] = buf[i*3]
		img.Pix[i*4+1] = buf[i*3+1]
		img.Pix[i*4+2] = buf[i*3+2]
		img.Pix[i*4+3] = 255
	}
	return &Frame{rect: r, img: img}, nil
}

// pixelGrabber assembles a frame from single-pixel reads. Slow last resort.
type pixelGrabber struct {
	sampler Sampler
}

func (g pixelGrabber) CaptureRegion(r Rect) (*Frame, error) {
	img := image.NewRGBA(image.Rect(0, 0, r.W, r.H))
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			c, err := g.sampler.SamplePixel(r.X+x, r.Y+y)
			if err != nil {
				return nil, err
			}
			off := y*img.Stride + x*4
			img.Pix[off] = c.R
			img.Pix[off+1] = c.G
			img.Pix[off+2] = c.B
			img.Pix[off+3] = 255
		}
	}
	return &Frame{rect: r, img: img}, nil
}

// NewFrameGrabber tries screenshot → ffmpeg → per-pixel and returns the first
// that works, along with the name of the method in use.
func NewFrameGrabber(sampler Sampler) (FrameGrabber, string) {
	if screenshot.NumActiveDisplays() > 0 {
		b := screenshot.GetDisplayBounds(0)
		probe := Rect{X: b.Min.X, Y: b.Min.Y, W: 1, H: 1}
		if _, err := (screenshotGrabber{}).CaptureRegion(probe); err == nil {
			return screenshotGrabber{}, "screenshot"
		}
	}
	if g, err := newFFmpegGrabber(); err == nil {
		return g, "ffmpeg"
	}
	return pixelGrabber{sampler: sampler}, "per-pixel"
}

// hasExecutable reports whether the named program is on PATH.
func hasExecutable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
