package main

import (
	"image"
	"sync"
)

// Shared test doubles for the painting engine.

type gesture struct {
	kind string // "tap", "stroke", "rapid"
	pts  []Point
}

type fakeInput struct {
	gestures []gesture
}

func (f *fakeInput) Tap(p Point, extraMS int) {
	f.gestures = append(f.gestures, gesture{kind: "tap", pts: []Point{p}})
}

func (f *fakeInput) Stroke(points []Point) {
	f.gestures = append(f.gestures, gesture{kind: "stroke", pts: points})
}

func (f *fakeInput) RapidTaps(points []Point) {
	f.gestures = append(f.gestures, gesture{kind: "rapid", pts: points})
}

// clicksAt returns every clicked point in order, flattening runs.
func (f *fakeInput) clicksAt() []Point {
	var pts []Point
	for _, g := range f.gestures {
		pts = append(pts, g.pts...)
	}
	return pts
}

func (f *fakeInput) countClicksAt(p Point) int {
	n := 0
	for _, pt := range f.clicksAt() {
		if pt == p {
			n++
		}
	}
	return n
}

// fakeScreen implements Sampler and FrameGrabber from a single pixel
// function. The pass counter increments on each region capture so tests can
// script per-pass behavior (e.g. a cell that reads wrong on the first verify
// pass only).
type fakeScreen struct {
	passes int
	pixel  func(pass, x, y int) RGB
}

func (f *fakeScreen) SamplePixel(x, y int) (RGB, error) {
	return f.pixel(f.passes, x, y), nil
}

func (f *fakeScreen) CaptureRegion(r Rect) (*Frame, error) {
	f.passes++
	img := image.NewRGBA(image.Rect(0, 0, r.W, r.H))
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			c := f.pixel(f.passes, r.X+x, r.Y+y)
			off := y*img.Stride + x*4
			img.Pix[off] = c.R
			img.Pix[off+1] = c.G
			img.Pix[off+2] = c.B
			img.Pix[off+3] = 255
		}
	}
	return &Frame{rect: r, img: img}, nil
}

// solidScreen always reads the same color everywhere.
func solidScreen(c RGB) *fakeScreen {
	return &fakeScreen{pixel: func(_, _, _ int) RGB { return c }}
}

// recordObserver captures events; afterProgress runs inline from the worker,
// letting tests trigger pause/stop at a deterministic point.
type recordObserver struct {
	mu            sync.Mutex
	progress      []Point
	statuses      []string
	paused        []string
	stopped       []string
	errs          []string
	finished      int
	afterProgress func(n int)
}

func (o *recordObserver) Progress(x, y int) {
	o.mu.Lock()
	o.progress = append(o.progress, Point{X: x, Y: y})
	n := len(o.progress)
	o.mu.Unlock()
	if o.afterProgress != nil {
		o.afterProgress(n)
	}
}

func (o *recordObserver) Status(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, text)
}

func (o *recordObserver) Paused(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.paused = append(o.paused, reason)
}

func (o *recordObserver) Stopped(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopped = append(o.stopped, reason)
}

func (o *recordObserver) Finished() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished++
}

func (o *recordObserver) PaintError(msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errs = append(o.errs, msg)
}

func (o *recordObserver) uniqueProgress() map[Point]bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	seen := make(map[Point]bool)
	for _, p := range o.progress {
		seen[p] = true
	}
	return seen
}

// Shared fixture coordinates.
var (
	btnShadesPanel = Point{X: 400, Y: 10}
	btnBack        = Point{X: 400, Y: 40}
	btnPaintTool   = Point{X: 400, Y: 70}
	btnBucketTool  = Point{X: 400, Y: 100}

	red   = RGB{R: 255, G: 0, B: 0}
	green = RGB{R: 0, G: 255, B: 0}
	blue  = RGB{R: 0, G: 0, B: 255}
	white = RGB{R: 255, G: 255, B: 255}
	black = RGB{}
)

// testOptions returns zero-delay knobs so tests run without sleeping.
func testOptions() Options {
	return Options{
		VerifyTolerance: 16,
		MaxVerifyPasses: 3,
	}
}

// testConfig builds a palette with one red shade and one blue shade under
// separate main colors, plus all navigation buttons.
func testConfig() *Config {
	return &Config{
		CanvasPreset:      "30x30",
		ShadesPanelButton: &btnShadesPanel,
		BackButton:        &btnBack,
		PaintToolButton:   &btnPaintTool,
		BucketToolButton:  &btnBucketTool,
		MainColors: []MainColor{
			{
				Name: "Red", Pos: Point{X: 500, Y: 10}, RGB: red,
				Shades: []ShadeButton{{Name: "Red 1", Pos: Point{X: 510, Y: 30}, RGB: red}},
			},
			{
				Name: "Blue", Pos: Point{X: 500, Y: 60}, RGB: blue,
				Shades: []ShadeButton{{Name: "Blue 1", Pos: Point{X: 510, Y: 80}, RGB: blue}},
			},
		},
		Options: testOptions(),
	}
}

// gridOf builds a grid from row-major colors.
func gridOf(w, h int, colors ...RGB) *PixelGrid {
	return &PixelGrid{W: w, H: h, Pixels: colors}
}

var testCanvas = Rect{X: 0, Y: 0, W: 100, H: 100}

// matchedScreen reads back, for every canvas pixel, the palette color the
// grid cell containing it matched to — a screen on which every paint already
// succeeded.
func matchedScreen(cfg *Config, grid *PixelGrid, canvas Rect) *fakeScreen {
	matcher, err := NewMatcher(cfg)
	if err != nil {
		panic(err)
	}
	cellW := float64(canvas.W) / float64(grid.W)
	cellH := float64(canvas.H) / float64(grid.H)
	return &fakeScreen{pixel: func(_, x, y int) RGB {
		gx := int(float64(x-canvas.X) / cellW)
		gy := int(float64(y-canvas.Y) / cellH)
		if gx < 0 || gy < 0 || gx >= grid.W || gy >= grid.H {
			return white
		}
		return matcher.Match(grid.At(gx, gy)).Shade.RGB
	}}
}

func newTestSession(cfg *Config, grid *PixelGrid, canvas Rect, mode Mode, screen *fakeScreen, obs Observer) (*Session, *fakeInput, error) {
	in := &fakeInput{}
	s, err := NewSession(cfg, grid, canvas, mode, in, screen, screen, obs)
	return s, in, err
}
