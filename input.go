package main

import (
	"github.com/go-vgo/robotgo"
)

// Input issues simulated mouse gestures. Implementations must block until the
// gesture and its trailing settle delay have elapsed; correctness of the
// painting loop depends on strict ordering of clicks and later readbacks.
type Input interface {
	// Tap moves to p, presses and releases the left button, then waits the
	// post-click delay plus extraMS.
	Tap(p Point, extraMS int)
	// Stroke presses at the first point, drags through the rest, releases.
	Stroke(points []Point)
	// RapidTaps clicks each point in sequence with a short fixed gap.
	// Fallback for game engines that do not register drag painting.
	RapidTaps(points []Point)
}

// robotgoInput drives the real mouse. Move + explicit press/release is more
// reliable for some games than a plain click.
type robotgoInput struct {
	opts Options
}

// NewInput returns an Input backed by robotgo.
func NewInput(opts Options) Input {
	robotgo.MouseSleep = 0
	return &robotgoInput{opts: opts}
}

func (in *robotgoInput) press(p Point, holdMS int) {
	robotgo.Move(p.X, p.Y)
	robotgo.MilliSleep(in.opts.MoveMS)
	robotgo.Toggle("left")
	robotgo.MilliSleep(holdMS)
	robotgo.Toggle("left", "up")
}

func (in *robotgoInput) Tap(p Point, extraMS int) {
	in.press(p, in.opts.HoldMS)
	robotgo.MilliSleep(in.opts.AfterClickMS + extraMS)
}

func (in *robotgoInput) Stroke(points []Point) {
	if len(points) == 0 {
		return
	}
	first := points[0]
	robotgo.Move(first.X, first.Y)
	robotgo.MilliSleep(in.opts.MoveMS)
	robotgo.Toggle("left")
	robotgo.MilliSleep(in.opts.HoldMS)
	for _, p := range points[1:] {
		robotgo.Move(p.X, p.Y)
		robotgo.MilliSleep(in.opts.StrokeStepMS)
	}
	robotgo.Toggle("left", "up")
	robotgo.MilliSleep(in.opts.AfterClickMS)
}

func (in *robotgoInput) RapidTaps(points []Point) {
	for _, p := range points {
		robotgo.Move(p.X, p.Y)
		robotgo.Toggle("left")
		robotgo.MilliSleep(in.opts.HoldMS)
		robotgo.Toggle("left", "up")
		robotgo.MilliSleep(in.opts.RapidClickMS)
	}
	robotgo.MilliSleep(in.opts.AfterClickMS)
}

// MouseLocation returns the current pointer position. Used by the setup
// wizard's hover-and-confirm capture.
func MouseLocation() Point {
	x, y := robotgo.Location()
	return Point{X: x, Y: y}
}
