package main

import (
	"errors"
	"reflect"
	"testing"
)

func TestSplitRuns(t *testing.T) {
	cells := []Point{
		{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0},
		{X: 5, Y: 0},
		{X: 0, Y: 1}, {X: 1, Y: 1},
	}
	runs := splitRuns(cells)
	want := [][]Point{
		{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}},
		{{X: 5, Y: 0}},
		{{X: 0, Y: 1}, {X: 1, Y: 1}},
	}
	if !reflect.DeepEqual(runs, want) {
		t.Fatalf("splitRuns = %v, want %v", runs, want)
	}

	if got := splitRuns(nil); got != nil {
		t.Fatalf("splitRuns(nil) = %v, want nil", got)
	}
}

// The 2x2 all-red scenario: one main select, one panel open, one shade
// selection (two redundant clicks), four cell clicks, and a clean verify
// with zero repaints.
func TestRowOrder_UniformGrid(t *testing.T) {
	cfg := testConfig()
	grid := gridOf(2, 2, red, red, red, red)
	screen := matchedScreen(cfg, grid, testCanvas)
	obs := &recordObserver{}

	s, in, err := newTestSession(cfg, grid, testCanvas, ModeRow, screen, obs)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	s.run()

	if obs.finished != 1 {
		t.Fatalf("expected finished, got %+v", obs)
	}

	want := []gesture{
		{kind: "tap", pts: []Point{{X: 500, Y: 10}}},  // main color Red
		{kind: "tap", pts: []Point{btnShadesPanel}},   // open shades panel
		{kind: "tap", pts: []Point{{X: 510, Y: 30}}},  // shade (click 1)
		{kind: "tap", pts: []Point{{X: 510, Y: 30}}},  // shade (click 2)
		{kind: "rapid", pts: []Point{{X: 25, Y: 25}, {X: 75, Y: 25}}}, // row 0
		{kind: "rapid", pts: []Point{{X: 25, Y: 75}, {X: 75, Y: 75}}}, // row 1
		{kind: "tap", pts: []Point{btnBack}}, // leave UI predictable
	}
	if !reflect.DeepEqual(in.gestures, want) {
		t.Fatalf("gestures =\n%v\nwant\n%v", in.gestures, want)
	}

	if got := len(obs.uniqueProgress()); got != 4 {
		t.Fatalf("expected 4 unique progress coords, got %d", got)
	}
}

func TestRowOrder_DragStrokes(t *testing.T) {
	cfg := testConfig()
	cfg.Options.UseDragStrokes = true
	grid := gridOf(2, 2, red, red, red, red)
	screen := matchedScreen(cfg, grid, testCanvas)

	s, in, err := newTestSession(cfg, grid, testCanvas, ModeRow, screen, &recordObserver{})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	s.run()

	strokes := 0
	for _, g := range in.gestures {
		if g.kind == "stroke" {
			strokes++
		}
		if g.kind == "rapid" {
			t.Fatalf("rapid taps issued with drag strokes enabled: %v", g)
		}
	}
	if strokes != 2 {
		t.Fatalf("expected 2 strokes (one per row), got %d", strokes)
	}
}

// Changing main color mid-row must go back to the main palette first, even
// though the first selection never tapped back.
func TestSelection_MainColorChange(t *testing.T) {
	cfg := testConfig()
	grid := gridOf(2, 1, red, blue)
	screen := matchedScreen(cfg, grid, testCanvas)

	s, in, err := newTestSession(cfg, grid, testCanvas, ModeRow, screen, &recordObserver{})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	s.run()

	want := []gesture{
		{kind: "tap", pts: []Point{{X: 500, Y: 10}}}, // main Red
		{kind: "tap", pts: []Point{btnShadesPanel}},
		{kind: "tap", pts: []Point{{X: 510, Y: 30}}},
		{kind: "tap", pts: []Point{{X: 510, Y: 30}}},
		{kind: "tap", pts: []Point{{X: 25, Y: 50}}},  // cell (0,0)
		{kind: "tap", pts: []Point{btnBack}},         // unconditional on main change
		{kind: "tap", pts: []Point{{X: 500, Y: 60}}}, // main Blue
		{kind: "tap", pts: []Point{btnShadesPanel}},
		{kind: "tap", pts: []Point{{X: 510, Y: 80}}},
		{kind: "tap", pts: []Point{{X: 510, Y: 80}}},
		{kind: "tap", pts: []Point{{X: 75, Y: 50}}}, // cell (1,0)
		{kind: "tap", pts: []Point{btnBack}},
	}
	if !reflect.DeepEqual(in.gestures, want) {
		t.Fatalf("gestures =\n%v\nwant\n%v", in.gestures, want)
	}
}

func TestPaint_EmptyPaletteFailsBeforeAnyTap(t *testing.T) {
	cfg := testConfig()
	cfg.MainColors = nil
	grid := gridOf(2, 2, red, red, red, red)

	_, in, err := newTestSession(cfg, grid, testCanvas, ModeRow, solidScreen(white), &recordObserver{})
	if !errors.Is(err, ErrConfigIncomplete) {
		t.Fatalf("expected ErrConfigIncomplete, got %v", err)
	}
	if len(in.gestures) != 0 {
		t.Fatalf("input simulated before precondition check: %v", in.gestures)
	}
}

func TestPaint_MissingButtonsFailsBeforeAnyTap(t *testing.T) {
	cfg := testConfig()
	cfg.BackButton = nil
	grid := gridOf(1, 1, red)

	_, in, err := newTestSession(cfg, grid, testCanvas, ModeRow, solidScreen(white), &recordObserver{})
	if !errors.Is(err, ErrConfigIncomplete) {
		t.Fatalf("expected ErrConfigIncomplete, got %v", err)
	}
	if len(in.gestures) != 0 {
		t.Fatalf("input simulated before precondition check: %v", in.gestures)
	}
}

func TestPaint_BucketFillRequiresToolButtons(t *testing.T) {
	cfg := testConfig()
	cfg.Options.BucketFill = true
	cfg.BucketToolButton = nil
	grid := gridOf(1, 1, red)

	_, _, err := newTestSession(cfg, grid, testCanvas, ModeRow, solidScreen(white), &recordObserver{})
	if !errors.Is(err, ErrToolButtonsMissing) {
		t.Fatalf("expected ErrToolButtonsMissing, got %v", err)
	}
}
