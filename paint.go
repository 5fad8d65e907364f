package main

import (
	"fmt"
)

// selectionClickRedundancy is how many times each shade button is clicked.
// The first click can be lost to the game's hover-highlight animation, so
// every selection is clicked twice.
const selectionClickRedundancy = 2

// In-game tool states. toolUnknown forces the first switch to actually tap.
const (
	toolUnknown = iota
	toolPaint
	toolBucket
)

// painter executes one scheduling strategy against the live game UI. It
// tracks what it believes the game's selection state to be (selected main
// color, open shade panel, selected shade, active tool) and re-taps
// defensively where that belief is known to drift.
type painter struct {
	s       *Session
	cfg     *Config
	opts    Options
	in      Input
	matcher *Matcher

	cellW, cellH float64

	selMain   *MainColor
	selShade  *ShadeButton
	panelOpen bool
	tool      int

	// Cells satisfied by the whole-canvas bucket pre-pass, by shade ID.
	// Excluded from per-cell painting but still verified afterwards.
	prefilled map[Point]int
}

func newPainter(s *Session) (*painter, error) {
	matcher, err := NewMatcher(s.cfg)
	if err != nil {
		return nil, err
	}
	return &painter{
		s:         s,
		cfg:       s.cfg,
		opts:      s.cfg.Options,
		in:        s.in,
		matcher:   matcher,
		cellW:     float64(s.canvas.W) / float64(s.grid.W),
		cellH:     float64(s.canvas.H) / float64(s.grid.H),
		tool:      toolUnknown,
		prefilled: make(map[Point]int),
	}, nil
}

// prepare samples the blank canvas color before any input is simulated. On a
// resumed session the canvas is already partially painted, so the color from
// the first run is reused.
func (p *painter) prepare() error {
	if p.s.base != nil {
		return nil
	}
	center := Point{
		X: p.s.canvas.X + p.s.canvas.W/2,
		Y: p.s.canvas.Y + p.s.canvas.H/2,
	}
	base, err := p.s.sampler.SamplePixel(center.X, center.Y)
	if err != nil {
		return fmt.Errorf("sampling canvas base color: %w", err)
	}
	logger.Debugw("canvas base color sampled", "color", base.String())
	p.s.base = &base
	return nil
}

// cellCenter maps grid cell (x, y) to its on-screen click point.
func (p *painter) cellCenter(x, y int) Point {
	return Point{
		X: p.s.canvas.X + int((float64(x)+0.5)*p.cellW),
		Y: p.s.canvas.Y + int((float64(y)+0.5)*p.cellH),
	}
}

// selectShade drives the game's palette UI to the target (main, shade).
func (p *painter) selectShade(ps PaletteShade) error {
	if err := p.s.checkSignal(); err != nil {
		return err
	}
	if p.selMain != ps.Main {
		// Tap back unconditionally on a main-color change: a previous back
		// tap may have silently failed in the game even when our state says
		// the panel is already closed.
		if p.selMain != nil {
			p.in.Tap(*p.cfg.BackButton, 0)
			p.panelOpen = false
		}
		p.in.Tap(ps.Main.Pos, 0)
		p.in.Tap(*p.cfg.ShadesPanelButton, p.opts.PanelOpenMS)
		p.panelOpen = true
		p.selMain = ps.Main
		p.selShade = nil
	}
	if !p.panelOpen {
		p.in.Tap(*p.cfg.ShadesPanelButton, p.opts.PanelOpenMS)
		p.panelOpen = true
	}
	if p.selShade != ps.Shade {
		for i := 0; i < selectionClickRedundancy; i++ {
			p.in.Tap(ps.Shade.Pos, p.opts.ShadeSelectMS)
		}
		p.selShade = ps.Shade
	}
	return p.s.checkSignal()
}

// closePanel returns the game UI to the main palette and forgets the cached
// selection, so the next group reselects from scratch.
func (p *painter) closePanel() {
	if p.panelOpen {
		p.in.Tap(*p.cfg.BackButton, 0)
	}
	p.panelOpen = false
	p.selMain = nil
	p.selShade = nil
}

// selectTool switches between the paint and bucket tools. Callers must have
// validated that the tool button positions are configured.
func (p *painter) selectTool(tool int) {
	if p.tool == tool {
		return
	}
	switch tool {
	case toolPaint:
		p.in.Tap(*p.cfg.PaintToolButton, 0)
	case toolBucket:
		p.in.Tap(*p.cfg.BucketToolButton, 0)
	}
	p.tool = tool
}

// paintRun paints a horizontal run of cells sharing one shade: a drag stroke
// when enabled and long enough, a rapid tap sequence otherwise.
func (p *painter) paintRun(ps PaletteShade, cells []Point) error {
	if err := p.selectShade(ps); err != nil {
		return err
	}
	pts := make([]Point, len(cells))
	for i, c := range cells {
		pts[i] = p.cellCenter(c.X, c.Y)
	}
	switch {
	case len(pts) >= 2 && p.opts.UseDragStrokes:
		p.in.Stroke(pts)
	case len(pts) >= 2:
		p.in.RapidTaps(pts)
	default:
		p.in.Tap(pts[0], 0)
	}
	for _, c := range cells {
		p.s.markDone(c)
	}
	return p.s.checkSignal()
}

// paintCoords paints an arbitrary coordinate list for one shade, split into
// contiguous same-row runs. Cells must be sorted row-major.
func (p *painter) paintCoords(ps PaletteShade, cells []Point) error {
	for _, run := range splitRuns(cells) {
		if err := p.paintRun(ps, run); err != nil {
			return err
		}
	}
	return nil
}

// splitRuns chunks a row-major sorted coordinate list into maximal runs of
// horizontally adjacent cells.
func splitRuns(cells []Point) [][]Point {
	var runs [][]Point
	var run []Point
	for _, c := range cells {
		if len(run) > 0 {
			last := run[len(run)-1]
			if c.Y != last.Y || c.X != last.X+1 {
				runs = append(runs, run)
				run = nil
			}
		}
		run = append(run, c)
	}
	if len(run) > 0 {
		runs = append(runs, run)
	}
	return runs
}

// paintRows is the row-order scheduler: raster order, shade switches only
// when the matched shade changes, each row verified before the next.
func (p *painter) paintRows() error {
	if err := p.maybeBucketPrePass(); err != nil {
		return err
	}

	grid := p.s.grid
	for y := 0; y < grid.H; y++ {
		if err := p.s.checkSignal(); err != nil {
			return err
		}
		p.s.obs.Status(fmt.Sprintf("Painting row %d/%d", y+1, grid.H))

		var targets []cellTarget
		var run []Point
		var runShade PaletteShade

		flush := func() error {
			if len(run) == 0 {
				return nil
			}
			err := p.paintRun(runShade, run)
			run = nil
			return err
		}

		for x := 0; x < grid.W; x++ {
			cell := Point{X: x, Y: y}
			if id, ok := p.prefilled[cell]; ok {
				// Pre-filled by the bucket pre-pass: not painted here, but
				// verified with the rest of the row.
				if err := flush(); err != nil {
					return err
				}
				targets = append(targets, cellTarget{Cell: cell, Shade: id})
				continue
			}
			if p.s.done[cell] {
				if err := flush(); err != nil {
					return err
				}
				continue
			}
			ps := p.matcher.Match(grid.At(x, y))
			if len(run) > 0 && ps.ID != runShade.ID {
				if err := flush(); err != nil {
					return err
				}
			}
			runShade = ps
			run = append(run, cell)
			targets = append(targets, cellTarget{Cell: cell, Shade: ps.ID})
		}
		if err := flush(); err != nil {
			return err
		}

		if len(targets) > 0 {
			if err := p.verifyAndRepair(fmt.Sprintf("row %d", y+1), targets); err != nil {
				return err
			}
		}

		if p.opts.RowDelayMS > 0 {
			if err := p.s.sleep(p.opts.RowDelayMS); err != nil {
				return err
			}
		}
	}
	return nil
}
