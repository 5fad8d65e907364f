package main

import (
	"sort"
)

// findComponents partitions a coordinate set into 4-connected components.
// This floods over the coordinate set itself, not the screen. Components
// come back row-major sorted, in order of their first cell in the input.
func findComponents(cells []Point) [][]Point {
	set := make(map[Point]bool, len(cells))
	for _, c := range cells {
		set[c] = true
	}

	seen := make(map[Point]bool, len(cells))
	var comps [][]Point
	for _, seed := range cells {
		if seen[seed] {
			continue
		}
		var comp []Point
		queue := []Point{seed}
		seen[seed] = true
		for len(queue) > 0 {
			c := queue[0]
			queue = queue[1:]
			comp = append(comp, c)
			for _, n := range neighbors4(c) {
				if set[n] && !seen[n] {
					seen[n] = true
					queue = append(queue, n)
				}
			}
		}
		sort.Slice(comp, func(i, j int) bool {
			if comp[i].Y != comp[j].Y {
				return comp[i].Y < comp[j].Y
			}
			return comp[i].X < comp[j].X
		})
		comps = append(comps, comp)
	}
	return comps
}

func neighbors4(c Point) [4]Point {
	return [4]Point{
		{X: c.X - 1, Y: c.Y},
		{X: c.X + 1, Y: c.Y},
		{X: c.X, Y: c.Y - 1},
		{X: c.X, Y: c.Y + 1},
	}
}

// classifyRegion splits a component into boundary cells (at least one
// 4-neighbor outside the component) and interior cells.
func classifyRegion(comp []Point) (boundary, interior []Point) {
	set := make(map[Point]bool, len(comp))
	for _, c := range comp {
		set[c] = true
	}
	for _, c := range comp {
		inside := true
		for _, n := range neighbors4(c) {
			if !set[n] {
				inside = false
				break
			}
		}
		if inside {
			interior = append(interior, c)
		} else {
			boundary = append(boundary, c)
		}
	}
	return boundary, interior
}

// fillRegions satisfies large contiguous sub-regions of a shade group via
// the in-game bucket tool: paint the outline per-pixel, verify it holds,
// then bucket-click each enclosed interior area and spot-check the result.
// Returns the set of cells handled here (outlined or bucketed); everything
// else falls through to per-pixel painting.
func (p *painter) fillRegions(g shadeGroup) (map[Point]bool, error) {
	filled := make(map[Point]bool)
	for _, comp := range findComponents(g.cells) {
		if len(comp) < p.opts.RegionMinCells {
			continue
		}
		boundary, interior := classifyRegion(comp)
		if len(interior) == 0 {
			// Too thin: a bucket click could spill past the region.
			continue
		}

		p.selectTool(toolPaint)
		if err := p.paintCoords(g.shade, boundary); err != nil {
			return nil, err
		}
		for _, c := range boundary {
			filled[c] = true
		}

		ok, err := p.verifyOutline(g, boundary)
		if err != nil {
			return nil, err
		}
		if !ok {
			// An incomplete outline means a bucket click could escape the
			// region. Leave the interior for per-pixel painting.
			logger.Warnw("outline did not verify; skipping bucket fill",
				"shade", g.shade.Shade.Name, "cells", len(comp))
			continue
		}

		// An imperfect outline can split the interior into several pockets;
		// each needs its own bucket click.
		subs := findComponents(interior)
		p.closePanel()
		p.selectTool(toolBucket)
		for _, sub := range subs {
			if err := p.s.checkSignal(); err != nil {
				return nil, err
			}
			seed := sub[len(sub)/2]
			pt := p.cellCenter(seed.X, seed.Y)
			p.in.Tap(pt, 0)

			got, err := p.s.sampler.SamplePixel(pt.X, pt.Y)
			if err != nil {
				return nil, err
			}
			if WithinTolerance(got, *p.s.base, p.opts.VerifyTolerance) {
				// The click didn't take; don't assume success.
				logger.Warnw("bucket click left base color; falling back to per-pixel",
					"at", pt.String(), "cells", len(sub))
				continue
			}
			for _, c := range sub {
				filled[c] = true
				p.s.markDone(c)
			}
		}
		p.selectTool(toolPaint)
	}
	return filled, nil
}

// verifyOutline resamples each boundary cell and repaints those still
// reading the blank-canvas color. The check is against the base color, not
// the target shade: the game's rendering of a fresh border can differ
// visually from a settled cell. Returns false when the pass budget runs out
// with unpainted outline cells left.
func (p *painter) verifyOutline(g shadeGroup, boundary []Point) (bool, error) {
	cells := boundary
	for pass := 1; pass <= p.opts.MaxVerifyPasses; pass++ {
		if err := p.s.sleep(p.opts.VerifySettleMS); err != nil {
			return false, err
		}
		frame, err := p.s.frames.CaptureRegion(p.s.canvas)
		if err != nil {
			return false, err
		}
		var still []Point
		for _, c := range cells {
			pt := p.cellCenter(c.X, c.Y)
			if WithinTolerance(frame.At(pt.X, pt.Y), *p.s.base, p.opts.VerifyTolerance) {
				still = append(still, c)
			}
		}
		if len(still) == 0 {
			return true, nil
		}
		logger.Debugw("outline verify", "pass", pass, "unpainted", len(still))
		if pass == p.opts.MaxVerifyPasses {
			return false, nil
		}
		if err := p.paintCoords(g.shade, still); err != nil {
			return false, err
		}
		cells = still
	}
	return false, nil
}
