package main

import (
	"fmt"
	"sort"
)

// shadeGroup is every cell that resolved to one palette shade, row-major
// sorted.
type shadeGroup struct {
	shade PaletteShade
	cells []Point
}

// buildGroups pre-scans the whole grid once and buckets remaining cells by
// interned shade ID. Completed cells (resume, pre-fill) are excluded.
func (p *painter) buildGroups() ([]shadeGroup, error) {
	grid := p.s.grid
	byID := make(map[int]*shadeGroup)
	for y := 0; y < grid.H; y++ {
		if err := p.s.checkSignal(); err != nil {
			return nil, err
		}
		for x := 0; x < grid.W; x++ {
			cell := Point{X: x, Y: y}
			if p.s.done[cell] {
				continue
			}
			ps := p.matcher.Match(grid.At(x, y))
			g, ok := byID[ps.ID]
			if !ok {
				g = &shadeGroup{shade: ps}
				byID[ps.ID] = g
			}
			g.cells = append(g.cells, cell)
		}
	}

	groups := make([]shadeGroup, 0, len(byID))
	for _, g := range byID {
		groups = append(groups, *g)
	}
	orderGroups(groups)
	return groups, nil
}

// orderGroups sorts most-used shade first; ties break by main-color name,
// then shade button position.
func orderGroups(groups []shadeGroup) {
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if len(a.cells) != len(b.cells) {
			return len(a.cells) > len(b.cells)
		}
		if a.shade.Main.Name != b.shade.Main.Name {
			return a.shade.Main.Name < b.shade.Main.Name
		}
		if a.shade.Shade.Pos.X != b.shade.Shade.Pos.X {
			return a.shade.Shade.Pos.X < b.shade.Shade.Pos.X
		}
		return a.shade.Shade.Pos.Y < b.shade.Shade.Pos.Y
	})
}

// maybeBucketPrePass flood-fills the blank canvas with the dominant shade
// when that clears the configured cell threshold. Both schedulers run this
// before their per-cell work.
func (p *painter) maybeBucketPrePass() error {
	if !p.opts.BucketFill {
		return nil
	}
	groups, err := p.buildGroups()
	if err != nil {
		return err
	}
	if len(groups) == 0 || len(groups[0].cells) < p.opts.BucketMinCells {
		return nil
	}
	return p.bucketPrePass(groups[0])
}

// bucketPrePass fills the entire canvas with one shade via the in-game
// bucket tool. The fill itself is not verified here: per-cell verification
// later treats a failed fill as ordinary mismatches and repaints them.
func (p *painter) bucketPrePass(g shadeGroup) error {
	p.s.obs.Status(fmt.Sprintf("Bucket-filling canvas with %s / %s (%d cells)",
		g.shade.Main.Name, g.shade.Shade.Name, len(g.cells)))
	logger.Infow("bucket pre-pass", "shade", g.shade.Shade.Name, "cells", len(g.cells))

	p.selectTool(toolPaint)
	if err := p.selectShade(g.shade); err != nil {
		return err
	}
	p.closePanel()
	p.selectTool(toolBucket)
	center := Point{
		X: p.s.canvas.X + p.s.canvas.W/2,
		Y: p.s.canvas.Y + p.s.canvas.H/2,
	}
	p.in.Tap(center, 0)
	p.selectTool(toolPaint)

	if err := p.s.sleep(p.opts.VerifySettleMS); err != nil {
		return err
	}
	for _, c := range g.cells {
		p.prefilled[c] = g.shade.ID
		p.s.markDone(c)
	}
	return p.s.checkSignal()
}

// paintGrouped is the color-grouped scheduler: one pass per shade, largest
// group first, each group verified and the panel closed before the next so
// a failure in one group cannot corrupt another's selection state.
func (p *painter) paintGrouped() error {
	if err := p.maybeBucketPrePass(); err != nil {
		return err
	}
	groups, err := p.buildGroups()
	if err != nil {
		return err
	}

	for i, g := range groups {
		scope := fmt.Sprintf("shade %s / %s", g.shade.Main.Name, g.shade.Shade.Name)
		p.s.obs.Status(fmt.Sprintf("Painting %s (%d cells, group %d/%d)",
			scope, len(g.cells), i+1, len(groups)))

		targets := make([]cellTarget, len(g.cells))
		for j, c := range g.cells {
			targets[j] = cellTarget{Cell: c, Shade: g.shade.ID}
		}

		remaining := g.cells
		if p.opts.BucketFill && len(g.cells) >= p.opts.RegionMinCells {
			filled, err := p.fillRegions(g)
			if err != nil {
				return err
			}
			if len(filled) > 0 {
				rest := make([]Point, 0, len(remaining))
				for _, c := range remaining {
					if !filled[c] {
						rest = append(rest, c)
					}
				}
				remaining = rest
			}
		}

		if err := p.paintCoords(g.shade, remaining); err != nil {
			return err
		}
		if err := p.verifyAndRepair(scope, targets); err != nil {
			return err
		}
		p.closePanel()

		if p.opts.RowDelayMS > 0 {
			if err := p.s.sleep(p.opts.RowDelayMS); err != nil {
				return err
			}
		}
	}
	return nil
}
