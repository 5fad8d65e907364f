package main

import (
	"sort"
)

// cellTarget pairs a grid cell with the interned shade it should show.
type cellTarget struct {
	Cell  Point
	Shade int
}

// verifyAndRepair resamples the screen at each target cell and repaints
// mismatches, largest shade group first, until the batch converges or the
// pass budget runs out. Non-convergence comes back as a *VerifyError, which
// the session turns into a pause rather than a crash.
func (p *painter) verifyAndRepair(scope string, targets []cellTarget) error {
	for pass := 1; pass <= p.opts.MaxVerifyPasses; pass++ {
		if err := p.s.checkSignal(); err != nil {
			return err
		}
		mismatched, err := p.sampleMismatches(targets)
		if err != nil {
			return err
		}
		if len(mismatched) == 0 {
			if pass > 1 {
				logger.Infow("batch converged", "scope", scope, "passes", pass)
			}
			return nil
		}
		logger.Infow("verify pass found mismatches",
			"scope", scope, "pass", pass, "mismatched", len(mismatched), "of", len(targets))
		if pass == p.opts.MaxVerifyPasses {
			return &VerifyError{Scope: scope, Passes: pass, Remaining: mismatched}
		}

		for _, g := range p.groupTargets(mismatched) {
			if err := p.paintCoords(g.shade, g.cells); err != nil {
				return err
			}
		}
		if err := p.s.sleep(p.opts.VerifySettleMS); err != nil {
			return err
		}
	}
	return nil
}

// sampleMismatches grabs the canvas once and returns the targets whose
// sampled pixel is outside tolerance of the expected shade color.
func (p *painter) sampleMismatches(targets []cellTarget) ([]cellTarget, error) {
	frame, err := p.s.frames.CaptureRegion(p.s.canvas)
	if err != nil {
		return nil, err
	}
	var mismatched []cellTarget
	for _, t := range targets {
		expected := p.matcher.Shade(t.Shade).Shade.RGB
		pt := p.cellCenter(t.Cell.X, t.Cell.Y)
		if !WithinTolerance(frame.At(pt.X, pt.Y), expected, p.opts.VerifyTolerance) {
			mismatched = append(mismatched, t)
		}
	}
	return mismatched, nil
}

// groupTargets buckets repair targets by shade, ordered as the color-grouped
// scheduler orders its groups.
func (p *painter) groupTargets(targets []cellTarget) []shadeGroup {
	byID := make(map[int]*shadeGroup)
	for _, t := range targets {
		g, ok := byID[t.Shade]
		if !ok {
			g = &shadeGroup{shade: p.matcher.Shade(t.Shade)}
			byID[t.Shade] = g
		}
		g.cells = append(g.cells, t.Cell)
	}
	groups := make([]shadeGroup, 0, len(byID))
	for _, g := range byID {
		sort.Slice(g.cells, func(i, j int) bool {
			if g.cells[i].Y != g.cells[j].Y {
				return g.cells[i].Y < g.cells[j].Y
			}
			return g.cells[i].X < g.cells[j].X
		})
		groups = append(groups, *g)
	}
	orderGroups(groups)
	return groups
}
