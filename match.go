package main

// PaletteShade is one selectable shade, flattened out of the config with a
// stable integer ID. IDs are assigned in palette order when the matcher is
// built and serve as grouping and ordering keys for the rest of a run.
type PaletteShade struct {
	ID    int
	Main  *MainColor
	Shade *ShadeButton
}

// Matcher finds the closest palette shade for a source color by squared
// Euclidean RGB distance. Results are memoized per distinct color: a source
// image has far fewer distinct colors than pixels, and equal colors always
// produce the same match.
type Matcher struct {
	shades []PaletteShade
	cache  map[RGB]int
}

// NewMatcher flattens the palette into an interned shade table.
// Fails with ErrConfigIncomplete when the palette has no shades.
func NewMatcher(cfg *Config) (*Matcher, error) {
	var shades []PaletteShade
	for i := range cfg.MainColors {
		mc := &cfg.MainColors[i]
		for j := range mc.Shades {
			shades = append(shades, PaletteShade{
				ID:    len(shades),
				Main:  mc,
				Shade: &mc.Shades[j],
			})
		}
	}
	if len(shades) == 0 {
		return nil, ErrConfigIncomplete
	}
	return &Matcher{
		shades: shades,
		cache:  make(map[RGB]int),
	}, nil
}

// Match returns the shade minimizing squared distance to c.
// Ties break toward the first shade in palette order.
func (m *Matcher) Match(c RGB) PaletteShade {
	if id, ok := m.cache[c]; ok {
		return m.shades[id]
	}
	best := 0
	bestDist := Dist2(c, m.shades[0].Shade.RGB)
	for i := 1; i < len(m.shades); i++ {
		d := Dist2(c, m.shades[i].Shade.RGB)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	m.cache[c] = best
	return m.shades[best]
}

// Shade returns the interned shade for an ID previously produced by Match.
func (m *Matcher) Shade(id int) PaletteShade {
	return m.shades[id]
}

// Count returns the number of shades in the table.
func (m *Matcher) Count() int {
	return len(m.shades)
}
