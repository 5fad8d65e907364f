package main

import (
	"errors"
	"math/rand"
	"testing"
)

func TestMatcher_PicksNearestShade(t *testing.T) {
	cfg := testConfig()
	m, err := NewMatcher(cfg)
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}

	got := m.Match(RGB{R: 200, G: 10, B: 10})
	if got.Shade.Name != "Red 1" {
		t.Errorf("expected Red 1, got %s", got.Shade.Name)
	}

	got = m.Match(RGB{R: 10, G: 10, B: 200})
	if got.Shade.Name != "Blue 1" {
		t.Errorf("expected Blue 1, got %s", got.Shade.Name)
	}
}

func TestMatcher_TieBreaksTowardPaletteOrder(t *testing.T) {
	cfg := testConfig()
	// Two shades equidistant from the probe color: first in palette order wins.
	cfg.MainColors[0].Shades[0].RGB = RGB{R: 100, G: 0, B: 0}
	cfg.MainColors[1].Shades[0].RGB = RGB{R: 120, G: 0, B: 0}

	m, err := NewMatcher(cfg)
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	got := m.Match(RGB{R: 110, G: 0, B: 0})
	if got.ID != 0 {
		t.Errorf("expected first shade on tie, got ID %d (%s)", got.ID, got.Shade.Name)
	}
}

func TestMatcher_NoOtherShadeStrictlyCloser(t *testing.T) {
	cfg := testConfig()
	cfg.MainColors = append(cfg.MainColors, MainColor{
		Name: "Mix", Pos: Point{X: 500, Y: 110}, RGB: green,
		Shades: []ShadeButton{
			{Name: "Mix 1", Pos: Point{X: 510, Y: 130}, RGB: RGB{R: 70, G: 140, B: 20}},
			{Name: "Mix 2", Pos: Point{X: 540, Y: 130}, RGB: RGB{R: 220, G: 220, B: 200}},
		},
	})
	m, err := NewMatcher(cfg)
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		c := RGB{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256))}
		got := m.Match(c)
		d := Dist2(c, got.Shade.RGB)
		for id := 0; id < m.Count(); id++ {
			if other := Dist2(c, m.Shade(id).Shade.RGB); other < d {
				t.Fatalf("match(%v) = %s at distance %d, but %s is closer at %d",
					c, got.Shade.Name, d, m.Shade(id).Shade.Name, other)
			}
		}
	}
}

func TestMatcher_MemoizationDoesNotChangeResults(t *testing.T) {
	cfg := testConfig()
	cached, _ := NewMatcher(cfg)

	rng := rand.New(rand.NewSource(7))
	colors := make([]RGB, 200)
	for i := range colors {
		colors[i] = RGB{R: uint8(rng.Intn(4) * 80), G: uint8(rng.Intn(4) * 80), B: uint8(rng.Intn(4) * 80)}
	}

	// Same colors twice: second round is fully cache-served.
	first := make([]int, len(colors))
	for i, c := range colors {
		first[i] = cached.Match(c).ID
	}
	for i, c := range colors {
		if got := cached.Match(c).ID; got != first[i] {
			t.Fatalf("cached match for %v changed: %d then %d", c, first[i], got)
		}
	}

	// And agrees with a fresh matcher that never saw the colors before.
	fresh, _ := NewMatcher(cfg)
	for i := len(colors) - 1; i >= 0; i-- {
		if got := fresh.Match(colors[i]).ID; got != first[i] {
			t.Fatalf("fresh match for %v = %d, cached = %d", colors[i], got, first[i])
		}
	}
}

func TestMatcher_EmptyPalette(t *testing.T) {
	cfg := testConfig()
	cfg.MainColors = nil
	if _, err := NewMatcher(cfg); !errors.Is(err, ErrConfigIncomplete) {
		t.Fatalf("expected ErrConfigIncomplete, got %v", err)
	}

	cfg = testConfig()
	for i := range cfg.MainColors {
		cfg.MainColors[i].Shades = nil
	}
	if _, err := NewMatcher(cfg); !errors.Is(err, ErrConfigIncomplete) {
		t.Fatalf("expected ErrConfigIncomplete with shadeless mains, got %v", err)
	}
}
