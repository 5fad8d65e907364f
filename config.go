package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Point is an absolute screen coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Rect is a screen rectangle, typically the in-game canvas bounds.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d at (%d,%d)", r.W, r.H, r.X, r.Y)
}

// ShadeButton is one selectable swatch inside a main color's shade panel.
type ShadeButton struct {
	Name string `json:"name"`
	Pos  Point  `json:"pos"`
	RGB  RGB    `json:"rgb"`
}

// MainColor is a top-level palette swatch and the shades it opens into.
type MainColor struct {
	Name   string        `json:"name"`
	Pos    Point         `json:"pos"`
	RGB    RGB           `json:"rgb"`
	Shades []ShadeButton `json:"shades"`
}

// Options holds the timing and behavior knobs for a paint run.
// Durations are stored as milliseconds.
type Options struct {
	MoveMS        int `json:"move_ms"`
	HoldMS        int `json:"hold_ms"`
	AfterClickMS  int `json:"after_click_ms"`
	PanelOpenMS   int `json:"panel_open_ms"`
	ShadeSelectMS int `json:"shade_select_ms"`
	RowDelayMS    int `json:"row_delay_ms"`

	StrokeStepMS   int  `json:"stroke_step_ms"`
	RapidClickMS   int  `json:"rapid_click_ms"`
	UseDragStrokes bool `json:"use_drag_strokes"`

	VerifyTolerance int `json:"verify_tolerance"`
	MaxVerifyPasses int `json:"max_verify_passes"`
	VerifySettleMS  int `json:"verify_settle_ms"`

	BucketFill     bool `json:"bucket_fill"`
	BucketMinCells int  `json:"bucket_min_cells"`
	RegionMinCells int  `json:"region_min_cells"`
}

// DefaultOptions returns the knob defaults tuned against the game client.
func DefaultOptions() Options {
	return Options{
		MoveMS:          30,
		HoldMS:          20,
		AfterClickMS:    60,
		PanelOpenMS:     120,
		ShadeSelectMS:   60,
		RowDelayMS:      100,
		StrokeStepMS:    15,
		RapidClickMS:    25,
		UseDragStrokes:  false,
		VerifyTolerance: 900,
		MaxVerifyPasses: 3,
		VerifySettleMS:  400,
		BucketFill:      false,
		BucketMinCells:  120,
		RegionMinCells:  25,
	}
}

// Config is the persisted palette layout plus run options.
type Config struct {
	CanvasPreset string `json:"canvas_preset"`

	// Buttons that are global (same regardless of which color is selected).
	ShadesPanelButton *Point `json:"shades_panel_button,omitempty"`
	BackButton        *Point `json:"back_button,omitempty"`
	PaintToolButton   *Point `json:"paint_tool_button,omitempty"`
	BucketToolButton  *Point `json:"bucket_tool_button,omitempty"`

	MainColors []MainColor `json:"main_colors"`

	Options Options `json:"options"`
}

// DefaultConfig returns an empty config with default options.
func DefaultConfig() *Config {
	return &Config{
		CanvasPreset: "30x30",
		Options:      DefaultOptions(),
	}
}

// Painting preconditions.
var (
	ErrConfigIncomplete   = errors.New("color configuration incomplete: set up colors and global buttons first")
	ErrToolButtonsMissing = errors.New("bucket fill requires paint-tool and bucket-tool button positions")
)

// Validate checks the preconditions for any paint run.
func (c *Config) Validate() error {
	if c.ShadesPanelButton == nil || c.BackButton == nil {
		return ErrConfigIncomplete
	}
	if c.ShadeCount() == 0 {
		return ErrConfigIncomplete
	}
	return nil
}

// ValidateBucketTools checks the extra preconditions for bucket filling.
func (c *Config) ValidateBucketTools() error {
	if c.PaintToolButton == nil || c.BucketToolButton == nil {
		return ErrToolButtonsMissing
	}
	return nil
}

// ShadeCount returns the total number of shades across all main colors.
func (c *Config) ShadeCount() int {
	n := 0
	for _, mc := range c.MainColors {
		n += len(mc.Shades)
	}
	return n
}

// PresetSize parses the canvas preset ("30x30") into grid dimensions.
func (c *Config) PresetSize() (int, int, error) {
	parts := strings.SplitN(c.CanvasPreset, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid canvas preset %q", c.CanvasPreset)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid canvas preset %q: %w", c.CanvasPreset, err)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid canvas preset %q: %w", c.CanvasPreset, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid canvas preset %q", c.CanvasPreset)
	}
	return w, h, nil
}

// configDir overrides the default config directory for testing.
// When empty, the user's home directory is used.
var configDir string

func configPath() (string, error) {
	if configDir != "" {
		return filepath.Join(configDir, "config.json"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".pixelpainter", "config.json"), nil
}

// LoadConfig reads the stored config. A missing file yields defaults.
func LoadConfig() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.CanvasPreset == "" {
		cfg.CanvasPreset = "30x30"
	}
	applyOptionDefaults(&cfg.Options)
	return cfg, nil
}

// SaveConfig persists the config, creating the directory with 0700 if needed.
func SaveConfig(cfg *Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// applyOptionDefaults fills zero-valued knobs so configs written by older
// versions keep working.
func applyOptionDefaults(o *Options) {
	d := DefaultOptions()
	if o.MoveMS == 0 {
		o.MoveMS = d.MoveMS
	}
	if o.HoldMS == 0 {
		o.HoldMS = d.HoldMS
	}
	if o.AfterClickMS == 0 {
		o.AfterClickMS = d.AfterClickMS
	}
	if o.PanelOpenMS == 0 {
		o.PanelOpenMS = d.PanelOpenMS
	}
	if o.ShadeSelectMS == 0 {
		o.ShadeSelectMS = d.ShadeSelectMS
	}
	if o.StrokeStepMS == 0 {
		o.StrokeStepMS = d.StrokeStepMS
	}
	if o.RapidClickMS == 0 {
		o.RapidClickMS = d.RapidClickMS
	}
	if o.VerifyTolerance == 0 {
		o.VerifyTolerance = d.VerifyTolerance
	}
	if o.MaxVerifyPasses == 0 {
		o.MaxVerifyPasses = d.MaxVerifyPasses
	}
	if o.VerifySettleMS == 0 {
		o.VerifySettleMS = d.VerifySettleMS
	}
	if o.BucketMinCells == 0 {
		o.BucketMinCells = d.BucketMinCells
	}
	if o.RegionMinCells == 0 {
		o.RegionMinCells = d.RegionMinCells
	}
}
