package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type state int

const (
	stateMenu state = iota
	stateNameInput
	stateImageInput
	stateCapture
	stateCountdown
	statePainting
	statePaused
)

// Hover-and-confirm capture targets.
type captureKind int

const (
	capShadesPanel captureKind = iota
	capBack
	capPaintTool
	capBucketTool
	capCanvasTL
	capCanvasBR
	capMainColor
	capShade
)

var capturePrompts = map[captureKind]string{
	capShadesPanel: "Hover the shades-panel button",
	capBack:        "Hover the back button",
	capPaintTool:   "Hover the paint-tool button (s to skip)",
	capBucketTool:  "Hover the bucket-tool button (s to skip)",
	capCanvasTL:    "Hover the canvas top-left corner",
	capCanvasBR:    "Hover the canvas bottom-right corner",
	capMainColor:   "Hover the main color button",
	capShade:       "Hover the next shade button (d when done)",
}

// Session events forwarded from the worker goroutine.
type sessionEventKind int

const (
	evProgress sessionEventKind = iota
	evStatus
	evPaused
	evStopped
	evFinished
	evError
)

type sessionEvent struct {
	kind sessionEventKind
	x, y int
	text string
}

// uiObserver bridges Observer calls onto the TUI event channel.
type uiObserver struct {
	ch chan sessionEvent
}

func (o uiObserver) Progress(x, y int)     { o.ch <- sessionEvent{kind: evProgress, x: x, y: y} }
func (o uiObserver) Status(text string)    { o.ch <- sessionEvent{kind: evStatus, text: text} }
func (o uiObserver) Paused(reason string)  { o.ch <- sessionEvent{kind: evPaused, text: reason} }
func (o uiObserver) Stopped(reason string) { o.ch <- sessionEvent{kind: evStopped, text: reason} }
func (o uiObserver) Finished()             { o.ch <- sessionEvent{kind: evFinished} }
func (o uiObserver) PaintError(msg string) { o.ch <- sessionEvent{kind: evError, text: msg} }

func waitEvent(ch chan sessionEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

type hoverTickMsg time.Time
type countdownTickMsg time.Time

func hoverTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return hoverTickMsg(t)
	})
}

func countdownTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return countdownTickMsg(t)
	})
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	itemStyle     = lipgloss.NewStyle().PaddingLeft(2)
	selectedStyle = lipgloss.NewStyle().PaddingLeft(0).Foreground(lipgloss.Color("170"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

var menuLabels = []string{
	"Import image…",
	"Select canvas area…",
	"Set global buttons…",
	"Add color…",
	"Remove last color",
	"Paint (by row)",
	"Paint (by color)",
	"Toggle bucket fill",
	"Toggle drag strokes",
	"Quit",
}

type model struct {
	cfg     *Config
	sampler Sampler
	frames  FrameGrabber

	state  state
	cursor int
	errMsg string
	notice string

	input textinput.Model

	grid      *PixelGrid
	imagePath string
	canvas    *Rect
	canvasTL  *Point

	captureQueue []captureKind
	mousePos     Point
	newColor     *MainColor

	mode      Mode
	countdown int
	session   *Session
	events    chan sessionEvent
	seen      map[Point]bool
	total     int
	status    string
	bar       progress.Model

	err error
}

func newModel(cfg *Config, sampler Sampler, frames FrameGrabber) model {
	ti := textinput.New()
	ti.CharLimit = 256
	return model{
		cfg:     cfg,
		sampler: sampler,
		frames:  frames,
		input:   ti,
		bar:     progress.New(progress.WithDefaultGradient()),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.session != nil {
				m.session.Stop()
			}
			return m, tea.Quit
		}

	case hoverTickMsg:
		if m.state == stateCapture {
			m.mousePos = MouseLocation()
			return m, hoverTick()
		}
		return m, nil

	case countdownTickMsg:
		if m.state != stateCountdown {
			return m, nil
		}
		m.countdown--
		if m.countdown > 0 {
			return m, countdownTick()
		}
		return m.beginPaint()

	case sessionEvent:
		return m.handleSessionEvent(msg)
	}

	switch m.state {
	case stateMenu:
		return m.updateMenu(msg)
	case stateNameInput, stateImageInput:
		return m.updateTextInput(msg)
	case stateCapture:
		return m.updateCapture(msg)
	case stateCountdown:
		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
			m.state = stateMenu
			m.notice = "Paint cancelled"
			return m, nil
		}
	case statePainting:
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "p":
				m.session.Pause()
			case "s":
				m.session.Stop()
			}
		}
	case statePaused:
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "r":
				if err := m.session.Resume(m.grid, *m.canvas, m.mode); err != nil {
					m.errMsg = err.Error()
					m.state = stateMenu
					m.session = nil
					return m, nil
				}
				m.state = statePainting
				return m, waitEvent(m.events)
			case "s":
				m.session = nil
				m.state = stateMenu
				m.notice = "Paint abandoned"
			}
		}
	}
	return m, nil
}

func (m model) handleSessionEvent(ev sessionEvent) (tea.Model, tea.Cmd) {
	switch ev.kind {
	case evProgress:
		m.seen[Point{X: ev.x, Y: ev.y}] = true
		return m, waitEvent(m.events)
	case evStatus:
		m.status = ev.text
		return m, waitEvent(m.events)
	case evError:
		m.errMsg = ev.text
		return m, waitEvent(m.events)
	case evPaused:
		m.state = statePaused
		m.status = ev.text
		return m, nil
	case evStopped:
		m.state = stateMenu
		m.notice = ev.text
		m.session = nil
		return m, nil
	case evFinished:
		m.state = stateMenu
		m.notice = fmt.Sprintf("Finished: %d cells painted", len(m.seen))
		m.errMsg = ""
		m.session = nil
		return m, nil
	}
	return m, nil
}

func (m model) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(menuLabels)-1 {
			m.cursor++
		}
	case "q":
		return m, tea.Quit
	case "enter":
		return m.menuAction()
	}
	return m, nil
}

func (m model) menuAction() (tea.Model, tea.Cmd) {
	m.errMsg = ""
	m.notice = ""
	switch m.cursor {
	case 0: // import image
		m.state = stateImageInput
		m.input.Placeholder = "path/to/image.png"
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	case 1: // canvas area
		m.captureQueue = []captureKind{capCanvasTL, capCanvasBR}
		return m.startCapture()
	case 2: // global buttons
		m.captureQueue = []captureKind{capShadesPanel, capBack, capPaintTool, capBucketTool}
		return m.startCapture()
	case 3: // add color
		m.state = stateNameInput
		m.input.Placeholder = fmt.Sprintf("Color %d", len(m.cfg.MainColors)+1)
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	case 4: // remove last color
		if n := len(m.cfg.MainColors); n > 0 {
			removed := m.cfg.MainColors[n-1]
			m.cfg.MainColors = m.cfg.MainColors[:n-1]
			m.saveConfig()
			m.notice = fmt.Sprintf("Removed %s and its %d shade(s)", removed.Name, len(removed.Shades))
		}
	case 5:
		return m.startCountdown(ModeRow)
	case 6:
		return m.startCountdown(ModeColor)
	case 7:
		m.cfg.Options.BucketFill = !m.cfg.Options.BucketFill
		m.saveConfig()
	case 8:
		m.cfg.Options.UseDragStrokes = !m.cfg.Options.UseDragStrokes
		m.saveConfig()
	case 9:
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) saveConfig() {
	if err := SaveConfig(m.cfg); err != nil {
		m.errMsg = fmt.Sprintf("saving config: %v", err)
	}
}

func (m model) updateTextInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.state = stateMenu
			return m, nil
		case "enter":
			value := m.input.Value()
			if value == "" {
				value = m.input.Placeholder
			}
			if m.state == stateImageInput {
				return m.loadImage(value)
			}
			m.newColor = &MainColor{Name: value}
			m.captureQueue = []captureKind{capMainColor}
			return m.startCapture()
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) loadImage(path string) (tea.Model, tea.Cmd) {
	w, h, err := m.cfg.PresetSize()
	if err != nil {
		m.errMsg = err.Error()
		m.state = stateMenu
		return m, nil
	}
	grid, err := LoadGrid(path, w, h)
	if err != nil {
		m.errMsg = err.Error()
		m.state = stateMenu
		return m, nil
	}
	m.grid = grid
	m.imagePath = path
	m.notice = fmt.Sprintf("Loaded %s as %dx%d grid", path, w, h)
	m.state = stateMenu
	return m, nil
}

func (m model) startCapture() (tea.Model, tea.Cmd) {
	m.state = stateCapture
	m.mousePos = MouseLocation()
	return m, hoverTick()
}

func (m model) updateCapture(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	kind := m.captureQueue[0]
	switch key.String() {
	case "esc":
		m.state = stateMenu
		m.newColor = nil
		m.canvasTL = nil
		return m, nil
	case "s":
		if kind == capPaintTool || kind == capBucketTool {
			return m.nextCapture()
		}
	case "d":
		if kind == capShade {
			if m.newColor != nil {
				m.cfg.MainColors = append(m.cfg.MainColors, *m.newColor)
				m.saveConfig()
				m.notice = fmt.Sprintf("Added %s with %d shade(s)", m.newColor.Name, len(m.newColor.Shades))
				m.newColor = nil
			}
			m.state = stateMenu
			return m, nil
		}
	case "enter":
		pos := MouseLocation()
		color, err := m.sampler.SamplePixel(pos.X, pos.Y)
		if err != nil {
			m.errMsg = err.Error()
			m.state = stateMenu
			return m, nil
		}
		return m.applyCapture(kind, pos, color)
	}
	return m, nil
}

func (m model) applyCapture(kind captureKind, pos Point, color RGB) (tea.Model, tea.Cmd) {
	switch kind {
	case capShadesPanel:
		m.cfg.ShadesPanelButton = &pos
	case capBack:
		m.cfg.BackButton = &pos
	case capPaintTool:
		m.cfg.PaintToolButton = &pos
	case capBucketTool:
		m.cfg.BucketToolButton = &pos
	case capCanvasTL:
		m.canvasTL = &pos
		return m.nextCapture()
	case capCanvasBR:
		tl := *m.canvasTL
		m.canvasTL = nil
		if pos.X <= tl.X || pos.Y <= tl.Y {
			m.errMsg = "canvas corners must be top-left then bottom-right"
			m.state = stateMenu
			return m, nil
		}
		m.canvas = &Rect{X: tl.X, Y: tl.Y, W: pos.X - tl.X, H: pos.Y - tl.Y}
		m.notice = fmt.Sprintf("Canvas: %s", m.canvas)
		m.state = stateMenu
		return m, nil
	case capMainColor:
		m.newColor.Pos = pos
		m.newColor.RGB = color
		m.captureQueue = []captureKind{capShade}
		return m, hoverTick()
	case capShade:
		m.newColor.Shades = append(m.newColor.Shades, ShadeButton{
			Name: fmt.Sprintf("Shade %d", len(m.newColor.Shades)+1),
			Pos:  pos,
			RGB:  color,
		})
		// Stay on capShade; d finishes the color.
		return m, hoverTick()
	}
	m.saveConfig()
	return m.nextCapture()
}

func (m model) nextCapture() (tea.Model, tea.Cmd) {
	m.captureQueue = m.captureQueue[1:]
	if len(m.captureQueue) == 0 {
		m.state = stateMenu
		return m, nil
	}
	return m, hoverTick()
}

func (m model) startCountdown(mode Mode) (tea.Model, tea.Cmd) {
	if m.grid == nil {
		m.errMsg = "load an image first"
		return m, nil
	}
	if m.canvas == nil {
		m.errMsg = "select the canvas area first"
		return m, nil
	}
	if err := m.cfg.Validate(); err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	if m.cfg.Options.BucketFill {
		if err := m.cfg.ValidateBucketTools(); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
	}
	m.mode = mode
	m.countdown = 3
	m.state = stateCountdown
	return m, countdownTick()
}

func (m model) beginPaint() (tea.Model, tea.Cmd) {
	events := make(chan sessionEvent, 512)
	sess, err := NewSession(m.cfg, m.grid, *m.canvas, m.mode,
		NewInput(m.cfg.Options), m.sampler, m.frames, uiObserver{ch: events})
	if err != nil {
		m.errMsg = err.Error()
		m.state = stateMenu
		return m, nil
	}
	m.session = sess
	m.events = events
	m.seen = make(map[Point]bool)
	m.total = sess.Total()
	m.status = "Painting…"
	m.errMsg = ""
	m.state = statePainting
	sess.Start()
	return m, waitEvent(events)
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateNameInput:
		return "\n" + titleStyle.Render("  New color name:") + "\n\n  " +
			m.input.View() + "\n\n" + helpStyle.Render("  enter confirm · esc cancel") + "\n"
	case stateImageInput:
		return "\n" + titleStyle.Render("  Image path:") + "\n\n  " +
			m.input.View() + "\n\n" + helpStyle.Render("  enter load · esc cancel") + "\n"
	case stateCapture:
		prompt := capturePrompts[m.captureQueue[0]]
		s := "\n" + titleStyle.Render("  "+prompt) + "\n\n"
		s += itemStyle.Render(fmt.Sprintf("mouse at %s", m.mousePos)) + "\n"
		if m.newColor != nil && m.captureQueue[0] == capShade {
			s += itemStyle.Render(fmt.Sprintf("%d shade(s) captured", len(m.newColor.Shades))) + "\n"
		}
		s += "\n" + helpStyle.Render("  enter capture · esc cancel") + "\n"
		return s
	case stateCountdown:
		return fmt.Sprintf("\n  %s\n\n%s\n",
			titleStyle.Render(fmt.Sprintf("Painting in %d… focus the game window!", m.countdown)),
			helpStyle.Render("  esc cancel"))
	case statePainting:
		pct := 0.0
		if m.total > 0 {
			pct = float64(len(m.seen)) / float64(m.total)
		}
		s := "\n" + titleStyle.Render("  Painting") + "\n\n"
		s += "  " + m.bar.ViewAs(pct) + "\n\n"
		s += itemStyle.Render(fmt.Sprintf("%d / %d cells — %s", len(m.seen), m.total, m.status)) + "\n"
		if m.errMsg != "" {
			s += errStyle.Render("  "+m.errMsg) + "\n"
		}
		s += "\n" + helpStyle.Render("  p pause · s stop") + "\n"
		return s
	case statePaused:
		s := "\n" + titleStyle.Render("  Paused") + "\n\n"
		s += itemStyle.Render(m.status) + "\n"
		s += itemStyle.Render(fmt.Sprintf("%d / %d cells done", len(m.seen), m.total)) + "\n"
		s += "\n" + helpStyle.Render("  r resume · s abandon") + "\n"
		return s
	}
	return ""
}

func (m model) viewMenu() string {
	s := "\n" + titleStyle.Render("  Pixel Painter") + "\n\n"

	s += dimStyle.Render(fmt.Sprintf("  Palette: %d color(s), %d shade(s)",
		len(m.cfg.MainColors), m.cfg.ShadeCount())) + "\n"
	if m.imagePath != "" {
		s += dimStyle.Render("  Image:   "+m.imagePath) + "\n"
	} else {
		s += dimStyle.Render("  Image:   not loaded") + "\n"
	}
	if m.canvas != nil {
		s += dimStyle.Render("  Canvas:  "+m.canvas.String()) + "\n"
	} else {
		s += dimStyle.Render("  Canvas:  not selected") + "\n"
	}
	s += dimStyle.Render(fmt.Sprintf("  Options: bucket fill %s · drag strokes %s",
		onOff(m.cfg.Options.BucketFill), onOff(m.cfg.Options.UseDragStrokes))) + "\n\n"

	for i, label := range menuLabels {
		if i == m.cursor {
			s += selectedStyle.Render("▸ "+label) + "\n"
		} else {
			s += itemStyle.Render(label) + "\n"
		}
	}

	if m.notice != "" {
		s += "\n" + okStyle.Render("  "+m.notice) + "\n"
	}
	if m.errMsg != "" {
		s += "\n" + errStyle.Render("  "+m.errMsg) + "\n"
	}
	s += "\n" + helpStyle.Render("  ↑/k up · ↓/j down · enter select · q quit") + "\n"
	return s
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
