package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	InitLogger()
	defer SyncLogger()

	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sampler, samplerName := NewSampler()
	frames, grabberName := NewFrameGrabber(sampler)
	logger.Infow("starting", "sampler", samplerName, "grabber", grabberName)

	p := tea.NewProgram(newModel(cfg, sampler, frames))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
