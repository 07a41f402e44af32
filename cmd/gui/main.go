package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/schedule-capture-service/internal/supervisor"
	"github.com/user/schedule-capture-service/internal/tui"
)

const settingsFile = "settings.yaml"

// captureBinary locates the pipeline binary: CAPTURE_BIN wins, otherwise
// the sibling of the running executable.
func captureBinary() string {
	if bin := os.Getenv("CAPTURE_BIN"); bin != "" {
		return bin
	}
	exe, err := os.Executable()
	if err != nil {
		return "capture"
	}
	return filepath.Join(filepath.Dir(exe), "capture")
}

func main() {
	settings, err := supervisor.LoadSettings(settingsFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not load settings:", err)
		os.Exit(1)
	}

	model := tui.New(captureBinary(), settingsFile, settings)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "interface error:", err)
		os.Exit(1)
	}
}
