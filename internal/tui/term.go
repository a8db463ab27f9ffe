package tui

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"sonarlens/internal/sonar"
)

// fallbackTerm is used for the session when TERM is unset; some minimal
// environments launch the browser without one and the renderer needs a
// capability entry to work with.
const fallbackTerm = "xterm-256color"

// ensureTerm applies the terminal-compatibility shim for the UI session
// and returns the restore function. The previous value comes back
// unconditionally, whether the session ends by quit or by error.
func ensureTerm() func() {
	prev, had := os.LookupEnv("TERM")
	if prev == "" {
		os.Setenv("TERM", fallbackTerm)
	}
	return func() {
		if had {
			os.Setenv("TERM", prev)
		} else {
			os.Unsetenv("TERM")
		}
	}
}

// Run starts the interactive browser over an already-fetched issue list
// and blocks until the user quits. The terminal is restored before Run
// returns.
func Run(api API, project, branch string, issues []sonar.Issue, log zerolog.Logger) error {
	restore := ensureTerm()
	defer restore()

	p := tea.NewProgram(New(api, project, branch, issues, log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
