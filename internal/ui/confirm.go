package ui

import (
	"errors"
	"os"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// Interactive reports whether stdin is a terminal a prompt can be shown on.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// confirmKeyMap lets esc abort the prompt as well as ctrl+c.
func confirmKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "keep"),
	)
	return km
}

// Confirm asks a yes/no question on stderr so stdout stays pipeable. Callers
// check Interactive first; an aborted form counts as no.
func Confirm(title, description string) (bool, error) {
	var proceed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Replace").
				Negative("Keep").
				Value(&proceed),
		),
	).
		WithKeyMap(confirmKeyMap()).
		WithProgramOptions(tea.WithOutput(os.Stderr))

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return proceed, nil
}
