package cli

import (
	"github.com/charmbracelet/huh"

	"github.com/MrSnakeDoc/linkshelf/internal/logger"
	"github.com/MrSnakeDoc/linkshelf/internal/shelf"
)

// promptConfirmer asks on the terminal. Any prompt error counts as a refusal.
type promptConfirmer struct {
	log logger.Logger
}

func (p promptConfirmer) Confirm(prompt string) bool {
	ok := false
	err := huh.NewConfirm().
		Title(prompt).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		p.log.Debug("confirmation prompt failed", logger.Error(err))
		return false
	}
	return ok
}

func (s *session) confirmer() shelf.Confirmer {
	if s.flags.yes {
		return shelf.AlwaysConfirm
	}
	return promptConfirmer{log: s.log}
}
