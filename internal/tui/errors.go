package tui

import (
	"errors"
	"fmt"

	"github.com/pders01/hackers/internal/feed"
)

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// userMessage shortens errors for the status bar.
func userMessage(err error) string {
	var fe *feed.FetchError
	switch {
	case errors.As(err, &fe):
		return fmt.Sprintf("Could not load %s stories", fe.Category)
	case errors.Is(err, feed.ErrOutOfRange):
		return "That post is no longer in the list"
	default:
		return err.Error()
	}
}
