// Package validation holds the pure content checks applied before a
// message or username reaches the store.
package validation

import (
	"strings"
	"time"

	"chat-sim/domain"
	"chat-sim/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

const (
	// DefaultMaxContentLength counts raw, untrimmed characters.
	DefaultMaxContentLength = 500
	// DefaultDuplicateWindow bounds how quickly the same content may repeat.
	DefaultDuplicateWindow = 5000 * time.Millisecond
)

type usernameRequest struct {
	Username string `validate:"required,min=2"`
}

// Username verifies a login name after trimming surrounding whitespace.
func Username(raw string) (string, error) {
	username := strings.TrimSpace(raw)
	if err := validate.Struct(usernameRequest{Username: username}); err != nil {
		return "", errors.ErrInvalidUsername
	}
	return username, nil
}

// Rules carries the tunable limits of message validation.
type Rules struct {
	MaxContentLength int
	DuplicateWindow  time.Duration
}

func DefaultRules() Rules {
	return Rules{
		MaxContentLength: DefaultMaxContentLength,
		DuplicateWindow:  DefaultDuplicateWindow,
	}
}

// Message checks content against the rules and the author's most recent
// message in the same room. lastByAuthor may be nil when the author has not
// posted yet. Length is counted on the raw content, emptiness after trimming.
func (r Rules) Message(content string, lastByAuthor *domain.Message, now time.Time) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.ErrEmptyMessage
	}
	if len([]rune(content)) > r.MaxContentLength {
		return errors.ErrMessageTooLong
	}
	if lastByAuthor != nil &&
		lastByAuthor.Content == trimmed &&
		now.Sub(lastByAuthor.CreatedAt) < r.DuplicateWindow {
		return errors.ErrDuplicateMessage
	}
	return nil
}
