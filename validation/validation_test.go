package validation

import (
	"strings"
	"testing"
	"time"

	"chat-sim/domain"
	"chat-sim/errors"

	"github.com/stretchr/testify/require"
)

func TestUsername_Trims_And_Validates(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		name     string
		raw      string
		expected string
		err      error
	}{
		{name: "Valid username", raw: "Alice", expected: "Alice"},
		{name: "Surrounding whitespace trimmed", raw: "  Bob  ", expected: "Bob"},
		{name: "Exactly two characters", raw: "Al", expected: "Al"},
		{name: "Empty", raw: "", err: errors.ErrInvalidUsername},
		{name: "Whitespace only", raw: "   ", err: errors.ErrInvalidUsername},
		{name: "Single character after trim", raw: " A ", err: errors.ErrInvalidUsername},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			username, err := Username(tt.raw)
			if tt.err != nil {
				req.ErrorIs(err, tt.err)
				return
			}
			req.NoError(err)
			req.Equal(tt.expected, username)
		})
	}
}

func TestMessage_Rejects_Empty_After_Trimming(t *testing.T) {
	req := require.New(t)
	rules := DefaultRules()

	req.ErrorIs(rules.Message("", nil, time.Now()), errors.ErrEmptyMessage)
	req.ErrorIs(rules.Message("   \t  ", nil, time.Now()), errors.ErrEmptyMessage)
}

func TestMessage_Rejects_Raw_Length_Over_Limit(t *testing.T) {
	req := require.New(t)
	rules := DefaultRules()

	// 500 raw characters pass, 501 fail, trimming does not rescue the count
	req.NoError(rules.Message(strings.Repeat("a", 500), nil, time.Now()))
	req.ErrorIs(rules.Message(strings.Repeat("a", 501), nil, time.Now()), errors.ErrMessageTooLong)
	req.ErrorIs(rules.Message("a"+strings.Repeat(" ", 500), nil, time.Now()), errors.ErrMessageTooLong)
}

func TestMessage_Rejects_Duplicate_Within_Window(t *testing.T) {
	req := require.New(t)
	rules := DefaultRules()
	now := time.Now().UTC()

	// Given the author's most recent message, 2 seconds old
	last := domain.NewUserMessage("general", "alice", "hello", now.Add(-2*time.Second))

	// Then identical content is rejected as spam
	req.ErrorIs(rules.Message("hello", &last, now), errors.ErrDuplicateMessage)

	// And different content is accepted
	req.NoError(rules.Message("hello again", &last, now))
}

func TestMessage_Accepts_Duplicate_After_Window(t *testing.T) {
	req := require.New(t)
	rules := DefaultRules()
	now := time.Now().UTC()

	// Given the identical message is older than 5000 ms
	last := domain.NewUserMessage("general", "alice", "hello", now.Add(-6*time.Second))

	req.NoError(rules.Message("hello", &last, now))
}

func TestMessage_Accepts_First_Message(t *testing.T) {
	req := require.New(t)

	req.NoError(DefaultRules().Message("hello", nil, time.Now()))
}
