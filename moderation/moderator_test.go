package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModerator_Censor_Masks_Forbidden_Words(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"badword", "idiot"}, '*')
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
		found    []string
	}{
		{
			name:     "Clean text untouched",
			input:    "hello everyone, nice day",
			expected: "hello everyone, nice day",
		},
		{
			name:     "Single match masked",
			input:    "you badword!",
			expected: "you *******!",
			found:    []string{"badword"},
		},
		{
			name:     "Case insensitive match keeps surrounding casing",
			input:    "What an IDIOT move",
			expected: "What an ***** move",
			found:    []string{"idiot"},
		},
		{
			name:     "Multiple matches",
			input:    "badword and idiot",
			expected: "******* and *****",
			found:    []string{"badword", "idiot"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			censored, found := moderator.Censor(tt.input)
			req.Equal(tt.expected, censored)
			req.Equal(tt.found, found)
		})
	}
}

func TestNewDefaultModerator_Loads_Embedded_List(t *testing.T) {
	req := require.New(t)
	moderator, err := NewDefaultModerator('*')
	req.NoError(err)

	censored, found := moderator.Censor("that was a stupid idea")
	req.Equal("that was a ****** idea", censored)
	req.Equal([]string{"stupid"}, found)
}

func TestDetectLanguage(t *testing.T) {
	req := require.New(t)

	req.Equal("en", DetectLanguage("The quick brown fox jumps over the lazy dog and keeps running"))
	req.Equal("fr", DetectLanguage("Bonjour tout le monde, comment allez-vous aujourd'hui mes amis"))
}
