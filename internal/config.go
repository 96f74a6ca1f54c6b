package internal

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type Config struct {
	LogLevel          string        `env:"LOG_LEVEL,default=info"`
	DefaultRoom       string        `env:"DEFAULT_ROOM,default=general"`
	MaxContentLength  int           `env:"MAX_CONTENT_LENGTH,default=500"`
	DuplicateWindow   time.Duration `env:"DUPLICATE_WINDOW,default=5s"`
	ReplyDelayMin     time.Duration `env:"REPLY_DELAY_MIN,default=1s"`
	ReplyDelayMax     time.Duration `env:"REPLY_DELAY_MAX,default=3s"`
	TypingIdleTimeout time.Duration `env:"TYPING_IDLE_TIMEOUT,default=2s"`
	SinkTimeout       time.Duration `env:"SINK_TIMEOUT,default=1s"`
	CharReplacement   string        `env:"CHARACTER_REPLACEMENT,default=*"`
}

// CharacterRune validates that the configured replacement is one rune.
func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}

// ParseLevel maps the configured level name onto a slog level,
// defaulting to info for anything unrecognized.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
