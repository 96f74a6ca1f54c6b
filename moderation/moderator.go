// Package moderation censors configured words in message content and tags
// each message with its detected language.
package moderation

import (
	"bufio"
	"bytes"
	"embed"
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
	goahocorasick "github.com/anknown/ahocorasick"
)

//go:embed words/censored.txt
var wordsFS embed.FS

// Moderator masks forbidden patterns with a replacement rune. Matching is
// case-insensitive on a rune-by-rune lowered view, so original casing and
// spacing are preserved outside the masked spans.
type Moderator struct {
	matcher  *goahocorasick.Machine
	maskRune rune
}

// NewModerator builds the Aho-Corasick automaton from the given word list.
func NewModerator(censoredWords []string, maskRune rune) (Moderator, error) {
	patterns := make([][]rune, 0, len(censoredWords))
	for _, word := range censoredWords {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		patterns = append(patterns, lowered([]rune(word)))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return Moderator{}, err
	}
	return Moderator{matcher: m, maskRune: maskRune}, nil
}

// NewDefaultModerator loads the embedded word list.
func NewDefaultModerator(maskRune rune) (Moderator, error) {
	raw, err := wordsFS.ReadFile("words/censored.txt")
	if err != nil {
		return Moderator{}, err
	}

	var words []string
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		words = append(words, scanner.Text())
	}
	return NewModerator(words, maskRune)
}

// Censor masks every forbidden pattern in the original text and returns the
// list of words that were found. Clean content comes back unchanged.
func (m *Moderator) Censor(original string) (string, []string) {
	origRunes := []rune(original)
	spans := m.matcher.MultiPatternSearch(lowered(origRunes), false)
	if len(spans) == 0 {
		return original, nil
	}

	var found []string
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origRunes) {
			continue
		}
		found = append(found, string(span.Word))
		for i := start; i < end; i++ {
			origRunes[i] = m.maskRune
		}
	}
	return string(origRunes), found
}

// DetectLanguage returns the ISO 639-1 code of the probable language of the
// content, empty when detection is unreliable.
func DetectLanguage(content string) string {
	info := whatlanggo.Detect(content)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}

func lowered(runes []rune) []rune {
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[i] = unicode.ToLower(r)
	}
	return out
}
