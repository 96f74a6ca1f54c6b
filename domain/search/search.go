package search

import (
	"strconv"
	"strings"

	"chat-sim/domain"
)

// Query represents the structured parameters of an advanced message search.
// It decouples the raw chat input from the index engine requirements.
type Query struct {
	RawInput string        // The original input from the user
	Terms    string        // The actual text to match against message bodies
	Author   string        // Restrict hits to a single author
	RoomID   domain.RoomID // Target room, empty for all rooms
	Limit    int           // Pagination: number of results
}

// NewQuery parses a raw string to extract command-line style arguments.
// Example: /find "deploy friday" --author Alice --room tech --limit 5
func NewQuery(input string) *Query {
	query := &Query{
		RawInput: input,
		Limit:    10, // Default limit
	}

	parts := strings.Fields(input)
	var textTerms []string

	for i := 0; i < len(parts); i++ {
		part := parts[i]

		// Handle flags like --room tech or --limit 5
		if strings.HasPrefix(part, "--") && i+1 < len(parts) {
			key := strings.TrimPrefix(part, "--")
			val := parts[i+1]

			switch key {
			case "room":
				query.RoomID = domain.RoomID(val)
			case "author":
				query.Author = val
			case "limit":
				if limit, err := strconv.Atoi(val); err == nil && limit > 0 {
					query.Limit = limit
				}
			}
			i++ // Skip the value part in next iteration
			continue
		}

		// If it's not a flag, it's a search term
		if !strings.HasPrefix(part, "/") {
			textTerms = append(textTerms, strings.Trim(part, `"`))
		}
	}

	query.Terms = strings.Join(textTerms, " ")
	return query
}
