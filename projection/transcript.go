package projection

import (
	"fmt"
	"strings"
	"time"

	"chat-sim/domain"
)

// Transcript renders a room's history as plain text: a header with the room
// name and generation time, a separator, then one line per message.
// User messages read "[HH:MM] author: body", system messages "[HH:MM] body".
func Transcript(room domain.RoomConfig, messages []domain.Message, generatedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Chat History - %s\n", room.Name)
	fmt.Fprintf(&b, "Generated: %s\n", generatedAt.Format("2006-01-02 15:04:05"))
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")

	for _, message := range messages {
		stamp := message.CreatedAt.Format("15:04")
		if message.IsSystem() {
			fmt.Fprintf(&b, "[%s] %s\n", stamp, message.Content)
			continue
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", stamp, message.Author, message.Content)
	}
	return b.String()
}
