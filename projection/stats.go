package projection

import (
	"time"

	"chat-sim/domain"
	"chat-sim/moderation"

	"github.com/samber/lo"
)

// RoomStats aggregates a room's activity for the presentation layer.
type RoomStats struct {
	Name         string
	MemberCount  int
	MessageCount int
	LastActivity *time.Time
	// Languages counts detected message languages by ISO 639-1 code.
	Languages map[string]int
}

// BuildRoomStats computes statistics over a room snapshot.
func BuildRoomStats(view domain.RoomView, messages []domain.Message) RoomStats {
	stats := RoomStats{
		Name:         view.Name,
		MemberCount:  view.MemberCount,
		MessageCount: len(messages),
		Languages:    make(map[string]int),
	}

	if len(messages) > 0 {
		last := messages[len(messages)-1].CreatedAt
		stats.LastActivity = &last
	}

	userMessages := lo.Filter(messages, func(m domain.Message, _ int) bool {
		return m.Kind == domain.KindUser
	})
	for _, m := range userMessages {
		lang := m.Lang
		if lang == "" {
			lang = moderation.DetectLanguage(m.Content)
		}
		if lang != "" {
			stats.Languages[lang]++
		}
	}
	return stats
}
