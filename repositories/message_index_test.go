package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"chat-sim/domain"
	"chat-sim/domain/search"

	"github.com/stretchr/testify/require"
)

func newIndex(t *testing.T) *MessageIndex {
	t.Helper()
	index, err := NewMessageIndex(slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func indexMessage(t *testing.T, index *MessageIndex, id int64, room domain.RoomID, author, content string) {
	t.Helper()
	message := domain.NewUserMessage(room, author, content, time.Now().UTC())
	message.ID = id
	require.NoError(t, index.Index(message))
}

func TestMessageIndex_Search_By_Term(t *testing.T) {
	req := require.New(t)
	index := newIndex(t)

	indexMessage(t, index, 1, "tech", "Alice", "deploying the new release on friday")
	indexMessage(t, index, 2, "tech", "Bob", "lunch anyone?")
	indexMessage(t, index, 3, "general", "Charlie", "friday is release day")

	hits, err := index.Search(context.Background(), search.NewQuery("release"))
	req.NoError(err)
	req.Len(hits, 2)
	for _, hit := range hits {
		req.Contains(hit.Content, "release")
	}
}

func TestMessageIndex_Search_Filters_By_Room_And_Author(t *testing.T) {
	req := require.New(t)
	index := newIndex(t)

	indexMessage(t, index, 1, "tech", "Alice", "deploying the new release on friday")
	indexMessage(t, index, 2, "general", "Alice", "release party at my place")
	indexMessage(t, index, 3, "tech", "Bob", "release notes look good")

	hits, err := index.Search(context.Background(), search.NewQuery("release --room tech --author Alice"))
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(int64(1), hits[0].MessageID)
	req.Equal(domain.RoomID("tech"), hits[0].Room)
	req.Equal("Alice", hits[0].Author)
}

func TestMessageIndex_Search_Without_Terms_Matches_All_In_Room(t *testing.T) {
	req := require.New(t)
	index := newIndex(t)

	indexMessage(t, index, 1, "tech", "Alice", "first")
	indexMessage(t, index, 2, "tech", "Bob", "second")
	indexMessage(t, index, 3, "general", "Charlie", "elsewhere")

	hits, err := index.Search(context.Background(), search.NewQuery("--room tech"))
	req.NoError(err)
	req.Len(hits, 2)
}

func TestMessageIndex_ClearRoom_Drops_Documents(t *testing.T) {
	req := require.New(t)
	index := newIndex(t)

	indexMessage(t, index, 1, "tech", "Alice", "to be forgotten")
	indexMessage(t, index, 2, "general", "Bob", "to be kept")

	req.NoError(index.ClearRoom("tech"))

	hits, err := index.Search(context.Background(), search.NewQuery("forgotten"))
	req.NoError(err)
	req.Empty(hits)

	hits, err = index.Search(context.Background(), search.NewQuery("kept"))
	req.NoError(err)
	req.Len(hits, 1)
}

func TestMessageIndex_Honors_Limit(t *testing.T) {
	req := require.New(t)
	index := newIndex(t)

	for i := int64(1); i <= 10; i++ {
		indexMessage(t, index, i, "general", "Alice", "same searchable content")
	}

	hits, err := index.Search(context.Background(), search.NewQuery("searchable --limit 3"))
	req.NoError(err)
	req.Len(hits, 3)
}
