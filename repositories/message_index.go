//go:generate go run go.uber.org/mock/mockgen -source=message_index.go -destination=../mocks/mock_message_index.go -package=mocks
// Package repositories holds the full-text message index backing the
// advanced /find search. The index is in-memory only, rebuilt each run,
// like every other piece of state in the simulator.
package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"chat-sim/domain"
	"chat-sim/domain/search"

	"github.com/blugelabs/bluge"
)

type IMessageIndex interface {
	Index(message domain.Message) error
	Search(ctx context.Context, query *search.Query) ([]Hit, error)
	ClearRoom(roomID domain.RoomID) error
	Close() error
}

// Hit is one indexed message matched by a query.
type Hit struct {
	MessageID int64
	Room      domain.RoomID
	Author    string
	Content   string
}

type MessageIndex struct {
	mu     sync.Mutex
	log    *slog.Logger
	writer *bluge.Writer
	// docs tracks document identifiers per room so ClearRoom can drop them.
	docs map[domain.RoomID][]string
}

func NewMessageIndex(log *slog.Logger) (*MessageIndex, error) {
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	return &MessageIndex{
		log:    log,
		writer: writer,
		docs:   make(map[domain.RoomID][]string),
	}, nil
}

// Index adds one message to the full-text index. The message identifier is
// the document key, so re-indexing the same message is an update.
func (m *MessageIndex) Index(message domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	docID := strconv.FormatInt(message.ID, 10)
	doc := bluge.NewDocument(docID).
		AddField(bluge.NewTextField("content", message.Content).StoreValue()).
		AddField(bluge.NewTextField("author", message.Author).StoreValue()).
		AddField(bluge.NewKeywordField("room", string(message.Room)).StoreValue()).
		AddField(bluge.NewKeywordField("kind", string(message.Kind)).StoreValue()).
		AddField(bluge.NewDateTimeField("at", message.CreatedAt))

	if err := m.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("indexing message %d: %w", message.ID, err)
	}
	m.docs[message.Room] = append(m.docs[message.Room], docID)
	return nil
}

// Search runs a parsed query against the index and returns the stored
// fields of every hit, best score first.
func (m *MessageIndex) Search(ctx context.Context, query *search.Query) ([]Hit, error) {
	reader, err := m.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("opening reader: %w", err)
	}
	defer func() { _ = reader.Close() }()

	boolean := bluge.NewBooleanQuery()
	if query.Terms != "" {
		boolean.AddMust(bluge.NewMatchQuery(query.Terms).SetField("content"))
	} else {
		boolean.AddMust(bluge.NewMatchAllQuery())
	}
	if query.RoomID != "" {
		boolean.AddMust(bluge.NewTermQuery(string(query.RoomID)).SetField("room"))
	}
	if query.Author != "" {
		boolean.AddMust(bluge.NewMatchQuery(query.Author).SetField("author"))
	}

	request := bluge.NewTopNSearch(query.Limit, boolean)
	matches, err := reader.Search(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", query.Terms, err)
	}

	var hits []Hit
	match, err := matches.Next()
	for err == nil && match != nil {
		hit := Hit{}
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID, _ = strconv.ParseInt(string(value), 10, 64)
			case "content":
				hit.Content = string(value)
			case "author":
				hit.Author = string(value)
			case "room":
				hit.Room = domain.RoomID(value)
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		hits = append(hits, hit)
		match, err = matches.Next()
	}
	if err != nil {
		return nil, err
	}
	return hits, nil
}

// ClearRoom drops every indexed document of a room, mirroring a history
// clear in the store.
func (m *MessageIndex) ClearRoom(roomID domain.RoomID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, docID := range m.docs[roomID] {
		if err := m.writer.Delete(bluge.Identifier(docID)); err != nil {
			return fmt.Errorf("deleting document %s: %w", docID, err)
		}
	}
	delete(m.docs, roomID)
	return nil
}

func (m *MessageIndex) Close() error {
	return m.writer.Close()
}
