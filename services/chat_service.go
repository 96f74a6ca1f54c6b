//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
// Package services exposes the command and query surface the presentation
// layer drives. Every mutating operation commits to the store first, then
// notifies subscribed sinks.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chat-sim/contract"
	"chat-sim/domain"
	"chat-sim/domain/event"
	"chat-sim/domain/search"
	"chat-sim/errors"
	"chat-sim/moderation"
	"chat-sim/observability"
	"chat-sim/projection"
	"chat-sim/repositories"
	"chat-sim/responder"
	"chat-sim/runtime"
	"chat-sim/session"
	"chat-sim/store"
	"chat-sim/validation"

	"github.com/samber/lo"
)

type IChatService interface {
	Login(username string) error
	Logout()
	SelectRoom(roomID domain.RoomID) error
	SendMessage(content string) (domain.Message, error)
	NotifyTyping()
	SearchMessages(query string) ([]domain.Message, error)
	FindMessages(ctx context.Context, raw string) ([]repositories.Hit, error)
	ExportHistory(roomID domain.RoomID) (string, error)
	ClearHistory(roomID domain.RoomID) error
	ToggleReaction(messageID int64, label string) (bool, error)

	Rooms() []domain.RoomView
	Messages(roomID domain.RoomID) ([]domain.Message, error)
	CurrentSession() session.Snapshot
	OnlineUsers() []string
	Typing() (session.Annotation, bool)
	RoomStats(roomID domain.RoomID) (projection.RoomStats, error)

	Subscribe(observerID string, sink contract.EventSink)
	Unsubscribe(observerID string)
}

type ChatService struct {
	log       *slog.Logger
	store     *store.Store
	session   *session.Manager
	typing    *session.TypingIndicator
	responder *responder.Responder
	moderator moderation.Moderator
	index     repositories.IMessageIndex
	notifier  *runtime.Notifier
	monitor   *observability.Monitor
	rules     validation.Rules
	now       func() time.Time
}

func NewChatService(
	log *slog.Logger,
	st *store.Store,
	sessions *session.Manager,
	typing *session.TypingIndicator,
	resp *responder.Responder,
	moderator moderation.Moderator,
	index repositories.IMessageIndex,
	notifier *runtime.Notifier,
	monitor *observability.Monitor,
	rules validation.Rules,
) *ChatService {
	return &ChatService{
		log:       log,
		store:     st,
		session:   sessions,
		typing:    typing,
		responder: resp,
		moderator: moderator,
		index:     index,
		notifier:  notifier,
		monitor:   monitor,
		rules:     rules,
		now:       time.Now,
	}
}

func (s *ChatService) Login(username string) error {
	_, err := s.session.Login(username)
	return err
}

func (s *ChatService) Logout() {
	s.session.Logout()
}

func (s *ChatService) SelectRoom(roomID domain.RoomID) error {
	return s.session.SelectRoom(roomID)
}

// SendMessage validates and censors the content, appends it to the current
// room, notifies observers, and arms a simulated reply. The typed failures
// of validation surface synchronously; nothing is committed on failure.
func (s *ChatService) SendMessage(content string) (domain.Message, error) {
	snapshot := s.session.Current()
	if !snapshot.Active {
		return domain.Message{}, errors.ErrNoActiveSession
	}
	if snapshot.Room == "" {
		return domain.Message{}, errors.ErrNoActiveRoom
	}

	now := s.now().UTC()
	last := s.store.LastMessageBy(snapshot.Room, snapshot.Username)
	if err := s.rules.Message(content, last, now); err != nil {
		return domain.Message{}, err
	}

	body, censoredWords := s.moderator.Censor(strings.TrimSpace(content))
	if len(censoredWords) > 0 {
		s.monitor.MessageCensored()
		s.log.Info("Message censored", "author", snapshot.Username, "words", censoredWords)
	}

	message := domain.NewUserMessage(snapshot.Room, snapshot.Username, body, now)
	message.Lang = moderation.DetectLanguage(body)

	stored, err := s.store.AppendMessage(snapshot.Room, message)
	if err != nil {
		return domain.Message{}, err
	}

	// Sending clears the local typing indicator and its debounce timer.
	s.session.StopTyping()

	s.monitor.MessageSent()
	s.notifier.Publish(context.Background(), event.MessagePosted{
		Message:       stored,
		CensoredWords: censoredWords,
	})

	s.monitor.ReplySimulated()
	s.responder.OnMessageSent(snapshot.Room)
	return stored, nil
}

// NotifyTyping reports a keystroke of the local user, restarting the
// debounced typing indicator.
func (s *ChatService) NotifyTyping() {
	s.session.StartTyping()
}

// SearchMessages filters the current room's messages, matching the query
// case-insensitively against body or author. An empty query returns the
// full history, mirroring a cleared search box.
func (s *ChatService) SearchMessages(query string) ([]domain.Message, error) {
	snapshot := s.session.Current()
	if snapshot.Room == "" {
		return nil, errors.ErrNoActiveRoom
	}

	messages, err := s.store.Messages(snapshot.Room)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return messages, nil
	}

	s.monitor.SearchRun()
	return lo.Filter(messages, func(m domain.Message, _ int) bool {
		return strings.Contains(strings.ToLower(m.Content), needle) ||
			strings.Contains(strings.ToLower(m.Author), needle)
	}), nil
}

// FindMessages runs an advanced query against the full-text index.
// Syntax: terms plus optional --room, --author, and --limit flags.
func (s *ChatService) FindMessages(ctx context.Context, raw string) ([]repositories.Hit, error) {
	query := search.NewQuery(raw)
	if query.RoomID == "" {
		// Default to the current room when one is selected.
		if snapshot := s.session.Current(); snapshot.Room != "" {
			query.RoomID = snapshot.Room
		}
	}
	s.monitor.SearchRun()
	return s.index.Search(ctx, query)
}

// ExportHistory produces the plain-text transcript of a room.
func (s *ChatService) ExportHistory(roomID domain.RoomID) (string, error) {
	room, err := s.store.Room(roomID)
	if err != nil {
		return "", err
	}
	messages, err := s.store.Messages(roomID)
	if err != nil {
		return "", err
	}
	return projection.Transcript(room, messages, s.now()), nil
}

// ClearHistory irreversibly empties a room's message sequence, then posts
// a system notice into the freshly cleared room.
func (s *ChatService) ClearHistory(roomID domain.RoomID) error {
	if err := s.store.ClearMessages(roomID); err != nil {
		return err
	}
	s.notifier.Publish(context.Background(), event.HistoryCleared{Room: roomID})

	notice, err := s.store.AppendMessage(roomID,
		domain.NewSystemMessage(roomID, "Chat history cleared", s.now().UTC()))
	if err != nil {
		return err
	}
	s.notifier.Publish(context.Background(), event.MessagePosted{Message: notice})
	return nil
}

// ToggleReaction flips the current user's reaction on a message in the
// current room. Applying it twice restores the prior state.
func (s *ChatService) ToggleReaction(messageID int64, label string) (bool, error) {
	snapshot := s.session.Current()
	if !snapshot.Active {
		return false, errors.ErrNoActiveSession
	}
	if snapshot.Room == "" {
		return false, errors.ErrNoActiveRoom
	}

	added, err := s.store.ToggleReaction(snapshot.Room, messageID, label, snapshot.Username)
	if err != nil {
		return false, err
	}
	s.notifier.Publish(context.Background(), event.ReactionToggled{
		Room:      snapshot.Room,
		MessageID: messageID,
		Label:     label,
		Username:  snapshot.Username,
		Added:     added,
	})
	return added, nil
}

func (s *ChatService) Rooms() []domain.RoomView {
	return s.store.Rooms()
}

func (s *ChatService) Messages(roomID domain.RoomID) ([]domain.Message, error) {
	return s.store.Messages(roomID)
}

func (s *ChatService) CurrentSession() session.Snapshot {
	return s.session.Current()
}

func (s *ChatService) OnlineUsers() []string {
	return s.session.OnlineUsers()
}

func (s *ChatService) Typing() (session.Annotation, bool) {
	return s.typing.Current()
}

func (s *ChatService) RoomStats(roomID domain.RoomID) (projection.RoomStats, error) {
	views := s.store.Rooms()
	view, found := lo.Find(views, func(v domain.RoomView) bool { return v.ID == roomID })
	if !found {
		return projection.RoomStats{}, fmt.Errorf("room %q: %w", roomID, errors.ErrUnknownRoom)
	}
	messages, err := s.store.Messages(roomID)
	if err != nil {
		return projection.RoomStats{}, err
	}
	return projection.BuildRoomStats(view, messages), nil
}

func (s *ChatService) Monitor() *observability.Monitor {
	return s.monitor
}

func (s *ChatService) Subscribe(observerID string, sink contract.EventSink) {
	s.notifier.Subscribe(observerID, sink)
}

func (s *ChatService) Unsubscribe(observerID string) {
	s.notifier.Unsubscribe(observerID)
}
