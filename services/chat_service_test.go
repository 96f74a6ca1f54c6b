package services

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"testing"
	"time"

	"chat-sim/domain"
	"chat-sim/domain/event"
	"chat-sim/errors"
	"chat-sim/moderation"
	"chat-sim/observability"
	"chat-sim/repositories"
	"chat-sim/responder"
	"chat-sim/runtime"
	"chat-sim/session"
	"chat-sim/store"
	"chat-sim/validation"

	"github.com/stretchr/testify/require"
)

type fixture struct {
	service   *ChatService
	store     *store.Store
	scheduler *runtime.ManualScheduler
	notifier  *runtime.Notifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := slog.Default()

	st := store.New(log)
	for _, cfg := range domain.DefaultRooms() {
		require.NoError(t, st.CreateRoom(cfg))
	}

	notifier := runtime.NewNotifier(log, time.Second)
	publish := func(e event.DomainEvent) { notifier.Publish(context.Background(), e) }

	typing := session.NewTypingIndicator()
	scheduler := runtime.NewManualScheduler()
	sessions := session.NewManager(log, st, typing, scheduler, publish, "general", 2*time.Second)
	resp := responder.New(log, st, typing, scheduler, publish,
		rand.New(rand.NewSource(7)), time.Second, 3*time.Second)

	moderator, err := moderation.NewModerator([]string{"badword"}, '*')
	require.NoError(t, err)

	index, err := repositories.NewMessageIndex(log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	notifier.Subscribe("index", repositories.NewIndexSink(log, index))

	service := NewChatService(log, st, sessions, typing, resp, moderator, index,
		notifier, observability.NewMonitor(log), validation.DefaultRules())

	return &fixture{service: service, store: st, scheduler: scheduler, notifier: notifier}
}


func TestChatService_Send_Hello_Scenario(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	// Given Alice logs into an empty general room and selects it
	req.NoError(f.service.Login("Alice"))
	req.NoError(f.service.SelectRoom("general"))

	// When she sends "hello"
	sent, err := f.service.SendMessage("hello")
	req.NoError(err)

	// Then the room holds the join notice and her message, in commit order
	messages, err := f.service.Messages("general")
	req.NoError(err)
	req.Len(messages, 2)
	req.Equal(domain.KindSystem, messages[0].Kind)
	req.Equal("Alice joined the chat!", messages[0].Content)
	req.Equal(domain.KindUser, messages[1].Kind)
	req.Equal("Alice", messages[1].Author)
	req.Equal("hello", messages[1].Content)
	req.Equal(sent.ID, messages[1].ID)
}

func TestChatService_SendMessage_Requires_Session_And_Room(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	_, err := f.service.SendMessage("hello")
	req.ErrorIs(err, errors.ErrNoActiveSession)

	req.NoError(f.service.Login("Alice"))
	_, err = f.service.SendMessage("hello")
	req.ErrorIs(err, errors.ErrNoActiveRoom)
}

func TestChatService_SendMessage_Surfaces_Validation_Failures(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.service.now = func() time.Time { return time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC) }

	req.NoError(f.service.Login("Alice"))
	req.NoError(f.service.SelectRoom("general"))

	_, err := f.service.SendMessage("   ")
	req.ErrorIs(err, errors.ErrEmptyMessage)

	_, err = f.service.SendMessage(strings.Repeat("x", 501))
	req.ErrorIs(err, errors.ErrMessageTooLong)

	// Same content twice at the same instant is spam
	_, err = f.service.SendMessage("hello")
	req.NoError(err)
	_, err = f.service.SendMessage("hello")
	req.ErrorIs(err, errors.ErrDuplicateMessage)

	// Nothing beyond the first hello was committed
	messages, err := f.service.Messages("general")
	req.NoError(err)
	req.Len(messages, 2) // join notice + hello
}

func TestChatService_SendMessage_Censors_Content(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	req.NoError(f.service.Login("Alice"))
	req.NoError(f.service.SelectRoom("general"))

	sent, err := f.service.SendMessage("you badword!")
	req.NoError(err)
	req.Equal("you *******!", sent.Content)
}

func TestChatService_SendMessage_Triggers_Simulated_Reply(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	req.NoError(f.service.Login("Zoe"))
	req.NoError(f.service.SelectRoom("general"))
	_, err := f.service.SendMessage("anyone here?")
	req.NoError(err)

	// When both responder stages elapse
	f.scheduler.Advance(3 * time.Second)
	annotation, ok := f.service.Typing()
	req.True(ok)
	req.Contains(responder.Roster(), annotation.Username)

	f.scheduler.Advance(3 * time.Second)
	_, ok = f.service.Typing()
	req.False(ok)

	messages, err := f.service.Messages("general")
	req.NoError(err)
	req.Len(messages, 3) // join notice, question, simulated reply
	reply := messages[2]
	req.Equal(domain.KindUser, reply.Kind)
	req.Contains(responder.Phrases(), reply.Content)
}

func TestChatService_Reply_Arrives_After_Leaving_The_Room(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	req.NoError(f.service.Login("Zoe"))
	req.NoError(f.service.SelectRoom("general"))
	_, err := f.service.SendMessage("talk to me")
	req.NoError(err)

	// When the user navigates away before the reply lands
	req.NoError(f.service.SelectRoom("tech"))
	f.scheduler.Advance(10 * time.Second)

	// Then the reply still landed in general
	messages, err := f.service.Messages("general")
	req.NoError(err)
	req.Len(messages, 3)
}

func TestChatService_SearchMessages_Case_Insensitive(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	req.NoError(f.service.Login("Zoe"))
	req.NoError(f.service.SelectRoom("general"))
	_, err := f.service.SendMessage("Deploy is on Friday")
	req.NoError(err)
	_, err = f.service.SendMessage("lunch?")
	req.NoError(err)

	// Body match, any casing
	hits, err := f.service.SearchMessages("FRIDAY")
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal("Deploy is on Friday", hits[0].Content)

	// Author match, plus the join notice that mentions her by name
	hits, err = f.service.SearchMessages("zoe")
	req.NoError(err)
	req.Len(hits, 3)

	// Empty query returns the whole history, join notice included
	hits, err = f.service.SearchMessages("   ")
	req.NoError(err)
	req.Len(hits, 3)
}

func TestChatService_FindMessages_Uses_The_Index(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	req.NoError(f.service.Login("Zoe"))
	req.NoError(f.service.SelectRoom("tech"))
	_, err := f.service.SendMessage("the release pipeline is green")
	req.NoError(err)
	req.NoError(f.service.SelectRoom("general"))
	_, err = f.service.SendMessage("release party tonight")
	req.NoError(err)

	// Current room is general, so the unscoped query defaults to it
	hits, err := f.service.FindMessages(context.Background(), "release")
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(domain.RoomID("general"), hits[0].Room)

	// Explicit --room overrides the default
	hits, err = f.service.FindMessages(context.Background(), "release --room tech")
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(domain.RoomID("tech"), hits[0].Room)
}

func TestChatService_ExportHistory_Transcript(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.service.now = func() time.Time { return time.Date(2025, 3, 14, 10, 1, 0, 0, time.UTC) }

	req.NoError(f.service.Login("X99"))
	req.NoError(f.service.SelectRoom("general"))
	_, err := f.service.SendMessage("hello")
	req.NoError(err)

	transcript, err := f.service.ExportHistory("general")
	req.NoError(err)

	req.Contains(transcript, "Chat History - General\n")
	req.Contains(transcript, "Generated: 2025-03-14 10:01:00\n")
	req.Contains(transcript, "X99 joined the chat!\n")
	req.Contains(transcript, "[10:01] X99: hello\n")

	// The user line comes after the join notice
	req.Less(strings.Index(transcript, "joined the chat"), strings.Index(transcript, "X99: hello"))
}

func TestChatService_ExportHistory_Unknown_Room(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	_, err := f.service.ExportHistory("nowhere")
	req.ErrorIs(err, errors.ErrUnknownRoom)
}

func TestChatService_ClearHistory_Then_Send_Succeeds(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	req.NoError(f.service.Login("Zoe"))
	req.NoError(f.service.SelectRoom("general"))
	_, err := f.service.SendMessage("to be erased")
	req.NoError(err)

	req.NoError(f.service.ClearHistory("general"))

	// Only the clear notice remains
	messages, err := f.service.Messages("general")
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal(domain.KindSystem, messages[0].Kind)
	req.Equal("Chat history cleared", messages[0].Content)

	// And sending afterwards appends normally
	_, err = f.service.SendMessage("fresh start")
	req.NoError(err)
	messages, err = f.service.Messages("general")
	req.NoError(err)
	req.Len(messages, 2)
}

func TestChatService_ToggleReaction_Involution(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	req.NoError(f.service.Login("Zoe"))
	req.NoError(f.service.SelectRoom("general"))
	sent, err := f.service.SendMessage("react to this")
	req.NoError(err)

	added, err := f.service.ToggleReaction(sent.ID, "🔥")
	req.NoError(err)
	req.True(added)

	added, err = f.service.ToggleReaction(sent.ID, "🔥")
	req.NoError(err)
	req.False(added)

	messages, err := f.service.Messages("general")
	req.NoError(err)
	req.Empty(messages[len(messages)-1].Reactions)
}

type commitCheckSink struct {
	service *ChatService
	lens    []int
}

func (s *commitCheckSink) Consume(_ context.Context, e event.DomainEvent) error {
	if posted, ok := e.(event.MessagePosted); ok {
		messages, err := s.service.Messages(posted.Message.Room)
		if err != nil {
			return err
		}
		s.lens = append(s.lens, len(messages))
	}
	return nil
}

func TestChatService_Sinks_See_Committed_State(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	sink := &commitCheckSink{service: f.service}
	f.service.Subscribe("commit-check", sink)

	req.NoError(f.service.Login("Zoe"))
	req.NoError(f.service.SelectRoom("general"))
	_, err := f.service.SendMessage("observable")
	req.NoError(err)

	// Every notification found the message already durable in the store
	req.NotEmpty(sink.lens)
	for i, n := range sink.lens {
		req.Equal(i+1, n)
	}
}

func TestChatService_RoomStats(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	req.NoError(f.service.Login("Zoe"))
	req.NoError(f.service.SelectRoom("general"))
	_, err := f.service.SendMessage("counting me in")
	req.NoError(err)

	stats, err := f.service.RoomStats("general")
	req.NoError(err)
	req.Equal("General", stats.Name)
	req.Equal(1, stats.MemberCount)
	req.Equal(2, stats.MessageCount)
	req.NotNil(stats.LastActivity)

	_, err = f.service.RoomStats("nowhere")
	req.ErrorIs(err, errors.ErrUnknownRoom)
}
