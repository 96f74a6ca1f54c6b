package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chat-sim/domain"
	"chat-sim/domain/event"
	"chat-sim/internal"
	"chat-sim/moderation"
	"chat-sim/observability"
	"chat-sim/repositories"
	"chat-sim/responder"
	"chat-sim/runtime"
	"chat-sim/services"
	"chat-sim/session"
	"chat-sim/store"
	"chat-sim/validation"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, drives the console loop, and centralizes
// error reporting so deferred cleanups (index close) execute before exit.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	maskRune, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: internal.ParseLevel(config.LogLevel),
	}))

	// 2. Store & Rooms
	st := store.New(log)
	for _, room := range domain.DefaultRooms() {
		if err := st.CreateRoom(room); err != nil {
			return fmt.Errorf("creating room %q: %w", room.ID, err)
		}
	}

	// 3. Search index (in-memory)
	index, err := repositories.NewMessageIndex(log)
	if err != nil {
		return fmt.Errorf("opening message index: %w", err)
	}
	defer func() {
		log.Info("Closing message index...")
		_ = index.Close()
	}()

	if err := seedSampleMessages(st, index); err != nil {
		return fmt.Errorf("seeding sample messages: %w", err)
	}

	// 4. Moderation
	moderator, err := moderation.NewDefaultModerator(maskRune)
	if err != nil {
		return fmt.Errorf("building moderator: %w", err)
	}

	// 5. Runtime: scheduler, notifier, session, responder
	scheduler := runtime.NewTimerScheduler()
	notifier := runtime.NewNotifier(log, config.SinkTimeout)
	publish := func(e event.DomainEvent) {
		notifier.Publish(context.Background(), e)
	}

	typing := session.NewTypingIndicator()
	sessions := session.NewManager(
		log, st, typing, scheduler, publish,
		domain.RoomID(config.DefaultRoom), config.TypingIdleTimeout,
	)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	peers := responder.New(
		log, st, typing, scheduler, publish,
		rng, config.ReplyDelayMin, config.ReplyDelayMax,
	)

	// 6. Service facade & console sink
	monitor := observability.NewMonitor(log)
	rules := validation.Rules{
		MaxContentLength: config.MaxContentLength,
		DuplicateWindow:  config.DuplicateWindow,
	}
	service := services.NewChatService(
		log, st, sessions, typing, peers,
		moderator, index, notifier, monitor, rules,
	)

	console := NewConsole(os.Stdout, service)
	service.Subscribe("console", console)
	defer service.Unsubscribe("console")
	service.Subscribe("index", repositories.NewIndexSink(log, index))
	defer service.Unsubscribe("index")

	// 7. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 8. Console Loop
	console.Banner()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		console.Prompt()
		select {
		case <-ctx.Done():
			fmt.Println()
			log.Info("Shutting down gracefully...")
			service.Logout()
			return nil
		case line, ok := <-lines:
			if !ok {
				service.Logout()
				return nil
			}
			if strings.TrimSpace(line) == "/quit" {
				service.Logout()
				log.Info("Program stopped cleanly")
				return nil
			}
			console.Dispatch(ctx, line)
		}
	}
}

// seedSampleMessages populates each room with its opening message so a fresh
// session never faces an empty timeline.
func seedSampleMessages(st *store.Store, index repositories.IMessageIndex) error {
	now := time.Now().UTC()
	seeds := []domain.Message{
		domain.NewUserMessage("general", "ChatBot",
			"Welcome to the General chat room! Feel free to introduce yourself.",
			now.Add(-1*time.Minute)),
		domain.NewUserMessage("tech", "TechGuru",
			"Anyone working on interesting projects lately?",
			now.Add(-2*time.Minute)),
		domain.NewUserMessage("gaming", "GameMaster",
			"What games is everyone playing this week?",
			now.Add(-3*time.Minute)),
		domain.NewUserMessage("random", "RandomUser",
			"Did you know that octopuses have three hearts? 🐙",
			now.Add(-4*time.Minute)),
	}
	for _, seed := range seeds {
		stored, err := st.AppendMessage(seed.Room, seed)
		if err != nil {
			return err
		}
		if err := index.Index(stored); err != nil {
			return err
		}
	}
	return nil
}
