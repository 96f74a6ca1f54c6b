package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"chat-sim/domain"
	"chat-sim/domain/event"
	"chat-sim/services"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// Console renders the chat to a terminal. It is both the command dispatcher
// for user input and an event sink fed after every committed mutation, so
// what it prints always reflects queryable state.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	service services.IChatService
}

func NewConsole(out io.Writer, service services.IChatService) *Console {
	return &Console{out: out, service: service}
}

func (c *Console) Banner() {
	c.mu.Lock()
	defer c.mu.Unlock()
	header := color.New(color.BgBlack, color.FgGreen).Render("  ====== Chat Simulator ======  ")
	fmt.Fprintln(c.out, header)
	fmt.Fprintln(c.out, "Type /help for the command list, /quit to exit.")
}

func (c *Console) Prompt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := c.service.CurrentSession()
	switch {
	case !snapshot.Active:
		fmt.Fprint(c.out, "> ")
	case snapshot.Room == "":
		fmt.Fprintf(c.out, "%s> ", snapshot.Username)
	default:
		fmt.Fprintf(c.out, "%s@%s> ", snapshot.Username, snapshot.Room)
	}
}

// Dispatch routes one input line. Lines starting with "/" are commands,
// anything else is sent as a message to the current room.
func (c *Console) Dispatch(ctx context.Context, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if !strings.HasPrefix(line, "/") {
		if _, err := c.service.SendMessage(line); err != nil {
			c.printError(err)
		}
		return
	}

	command, args, _ := strings.Cut(line, " ")
	args = strings.TrimSpace(args)
	switch command {
	case "/help":
		c.printHelp()
	case "/login":
		if err := c.service.Login(args); err != nil {
			c.printError(err)
			return
		}
		c.mu.Lock()
		fmt.Fprintln(c.out, "Logged in. Pick a room with /join, see them with /rooms.")
		c.mu.Unlock()
	case "/logout":
		c.service.Logout()
	case "/rooms":
		c.printRooms()
	case "/join":
		if err := c.service.SelectRoom(domain.RoomID(args)); err != nil {
			c.printError(err)
			return
		}
		c.printMessages(domain.RoomID(args))
	case "/typing":
		c.service.NotifyTyping()
	case "/search":
		c.printSearch(args)
	case "/find":
		c.printFind(ctx, args)
	case "/export":
		c.printExport(args)
	case "/clear":
		c.clearHistory(args)
	case "/react":
		c.toggleReaction(args)
	case "/stats":
		c.printStats(args)
	case "/who":
		c.printOnline()
	case "/monitor":
		c.printMonitor()
	default:
		c.printError(fmt.Errorf("unknown command %q, see /help", command))
	}
}

// Consume implements contract.EventSink. Events for rooms the user is not
// looking at are rendered as short notices instead of full lines.
func (c *Console) Consume(_ context.Context, e event.DomainEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.service.CurrentSession().Room
	switch ev := e.(type) {
	case event.MessagePosted:
		if ev.Message.Room != current {
			fmt.Fprintln(c.out, dim(fmt.Sprintf("  (new message in #%s)", ev.Message.Room)))
			return nil
		}
		c.printMessageLine(ev.Message)
		if len(ev.CensoredWords) > 0 {
			fmt.Fprintln(c.out, dim(fmt.Sprintf("  (moderated: %s)", strings.Join(ev.CensoredWords, ", "))))
		}
	case event.TypingStarted:
		if ev.Room == current {
			fmt.Fprintln(c.out, dim(fmt.Sprintf("  %s", ev.Text)))
		}
	case event.UserJoined:
		fmt.Fprintln(c.out, dim(fmt.Sprintf("  %s is online", ev.Username)))
	case event.UserLeft:
		fmt.Fprintln(c.out, dim(fmt.Sprintf("  %s went offline", ev.Username)))
	case event.HistoryCleared:
		if ev.Room == current {
			fmt.Fprintln(c.out, dim("  (history cleared)"))
		}
	case event.ReactionToggled:
		if ev.Room == current {
			verb := "added"
			if !ev.Added {
				verb = "removed"
			}
			fmt.Fprintln(c.out, dim(fmt.Sprintf("  %s %s %s on message %d",
				ev.Username, verb, ev.Label, ev.MessageID)))
		}
	}
	return nil
}

func (c *Console) printHelp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, `Commands:
  /login <username>          start a session
  /logout                    end the session
  /rooms                     list rooms
  /join <room>               switch to a room
  <text>                     send a message to the current room
  /typing                    show the typing indicator
  /search <text>             substring search in the current room
  /find <terms> [--room r] [--author a] [--limit n]
                             indexed search across rooms
  /export [room]             print a plain-text transcript
  /clear [room]              erase a room's history
  /react <id> <label>        toggle a reaction on a message
  /stats [room]              room statistics
  /who                       online users
  /monitor                   process and activity counters
  /quit                      exit
`)
}

func (c *Console) printRooms() {
	c.mu.Lock()
	defer c.mu.Unlock()
	table := tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"ID", "Name", "Description", "Members", "Messages"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, room := range c.service.Rooms() {
		table.Append([]string{
			string(room.ID),
			room.Name,
			room.Description,
			strconv.Itoa(room.MemberCount),
			strconv.Itoa(room.MessageCount),
		})
	}
	table.Render()
}

func (c *Console) printMessages(roomID domain.RoomID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	messages, err := c.service.Messages(roomID)
	if err != nil {
		c.printErrorLocked(err)
		return
	}
	for _, message := range messages {
		c.printMessageLine(message)
	}
}

func (c *Console) printSearch(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	matches, err := c.service.SearchMessages(query)
	if err != nil {
		c.printErrorLocked(err)
		return
	}
	fmt.Fprintf(c.out, "%d matching message(s)\n", len(matches))
	for _, message := range matches {
		c.printMessageLine(message)
	}
}

func (c *Console) printFind(ctx context.Context, raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	hits, err := c.service.FindMessages(ctx, raw)
	if err != nil {
		c.printErrorLocked(err)
		return
	}
	fmt.Fprintf(c.out, "%d hit(s)\n", len(hits))
	for _, hit := range hits {
		fmt.Fprintf(c.out, "  #%s %s: %s\n", hit.Room, highlight(hit.Author), hit.Content)
	}
}

func (c *Console) printExport(arg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	roomID := c.roomArgLocked(arg)
	transcript, err := c.service.ExportHistory(roomID)
	if err != nil {
		c.printErrorLocked(err)
		return
	}
	fmt.Fprint(c.out, transcript)
}

func (c *Console) clearHistory(arg string) {
	c.mu.Lock()
	roomID := c.roomArgLocked(arg)
	c.mu.Unlock()
	if err := c.service.ClearHistory(roomID); err != nil {
		c.printError(err)
	}
}

func (c *Console) toggleReaction(args string) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		c.printError(fmt.Errorf("usage: /react <message-id> <label>"))
		return
	}
	messageID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		c.printError(fmt.Errorf("message id must be a number: %w", err))
		return
	}
	if _, err := c.service.ToggleReaction(messageID, fields[1]); err != nil {
		c.printError(err)
	}
}

func (c *Console) printStats(arg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	roomID := c.roomArgLocked(arg)
	stats, err := c.service.RoomStats(roomID)
	if err != nil {
		c.printErrorLocked(err)
		return
	}
	lastActivity := "never"
	if stats.LastActivity != nil {
		lastActivity = stats.LastActivity.Format("15:04:05")
	}
	languages := make([]string, 0, len(stats.Languages))
	for lang, count := range stats.Languages {
		languages = append(languages, fmt.Sprintf("%s:%d", lang, count))
	}
	sort.Strings(languages)

	table := tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"Room", "Members", "Messages", "Last Activity", "Languages"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.Append([]string{
		stats.Name,
		strconv.Itoa(stats.MemberCount),
		strconv.Itoa(stats.MessageCount),
		lastActivity,
		strings.Join(languages, " "),
	})
	table.Render()
}

func (c *Console) printOnline() {
	c.mu.Lock()
	defer c.mu.Unlock()
	online := c.service.OnlineUsers()
	if len(online) == 0 {
		fmt.Fprintln(c.out, "Nobody is online.")
		return
	}
	fmt.Fprintf(c.out, "Online: %s\n", strings.Join(online, ", "))
}

func (c *Console) printMonitor() {
	c.mu.Lock()
	defer c.mu.Unlock()
	service, ok := c.service.(*services.ChatService)
	if !ok {
		return
	}
	stats := service.Monitor().Snapshot()
	table := tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"Sent", "Replies", "Censored", "Searches", "RAM", "CPU", "Status", "Uptime"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.Append([]string{
		strconv.FormatUint(stats.MessagesSent, 10),
		strconv.FormatUint(stats.RepliesSimulated, 10),
		strconv.FormatUint(stats.MessagesCensored, 10),
		strconv.FormatUint(stats.SearchesRun, 10),
		fmt.Sprintf("%d MiB", stats.RamBytes/(1024*1024)),
		fmt.Sprintf("%.1f%%", stats.CPUPercent),
		stats.PidStatus,
		stats.Uptime,
	})
	table.Render()
}

// roomArgLocked resolves an optional room argument, falling back to the
// session's current room.
func (c *Console) roomArgLocked(arg string) domain.RoomID {
	if arg != "" {
		return domain.RoomID(arg)
	}
	return c.service.CurrentSession().Room
}

func (c *Console) printMessageLine(message domain.Message) {
	stamp := message.CreatedAt.Local().Format("15:04")
	if message.IsSystem() {
		fmt.Fprintf(c.out, "[%s] %s\n", stamp, dim(message.Content))
		return
	}
	line := fmt.Sprintf("[%s] %s: %s", stamp, highlight(message.Author), message.Content)
	fmt.Fprintln(c.out, line)
	for label, users := range message.Reactions {
		fmt.Fprintln(c.out, dim(fmt.Sprintf("    %s x%d", label, len(users))))
	}
}

func (c *Console) printError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printErrorLocked(err)
}

func (c *Console) printErrorLocked(err error) {
	fmt.Fprintln(c.out, color.New(color.FgRed).Render("Error: "+err.Error()))
}

func dim(s string) string {
	return color.New(color.FgGray).Render(s)
}

func highlight(s string) string {
	return color.New(color.FgCyan).Render(s)
}
