package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/liminalpurple/evastatus/internal/render"
	"github.com/liminalpurple/evastatus/internal/status"
	"maunium.net/go/mautrix/event"
)

const (
	commandPrefix       = "!eva"
	defaultHistoryLimit = 10
)

// handleMessage processes text messages looking for !eva commands
func (b *Bot) handleMessage(ctx context.Context, evt *event.Event) {
	// Only process messages from our user
	if evt.Sender != b.client.UserID {
		return
	}

	content, ok := evt.Content.Parsed.(*event.MessageEventContent)
	if !ok {
		return
	}

	// Skip edits (don't respond to our own command results)
	if content.RelatesTo != nil && content.RelatesTo.Type == event.RelReplace {
		return
	}
	if content.MsgType != event.MsgText {
		return
	}

	body := strings.TrimSpace(content.Body)
	if !isCommand(body) {
		return
	}

	b.log.Info().Str("command", body).Msg("Processing command")
	result := b.executeCommand(ctx, body)

	// Edit the original message with the result
	if err := b.client.EditMessage(ctx, evt.RoomID, evt.ID, body+"\n\n"+result); err != nil {
		b.log.Error().Err(err).Msg("Error editing message")
	}
}

// isCommand reports whether body is "!eva" or starts with "!eva "
func isCommand(body string) bool {
	rest, ok := strings.CutPrefix(body, commandPrefix)
	return ok && (rest == "" || rest[0] == ' ' || rest[0] == '\n')
}

// showHelp returns a help message with all available commands
func (b *Bot) showHelp() string {
	return "Статус Евы:\n\n" +
		"- !eva show - Show the current status, walks and photo count\n" +
		"- !eva set [+walk +eat +drink +play +cold] [mood=N] <text> - Record a new status\n" +
		"- !eva history [N] - Show the last N statuses (default 10)\n" +
		"- !eva history clear - Clear the history (current status stays)\n" +
		"- !eva walk - Count a walk\n" +
		"- !eva walk reset - Reset the walk counter\n" +
		"- !eva photos - Show how many photos are stored\n" +
		"- !eva photos clear - Delete all photos\n\n" +
		"**React to any image with `!photo`, `!yoink` or 📷 to save it as a photo of Eva!**"
}

// executeCommand parses and executes an !eva command
func (b *Bot) executeCommand(ctx context.Context, body string) string {
	args := strings.Fields(strings.TrimPrefix(strings.TrimSpace(body), commandPrefix))
	if len(args) == 0 {
		return b.showHelp()
	}

	b.refresh(ctx)

	switch args[0] {
	case "help":
		return b.showHelp()
	case "show":
		return b.statusShow()
	case "set":
		return b.statusSet(ctx, args[1:])
	case "history":
		return b.handleHistoryCommand(ctx, args[1:])
	case "walk", "walks":
		return b.handleWalkCommand(ctx, args[1:])
	case "photos", "photo":
		return b.handlePhotosCommand(ctx, args[1:])
	default:
		return fmt.Sprintf("❌ Unknown command: %s\n\n%s", args[0], b.showHelp())
	}
}

func (b *Bot) statusShow() string {
	snap := b.store.Snapshot()
	return render.StatusMarkdown(snap.CurrentStatus) +
		fmt.Sprintf("\nПрогулок: %d · Фото: %d/%d", snap.WalkCount, len(snap.Photos), status.MaxPhotos)
}

func (b *Bot) statusSet(ctx context.Context, args []string) string {
	text, flags, mood, err := parseSetArgs(args)
	if err != nil {
		return fmt.Sprintf("❌ %v", err)
	}

	entry, err := b.store.RecordStatus(ctx, text, flags, mood)
	if err != nil {
		return fmt.Sprintf("❌ Error saving status: %v", err)
	}
	return "✅ Status recorded\n\n" + render.StatusMarkdown(&entry)
}

// parseSetArgs splits "+flag ... mood=N text ..." into its parts.
// Options are only recognised before the first word of text.
func parseSetArgs(args []string) (text string, flags status.Flags, mood string, err error) {
	i := 0
	for ; i < len(args); i++ {
		arg := args[i]
		if name, ok := strings.CutPrefix(arg, "+"); ok && name != "" {
			if err := flags.Set(strings.ToLower(name), true); err != nil {
				return "", status.Flags{}, "", err
			}
			continue
		}
		if v, ok := strings.CutPrefix(arg, "mood="); ok {
			mood = v
			continue
		}
		break
	}
	return strings.TrimSpace(strings.Join(args[i:], " ")), flags, mood, nil
}

func (b *Bot) handleHistoryCommand(ctx context.Context, args []string) string {
	if len(args) > 0 && args[0] == "clear" {
		if err := b.store.ClearHistory(ctx); err != nil {
			return fmt.Sprintf("❌ Error clearing history: %v", err)
		}
		return "✅ History cleared"
	}

	limit := defaultHistoryLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return "❌ Usage: !eva history [N] | !eva history clear"
		}
		limit = n
	}

	history := b.store.Snapshot().History
	return fmt.Sprintf("История (%d):\n\n%s", len(history), render.HistoryMarkdown(history, limit))
}

func (b *Bot) handleWalkCommand(ctx context.Context, args []string) string {
	if len(args) > 0 {
		if args[0] != "reset" {
			return "❌ Usage: !eva walk | !eva walk reset"
		}
		if err := b.store.ResetWalk(ctx); err != nil {
			return fmt.Sprintf("❌ Error resetting walks: %v", err)
		}
		return "✅ Прогулок: 0"
	}

	n, err := b.store.IncrementWalk(ctx)
	if err != nil {
		return fmt.Sprintf("❌ Error counting walk: %v", err)
	}
	return fmt.Sprintf("✅ Прогулок: %d", n)
}

func (b *Bot) handlePhotosCommand(ctx context.Context, args []string) string {
	if len(args) > 0 {
		if args[0] != "clear" {
			return "❌ Usage: !eva photos | !eva photos clear"
		}
		if err := b.store.ClearPhotos(ctx); err != nil {
			return fmt.Sprintf("❌ Error clearing photos: %v", err)
		}
		return "✅ Photos deleted"
	}

	return fmt.Sprintf("Фото: %d/%d", len(b.store.Photos()), status.MaxPhotos)
}
