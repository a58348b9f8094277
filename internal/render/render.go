// Package render draws the status record for people: plain text for the terminal,
// markdown for chat messages and a self-contained HTML page.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/liminalpurple/evastatus/internal/status"
)

const (
	noStatusText = "Статус ещё не задан."
	noText       = "(без текста)"
)

var flagLabels = map[string]string{
	status.FlagWalk:  "Хочет гулять",
	status.FlagEat:   "Хочет есть",
	status.FlagDrink: "Хочет пить",
	status.FlagPlay:  "Хочет играть",
	status.FlagCold:  "Нужен костюм (холодно)",
}

// FlagLabels returns the human labels of the flags that are set, in display order
func FlagLabels(f status.Flags) []string {
	labels := []string{}
	for _, name := range f.Names() {
		labels = append(labels, flagLabels[name])
	}
	return labels
}

// FormatMood prints a mood score without trailing zeros
func FormatMood(mood float64) string {
	return strconv.FormatFloat(mood, 'f', -1, 64)
}

// Meta returns the "mood + updated at" line of an entry
func Meta(e status.Entry) string {
	mood := ""
	if e.Mood != nil {
		mood = fmt.Sprintf("Настроение: %s/10. ", FormatMood(*e.Mood))
	}
	return mood + "Обновлено: " + e.Time
}

// EntryText returns the text of an entry or a placeholder when it is empty
func EntryText(e status.Entry) string {
	if e.Text == "" {
		return noText
	}
	return e.Text
}

// CurrentStatus renders the current status block for the terminal
func CurrentStatus(cur *status.Entry) string {
	if cur == nil {
		return noStatusText + "\n"
	}

	var b strings.Builder
	b.WriteString(EntryText(*cur))
	b.WriteString("\n")
	for _, label := range FlagLabels(cur.Flags) {
		fmt.Fprintf(&b, "  • %s\n", label)
	}
	b.WriteString(Meta(*cur))
	b.WriteString("\n")
	return b.String()
}

// History renders history entries, newest first. limit <= 0 shows everything.
func History(history []status.Entry, limit int) string {
	entries := status.NewestFirst(history)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if len(entries) == 0 {
		return "История пуста.\n"
	}

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s  %s\n", e.Time, EntryText(e))
	}
	return b.String()
}

// Walks renders the walk counter
func Walks(count int) string {
	return fmt.Sprintf("Прогулок: %d\n", count)
}

// Photos renders a one-line summary per stored photo, oldest first
func Photos(photos []string) string {
	if len(photos) == 0 {
		return "Фото нет.\n"
	}

	var b strings.Builder
	for i, p := range photos {
		mimeType := "unknown"
		if meta, _, ok := strings.Cut(strings.TrimPrefix(p, "data:"), ";"); ok {
			mimeType = meta
		}
		fmt.Fprintf(&b, "%2d. %s, %d bytes encoded\n", i+1, mimeType, len(p))
	}
	return b.String()
}

// Text renders the whole state for the terminal
func Text(state status.State) string {
	var b strings.Builder
	b.WriteString(CurrentStatus(state.CurrentStatus))
	b.WriteString("\n")
	b.WriteString(Walks(state.WalkCount))
	fmt.Fprintf(&b, "Фото: %d/%d\n", len(state.Photos), status.MaxPhotos)
	b.WriteString("\n")
	b.WriteString(History(state.History, 0))
	return b.String()
}
