package render

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/liminalpurple/evastatus/internal/status"
)

// PageTitle is the title of the generated HTML page
const PageTitle = "Ева: статус"

// markdownEscaper backslash-escapes characters markdown would interpret
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`, `{`, `\{`, `}`, `\}`,
	`[`, `\[`, `]`, `\]`, `(`, `\(`, `)`, `\)`, `#`, `\#`, `+`, `\+`,
	`-`, `\-`, `.`, `\.`, `!`, `\!`, `<`, `\<`, `>`, `\>`, `|`, `\|`, `~`, `\~`,
)

// EscapeMarkdown makes user text render literally
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// StatusMarkdown renders the current status as markdown
func StatusMarkdown(cur *status.Entry) string {
	if cur == nil {
		return noStatusText + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n", EscapeMarkdown(EntryText(*cur)))
	for _, label := range FlagLabels(cur.Flags) {
		fmt.Fprintf(&b, "- %s\n", EscapeMarkdown(label))
	}
	if len(cur.Names()) > 0 {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "_%s_\n", EscapeMarkdown(Meta(*cur)))
	return b.String()
}

// HistoryMarkdown renders the history newest first as a markdown list
func HistoryMarkdown(history []status.Entry, limit int) string {
	entries := status.NewestFirst(history)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if len(entries) == 0 {
		return "История пуста.\n"
	}

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "- `%s` %s\n", e.Time, EscapeMarkdown(EntryText(e)))
	}
	return b.String()
}

// Markdown renders the whole state. Photos are embedded inline when withPhotos is set.
func Markdown(state status.State, withPhotos bool) string {
	var b strings.Builder

	b.WriteString("## Сейчас\n\n")
	b.WriteString(StatusMarkdown(state.CurrentStatus))

	b.WriteString("\n## Прогулки\n\n")
	fmt.Fprintf(&b, "Прогулок: **%d**\n", state.WalkCount)

	b.WriteString("\n## История\n\n")
	b.WriteString(HistoryMarkdown(state.History, 0))

	b.WriteString("\n## Фото\n\n")
	switch {
	case len(state.Photos) == 0:
		b.WriteString("Фото нет.\n")
	case withPhotos:
		for i, p := range state.Photos {
			fmt.Fprintf(&b, "![Фото %d](%s)\n", i+1, p)
		}
	default:
		fmt.Fprintf(&b, "Фото: %d\n", len(state.Photos))
	}

	return b.String()
}

// MarkdownToHTML converts markdown to an HTML fragment (used for Matrix formatted_body).
// Fractions are left alone so mood scores read as "8/10".
func MarkdownToHTML(text string) string {
	return string(markdownToHTML(text, html.RendererOptions{
		Flags: (html.CommonFlags &^ html.SmartypantsFractions) | html.HrefTargetBlank | html.SkipHTML,
	}))
}

// Page renders the whole state as a complete, self-contained HTML page
func Page(state status.State) []byte {
	md := "# Ева\n\n" + Markdown(state, true)
	return markdownToHTML(md, html.RendererOptions{
		Title: PageTitle,
		Flags: (html.CommonFlags &^ html.SmartypantsFractions) | html.CompletePage | html.SkipHTML,
	})
}

func markdownToHTML(text string, opts html.RendererOptions) []byte {
	doc := newParser().Parse([]byte(text))
	renderer := html.NewRenderer(opts)
	return markdown.Render(doc, renderer)
}

// newParser returns a fresh parser per document; parsers keep state
func newParser() *parser.Parser {
	return parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
}
