package matrix

import (
	"context"
	"fmt"

	"github.com/liminalpurple/evastatus/internal/render"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
)

// SendMarkdown posts a markdown message. The body carries a plain rendering and
// formatted_body the HTML one.
func (c *Client) SendMarkdown(ctx context.Context, roomID id.RoomID, body string) (id.EventID, error) {
	content := &event.MessageEventContent{
		MsgType:       event.MsgText,
		Body:          render.MarkdownToPlain(body),
		Format:        event.FormatHTML,
		FormattedBody: render.MarkdownToHTML(body),
	}

	resp, err := c.SendMessageEvent(ctx, roomID, event.EventMessage, content)
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}
	return resp.EventID, nil
}

// EditMessage replaces the content of an earlier message with body
func (c *Client) EditMessage(ctx context.Context, roomID id.RoomID, eventID id.EventID, body string) error {
	plainBody := render.MarkdownToPlain(body)
	formattedBody := render.MarkdownToHTML(body)

	content := &event.MessageEventContent{
		MsgType:       event.MsgText,
		Body:          plainBody,
		Format:        event.FormatHTML,
		FormattedBody: formattedBody,
		NewContent: &event.MessageEventContent{
			MsgType:       event.MsgText,
			Body:          plainBody,
			Format:        event.FormatHTML,
			FormattedBody: formattedBody,
		},
		RelatesTo: &event.RelatesTo{
			Type:    event.RelReplace,
			EventID: eventID,
		},
	}

	if _, err := c.SendMessageEvent(ctx, roomID, event.EventMessage, content); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}
