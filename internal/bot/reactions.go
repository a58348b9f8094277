package bot

import (
	"context"
	"fmt"

	"github.com/liminalpurple/evastatus/internal/photo"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
)

// photoReactions are the reaction keys that save the reacted-to image as a photo
var photoReactions = map[string]bool{
	"!photo": true,
	"!yoink": true,
	"📷":      true,
}

// processReaction saves the parent image when the reaction is a photo command
func (b *Bot) processReaction(ctx context.Context, evt *event.Event) error {
	content, ok := evt.Content.Parsed.(*event.ReactionEventContent)
	if !ok {
		return fmt.Errorf("failed to parse reaction content")
	}

	reaction := content.RelatesTo.Key
	if !photoReactions[reaction] {
		return nil
	}

	b.log.Info().Str("reaction", reaction).Str("room", evt.RoomID.String()).Msg("Photo reaction detected")

	parentEventID := content.RelatesTo.EventID
	parentEvent, err := b.client.GetEvent(ctx, evt.RoomID, parentEventID)
	if err != nil {
		return fmt.Errorf("failed to get parent event: %w", err)
	}

	mxcURI, err := extractImageURI(parentEvent)
	if err != nil {
		return fmt.Errorf("parent event is not an image: %w", err)
	}

	if err := b.collectPhoto(ctx, mxcURI); err != nil {
		return fmt.Errorf("failed to collect photo: %w", err)
	}

	// Redact the reaction to confirm collection (cleaner timeline)
	if _, err := b.client.RedactEvent(ctx, evt.RoomID, evt.ID); err != nil {
		b.log.Warn().Err(err).Msg("Failed to redact reaction")
	}

	return nil
}

// extractImageURI returns the MXC URI of an image message or sticker event
func extractImageURI(evt *event.Event) (id.ContentURIString, error) {
	switch evt.Type {
	case event.EventSticker:
		if content, ok := evt.Content.Parsed.(*event.MessageEventContent); ok {
			return content.URL, nil
		}

		url, ok := evt.Content.Raw["url"].(string)
		if !ok {
			return "", fmt.Errorf("sticker missing url field")
		}
		return id.ContentURIString(url), nil

	case event.EventMessage:
		if content, ok := evt.Content.Parsed.(*event.MessageEventContent); ok {
			if content.MsgType != event.MsgImage {
				return "", fmt.Errorf("message is not an image (msgtype=%s)", content.MsgType)
			}
			return content.URL, nil
		}

		msgtype, _ := evt.Content.Raw["msgtype"].(string)
		if msgtype != string(event.MsgImage) {
			return "", fmt.Errorf("message is not an image (msgtype=%s)", msgtype)
		}

		url, ok := evt.Content.Raw["url"].(string)
		if !ok {
			return "", fmt.Errorf("message missing url field")
		}
		return id.ContentURIString(url), nil

	default:
		return "", fmt.Errorf("unsupported event type: %s", evt.Type.Type)
	}
}

// collectPhoto downloads the image, encodes it as a data URL and appends it to the store
func (b *Bot) collectPhoto(ctx context.Context, mxcURI id.ContentURIString) error {
	data, err := b.client.DownloadMedia(ctx, string(mxcURI))
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	url, info, err := photo.Encode(data)
	if err != nil {
		return err
	}

	b.refresh(ctx)
	if err := b.store.AddPhotos(ctx, url); err != nil {
		return fmt.Errorf("failed to save photo: %w", err)
	}

	b.log.Info().
		Str("mxc", string(mxcURI)).
		Str("mime", info.MimeType).
		Int("width", info.Width).
		Int("height", info.Height).
		Msg("Photo collected")

	return nil
}
