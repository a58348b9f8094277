package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/liminalpurple/evastatus/internal/photo"
)

const describePrompt = `На фото собака по имени Ева.
Опиши фото одним-двумя короткими предложениями на русском: что она делает,
где находится, какое у неё, судя по всему, настроение.
Выведи только описание, без markdown и заголовков.`

// DescribePhoto asks Claude for a short description of a stored photo data URL.
// The description is returned to the caller and never stored.
func (c *Client) DescribePhoto(ctx context.Context, dataURL string) (string, error) {
	mimeType, imageData, err := photo.ParseDataURL(dataURL)
	if err != nil {
		return "", fmt.Errorf("invalid photo: %w", err)
	}
	if len(imageData) == 0 {
		return "", fmt.Errorf("image data is empty")
	}

	// Validate MIME type is one the vision API accepts
	if !isImageMimeType(mimeType) {
		return "", fmt.Errorf("invalid MIME type for image: %s", mimeType)
	}

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(mimeType, base64.StdEncoding.EncodeToString(imageData)),
				anthropic.NewTextBlock(describePrompt),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to describe photo: %w", err)
	}

	if len(message.Content) == 0 {
		return "", fmt.Errorf("no content in response")
	}
	if message.Content[0].Type != "text" {
		return "", fmt.Errorf("unexpected response type: %s", message.Content[0].Type)
	}

	return strings.Join(strings.Fields(message.Content[0].Text), " "), nil
}

// isImageMimeType checks if the MIME type is a valid image type
func isImageMimeType(mimeType string) bool {
	switch mimeType {
	case "image/png", "image/jpeg", "image/gif", "image/webp":
		return true
	}
	return false
}
