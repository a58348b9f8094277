package matrix

import (
	"context"
	"fmt"

	"maunium.net/go/mautrix/id"
)

// DownloadMedia downloads media from an MXC URI
func (c *Client) DownloadMedia(ctx context.Context, mxcURI string) ([]byte, error) {
	parsedURI, err := id.ParseContentURI(mxcURI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse MXC URI: %w", err)
	}

	data, err := c.DownloadBytes(ctx, parsedURI)
	if err != nil {
		return nil, fmt.Errorf("failed to download media: %w", err)
	}

	return data, nil
}
