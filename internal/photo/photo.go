// Package photo turns image files into the inline data URLs kept in the status record,
// and back.
package photo

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // Import for image format support
	_ "image/jpeg" // Import for image format support
	_ "image/png"  // Import for image format support
	"strings"

	_ "golang.org/x/image/bmp"  // Import for image format support
	_ "golang.org/x/image/tiff" // Import for image format support
	_ "golang.org/x/image/webp" // Import for image format support
)

// Info contains metadata about a decoded image. None of it is persisted.
type Info struct {
	Width     int
	Height    int
	SizeBytes int64
	MimeType  string
}

// GetInfo extracts image metadata, failing when data is not a supported image
func GetInfo(data []byte) (*Info, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image data is empty")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return &Info{
		Width:     cfg.Width,
		Height:    cfg.Height,
		SizeBytes: int64(len(data)),
		MimeType:  formatToMimeType(format),
	}, nil
}

// Encode validates data as an image and returns it as a data URL
func Encode(data []byte) (string, *Info, error) {
	info, err := GetInfo(data)
	if err != nil {
		return "", nil, err
	}
	return DataURL(info.MimeType, data), info, nil
}

// DataURL builds a base64 data URL
func DataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURL splits a base64 data URL into its MIME type and decoded bytes
func ParseDataURL(url string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URL")
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data URL has no payload")
	}

	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("data URL is not base64 encoded")
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode data URL payload: %w", err)
	}

	return mimeType, data, nil
}

// Extension returns a file extension for a MIME type, including the dot
func Extension(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	case "image/tiff":
		return ".tiff"
	default:
		return ".bin"
	}
}

// formatToMimeType converts image format string to MIME type
func formatToMimeType(format string) string {
	switch format {
	case "png":
		return "image/png"
	case "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "bmp":
		return "image/bmp"
	case "tiff":
		return "image/tiff"
	default:
		return "image/" + format
	}
}
