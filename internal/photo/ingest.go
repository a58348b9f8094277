package photo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Sink receives one encoded photo. The status store's AddPhotos fits.
type Sink func(ctx context.Context, images ...string) error

// Ingester reads and encodes image files concurrently. Each file is an independent
// task that hands its data URL to the sink as soon as it is decoded, so photos land
// in completion order rather than argument order.
type Ingester struct {
	sink        Sink
	concurrency int
	log         zerolog.Logger
}

// NewIngester creates an ingester. concurrency <= 0 means one task per file.
func NewIngester(sink Sink, concurrency int, log zerolog.Logger) *Ingester {
	return &Ingester{sink: sink, concurrency: concurrency, log: log}
}

// Result reports the files that made it into the sink
type Result struct {
	Added []string
}

// IngestFiles encodes every path and passes each one to the sink.
// A bad file does not stop the others; all failures are joined into the returned error.
func (in *Ingester) IngestFiles(ctx context.Context, paths []string) (Result, error) {
	var (
		mu   sync.Mutex
		res  Result
		errs []error
	)

	var g errgroup.Group
	if in.concurrency > 0 {
		g.SetLimit(in.concurrency)
	}

	for _, path := range paths {
		g.Go(func() error {
			err := in.ingestFile(ctx, path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
				return nil
			}
			res.Added = append(res.Added, path)
			return nil
		})
	}
	_ = g.Wait()

	return res, errors.Join(errs...)
}

func (in *Ingester) ingestFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	url, info, err := Encode(data)
	if err != nil {
		return err
	}

	in.log.Debug().
		Str("file", path).
		Str("mime", info.MimeType).
		Int("width", info.Width).
		Int("height", info.Height).
		Int64("bytes", info.SizeBytes).
		Msg("Photo decoded")

	if err := in.sink(ctx, url); err != nil {
		return fmt.Errorf("failed to store photo: %w", err)
	}
	return nil
}
