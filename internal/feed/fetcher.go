package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/ratefeed/internal/fetch"
	"github.com/me/ratefeed/internal/logging"
	"github.com/me/ratefeed/internal/metrics"
	"github.com/me/ratefeed/internal/pool"
)

// DefaultWidth is the execution window used when no width is given.
const DefaultWidth = 4

// Getter fetches and decodes one payload. *fetch.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) (*fetch.Payload, error)
}

// Target tells a run where each line goes. Path derives the destination
// identifier for a quote; Write persists one line to that destination.
type Target struct {
	Path  func(quote string) string
	Write func(ctx context.Context, dest, line string) error
}

// Fetcher retrieves one payload and persists its surviving entries, at most
// width writes in flight at a time.
type Fetcher struct {
	client Getter
	quotes []string
	width  int
	logger *slog.Logger
}

// NewFetcher creates a Fetcher keeping only the given quotes. A width below
// 1 selects DefaultWidth.
func NewFetcher(client Getter, quotes []string, width int, logger *slog.Logger) *Fetcher {
	if width < 1 {
		width = DefaultWidth
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &Fetcher{
		client: client,
		quotes: quotes,
		width:  width,
		logger: logger.With("component", "fetcher"),
	}
}

// Run fetches the payload at url and writes one line per surviving quote
// through the target. Client and scheduler failures are returned as-is; the
// fetcher adds no retrying of its own.
func (f *Fetcher) Run(ctx context.Context, url string, target Target) error {
	start := time.Now()
	defer func() {
		metrics.RunDuration.Observe(time.Since(start).Seconds())
	}()

	payload, err := f.client.Get(ctx, url)
	if err != nil {
		return err
	}

	lines := DataToLines(payload, f.quotes)
	f.logger.Debug("payload transformed", "url", url, "date", payload.Date, "lines", len(lines))

	tasks := make([]pool.Task[string], len(lines))
	for i, ql := range lines {
		ql := ql
		dest := target.Path(ql.Quote)
		tasks[i] = func() (string, error) {
			if err := target.Write(ctx, dest, ql.Line); err != nil {
				return "", fmt.Errorf("write %s: %w", dest, err)
			}
			metrics.LinesWrittenTotal.WithLabelValues(ql.Quote).Inc()
			return ql.Quote, nil
		}
	}

	if _, err := pool.New(tasks).Run(f.width); err != nil {
		return err
	}

	f.logger.Info("run complete", "url", url, "lines", len(lines))
	return nil
}
