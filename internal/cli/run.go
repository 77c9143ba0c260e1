package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/me/ratefeed/internal/config"
	"github.com/me/ratefeed/internal/feed"
	"github.com/me/ratefeed/internal/fetch"
	"github.com/me/ratefeed/internal/sink"
)

const dateFormat = "2006-01-02"

// runExport performs one export: yesterday's payload overwrites each quote's
// destination, today's payload is appended. now is injectable for tests.
func runExport(ctx context.Context, cfg *config.Config, logger *slog.Logger, now func() time.Time) error {
	logger = logger.With("run_id", uuid.NewString())

	snk, pathFor, closeSink, err := buildSink(cfg, logger)
	if err != nil {
		return fmt.Errorf("init sink: %w", err)
	}
	defer closeSink()

	client := fetch.NewClient(fetch.Config{
		MaxRetries: cfg.Retries,
		Timeout:    cfg.Timeout,
	}, logger)
	fetcher := feed.NewFetcher(client, cfg.Quotes, cfg.Width, logger)

	today := now()
	yesterday := today.AddDate(0, 0, -1)

	yesterdayURL, err := buildURL(cfg, yesterday)
	if err != nil {
		return err
	}
	todayURL, err := buildURL(cfg, today)
	if err != nil {
		return err
	}

	logger.Info("starting export",
		"yesterday", yesterday.Format(dateFormat),
		"today", today.Format(dateFormat),
		"quotes", len(cfg.Quotes),
		"sink", cfg.Sink.Backend)

	if err := fetcher.Run(ctx, yesterdayURL, feed.Target{Path: pathFor, Write: snk.Overwrite}); err != nil {
		return fmt.Errorf("export %s: %w", yesterday.Format(dateFormat), err)
	}
	if err := fetcher.Run(ctx, todayURL, feed.Target{Path: pathFor, Write: snk.Append}); err != nil {
		return fmt.Errorf("export %s: %w", today.Format(dateFormat), err)
	}

	logger.Info("export finished")
	return nil
}

// buildURL composes the dated request URL with the access key and symbol
// list as query parameters.
func buildURL(cfg *config.Config, day time.Time) (string, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("base URL %q: %w", cfg.BaseURL, err)
	}
	u = u.JoinPath(day.Format(dateFormat))

	q := u.Query()
	q.Set("access_key", cfg.AccessKey)
	q.Set("symbols", strings.Join(cfg.Quotes, ","))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// buildSink creates the configured sink backend along with the function
// mapping a quote code to its destination identifier.
func buildSink(cfg *config.Config, logger *slog.Logger) (sink.Sink, func(string) string, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Sink.Backend {
	case "file":
		s := sink.NewFileSink(cfg.Sink.OutputDir)
		return s, func(quote string) string { return quote + ".csv" }, noop, nil
	case "sqlite":
		s, err := sink.NewSQLiteSink(cfg.Sink.SQLitePath, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, func(quote string) string { return quote }, s.Close, nil
	case "kafka":
		s := sink.NewKafkaSink(cfg.Sink.KafkaBrokers, cfg.Sink.KafkaTopic)
		return s, func(quote string) string { return quote }, s.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown sink backend %q", cfg.Sink.Backend)
	}
}
