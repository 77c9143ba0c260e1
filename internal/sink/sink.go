// Package sink persists formatted rate lines. A destination is an opaque
// identifier derived from the quote code; each backend maps it to its own
// storage (file path, table key, message key).
package sink

import "context"

// Sink writes one line per call, always terminated with a single newline.
type Sink interface {
	// Overwrite replaces the destination's content with the line.
	Overwrite(ctx context.Context, dest, line string) error

	// Append adds the line to the destination, creating it if absent.
	Append(ctx context.Context, dest, line string) error
}
