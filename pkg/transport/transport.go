// Package transport fixes the contract between the batcher and the
// concrete wire transport, per spec.md §6: a Sender is exclusively
// owned by the batcher and invoked only from the background flusher
// (and, during shutdown, the final synchronous drain).
package transport

import (
	"bytes"
	"context"
	"net/http"
)

// HTTPClient abstracts HTTP request execution for testing and custom
// transports. The standard *http.Client satisfies this interface.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Metadata carries the identifying context an implementation may need
// to attach to outgoing requests (auth, routing, diagnostics).
type Metadata struct {
	ServiceURL string
	AuthKey    string
	Hostname   string
	SourceID   string
}

// Sender transmits one finalized batch buffer to an ingestion service.
// Implementations handle serialization framing already applied by the
// pkg/serializer layer; Sender only moves bytes.
//
// Send is used when counter mode is DISABLE; SendCounted is used when
// counter mode is ENABLE, per spec.md §6's "[original_count]" overload.
// Neither call should retry internally for longer than the caller is
// willing to block the single flusher goroutine — spec.md §7 routes
// failures to an error callback rather than stalling the flush loop.
type Sender interface {
	Send(ctx context.Context, messageID uint16, buf *bytes.Buffer) error
	SendCounted(ctx context.Context, messageID uint16, buf *bytes.Buffer, originalCount uint32) error
}
