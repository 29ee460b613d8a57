package watchdog

import (
	"context"
	"fmt"
	"net/http"

	"github.com/banditml/evbatch/pkg/log"
)

// HTTPClient abstracts request execution the same way
// transport.HTTPClient does, so tests can swap in a fake.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPPinger pings an external liveness endpoint with a bare GET.
// Ping failures are logged but never block the flusher; the caller
// decides whether a failed ping should route through the batcher's
// error callback.
type HTTPPinger struct {
	client HTTPClient
	url    string
	logger log.Logger
}

// NewHTTPPinger creates an HTTPPinger that GETs url on every Ping.
func NewHTTPPinger(client HTTPClient, url string, logger log.Logger) *HTTPPinger {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &HTTPPinger{
		client: client,
		url:    url,
		logger: logger.With(log.String("component", "watchdog")),
	}
}

// Ping implements Pinger.
func (p *HTTPPinger) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("create watchdog request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("watchdog ping failed", log.Err(err))
		return fmt.Errorf("watchdog ping: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("watchdog returned status %d", resp.StatusCode)
	}
	return nil
}
