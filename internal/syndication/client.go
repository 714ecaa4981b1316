// Package syndication sends built listing documents to the remote
// real-estate network's export endpoint.
package syndication

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/fishmad/grokstatev3-sub001/internal/auth"
	"github.com/fishmad/grokstatev3-sub001/internal/config"
	"github.com/fishmad/grokstatev3-sub001/internal/reaxml"
)

// TransportError indicates the export endpoint could not be reached at all
// (DNS failure, refused connection, timeout). An HTTP response of any
// status is NOT a transport error.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to reach export endpoint: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SendResult is the structured outcome of one send. Success is true iff
// the HTTP status was in the 2xx range; the body is captured either way
// for diagnostics.
type SendResult struct {
	Success    bool
	StatusCode int
	Body       string
}

// ISyndicationClient sends listing documents to the remote network.
type ISyndicationClient interface {
	Send(ctx context.Context, doc *reaxml.Document) (*SendResult, error)
}

// client implements ISyndicationClient.
type client struct {
	cfg        *config.Config
	tokens     auth.ITokenProvider
	httpClient *http.Client
}

// NewClient creates a new syndication client.
func NewClient(cfg *config.Config, tokens auth.ITokenProvider) ISyndicationClient {
	return &client{
		cfg:        cfg,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: cfg.ReaHTTPTimeout},
	}
}

// Send serializes the document and POSTs it to the export endpoint with a
// bearer token. A non-2xx response is a normal failed outcome, not an
// error; only connection-level failures return a TransportError.
func (c *client) Send(ctx context.Context, doc *reaxml.Document) (*SendResult, error) {
	token, err := c.tokens.GetAccessToken(ctx)
	if err != nil {
		// AuthError propagates upward unresolved; the orchestrator
		// counts it as a failed send.
		return nil, err
	}

	body, err := doc.Serialize()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ReaExportURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create export request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", reaxml.ContentType)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to read export response: %w", err)}
	}

	result := &SendResult{
		Success:    resp.StatusCode >= 200 && resp.StatusCode <= 299,
		StatusCode: resp.StatusCode,
		Body:       string(respBody),
	}

	log.Printf("Export endpoint responded: status=%d success=%t took=%s", result.StatusCode, result.Success, time.Since(start).Round(time.Millisecond))
	return result, nil
}
