package startgg_gql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"stationbot/internal/core/bracket"
	"stationbot/internal/telemetry"
)

// Client talks to the start.gg GraphQL data API. Queries and mutations go
// through separate rate limiters; the API allows 80 requests a minute, so
// the read side stays well under that even at a 2s poll interval.
type Client struct {
	endpoint     string
	token        string
	httpClient   *http.Client
	readLimiter  *rate.Limiter
	writeLimiter *rate.Limiter

	sfGroup singleflight.Group
}

func NewClient(endpoint, token string) *Client {
	return &Client{
		endpoint: endpoint,
		token:    token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		readLimiter:  rate.NewLimiter(rate.Limit(4), 8),
		writeLimiter: rate.NewLimiter(rate.Limit(1), 2),
	}
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// do posts one GraphQL document. Network and HTTP-level failures come back
// wrapped in bracket.ErrTransport; API-level errors are returned as a
// *RequestError for the caller to classify.
func (c *Client) do(ctx context.Context, opName, query string, variables map[string]any, out any) error {
	lim := c.readLimiter
	if strings.HasPrefix(strings.TrimSpace(query), "mutation") {
		lim = c.writeLimiter
	}
	if err := lim.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit wait: %v", bracket.ErrTransport, err)
	}

	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", bracket.ErrTransport, opName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: read response: %v", bracket.ErrTransport, opName, err)
	}

	telemetry.Debugf("startgg: %s -> %d (%s)", opName, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: status %d", bracket.ErrTransport, opName, resp.StatusCode)
	}

	var gql gqlResponse
	if err := json.Unmarshal(body, &gql); err != nil {
		return fmt.Errorf("%w: %s: decode: %v", bracket.ErrTransport, opName, err)
	}
	if len(gql.Errors) > 0 {
		return &RequestError{Op: opName, Messages: messages(gql.Errors)}
	}
	if gql.Data == nil {
		return fmt.Errorf("%w: %s: empty data", bracket.ErrTransport, opName)
	}

	if out != nil {
		if err := json.Unmarshal(gql.Data, out); err != nil {
			return fmt.Errorf("%w: %s: decode data: %v", bracket.ErrTransport, opName, err)
		}
	}
	return nil
}

// RequestError carries the API-level error list of a GraphQL response.
type RequestError struct {
	Op       string
	Messages []string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("startgg %s: %s", e.Op, strings.Join(e.Messages, "; "))
}

func messages(errs []gqlError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Message
	}
	return out
}

// flexID tolerates the API returning ids as either numbers or strings.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}
