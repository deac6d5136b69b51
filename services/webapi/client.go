package webapisvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/offline"
)

// HeaderIdempotencyKey carries the queued action id on replays so servers
// tolerating at-least-once delivery can drop duplicates.
const HeaderIdempotencyKey = "X-Idempotency-Key"

// Client calls the e-learning REST API. Endpoints are opaque to the rest
// of the system: JSON in, JSON out, bearer-token authenticated.
type Client struct {
	baseURL string
	http    *http.Client
	token   offline.TokenSource
}

func NewClient(conf *core.Config, token offline.TokenSource) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: strings.TrimRight(conf.Upstream.BaseURL, "/"),
		http:    &http.Client{Timeout: conf.Upstream.Timeout},
		token:   token,
	}
}

var _ offline.Dispatcher = (*Client)(nil)

// Dispatch replays a queued action with its originally captured token.
// The token is deliberately not refreshed: see offline.Engine.
func (c *Client) Dispatch(ctx context.Context, action offline.QueuedAction) error {
	var body io.Reader
	if len(action.Payload) > 0 {
		body = bytes.NewReader(action.Payload)
	}
	req, err := http.NewRequestWithContext(ctx, action.Method, c.url(action.Endpoint), body)
	if err != nil {
		return errors.Wrap(err, "building replay request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderIdempotencyKey, action.ID)
	if action.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+action.AuthToken)
	}

	_, err = c.do(req)
	return err
}

// Get performs an authenticated GET and returns the raw JSON body.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	c.authorize(req)
	return c.do(req)
}

// Post performs an authenticated POST with a JSON payload.
func (c *Client) Post(ctx context.Context, path string, payload interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "encoding payload")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)
	return c.do(req)
}

// Op adapts a GET into an offline.NetworkOp for the read-through cache.
func (c *Client) Op(path string) offline.NetworkOp {
	return func(ctx context.Context) (json.RawMessage, error) {
		return c.Get(ctx, path)
	}
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) authorize(req *http.Request) {
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
}

// do runs the request, classifying transport failures and non-2xx statuses
// as core.NetworkError.
func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, core.NewNetworkError(err, 0)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewNetworkError(err, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, core.NewNetworkError(
			fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, resp.Status),
			resp.StatusCode,
		)
	}
	return data, nil
}
