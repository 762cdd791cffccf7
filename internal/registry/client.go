// Package registry implements the client for the gateway's Admin API
// (consumer and JWT-credential CRUD).
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/darmiel/gatekey/internal/core"
)

const defaultTimeout = 10 * time.Second

var _ core.Registry = (*Client)(nil)

// Client talks to the registry's Admin API. It holds no state beyond the
// base URL and the HTTP client; all methods are safe for concurrent use.
type Client struct {
	adminURL   string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient overrides the default HTTP client (used in tests and for
// custom transport settings).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-round-trip deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func New(adminURL string, opts ...Option) *Client {
	c := &Client{
		adminURL: strings.TrimSuffix(adminURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wire shapes of the Admin API

type consumerRecord struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CustomID  string `json:"custom_id,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

type credentialRecord struct {
	ID        string `json:"id"`
	Key       string `json:"key"`
	Secret    string `json:"secret,omitempty"`
	Algorithm string `json:"algorithm,omitempty"`
	Consumer  *struct {
		ID string `json:"id"`
	} `json:"consumer,omitempty"`
	CreatedAt int64 `json:"created_at,omitempty"`
}

type listEnvelope[T any] struct {
	Data []T `json:"data"`
}

func (r consumerRecord) toDomain() *core.Consumer {
	return &core.Consumer{
		ID:        r.ID,
		Username:  r.Username,
		CustomID:  r.CustomID,
		CreatedAt: unixTime(r.CreatedAt),
	}
}

func (r credentialRecord) toDomain() *core.Credential {
	cred := &core.Credential{
		ID:        r.ID,
		Name:      r.Key,
		Secret:    r.Secret,
		Algorithm: r.Algorithm,
		CreatedAt: unixTime(r.CreatedAt),
	}
	if r.Consumer != nil {
		cred.ConsumerID = r.Consumer.ID
	}
	return cred
}

func unixTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

func (c *Client) CreateConsumer(ctx context.Context, username, customID string) (*core.Consumer, error) {
	payload := map[string]string{"username": username}
	if customID != "" {
		payload["custom_id"] = customID
	}

	var rec consumerRecord
	if err := c.do(ctx, http.MethodPost, "/consumers/", payload, &rec); err != nil {
		return nil, fmt.Errorf("creating consumer %q: %w", username, err)
	}
	return rec.toDomain(), nil
}

func (c *Client) GetConsumer(ctx context.Context, username string) (*core.Consumer, error) {
	var rec consumerRecord
	if err := c.do(ctx, http.MethodGet, "/consumers/"+url.PathEscape(username), nil, &rec); err != nil {
		return nil, fmt.Errorf("getting consumer %q: %w", username, err)
	}
	return rec.toDomain(), nil
}

func (c *Client) ListConsumers(ctx context.Context) ([]core.Consumer, error) {
	var envelope listEnvelope[consumerRecord]
	if err := c.do(ctx, http.MethodGet, "/consumers/", nil, &envelope); err != nil {
		return nil, fmt.Errorf("listing consumers: %w", err)
	}

	consumers := make([]core.Consumer, 0, len(envelope.Data))
	for _, rec := range envelope.Data {
		consumers = append(consumers, *rec.toDomain())
	}
	return consumers, nil
}

func (c *Client) DeleteConsumer(ctx context.Context, username string) error {
	if err := c.do(ctx, http.MethodDelete, "/consumers/"+url.PathEscape(username), nil, nil); err != nil {
		return fmt.Errorf("deleting consumer %q: %w", username, err)
	}
	return nil
}

func (c *Client) CreateCredential(ctx context.Context, consumer, name, secret, algorithm string) (*core.Credential, error) {
	payload := map[string]string{
		"key":       name,
		"secret":    secret,
		"algorithm": algorithm,
	}

	var rec credentialRecord
	path := "/consumers/" + url.PathEscape(consumer) + "/jwt"
	if err := c.do(ctx, http.MethodPost, path, payload, &rec); err != nil {
		return nil, fmt.Errorf("creating credential %q for %q: %w", name, consumer, err)
	}
	return rec.toDomain(), nil
}

func (c *Client) ListCredentials(ctx context.Context, consumer string) ([]core.Credential, error) {
	var envelope listEnvelope[credentialRecord]
	path := "/consumers/" + url.PathEscape(consumer) + "/jwt"
	if err := c.do(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, fmt.Errorf("listing credentials for %q: %w", consumer, err)
	}

	creds := make([]core.Credential, 0, len(envelope.Data))
	for _, rec := range envelope.Data {
		creds = append(creds, *rec.toDomain())
	}
	return creds, nil
}

func (c *Client) DeleteCredential(ctx context.Context, consumer, credentialID string) error {
	path := "/consumers/" + url.PathEscape(consumer) + "/jwt/" + url.PathEscape(credentialID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("deleting credential %q of %q: %w", credentialID, consumer, err)
	}
	return nil
}

// Status probes the registry by listing consumers. It returns the consumer
// count on success, or a classified error.
func (c *Client) Status(ctx context.Context) (int, error) {
	consumers, err := c.ListConsumers(ctx)
	if err != nil {
		return 0, err
	}
	return len(consumers), nil
}

// do performs a single round trip and classifies the outcome.
// A non-nil result is JSON-decoded from a 2xx body.
func (c *Client) do(ctx context.Context, method, path string, payload, result any) error {
	var body io.Reader
	if payload != nil {
		marshalled, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshalling payload: %w", err)
		}
		body = bytes.NewReader(marshalled)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.adminURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer func(b io.ReadCloser) {
		_ = b.Close()
	}(resp.Body)

	if resp.StatusCode >= 400 {
		return classifyStatus(method+" "+path, resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", core.ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", core.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", core.ErrUnavailable, err)
}

func classifyStatus(operation string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))

	switch resp.StatusCode {
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", core.ErrConflict, strings.TrimSpace(string(raw)))
	case http.StatusNotFound:
		return core.ErrNotFound
	default:
		return &core.UnknownError{
			Operation: operation,
			Status:    resp.StatusCode,
			Body:      strings.TrimSpace(string(raw)),
		}
	}
}
