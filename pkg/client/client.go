// Package client is a small Go client for the gatekey HTTP API.
package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

type Option func(*Client)

// WithAuthToken sets the bearer token attached to every request.
func WithAuthToken(token string) Option {
	return func(c *Client) {
		c.authToken = token
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// urlBuilder assembles request URLs from route templates like
// "/v1/tokens/{id}".
type urlBuilder struct {
	base       string
	path       string
	pathParams map[string]string
	query      url.Values
}

func (c *Client) url() *urlBuilder {
	return &urlBuilder{
		base:       c.baseURL,
		pathParams: make(map[string]string),
		query:      make(url.Values),
	}
}

func (u *urlBuilder) setPath(path string) *urlBuilder {
	u.path = path
	return u
}

func (u *urlBuilder) setPathParam(key, value string) *urlBuilder {
	u.pathParams[key] = value
	return u
}

func (u *urlBuilder) addQueryParam(key string, value any) *urlBuilder {
	u.query.Add(key, toString(value))
	return u
}

func (u *urlBuilder) build() string {
	path := u.path
	for key, value := range u.pathParams {
		path = strings.ReplaceAll(path, "{"+key+"}", url.PathEscape(value))
	}
	out := u.base + path
	if len(u.query) > 0 {
		out += "?" + u.query.Encode()
	}
	return out
}

func toString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
