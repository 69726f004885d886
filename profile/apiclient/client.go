// Package apiclient is the REST profile backend: GET {base}/profile/{key} and
// POST {base}/profile with the caller's ID token as a bearer credential.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/mentor-portal/profile"
	"github.com/pkg/errors"
)

const maxResponseBytes = 1 << 20

// Client calls the profile REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ profile.Repo = (*Client)(nil)

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithHTTPClient sets the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// New creates a profile API client
func New(baseURL string, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[apiclient.New] base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.Wrap(err, "[apiclient.New] invalid base URL")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

func (c *Client) GetRecord(ctx context.Context, key string) (*profile.Record, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/profile/"+url.PathEscape(key), nil)
	if err != nil {
		return nil, err
	}

	var rec profile.Record
	if err := c.do(req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) PutRecord(ctx context.Context, record *profile.Record) error {
	body, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "[apiclient.PutRecord] marshal")
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/profile", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "[apiclient.newRequest]")
	}
	req.Header.Set("Accept", "application/json")
	if token := profile.IDTokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[apiclient] %s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errors.Wrap(err, "[apiclient] read response")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return profile.ErrNotFound
	case resp.StatusCode >= http.StatusBadRequest:
		return fmt.Errorf("[apiclient] %s %s: unexpected status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "[apiclient] decode response")
	}
	return nil
}
