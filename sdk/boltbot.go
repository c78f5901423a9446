// Package boltbot provides a Go client for the boltbot chat webhook API.
//
// A chat integration forwards each message addressed to the bot and posts
// the returned content back to the channel:
//
//	client := boltbot.New("http://localhost:8080")
//
//	reply, err := client.Command(ctx, "user-1234", "!godbolt languages 2")
//	if err != nil {
//	    return err
//	}
//	post(reply.Content)
package boltbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client calls the boltbot API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client. baseURL should be the root URL of the server
// (e.g. "http://localhost:8080").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Health checks that the server is reachable and healthy.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.send(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readAPIError(resp)
	}
	var out HealthResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Command runs text on behalf of user. Commands the server rejected for
// input or service reasons are returned as a response with a non-ok
// Status, including cooldowns; only transport and protocol failures are
// errors.
func (c *Client) Command(ctx context.Context, user, text string) (*CommandResponse, error) {
	payload, err := json.Marshal(CommandRequest{User: user, Text: text})
	if err != nil {
		return nil, fmt.Errorf("boltbot: encode command: %w", err)
	}
	resp, err := c.send(ctx, http.MethodPost, "/commands", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		// a cooldown still carries a rendered reply for the channel
	default:
		return nil, readAPIError(resp)
	}
	var out CommandResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// send issues one call; payload is sent as JSON when non-nil.
func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("boltbot: %s %s: %w", method, path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("boltbot: %s %s: %w", method, path, err)
	}
	return resp, nil
}

func decode(resp *http.Response, out any) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("boltbot: decode response: %w", err)
	}
	return nil
}

// readAPIError builds an APIError from the server's {"error": ...} body,
// falling back to the status text for bodies it did not render.
func readAPIError(resp *http.Response) *APIError {
	e := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil && body.Error != "" {
		e.Message = body.Error
	}
	return e
}
