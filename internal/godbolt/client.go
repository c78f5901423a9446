package godbolt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/gsarma/boltbot/internal/logger"
)

const maxResponseBytes = 8 << 20

// MaxRetries bounds Config.Retries; the backoff doubles per attempt.
const MaxRetries = 5

// Config holds the connection settings for a Compiler Explorer instance.
// URL is the base URL (e.g. "https://godbolt.org"). Retries is the number of
// extra attempts after a transient failure; RetryBackoff is doubled per attempt.
type Config struct {
	URL          string
	Timeout      time.Duration
	Retries      int
	RetryBackoff time.Duration
}

// Client calls the Compiler Explorer REST API.
type Client struct {
	url     string
	retries int
	backoff time.Duration
	client  *http.Client
}

// NewClient constructs a Client from the given config.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retries := min(max(cfg.Retries, 0), MaxRetries)
	return &Client{
		url:     strings.TrimRight(cfg.URL, "/"),
		retries: retries,
		backoff: cfg.RetryBackoff,
		client:  &http.Client{Timeout: timeout},
	}
}

// Languages lists every language the service supports.
func (c *Client) Languages(ctx context.Context) ([]Language, error) {
	const op = "list languages"
	body, err := c.do(ctx, op, http.MethodGet, "/api/languages", nil)
	if err != nil {
		return nil, err
	}
	var out []Language
	if err := decodeListing(body, &out); err != nil {
		return nil, &RemoteServiceError{Op: op, Err: err}
	}
	for i, l := range out {
		if l.ID == "" {
			return nil, &RemoteServiceError{Op: op, Err: fmt.Errorf("entry %d has no id", i)}
		}
	}
	return out, nil
}

// Compilers lists the compilers available for language.
func (c *Client) Compilers(ctx context.Context, language string) ([]Compiler, error) {
	const op = "list compilers"
	body, err := c.do(ctx, op, http.MethodGet, "/api/compilers/"+url.PathEscape(language), nil)
	if err != nil {
		return nil, err
	}
	var out []Compiler
	if err := decodeListing(body, &out); err != nil {
		return nil, &RemoteServiceError{Op: op, Err: err}
	}
	for i, cp := range out {
		if cp.ID == "" {
			return nil, &RemoteServiceError{Op: op, Err: fmt.Errorf("entry %d has no id", i)}
		}
	}
	return out, nil
}

// Compile submits req and decodes the result according to req.Preset.
func (c *Client) Compile(ctx context.Context, req CompileRequest) (*CompileResult, error) {
	op := req.Preset.String()

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	body, err := c.do(ctx, op, http.MethodPost, "/api/compiler/"+url.PathEscape(req.Compiler)+"/compile", reqJSON)
	if err != nil {
		return nil, err
	}

	if err := validateCompileResponse(body, req.Preset); err != nil {
		return nil, &RemoteServiceError{Op: op, Err: err}
	}
	var res CompileResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, &RemoteServiceError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &res, nil
}

// do performs the request, retrying transport errors and 5xx/429 statuses
// up to c.retries times. The returned body is only set for 2xx responses.
func (c *Client) do(ctx context.Context, op, method, path string, payload []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(int64(1)<<uint(attempt-1)) * c.backoff
			logger.Warn("retrying compiler service request", "op", op, "attempt", attempt, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, &RemoteServiceError{Op: op, Err: ctx.Err()}
			case <-time.After(wait):
			}
		}

		body, retry, err := c.once(ctx, op, method, path, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) once(ctx context.Context, op, method, path string, payload []byte) (body []byte, retry bool, err error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url+path, reader)
	if err != nil {
		return nil, false, &RemoteServiceError{Op: op, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, true, &RemoteServiceError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	logger.Debug("compiler service responded", "op", op, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		transient := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return nil, transient, &RemoteServiceError{Op: op, StatusCode: resp.StatusCode}
	}

	// the service already accepted the request; a compile is not resent
	body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, false, &RemoteServiceError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	return body, false, nil
}

func decodeListing(body []byte, out any) error {
	if !gjson.ValidBytes(body) {
		return errors.New("response is not valid JSON")
	}
	if !gjson.ParseBytes(body).IsArray() {
		return errors.New("expected a JSON array")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// validateCompileResponse checks that body carries the fields the
// interpretation of preset relies on.
func validateCompileResponse(body []byte, preset Preset) error {
	if !gjson.ValidBytes(body) {
		return errors.New("response is not valid JSON")
	}
	res := gjson.ParseBytes(body)
	if !res.IsObject() {
		return errors.New("expected a JSON object")
	}

	switch preset {
	case PresetExecute:
		didExecute := res.Get("didExecute")
		if !didExecute.IsBool() {
			return errors.New(`missing boolean field "didExecute"`)
		}
		if didExecute.Bool() {
			return requireFields(res, streamFields("")...)
		}
		if !res.Get("buildResult").IsObject() {
			return errors.New(`missing object field "buildResult"`)
		}
		return requireFields(res, streamFields("buildResult.")...)
	case PresetDisassemble:
		code := res.Get("code")
		if code.Type != gjson.Number {
			return errors.New(`missing numeric field "code"`)
		}
		if code.Int() == 0 {
			return requireFields(res, field{"asm", gjson.JSON})
		}
		return requireFields(res, field{"stderr", gjson.JSON})
	default:
		return fmt.Errorf("unknown preset %d", preset)
	}
}

type field struct {
	path string
	typ  gjson.Type
}

func streamFields(prefix string) []field {
	return []field{
		{prefix + "stdout", gjson.JSON},
		{prefix + "stderr", gjson.JSON},
		{prefix + "code", gjson.Number},
	}
}

func requireFields(res gjson.Result, fields ...field) error {
	for _, f := range fields {
		v := res.Get(f.path)
		if f.typ == gjson.JSON && !v.IsArray() {
			return fmt.Errorf("missing array field %q", f.path)
		}
		if f.typ != gjson.JSON && v.Type != f.typ {
			return fmt.Errorf("missing field %q", f.path)
		}
	}
	return nil
}
