// Package httpclient es el cliente JSON que usan los adapters hacia el
// backend. Reintenta las lecturas cuando el hosting todavía está despertando.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultRetryWait = 500 * time.Millisecond

	maxBodyBytes = 1 << 20 // 1MB
)

type Client struct {
	HTTP      *http.Client
	BaseURL   string // si se define, los paths relativos se resuelven contra ella
	UserAgent string

	// Retries: reintentos extra para métodos idempotentes ante 502/503/504 o
	// una respuesta que no es JSON. La espera se duplica en cada intento.
	Retries   int
	RetryWait time.Duration
}

type Option func(*Client)

type noRetryKey struct{}

// NoRetry marca ctx para que DoJSON haga un único intento aunque el
// Client tenga Retries.
func NoRetry(ctx context.Context) context.Context {
	return context.WithValue(ctx, noRetryKey{}, true)
}

func retriesFor(ctx context.Context, n int) int {
	if off, _ := ctx.Value(noRetryKey{}).(bool); off {
		return 0
	}
	return n
}

func WithRetries(n int, wait time.Duration) Option {
	return func(c *Client) {
		if n > 0 {
			c.Retries = n
		}
		if wait > 0 {
			c.RetryWait = wait
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.UserAgent = strings.TrimSpace(ua) }
}

// WithTransport reemplaza el RoundTripper (tests).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.HTTP.Transport = rt }
}

func New(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		HTTP:      &http.Client{Timeout: timeout},
		RetryWait: DefaultRetryWait,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func NewWithBaseURL(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	c := New(timeout, opts...)
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return c, nil
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	c.BaseURL = strings.TrimRight(baseURL, "/")
	return c, nil
}

// HTTPError es una respuesta no-2xx.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("http error: status=%d body=%s", e.StatusCode, e.Body)
}

// ContentTypeError: 2xx con un cuerpo que no es JSON (p.ej. la página HTML
// que devuelve el hosting mientras el backend arranca).
type ContentTypeError struct {
	ContentType string
}

func (e *ContentTypeError) Error() string {
	return fmt.Sprintf("httpclient: unexpected content type %q", e.ContentType)
}

func IsStatus(err error, code int) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.StatusCode == code
}

// DoJSON manda in como JSON (si no es nil) y decodifica la respuesta en out
// (si no es nil). pathOrURL puede ser absoluta o relativa a BaseURL.
func (c *Client) DoJSON(ctx context.Context, method, pathOrURL string, headers map[string]string, in, out any) error {
	if c == nil || c.HTTP == nil {
		return errors.New("httpclient: nil client")
	}

	target, err := c.resolveURL(pathOrURL)
	if err != nil {
		return err
	}

	var payload []byte
	if in != nil {
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("httpclient: marshal json: %w", err)
		}
	}

	retries := retriesFor(ctx, c.Retries)
	wait := c.RetryWait
	for attempt := 0; ; attempt++ {
		err = c.send(ctx, method, target, headers, payload, out)
		if err == nil || attempt >= retries || !retryable(method, err) {
			return err
		}

		select {
		case <-ctx.Done():
			return err
		case <-time.After(wait):
		}
		wait *= 2
	}
}

func (c *Client) Get(ctx context.Context, path string, headers map[string]string, out any) error {
	return c.DoJSON(ctx, http.MethodGet, path, headers, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, headers map[string]string, in, out any) error {
	return c.DoJSON(ctx, http.MethodPost, path, headers, in, out)
}

func (c *Client) Put(ctx context.Context, path string, headers map[string]string, in, out any) error {
	return c.DoJSON(ctx, http.MethodPut, path, headers, in, out)
}

func (c *Client) send(ctx context.Context, method, target string, headers map[string]string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("httpclient: new request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, v := range headers {
		if strings.TrimSpace(k) != "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return decode(resp.Header.Get("Content-Type"), raw, out)
}

func decode(contentType string, raw []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if !isJSON(contentType) {
		return &ContentTypeError{ContentType: contentType}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("httpclient: unmarshal json: %w", err)
	}
	return nil
}

// retryable: solo métodos idempotentes, y solo fallas típicas de un backend
// que está arrancando.
func retryable(method string, err error) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
	default:
		return false
	}

	var cte *ContentTypeError
	if errors.As(err, &cte) {
		return true
	}
	var he *HTTPError
	if errors.As(err, &he) {
		switch he.StatusCode {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
	}
	return false
}

func (c *Client) resolveURL(pathOrURL string) (string, error) {
	pathOrURL = strings.TrimSpace(pathOrURL)
	switch {
	case pathOrURL == "":
		return "", errors.New("httpclient: empty url")
	case strings.HasPrefix(pathOrURL, "http://"), strings.HasPrefix(pathOrURL, "https://"):
		return pathOrURL, nil
	case c.BaseURL == "":
		return "", errors.New("httpclient: relative path requires BaseURL")
	case !strings.HasPrefix(pathOrURL, "/"):
		pathOrURL = "/" + pathOrURL
	}
	return c.BaseURL + pathOrURL, nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
