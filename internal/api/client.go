// Package api wraps the document-control backend's HTTP contract in a typed
// client. Error bodies are structured even on failure, so every call decodes
// the body first and checks the HTTP status second.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"doctrack-cli/internal/model"
)

// ErrorKind classifies a backend failure. Callers branch on the kind, never
// on the detail text: the fragile text sniffing happens in exactly one place
// (classifyDetail) at the client boundary.
type ErrorKind int

const (
	KindGeneric ErrorKind = iota
	KindNotFound
)

// notFoundDetail is the backend's fixed-locale not-found message. The
// backend exposes no structured error code, so this string IS the contract.
const notFoundDetail = "Документ не найден"

// RequestError is a non-2xx backend response carrying the server-supplied
// detail message.
type RequestError struct {
	Status int
	Detail string
	Kind   ErrorKind
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Detail)
}

// IsNotFound reports whether err is a backend not-found response.
func IsNotFound(err error) bool {
	re, ok := err.(*RequestError)
	return ok && re.Kind == KindNotFound
}

// UserMessage extracts a message suitable for direct display. Backend
// details are already user-facing text; anything else is a transport
// failure and gets a reachability prefix.
func UserMessage(err error) string {
	if re, ok := err.(*RequestError); ok {
		return re.Detail
	}
	return "Бэкенд недоступен: " + err.Error()
}

func classifyDetail(detail string) ErrorKind {
	if strings.Contains(detail, notFoundDetail) {
		return KindNotFound
	}
	return KindGeneric
}

// Client talks to the document-control backend. The zero timeout default is
// deliberate: a hung request blocks only the action that issued it, and the
// single-user usage pattern prefers waiting over spurious cancellations.
type Client struct {
	base string
	hc   *http.Client
	log  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets a client-side request timeout (0 = none).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.hc.Timeout = d }
}

// WithLogger attaches a request logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithHTTPClient substitutes the underlying HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// New creates a client for the backend at base (e.g. http://127.0.0.1:8000).
func New(base string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{},
		log:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// do performs one request and decodes the body uniformly. On a 2xx the body
// is decoded into out (when non-nil); on anything else the body's `detail`
// field becomes a *RequestError.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	c.log.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := struct {
			Detail string `json:"detail"`
		}{}
		// The body is expected to be structured even on failure; fall back
		// to a generic message when it is not.
		_ = json.Unmarshal(raw, &detail)
		if strings.TrimSpace(detail.Detail) == "" {
			detail.Detail = fmt.Sprintf("ошибка запроса (%s %s)", method, path)
		}
		return &RequestError{
			Status: resp.StatusCode,
			Detail: detail.Detail,
			Kind:   classifyDetail(detail.Detail),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// Health probes GET /health.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// List fetches the full document collection.
func (c *Client) List(ctx context.Context) ([]model.Document, error) {
	var docs []model.Document
	if err := c.do(ctx, http.MethodGet, "/documents", nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// ListExpiring fetches documents expiring within days.
func (c *Client) ListExpiring(ctx context.Context, days int) ([]model.Document, error) {
	var docs []model.Document
	path := "/documents/expiring?days=" + strconv.Itoa(days)
	if err := c.do(ctx, http.MethodGet, path, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Create registers a new document.
func (c *Client) Create(ctx context.Context, req model.DocumentCreate) (model.Document, error) {
	var doc model.Document
	if err := c.do(ctx, http.MethodPost, "/documents", req, &doc); err != nil {
		return model.Document{}, err
	}
	return doc, nil
}

// Renew updates a document's expiry date; the backend appends a history
// entry as a side effect.
func (c *Client) Renew(ctx context.Context, id int64, newExpiry string) (model.Document, error) {
	var doc model.Document
	path := fmt.Sprintf("/documents/%d/renew", id)
	if err := c.do(ctx, http.MethodPost, path, model.DocumentRenew{NewExpiryDate: newExpiry}, &doc); err != nil {
		return model.Document{}, err
	}
	return doc, nil
}

// Delete removes a document, falling back to the POST delete route when the
// primary route reports not-found. If both routes report not-found the
// document is already gone, which is a success (alreadyDeleted=true), not
// an error: deleting something absent is a no-op.
func (c *Client) Delete(ctx context.Context, id int64) (alreadyDeleted bool, err error) {
	primary := fmt.Sprintf("/documents/%d", id)
	err = c.do(ctx, http.MethodDelete, primary, nil, nil)
	if err == nil {
		return false, nil
	}
	if !IsNotFound(err) {
		return false, err
	}

	c.log.Debug("primary delete reported not-found, trying fallback route", zap.Int64("id", id))
	fallback := fmt.Sprintf("/documents/%d/delete", id)
	err = c.do(ctx, http.MethodPost, fallback, nil, nil)
	if err == nil {
		return false, nil
	}
	if IsNotFound(err) {
		return true, nil
	}
	return false, err
}

// DeleteAll clears every document and returns how many were removed.
func (c *Client) DeleteAll(ctx context.Context) (int, error) {
	var res model.ClearResult
	if err := c.do(ctx, http.MethodPost, "/documents/clear", nil, &res); err != nil {
		return 0, err
	}
	return res.Deleted, nil
}

// History fetches the renewal log of one document, in backend order.
func (c *Client) History(ctx context.Context, id int64) ([]model.HistoryEntry, error) {
	var entries []model.HistoryEntry
	path := fmt.Sprintf("/documents/%d/history", id)
	if err := c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SendReminders triggers reminder dispatch for documents expiring within
// days. Mode is "email" or "webhook"; target overrides the backend default
// recipient when non-empty.
func (c *Client) SendReminders(ctx context.Context, days int, mode, target string) (model.ReminderResult, error) {
	q := url.Values{}
	q.Set("days", strconv.Itoa(days))
	if mode != "" {
		q.Set("mode", mode)
	}
	if target != "" {
		q.Set("target", target)
	}
	var res model.ReminderResult
	if err := c.do(ctx, http.MethodPost, "/reminders/send?"+q.Encode(), nil, &res); err != nil {
		return model.ReminderResult{}, err
	}
	return res, nil
}
