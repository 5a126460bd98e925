// Package rest issues typed HTTP requests against the stations backend. It
// performs no retries and no caching; callers decide both.
package rest

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

	corelogger "github.com/plugpoint/plugpoint/core/logger"
	"github.com/plugpoint/plugpoint/core/model"
)

// HTTPDoer is the http.Client subset used by the client.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to the REST backend at a configured base URL.
type Client struct {
	baseURL string
	http    HTTPDoer
	log     corelogger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) { c.http = doer }
}

// WithLogger sets the client logger.
func WithLogger(log corelogger.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a Client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FetchStations retrieves all stations.
func (c *Client) FetchStations(ctx context.Context) ([]model.Station, error) {
	var out []model.Station
	if err := c.do(ctx, http.MethodGet, "/stations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchChargingSessions retrieves the full session history.
func (c *Client) FetchChargingSessions(ctx context.Context) ([]model.ChargingSession, error) {
	var out []model.ChargingSession
	if err := c.do(ctx, http.MethodGet, "/charging_sessions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchChargingSession retrieves one session by id.
func (c *Client) FetchChargingSession(ctx context.Context, id string) (model.ChargingSession, error) {
	var out model.ChargingSession
	err := c.do(ctx, http.MethodGet, "/charging_sessions/"+url.PathEscape(id), nil, &out)
	if err != nil {
		return model.ChargingSession{}, c.asNotFound(err, id)
	}
	return out, nil
}

// CreateChargingSession persists a new session. The backend copy is the
// source of truth and is returned to replace the optimistic one.
func (c *Client) CreateChargingSession(ctx context.Context, sess model.ChargingSession) (model.ChargingSession, error) {
	var out model.ChargingSession
	if err := c.do(ctx, http.MethodPost, "/charging_sessions", sess, &out); err != nil {
		return model.ChargingSession{}, err
	}
	return out, nil
}

// UpdateChargingSession stops a session: it reads the persisted record,
// merges in end_time and status, and writes the full merged record back.
// Fields absent from the update, such as charge_rate, survive untouched.
func (c *Client) UpdateChargingSession(ctx context.Context, update model.SessionUpdate) (model.ChargingSession, error) {
	current, err := c.FetchChargingSession(ctx, update.ID)
	if err != nil {
		return model.ChargingSession{}, err
	}

	current.EndTime = update.EndTime
	current.Status = update.Status

	var out model.ChargingSession
	err = c.do(ctx, http.MethodPut, "/charging_sessions/"+url.PathEscape(update.ID), current, &out)
	if err != nil {
		return model.ChargingSession{}, c.asNotFound(err, update.ID)
	}
	return out, nil
}

// statusError marks an HTTP status outside 2xx before taxonomy mapping.
type statusError struct {
	code int
}

func (e *statusError) Error() string { return fmt.Sprintf("unexpected status %d", e.code) }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &model.DecodeError{Op: op, Err: err}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &model.NetworkError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.errorf("%s: %v", op, err)
		return &model.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.errorf("%s: status %d", op, resp.StatusCode)
		return &model.NetworkError{Op: op, Err: &statusError{code: resp.StatusCode}}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &model.NetworkError{Op: op, Err: err}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.errorf("%s: decode: %v", op, err)
		return &model.DecodeError{Op: op, Err: err}
	}
	return nil
}

// asNotFound maps a 404 status to the taxonomy's NotFoundError for the
// session id in play; anything else passes through unchanged.
func (c *Client) asNotFound(err error, id string) error {
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusNotFound {
		return &model.NotFoundError{Kind: "charging session", ID: id}
	}
	return err
}

func (c *Client) errorf(format string, args ...any) {
	if c.log != nil {
		c.log.Errorf(format, args...)
	}
}
