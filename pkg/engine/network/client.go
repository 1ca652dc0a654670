// Archivist: A CLI tool for uploading manga chapters to ImgChest and
// maintaining Cubari-compatible reader metadata.
// Copyright (C) 2025 Archivist Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package network

import (
	"Archivist/pkg/engine/logger"
	"Archivist/pkg/errors"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client carries the shared request machinery for all ImgChest calls:
// bearer-token auth, per-attempt timeout, bounded retries with
// exponential backoff, Retry-After-directed waits on 429, and the
// distinguished payload-too-large condition on 413.
type Client struct {
	BaseURL    string
	Token      string
	HTTP       *http.Client
	MaxRetries int
	RetryDelay time.Duration
	Logger     logger.Logger
	Limiter    *rate.Limiter
}

// NewClient creates a client against the given API base URL.
func NewClient(baseURL, token string, log logger.Logger) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTP:       &http.Client{Timeout: 30 * time.Second},
		MaxRetries: 3,
		RetryDelay: time.Second,
		Logger:     log,
		Limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// apiResponse is the common envelope of ImgChest JSON responses.
type apiResponse struct {
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// request performs one authenticated API call with the full retry
// policy and returns the decoded response envelope. The payload (nil
// for bodiless calls) is replayed from memory on each attempt.
func (c *Client) request(ctx context.Context, method, endpoint string, payload []byte, contentType string) (*apiResponse, error) {
	url := c.BaseURL + "/" + strings.TrimLeft(endpoint, "/")

	var lastErr error
	for attempt := 0; attempt < c.MaxRetries; attempt++ {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.Token)
		req.Header.Set("Accept", "application/json")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		c.Logger.Debug("[HTTP] %s %s (attempt %d/%d)", method, url, attempt+1, c.MaxRetries)

		resp, err := c.HTTP.Do(req)
		if err != nil {
			// An operator interrupt aborts the call outright; it is
			// terminal for the current chapter, never retried.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = classifyTransportError(err)
			c.Logger.Debug("[HTTP] request failed: %v", err)
			if attempt < c.MaxRetries-1 {
				if err := c.backoff(ctx, attempt); err != nil {
					return nil, err
				}
				continue
			}
			return nil, errors.Remote(endpoint, 0, err.Error(), lastErr)
		}

		raw, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			if attempt < c.MaxRetries-1 {
				if err := c.backoff(ctx, attempt); err != nil {
					return nil, err
				}
				continue
			}
			return nil, errors.Remote(endpoint, resp.StatusCode, readErr.Error(), errors.ErrNetworkIssue)
		}

		c.Logger.Debug("[HTTP] status %d, %d bytes", resp.StatusCode, len(raw))

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			delay := retryAfter(resp.Header)
			lastErr = errors.Remote(endpoint, resp.StatusCode, bodyMessage(raw), errors.ErrRateLimit)
			if attempt < c.MaxRetries-1 {
				c.Logger.Debug("[HTTP] rate limited, honoring Retry-After of %v", delay)
				if err := sleepCtx(ctx, delay); err != nil {
					return nil, err
				}
				continue
			}
			return nil, lastErr

		case resp.StatusCode == http.StatusRequestEntityTooLarge:
			// Structural signal: the orchestrator reacts to this by
			// shrinking its batch size. Never retried here.
			return nil, errors.Remote(endpoint, resp.StatusCode, bodyMessage(raw), errors.ErrPayloadTooLarge)

		case resp.StatusCode >= 500:
			lastErr = errors.Remote(endpoint, resp.StatusCode, bodyMessage(raw), errors.ErrServerError)
			if attempt < c.MaxRetries-1 {
				if err := c.backoff(ctx, attempt); err != nil {
					return nil, err
				}
				continue
			}
			return nil, lastErr

		case resp.StatusCode >= 400:
			sentinel := errors.ErrBadRequest
			switch resp.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				sentinel = errors.ErrUnauthorized
			case http.StatusNotFound:
				sentinel = errors.ErrNotFound
			}
			return nil, errors.Remote(endpoint, resp.StatusCode, bodyMessage(raw), sentinel)
		}

		// 2xx: the body must still parse and must not carry an
		// explicit error field to count as success.
		var envelope apiResponse
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, errors.Remote(endpoint, resp.StatusCode, "invalid JSON in response", errors.ErrBadRequest)
		}
		if envelope.Error != "" {
			return nil, errors.Remote(endpoint, resp.StatusCode, envelope.Error, errors.ErrBadRequest)
		}
		return &envelope, nil
	}

	return nil, lastErr
}

// backoff sleeps for the exponential schedule slot of the given
// attempt, aborting early on context cancellation.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	delay := c.RetryDelay * time.Duration(1<<uint(attempt))
	if delay > 30*time.Second {
		delay = 30 * time.Second
	}
	c.Logger.Debug("[HTTP] retrying in %v...", delay)
	return sleepCtx(ctx, delay)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// classifyTransportError maps connection-level failures onto the
// retryable sentinels. Timeouts and connection resets share the same
// retry schedule.
func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.ErrTimeout
	}
	return errors.ErrNetworkIssue
}

// retryAfter reads the server-supplied delay from a 429 response,
// falling back to 60 seconds when absent or unparsable.
func retryAfter(h http.Header) time.Duration {
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 60 * time.Second
}

// bodyMessage extracts a human-readable error message from a JSON
// error body, or degrades to a trimmed raw body.
func bodyMessage(raw []byte) string {
	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Error != "" {
			return envelope.Error
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
