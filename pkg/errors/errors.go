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

package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	As     = stderrors.As
	Is     = stderrors.Is
	New    = stderrors.New
	Unwrap = stderrors.Unwrap
)

var (
	ErrNotFound        = stderrors.New("resource not found")
	ErrUnauthorized    = stderrors.New("unauthorized")
	ErrBadRequest      = stderrors.New("bad request")
	ErrServerError     = stderrors.New("server error")
	ErrTimeout         = stderrors.New("operation timed out")
	ErrRateLimit       = stderrors.New("rate limit exceeded")
	ErrPayloadTooLarge = stderrors.New("payload too large")
	ErrInvalidInput    = stderrors.New("invalid input")
	ErrNetworkIssue    = stderrors.New("network connection issue")
)

// RemoteError describes a failed call against the ImgChest API after
// retries were exhausted, or for conditions that are never retried.
// It wraps one of the sentinels above so callers can branch with Is.
type RemoteError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("imgchest %s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("imgchest %s: status %d: %v", e.Endpoint, e.StatusCode, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Remote builds a RemoteError wrapping the given sentinel.
func Remote(endpoint string, status int, message string, sentinel error) error {
	return &RemoteError{
		Endpoint:   endpoint,
		StatusCode: status,
		Message:    message,
		Err:        sentinel,
	}
}

func IsNotFound(err error) bool        { return Is(err, ErrNotFound) }
func IsUnauthorized(err error) bool    { return Is(err, ErrUnauthorized) }
func IsTimeouted(err error) bool       { return Is(err, ErrTimeout) }
func IsRateLimited(err error) bool     { return Is(err, ErrRateLimit) }
func IsPayloadTooLarge(err error) bool { return Is(err, ErrPayloadTooLarge) }
