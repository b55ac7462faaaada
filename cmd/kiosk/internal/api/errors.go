// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package api

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when a request exceeded its deadline.
var ErrTimeout = errors.New("request timed out")

// ErrNotFound is returned for HTTP 404 responses.
var ErrNotFound = errors.New("resource not found")

// ErrServer is returned for 5xx responses after retries are exhausted.
// Callers surface it as "try again"; local state is preserved.
var ErrServer = errors.New("server error")

// StatusError carries a non-2xx status code and the response body for
// callers that surface 4xx messages verbatim.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("http %d: %s", e.Code, e.Body)
	}
	return fmt.Sprintf("http %d", e.Code)
}

// Is lets errors.Is match StatusError against the sentinels.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == 404
	case ErrServer:
		return e.Code >= 500
	}
	return false
}
