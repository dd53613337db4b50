// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retry

import (
	"errors"
	"fmt"
	"net"
	"net/http"
)

// StatusError reports a non-2xx HTTP response from a source or backend API.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// CheckStatus converts a non-2xx response into a StatusError.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &StatusError{StatusCode: resp.StatusCode, URL: resp.Request.URL.String()}
}

// RetryableHTTP classifies an HTTP operation error as transient. Timeouts,
// connection errors, HTTP 429, and 5xx responses are transient; any other
// 4xx is permanent.
func RetryableHTTP(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}

	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}

	// Transport-level failures (connection reset, EOF) surface as url.Error
	// or plain errors; treat anything that is not a StatusError as transient.
	return true
}
