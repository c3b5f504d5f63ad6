package netutil

import (
	"errors"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// ShouldRetry reports whether a network error is worth retrying.
// It focuses on transient dial/timeout failures produced by net/http
// while contacting the Graph API.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() || netErr.Temporary() {
			return true
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() || opErr.Op == "dial" {
			return true
		}
		if nested, ok := opErr.Err.(net.Error); ok {
			if nested.Timeout() || nested.Temporary() {
				return true
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		if urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
			return ShouldRetry(urlErr.Err)
		}
	}

	return RetryableStatus(StatusFromError(err))
}

// RetryableStatus reports whether an HTTP status code describes a transient
// condition (429 or any 5xx).
func RetryableStatus(code int) bool {
	return code == 429 || (code >= 500 && code <= 599)
}

// StatusFromError extracts a trailing "(NNN)" status code baked into error
// strings produced by the Graph API client; returns 0 when absent.
func StatusFromError(err error) int {
	if err == nil {
		return 0
	}
	msg := err.Error()
	lastOpen := strings.LastIndex(msg, "(")
	lastClose := strings.LastIndex(msg, ")")
	if lastOpen < 0 || lastClose <= lastOpen+1 {
		return 0
	}
	code, convErr := strconv.Atoi(strings.TrimSpace(msg[lastOpen+1 : lastClose]))
	if convErr != nil {
		return 0
	}
	return code
}
