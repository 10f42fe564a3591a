package errmodel

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Kind values for compact errors. Every failure the gateway can surface maps
// to exactly one of these.
const (
	KindNotFound     = "not_found"     // unknown camera name
	KindPolicyDenied = "policy_denied" // read-only mode or disabled tag
	KindRateLimited  = "rate_limited"  // sliding window exhausted
	KindConnectivity = "connectivity"  // network, TLS, or timeout
	KindAuth         = "auth"          // device rejected credentials
	KindDevice       = "device"        // device returned a CGI-level error
	KindValidation   = "validation"    // tool arguments failed schema checks
	KindInternal     = "internal"      // anything else
)

// Error is the compact error payload returned in tool results and used
// internally. It implements the error interface.
type Error struct {
	Kind    string         `json:"kind"`
	Code    string         `json:"code,omitempty"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
	// RetryAfterSeconds is set only for rate_limited errors.
	RetryAfterSeconds float64 `json:"retry_after_seconds,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return e.Kind + "/" + e.Code + ": " + e.Message
	}
	return e.Kind + ": " + e.Message
}

// New constructs a new compact error.
func New(kind, code, message string, ctx map[string]any) *Error {
	ce := &Error{Kind: kind, Code: code, Message: truncate(message, 512)}
	if len(ctx) > 0 {
		ce.Context = truncateContext(ctx)
	}
	return ce
}

// From converts any error into a compact Error. If err is already *Error, it
// is returned as-is; unknown error types default to internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return &Error{Kind: KindInternal, Message: truncate(err.Error(), 512)}
}

// Convenience constructors.

func NotFound(message string, ctx map[string]any) *Error {
	return New(KindNotFound, "", message, ctx)
}

func PolicyDenied(code, message string, ctx map[string]any) *Error {
	return New(KindPolicyDenied, code, message, ctx)
}

func RateLimited(retryAfter time.Duration, ctx map[string]any) *Error {
	e := New(KindRateLimited, "", "rate limit exceeded, retry later", ctx)
	e.RetryAfterSeconds = retryAfter.Seconds()
	return e
}

func Connectivity(code, message string, ctx map[string]any) *Error {
	return New(KindConnectivity, code, message, ctx)
}

func Auth(message string, ctx map[string]any) *Error {
	return New(KindAuth, "", message, ctx)
}

func Device(code, message string, ctx map[string]any) *Error {
	return New(KindDevice, code, message, ctx)
}

func Validation(code, message string, ctx map[string]any) *Error {
	return New(KindValidation, code, message, ctx)
}

// IsKind checks if err belongs to a specific kind.
func IsKind(err error, kind string) bool {
	ce := From(err)
	return ce != nil && strings.EqualFold(ce.Kind, kind)
}

// truncate trims a string to max characters.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// truncateContext trims long string values in the context map.
func truncateContext(ctx map[string]any) map[string]any {
	out := make(map[string]any, len(ctx))
	for k, v := range ctx {
		switch t := v.(type) {
		case string:
			out[k] = truncate(t, 256)
		default:
			b, err := json.Marshal(t)
			if err == nil && len(b) > 256 {
				out[k] = truncate(string(b), 256)
			} else {
				out[k] = t
			}
		}
	}
	return out
}
