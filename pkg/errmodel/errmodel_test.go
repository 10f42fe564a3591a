package errmodel

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewAndFrom(t *testing.T) {
	e := Validation("missing", "field missing", map[string]any{"field": "camera"})
	if e.Kind != KindValidation || e.Code != "missing" {
		t.Fatalf("unexpected: %#v", e)
	}
	if got := From(e); got != e {
		t.Fatalf("From should return same error instance")
	}
}

func TestFromWrapped(t *testing.T) {
	inner := NotFound("camera 'x' not found", nil)
	wrapped := errors.Join(errors.New("outer"), inner)
	got := From(wrapped)
	if got.Kind != KindNotFound {
		t.Fatalf("kind=%s want %s", got.Kind, KindNotFound)
	}
}

func TestFromUnknownDefaultsToInternal(t *testing.T) {
	got := From(errors.New("boom"))
	if got.Kind != KindInternal || got.Message != "boom" {
		t.Fatalf("unexpected: %#v", got)
	}
}

func TestRateLimitedCarriesRetryAfter(t *testing.T) {
	e := RateLimited(45*time.Second, nil)
	if e.Kind != KindRateLimited {
		t.Fatalf("kind=%s", e.Kind)
	}
	if e.RetryAfterSeconds != 45 {
		t.Fatalf("retry_after=%v want 45", e.RetryAfterSeconds)
	}
}

func TestErrorString(t *testing.T) {
	e := Connectivity("timeout", "request timed out", nil)
	if got := e.Error(); got != "connectivity/timeout: request timed out" {
		t.Fatalf("got %q", got)
	}
	if got := Auth("bad credentials", nil).Error(); got != "auth: bad credentials" {
		t.Fatalf("got %q", got)
	}
}

func TestIsKind(t *testing.T) {
	if !IsKind(Device("http_500", "oops", nil), KindDevice) {
		t.Fatal("expected device kind")
	}
	if IsKind(nil, KindDevice) {
		t.Fatal("nil should not match")
	}
}

func TestTruncateLongMessage(t *testing.T) {
	e := Device("http_500", strings.Repeat("x", 2000), nil)
	if len(e.Message) != 512 {
		t.Fatalf("len=%d want 512", len(e.Message))
	}
	if !strings.HasSuffix(e.Message, "...") {
		t.Fatal("expected ellipsis suffix")
	}
}
