// Package dahua speaks the Dahua/Amcrest CGI-over-HTTP control dialect: one
// digest-authenticated client per configured camera, a registry keyed by
// camera name, and parsers for the vendor's line-oriented responses.
package dahua

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/icholy/digest"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wilhg/dahua-mcp/pkg/errmodel"
)

// Record is the validated connection record for one camera. Immutable after
// registry construction.
type Record struct {
	Name      string
	Host      string
	Port      int
	Username  string
	Password  string
	VerifySSL bool
}

// Device is the per-camera call surface the gateway dispatches against.
type Device interface {
	Name() string
	// Fetch GETs a CGI endpoint and parses the key=value text response.
	Fetch(ctx context.Context, req *Request) (*KV, error)
	// FetchRaw GETs a CGI endpoint and returns the raw text body.
	FetchRaw(ctx context.Context, req *Request) (string, error)
	// FetchBytes GETs a CGI endpoint and returns the binary body and its
	// content type (snapshot JPEGs).
	FetchBytes(ctx context.Context, req *Request) ([]byte, string, error)
}

// Camera is a stateless HTTP client for a single device. Digest auth is
// negotiated per request; no cookies or session tokens are kept between
// calls. Safe for concurrent use.
type Camera struct {
	rec     Record
	baseURL string
	http    *http.Client
}

// NewCamera builds the client for one record. Port 443 selects HTTPS.
func NewCamera(rec Record, timeout time.Duration) *Camera {
	scheme := "http"
	if rec.Port == 443 {
		scheme = "https"
	}
	base := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: !rec.VerifySSL},
	}
	transport := otelhttp.NewTransport(&digest.Transport{
		Username:  rec.Username,
		Password:  rec.Password,
		Transport: base,
	})
	return &Camera{
		rec:     rec,
		baseURL: fmt.Sprintf("%s://%s:%d", scheme, rec.Host, rec.Port),
		http:    &http.Client{Transport: transport, Timeout: timeout},
	}
}

func (c *Camera) Name() string { return c.rec.Name }

func (c *Camera) Fetch(ctx context.Context, req *Request) (*KV, error) {
	body, _, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return ParseKV(string(body)), nil
}

func (c *Camera) FetchRaw(ctx context.Context, req *Request) (string, error) {
	body, _, err := c.do(ctx, req)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Camera) FetchBytes(ctx context.Context, req *Request) ([]byte, string, error) {
	return c.do(ctx, req)
}

// do issues one GET under /cgi-bin/ and maps failures into the error
// taxonomy. Single attempt per call: retries would change rate-limit and
// idempotence semantics (reboot in particular must never be re-issued).
func (c *Camera) do(ctx context.Context, req *Request) ([]byte, string, error) {
	url := c.baseURL + "/cgi-bin/" + req.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", errmodel.Connectivity("bad_request", err.Error(), map[string]any{"camera": c.rec.Name})
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		// A dropped caller is a distinct terminal state, not a device
		// failure; pass the context error through untouched.
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", errmodel.Connectivity(connectivityCode(err), err.Error(), map[string]any{
			"camera": c.rec.Name,
			"host":   c.rec.Host,
		})
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", errmodel.Connectivity("read_body", err.Error(), map[string]any{"camera": c.rec.Name})
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, "", errmodel.Auth(
			fmt.Sprintf("camera %q rejected credentials (HTTP %d)", c.rec.Name, resp.StatusCode),
			map[string]any{"camera": c.rec.Name, "status": resp.StatusCode},
		)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", errmodel.Device(
			fmt.Sprintf("http_%d", resp.StatusCode),
			fmt.Sprintf("camera %q returned HTTP %d", c.rec.Name, resp.StatusCode),
			map[string]any{"camera": c.rec.Name, "status": resp.StatusCode, "body": string(body)},
		)
	}
	// Some firmwares answer 200 with a bare "Unauthorized" body on bad
	// credentials.
	if isTextual(resp.Header.Get("Content-Type")) && strings.Contains(string(body), "Unauthorized") {
		return nil, "", errmodel.Auth(
			fmt.Sprintf("camera %q rejected credentials", c.rec.Name),
			map[string]any{"camera": c.rec.Name, "body": string(body)},
		)
	}

	return body, resp.Header.Get("Content-Type"), nil
}

func connectivityCode(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "Client.Timeout"), strings.Contains(msg, "deadline exceeded"):
		return "timeout"
	case strings.Contains(msg, "tls:"), strings.Contains(msg, "x509:"):
		return "tls"
	default:
		return "unreachable"
	}
}

func isTextual(contentType string) bool {
	return contentType == "" ||
		strings.HasPrefix(contentType, "text/") ||
		strings.HasPrefix(contentType, "application/x-www-form-urlencoded")
}
