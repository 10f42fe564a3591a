// Package gateway runs every tool call through a fixed pipeline: argument
// validation, camera resolution, policy, rate limiting, then a single
// dispatch to the device. Any check that fails stops the call before any
// network I/O happens.
package gateway

import (
	"context"

	"github.com/wilhg/dahua-mcp/pkg/dahua"
)

// Handler executes one tool against a resolved device. dev is nil for tools
// that do not target a camera.
type Handler func(ctx context.Context, dev dahua.Device, args map[string]any) (any, error)

// Tool declares the static interface of a tool: identity, tags for policy,
// behavior hints for the MCP layer, and a JSON Schema (draft 2020-12) for its
// arguments.
type Tool struct {
	Name        string
	Description string
	Tags        []string
	ReadOnly    bool
	Destructive bool
	Idempotent  bool
	// NeedsCamera marks tools whose "camera" argument must resolve before
	// dispatch.
	NeedsCamera bool
	InputSchema []byte
	Handler     Handler
}

// HasTag reports whether the tool carries the given tag.
func (t Tool) HasTag(tag string) bool {
	for _, have := range t.Tags {
		if have == tag {
			return true
		}
	}
	return false
}

// Resolver supplies devices by name and the credential-free camera listing.
// *dahua.Registry is the production implementation.
type Resolver interface {
	Resolve(name string) (dahua.Device, error)
	List() []dahua.Summary
}
