package dahua

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wilhg/dahua-mcp/pkg/errmodel"
)

// Summary is the credential-free listing entry for one camera.
type Summary struct {
	Name string `json:"name"`
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Registry holds one Camera per validated record. It is built once at
// startup and never mutated, so concurrent resolves need no locking.
type Registry struct {
	cameras map[string]*Camera
	order   []string
}

// NewRegistry validates the records and builds the per-camera clients.
// Missing required fields or duplicate names fail construction — a malformed
// inventory must stop startup, not be silently dropped.
func NewRegistry(records []Record, timeout time.Duration) (*Registry, error) {
	r := &Registry{cameras: make(map[string]*Camera, len(records))}
	for i, rec := range records {
		if rec.Name == "" || rec.Host == "" || rec.Username == "" || rec.Password == "" {
			return nil, fmt.Errorf("camera entry %d: name, host, username and password are required", i)
		}
		if _, exists := r.cameras[rec.Name]; exists {
			return nil, fmt.Errorf("duplicate camera name %q", rec.Name)
		}
		if rec.Port == 0 {
			rec.Port = 80
		}
		r.cameras[rec.Name] = NewCamera(rec, timeout)
		r.order = append(r.order, rec.Name)
	}
	return r, nil
}

// Resolve returns the device for a camera name, or a not_found error listing
// the available names.
func (r *Registry) Resolve(name string) (Device, error) {
	cam, ok := r.cameras[name]
	if !ok {
		available := append([]string(nil), r.order...)
		sort.Strings(available)
		return nil, errmodel.NotFound(
			fmt.Sprintf("camera %q not found. Available cameras: %s", name, strings.Join(available, ", ")),
			map[string]any{"camera": name},
		)
	}
	return cam, nil
}

// List returns name/host/port for every camera in configuration order.
// Credentials are never exposed here.
func (r *Registry) List() []Summary {
	out := make([]Summary, 0, len(r.order))
	for _, name := range r.order {
		cam := r.cameras[name]
		out = append(out, Summary{Name: cam.rec.Name, Host: cam.rec.Host, Port: cam.rec.Port})
	}
	return out
}
