// Package config loads the camera inventory file and the environment-driven
// runtime settings (policy flags, rate limiting, transport binding).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Camera is one entry of the inventory file.
type Camera struct {
	Name      string `json:"name" yaml:"name"`
	Host      string `json:"host" yaml:"host"`
	Port      int    `json:"port" yaml:"port"`
	Username  string `json:"username" yaml:"username"`
	Password  string `json:"password" yaml:"password"`
	VerifySSL bool   `json:"verify_ssl" yaml:"verify_ssl"`
	// Type is "camera" or "nvr"; informational only.
	Type string `json:"type" yaml:"type"`
}

// Settings is the process-wide configuration, loaded once at startup and
// immutable afterwards.
type Settings struct {
	Cameras    []Camera
	ConfigPath string

	Timeout      time.Duration
	ReadOnly     bool
	DisabledTags map[string]struct{}

	RateLimitEnabled bool
	RateLimitMax     int
	RateLimitWindow  time.Duration
}

// Transport type values.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
	TransportSSE   = "sse"
)

// Transport describes the MCP transport binding.
type Transport struct {
	Type        string // "stdio", "http", or "sse"
	HTTPHost    string
	HTTPPort    int
	BearerToken string
}

type camerasFile struct {
	Cameras []Camera `json:"cameras" yaml:"cameras"`
}

// Load reads the camera inventory and environment settings.
func Load() (*Settings, error) {
	path := FindCamerasPath()
	cams, err := LoadCameras(path)
	if err != nil {
		return nil, err
	}
	if len(cams) == 0 {
		return nil, fmt.Errorf("no cameras defined in %s", path)
	}

	s := &Settings{
		Cameras:          cams,
		ConfigPath:       path,
		Timeout:          time.Duration(intEnv("DAHUA_TIMEOUT", 20)) * time.Second,
		ReadOnly:         ParseBool(os.Getenv("READ_ONLY_MODE"), false),
		DisabledTags:     parseTags(os.Getenv("DISABLED_TAGS")),
		RateLimitEnabled: ParseBool(os.Getenv("RATE_LIMIT_ENABLED"), false),
		RateLimitMax:     intEnv("RATE_LIMIT_MAX_REQUESTS", 60),
		RateLimitWindow:  time.Duration(intEnv("RATE_LIMIT_WINDOW_MINUTES", 1)) * time.Minute,
	}
	return s, nil
}

// LoadTransport reads the transport binding from the environment.
func LoadTransport() Transport {
	return Transport{
		Type:        strings.ToLower(getEnv("MCP_TRANSPORT", "stdio")),
		HTTPHost:    getEnv("MCP_HTTP_HOST", "0.0.0.0"),
		HTTPPort:    intEnv("MCP_HTTP_PORT", 8000),
		BearerToken: os.Getenv("MCP_HTTP_BEARER_TOKEN"),
	}
}

// LoadCameras parses a JSON or YAML inventory file. Unknown extensions are
// tried as JSON first, then YAML.
func LoadCameras(path string) ([]Camera, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cameras config: %w", err)
	}

	var f camerasFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	case ".json":
		err = json.Unmarshal(data, &f)
	default:
		if err = json.Unmarshal(data, &f); err != nil {
			err = yaml.Unmarshal(data, &f)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("cameras config %s: %w", path, err)
	}

	for i := range f.Cameras {
		if f.Cameras[i].Port == 0 {
			f.Cameras[i].Port = 80
		}
		if f.Cameras[i].Type == "" {
			f.Cameras[i].Type = "camera"
		}
	}
	return f.Cameras, nil
}

// FindCamerasPath locates the inventory file. Search order:
//  1. DAHUA_CAMERAS_CONFIG env var
//  2. ~/.config/dahua-mcp/cameras.{yaml,yml,json}
//  3. cameras.json in the working directory
func FindCamerasPath() string {
	if p := os.Getenv("DAHUA_CAMERAS_CONFIG"); p != "" {
		return p
	}
	if home, err := os.UserHomeDir(); err == nil {
		dir := filepath.Join(home, ".config", "dahua-mcp")
		for _, name := range []string{"cameras.yaml", "cameras.yml", "cameras.json"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return "cameras.json"
}

// ParseBool converts a string to a boolean. Truthy values are 1/true/yes/on,
// case-insensitive; empty input returns the default.
func ParseBool(val string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(val))
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func parseTags(raw string) map[string]struct{} {
	tags := map[string]struct{}{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags[t] = struct{}{}
		}
	}
	return tags
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}
