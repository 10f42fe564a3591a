package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadCamerasJSON(t *testing.T) {
	p := writeFile(t, t.TempDir(), "cameras.json",
		`{"cameras":[{"name":"front-door","host":"192.168.1.100","username":"admin","password":"pass"}]}`)
	cams, err := LoadCameras(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(cams) != 1 || cams[0].Name != "front-door" {
		t.Fatalf("cams=%+v", cams)
	}
	if cams[0].Port != 80 {
		t.Fatalf("port=%d want default 80", cams[0].Port)
	}
}

func TestLoadCamerasYAML(t *testing.T) {
	p := writeFile(t, t.TempDir(), "cameras.yaml", `
cameras:
  - name: back-yard
    host: 192.168.1.101
    port: 443
    username: admin
    password: pass
    verify_ssl: true
`)
	cams, err := LoadCameras(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(cams) != 1 || cams[0].Name != "back-yard" || cams[0].Port != 443 || !cams[0].VerifySSL {
		t.Fatalf("cams=%+v", cams)
	}
}

func TestLoadCamerasUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, dir, "cams.conf",
		`{"cameras":[{"name":"a","host":"h","username":"u","password":"p"}]}`)
	cams, err := LoadCameras(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(cams) != 1 || cams[0].Name != "a" {
		t.Fatalf("cams=%+v", cams)
	}

	yamlPath := writeFile(t, dir, "cams2.conf", "cameras:\n  - name: b\n    host: h\n    username: u\n    password: p\n")
	cams, err = LoadCameras(yamlPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(cams) != 1 || cams[0].Name != "b" {
		t.Fatalf("cams=%+v", cams)
	}
}

func TestLoadCamerasMissingFile(t *testing.T) {
	if _, err := LoadCameras("/nonexistent/cameras.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFindCamerasPathEnvTakesPriority(t *testing.T) {
	t.Setenv("DAHUA_CAMERAS_CONFIG", "/tmp/custom.json")
	if got := FindCamerasPath(); got != "/tmp/custom.json" {
		t.Fatalf("got %q", got)
	}
}

func TestFindCamerasPathConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("DAHUA_CAMERAS_CONFIG", "")
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".config", "dahua-mcp")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "cameras.json", `{"cameras":[]}`)
	writeFile(t, dir, "cameras.yaml", "cameras: []")
	// yaml is preferred over json
	if got := FindCamerasPath(); got != filepath.Join(dir, "cameras.yaml") {
		t.Fatalf("got %q", got)
	}
}

func TestFindCamerasPathFallback(t *testing.T) {
	t.Setenv("DAHUA_CAMERAS_CONFIG", "")
	t.Setenv("HOME", t.TempDir())
	if got := FindCamerasPath(); got != "cameras.json" {
		t.Fatalf("got %q", got)
	}
}

func TestLoadSettingsFromEnv(t *testing.T) {
	p := writeFile(t, t.TempDir(), "cameras.json",
		`{"cameras":[{"name":"c","host":"h","username":"u","password":"p"}]}`)
	t.Setenv("DAHUA_CAMERAS_CONFIG", p)
	t.Setenv("DAHUA_TIMEOUT", "5")
	t.Setenv("READ_ONLY_MODE", "true")
	t.Setenv("DISABLED_TAGS", "destructive, snapshot ,")
	t.Setenv("RATE_LIMIT_ENABLED", "yes")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "3")
	t.Setenv("RATE_LIMIT_WINDOW_MINUTES", "2")

	s, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if s.Timeout != 5*time.Second {
		t.Fatalf("timeout=%v", s.Timeout)
	}
	if !s.ReadOnly {
		t.Fatal("read-only not set")
	}
	if _, ok := s.DisabledTags["destructive"]; !ok {
		t.Fatalf("tags=%v", s.DisabledTags)
	}
	if _, ok := s.DisabledTags["snapshot"]; !ok {
		t.Fatalf("tags=%v", s.DisabledTags)
	}
	if len(s.DisabledTags) != 2 {
		t.Fatalf("tags=%v", s.DisabledTags)
	}
	if !s.RateLimitEnabled || s.RateLimitMax != 3 || s.RateLimitWindow != 2*time.Minute {
		t.Fatalf("rate limit settings: %+v", s)
	}
}

func TestLoadFailsWithoutCameras(t *testing.T) {
	p := writeFile(t, t.TempDir(), "cameras.json", `{"cameras":[]}`)
	t.Setenv("DAHUA_CAMERAS_CONFIG", p)
	if _, err := Load(); err == nil {
		t.Fatal("expected error for empty camera list")
	}
}

func TestLoadTransportDefaults(t *testing.T) {
	t.Setenv("MCP_TRANSPORT", "")
	t.Setenv("MCP_HTTP_HOST", "")
	t.Setenv("MCP_HTTP_PORT", "")
	tr := LoadTransport()
	if tr.Type != "stdio" || tr.HTTPHost != "0.0.0.0" || tr.HTTPPort != 8000 {
		t.Fatalf("transport=%+v", tr)
	}
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"1", "true", "True", "TRUE", "yes", "Yes", "on", "ON", "  true  "} {
		if !ParseBool(v, false) {
			t.Fatalf("%q should be true", v)
		}
	}
	for _, v := range []string{"0", "false", "no", "off", "anything"} {
		if ParseBool(v, true) {
			t.Fatalf("%q should be false", v)
		}
	}
	if !ParseBool("", true) || ParseBool("", false) {
		t.Fatal("empty should return default")
	}
}
