package startup

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

var configEnvKeys = []string{
	"CONFIG_FILE", "PORT", "METRICS_PORT", "METRICS_ENABLED",
	"FFMPEG_PATH", "FFPROBE_PATH", "PROBE_TIMEOUT", "EXTRACT_TIMEOUT",
	"THUMBNAIL_WIDTH", "THUMBNAIL_HEIGHT", "MATCH_EMPTY_NAMES",
	"RUNTIME_DIR", "LOG_THUMBNAILS", "LOG_HEALTH_CHECKS",
}

// clearConfigEnv blanks every config variable for the test. Empty values
// count as unset.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.GoVersion == "" {
		t.Error("Expected GoVersion to be set")
	}
	if info.OS == "" {
		t.Error("Expected OS to be set")
	}
	if info.Arch == "" {
		t.Error("Expected Arch to be set")
	}

	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
		setEnv       bool
	}{
		{
			name:         "Returns default when env var not set",
			key:          "TEST_UNSET_VAR",
			defaultValue: "default",
			want:         "default",
			setEnv:       false,
		},
		{
			name:         "Returns env value when set",
			key:          "TEST_SET_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
			setEnv:       true,
		},
		{
			name:         "Returns default when env var is empty",
			key:          "TEST_EMPTY_VAR",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
			setEnv:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			} else {
				os.Unsetenv(tt.key)
				t.Cleanup(func() {
					os.Unsetenv(tt.key)
				})
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvTyped(t *testing.T) {
	t.Setenv("TEST_BOOL", "yes-please")
	if got := getEnvBool("TEST_BOOL", true); !got {
		t.Error("invalid bool should fall back to default")
	}
	t.Setenv("TEST_BOOL", "false")
	if got := getEnvBool("TEST_BOOL", true); got {
		t.Error("expected false")
	}

	t.Setenv("TEST_INT", "12")
	if got := getEnvInt("TEST_INT", 3); got != 12 {
		t.Errorf("getEnvInt = %d, want 12", got)
	}
	t.Setenv("TEST_INT", "twelve")
	if got := getEnvInt("TEST_INT", 3); got != 3 {
		t.Errorf("getEnvInt = %d, want default 3", got)
	}

	t.Setenv("TEST_DURATION", "1m30s")
	if got := getEnvDuration("TEST_DURATION", time.Second); got != 90*time.Second {
		t.Errorf("getEnvDuration = %v, want 1m30s", got)
	}
	t.Setenv("TEST_DURATION", "90")
	if got := getEnvDuration("TEST_DURATION", time.Second); got != time.Second {
		t.Errorf("getEnvDuration = %v, want default 1s", got)
	}
}

func TestReadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	def := DefaultConfig()
	if cfg.Port != def.Port || cfg.MetricsPort != def.MetricsPort {
		t.Errorf("ports = %s/%s, want %s/%s", cfg.Port, cfg.MetricsPort, def.Port, def.MetricsPort)
	}
	if cfg.ThumbnailWidth != 240 || cfg.ThumbnailHeight != 135 {
		t.Errorf("thumbnail size = %dx%d, want 240x135", cfg.ThumbnailWidth, cfg.ThumbnailHeight)
	}
	if cfg.ProbeTimeout.Std() != 30*time.Second {
		t.Errorf("probe timeout = %v, want 30s", cfg.ProbeTimeout.Std())
	}
	if cfg.MatchEmptyNames {
		t.Error("MatchEmptyNames should default to false")
	}
	if !filepath.IsAbs(cfg.RuntimeDir) {
		t.Errorf("RuntimeDir should be absolute, got %s", cfg.RuntimeDir)
	}
	if cfg.LockPath != filepath.Join(cfg.RuntimeDir, "dupe-checker.lock") {
		t.Errorf("unexpected lock path %s", cfg.LockPath)
	}
}

func TestReadConfigFileAndEnvPrecedence(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfig(t, `
port = "9000"
metrics_enabled = false
probe_timeout = "5s"
thumbnail_width = 320
match_empty_names = true
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")

	cfg, err := ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	if cfg.Port != "9100" {
		t.Errorf("Port = %s, environment should win over file", cfg.Port)
	}
	if cfg.MetricsEnabled {
		t.Error("MetricsEnabled should come from file")
	}
	if cfg.ProbeTimeout.Std() != 5*time.Second {
		t.Errorf("ProbeTimeout = %v, want 5s", cfg.ProbeTimeout.Std())
	}
	if cfg.ThumbnailWidth != 320 || cfg.ThumbnailHeight != 135 {
		t.Errorf("thumbnail size = %dx%d, want 320x135", cfg.ThumbnailWidth, cfg.ThumbnailHeight)
	}
	if !cfg.MatchEmptyNames {
		t.Error("MatchEmptyNames should come from file")
	}
	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %s, want %s", cfg.ConfigFile, path)
	}
}

func TestReadConfigInvalidValuesFallBack(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("THUMBNAIL_WIDTH", "-5")
	t.Setenv("THUMBNAIL_HEIGHT", "abc")
	t.Setenv("EXTRACT_TIMEOUT", "0s")

	cfg, err := ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}
	if cfg.ThumbnailWidth != 240 || cfg.ThumbnailHeight != 135 {
		t.Errorf("thumbnail size = %dx%d, want defaults", cfg.ThumbnailWidth, cfg.ThumbnailHeight)
	}
	if cfg.ExtractTimeout.Std() != 30*time.Second {
		t.Errorf("ExtractTimeout = %v, want default", cfg.ExtractTimeout.Std())
	}
}

func TestReadConfigFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", "port = "},
		{"unknown key", `media_dir = "/media"`},
		{"bad duration", `probe_timeout = "soon"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv("CONFIG_FILE", writeConfig(t, tt.content))

			if _, err := ReadConfig(); err == nil {
				t.Error("expected error")
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.toml"))
		if _, err := ReadConfig(); err == nil {
			t.Error("expected error")
		}
	})
}

func TestLoadConfigCreatesRuntimeDir(t *testing.T) {
	clearConfigEnv(t)
	dir := filepath.Join(t.TempDir(), "run", "nested")
	t.Setenv("RUNTIME_DIR", dir)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	info, err := os.Stat(cfg.RuntimeDir)
	if err != nil || !info.IsDir() {
		t.Fatalf("runtime dir not created: %v", err)
	}
}

func TestLoadConfigRuntimeDirIsFile(t *testing.T) {
	clearConfigEnv(t)
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RUNTIME_DIR", file)

	if _, err := LoadConfig(); err == nil {
		t.Error("expected error when runtime dir is a file")
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("250ms")); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if d.Std() != 250*time.Millisecond {
		t.Errorf("got %v, want 250ms", d.Std())
	}
	text, err := d.MarshalText()
	if err != nil || string(text) != "250ms" {
		t.Errorf("MarshalText = %q, %v", text, err)
	}
	if err := d.UnmarshalText([]byte("later")); err == nil {
		t.Error("expected parse error")
	}
}

func TestAcquireLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dupe-checker.lock")

	first, err := AcquireLock(path)
	if err != nil {
		t.Fatalf("first AcquireLock failed: %v", err)
	}
	if first.Path() != path {
		t.Errorf("Path = %s, want %s", first.Path(), path)
	}

	if _, err := AcquireLock(path); !errors.Is(err, ErrInstanceRunning) {
		t.Errorf("second AcquireLock error = %v, want ErrInstanceRunning", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	again, err := AcquireLock(path)
	if err != nil {
		t.Fatalf("AcquireLock after release failed: %v", err)
	}
	_ = again.Release()
}

func TestGetRoutes(t *testing.T) {
	noop := func(http.ResponseWriter, *http.Request) {}
	router := mux.NewRouter()
	router.HandleFunc("/api/import", noop).Methods("POST").Name("StartImport")
	router.HandleFunc("/api/rows", noop).Methods("GET")
	router.HandleFunc("/api/ws", noop)

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes failed: %v", err)
	}
	if len(routes) != 3 {
		t.Fatalf("got %d routes, want 3", len(routes))
	}
	if routes[0] != (RouteInfo{Method: "POST", Path: "/api/import", Name: "StartImport"}) {
		t.Errorf("unexpected first route %+v", routes[0])
	}
	if routes[2].Method != "*" {
		t.Errorf("route without methods should report *, got %s", routes[2].Method)
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/rows/{index}/thumbnail", "api/rows"},
		{"/api/import", "api/import"},
		{"/health", "health"},
		{"/", ""},
	}

	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestLogMediaToolsMissingBinary(t *testing.T) {
	// Must not panic or exit when tools are missing.
	LogMediaTools("/nonexistent/ffmpeg", "/nonexistent/ffprobe")

	if _, err := toolVersion("/nonexistent/ffprobe"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("toolVersion error = %v, want not found", err)
	}
}

func TestCountAPIRoutes(t *testing.T) {
	routes := []RouteInfo{
		{Method: "POST", Path: "/api/import"},
		{Method: "GET", Path: "/api/rows/{index:[0-9]+}/thumbnail"},
		{Method: "GET", Path: "/health"},
		{Method: "GET", Path: "/apidocs"},
	}
	if got := countAPIRoutes(routes); got != 2 {
		t.Errorf("countAPIRoutes = %d, want 2", got)
	}
}

func TestServiceEndpoints(t *testing.T) {
	endpoints := serviceEndpoints("localhost", "8080")

	want := map[string]string{
		"Import CSV": "POST http://localhost:8080/api/import",
		"Previews":   "POST http://localhost:8080/api/previews",
		"Rows":       "GET  http://localhost:8080/api/rows",
		"Live view":  "ws://localhost:8080/api/ws",
	}
	got := make(map[string]string, len(endpoints))
	for _, e := range endpoints {
		got[e.label] = e.url
	}
	for label, url := range want {
		if got[label] != url {
			t.Errorf("endpoint %q = %q, want %q", label, got[label], url)
		}
	}

	// Must not panic with empty runtime paths.
	LogServerStarted(ServerConfig{Port: "8080", MetricsPort: "9090"})
	LogShutdownComplete("", time.Second)
}
