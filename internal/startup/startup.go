package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"dupe-checker/internal/logging"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Route might not have methods specified (e.g., static file server)
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes summarizes the registered routes. The full table, grouped
// by pipeline, is only printed at debug level.
func LogHTTPRoutes(router *mux.Router, logThumbnails, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	routes, err := GetRoutes(router)
	if err != nil {
		logging.Warn("error walking routes: %v", err)
	}
	logging.Info("  %d routes registered, %d under /api", len(routes), countAPIRoutes(routes))

	if logging.IsDebugEnabled() {
		logging.Debug("")

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}
			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logThumbnails {
		logging.Info("    Thumbnail logging: ON")
	} else {
		logging.Info("    Thumbnail logging: OFF (set LOG_THUMBNAILS=true to enable)")
	}
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

func countAPIRoutes(routes []RouteInfo) int {
	n := 0
	for _, r := range routes {
		if strings.HasPrefix(r.Path, "/api/") {
			n++
		}
	}
	return n
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	// Remove leading slash
	path = strings.TrimPrefix(path, "/")

	// Get first segment
	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 0 {
		return ""
	}

	first := parts[0]

	// Special handling for API routes
	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds what the started-server log reports.
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	RuntimeDir      string
	LockPath        string
	StartupDuration time.Duration
}

type endpoint struct {
	label string
	url   string
}

// serviceEndpoints lists the pipeline and live-view entry points under host.
func serviceEndpoints(host, port string) []endpoint {
	base := "http://" + host + ":" + port
	return []endpoint{
		{"Import CSV", "POST " + base + "/api/import"},
		{"Previews", "POST " + base + "/api/previews"},
		{"Status", "GET  " + base + "/api/status"},
		{"Rows", "GET  " + base + "/api/rows"},
		{"Live view", "ws://" + host + ":" + port + "/api/ws"},
	}
}

// LogServerStarted logs the pipeline endpoints and where runtime state lives.
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	for _, e := range serviceEndpoints("localhost", config.Port) {
		logging.Info("    %-13s %s", e.label+":", e.url)
	}
	if config.MetricsEnabled {
		logging.Info("    %-13s http://localhost:%s/metrics", "Metrics:", config.MetricsPort)
	} else {
		logging.Info("    %-13s DISABLED", "Metrics:")
	}
	logging.Info("")
	logging.Info("  Runtime:")
	logging.Info("    Directory:    %s", config.RuntimeDir)
	logging.Info("    Lock file:    %s", config.LockPath)
	logging.Info("")
	logging.Info("  Listening on 0.0.0.0:%s. Press Ctrl+C to stop", config.Port)
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start. Running imports and preview
// batches are cancelled, not drained.
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion and the lock being handed back.
func LogShutdownComplete(lockPath string, took time.Duration) {
	logging.Info("  [OK] Shutdown complete in %v, releasing %s", took.Round(time.Millisecond), lockPath)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
     ___                        _           _
    /   \_   _ _ __   ___   ___| |__   ___ | | _____ _ __
   / /\ / | | | '_ \ / _ \ / __| '_ \ / _ \| |/ / _ \ '__|
  / /_//| |_| | |_) |  __/| (__| | | |  __/|   <  __/ |
 /___,'  \__,_| .__/ \___| \___|_| |_|\___||_|\_\___|_|
              |_|
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Don't return error since write access was confirmed
	}
	return nil
}

// LogMediaTools reports the resolved ffmpeg and ffprobe binaries. Missing
// tools are a warning, not an error: imports still work with unknown
// durations and previews fail per row.
func LogMediaTools(ffmpeg, ffprobe string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("MEDIA TOOLS")
	logging.Info("------------------------------------------------------------")

	for _, tool := range []struct{ name, binary string }{
		{"ffprobe", ffprobe},
		{"ffmpeg", ffmpeg},
	} {
		version, err := toolVersion(tool.binary)
		if err != nil {
			logging.Warn("  [WARN] %s unavailable (%s): %v", tool.name, tool.binary, err)
			continue
		}
		logging.Info("  [OK] %s: %s", tool.name, tool.binary)
		logging.Debug("    %s", version)
	}
}

func toolVersion(binary string) (string, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", fmt.Errorf("not found")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("failed to get version: %w", err)
	}

	first, _, _ := strings.Cut(string(output), "\n")
	return strings.TrimSpace(first), nil
}
