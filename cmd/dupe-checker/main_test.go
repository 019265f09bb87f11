package main

import (
	"bytes"
	"context"
	"image"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"dupe-checker/internal/dupes"
	"dupe-checker/internal/handlers"
	"dupe-checker/internal/inventory"
	"dupe-checker/internal/media"
	"dupe-checker/internal/pipeline"
	"dupe-checker/internal/startup"
	"dupe-checker/internal/view"
)

type stubProber struct{}

func (stubProber) Probe(context.Context, string) (float64, error) { return 65, nil }

type stubExtractor struct{}

func (stubExtractor) Extract(context.Context, string, float64) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 32, 18)), nil
}

func newTestManager(t *testing.T) *pipeline.Manager {
	t.Helper()
	m := pipeline.NewManager(pipeline.Options{
		Prober:    stubProber{},
		Extractor: stubExtractor{},
		Renderer:  media.NewThumbnailer(24, 16),
		Policy:    dupes.DefaultPolicy(),
	})
	t.Cleanup(m.Close)
	return m
}

// writeInventory creates the listed media files and a CSV naming them.
func writeInventory(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	lines := []string{"Name,Path,Size"}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write media: %v", err)
		}
		lines = append(lines, name+","+dir+",2048")
	}
	path := filepath.Join(dir, "inventory.csv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write inventory: %v", err)
	}
	return path
}

// =============================================================================
// Router Tests
// =============================================================================

func TestSetupRouterRoutes(t *testing.T) {
	h := handlers.New(newTestManager(t), view.NewModel(), nil, nil)
	router := setupRouter(h)

	routes, err := startup.GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes failed: %v", err)
	}

	have := make(map[string]bool)
	for _, r := range routes {
		have[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"GET /livez",
		"GET /readyz",
		"GET /version",
		"POST /api/import",
		"POST /api/import/cancel",
		"POST /api/previews",
		"POST /api/previews/cancel",
		"GET /api/status",
		"GET /api/rows",
		"GET /api/rows/{index:[0-9]+}/thumbnail",
		"POST /api/rows/{index:[0-9]+}/reveal",
		"GET /api/ws",
	} {
		if !have[want] {
			t.Errorf("missing route %s", want)
		}
	}
}

func TestSetupRouterMatchesIndex(t *testing.T) {
	h := handlers.New(newTestManager(t), view.NewModel(), nil, nil)
	router := setupRouter(h)

	tests := []struct {
		method string
		path   string
		match  bool
	}{
		{"GET", "/api/rows/3/thumbnail", true},
		{"POST", "/api/rows/0/reveal", true},
		{"GET", "/api/rows/abc/thumbnail", false},
		{"GET", "/api/import", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
		var m mux.RouteMatch
		if got := router.Match(req, &m) && m.MatchErr == nil; got != tt.match {
			t.Errorf("%s %s matched = %v, want %v", tt.method, tt.path, got, tt.match)
		}
	}
}

func TestStatusEndpointThroughRouter(t *testing.T) {
	h := handlers.New(newTestManager(t), view.NewModel(), nil, nil)
	router := setupRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/status", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Ready") {
		t.Errorf("Expected initial status line, got %s", w.Body.String())
	}
}

// =============================================================================
// Server Configuration Tests
// =============================================================================

func TestServerTimeouts(t *testing.T) {
	srv := newServer(":0", http.NotFoundHandler())

	if srv.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want 15s", srv.ReadTimeout)
	}
	if srv.WriteTimeout != 0 {
		t.Errorf("WriteTimeout = %v, want 0 so the live stream stays open", srv.WriteTimeout)
	}
	if srv.IdleTimeout != 60*time.Second {
		t.Errorf("IdleTimeout = %v, want 60s", srv.IdleTimeout)
	}
}

func TestMetricsServer(t *testing.T) {
	h := handlers.New(newTestManager(t), view.NewModel(), nil, nil)
	srv := newMetricsServer(":0", h)

	if srv.WriteTimeout != 10*time.Second {
		t.Errorf("WriteTimeout = %v, want 10s", srv.WriteTimeout)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected /metrics status 200, got %d", w.Code)
	}
}

// =============================================================================
// Scan Tests
// =============================================================================

func TestRunScanPrintsDuplicates(t *testing.T) {
	path := writeInventory(t, "a.mp4", "b.mp4")
	var out, progress bytes.Buffer

	err := runScan(context.Background(), newTestManager(t), scanOptions{path: path}, &out, &progress)
	if err != nil {
		t.Fatalf("runScan failed: %v", err)
	}

	table := out.String()
	for _, want := range []string{"a.mp4", "b.mp4", "2.0 KiB", "01:05"} {
		if !strings.Contains(table, want) {
			t.Errorf("table missing %q:\n%s", want, table)
		}
	}
	if !strings.Contains(progress.String(), "Import complete. 2 duplicates found.") {
		t.Errorf("progress missing completion line:\n%s", progress.String())
	}
}

func TestRunScanPreviewsAfterCompletedImport(t *testing.T) {
	path := writeInventory(t, "a.mp4", "b.mp4")
	m := newTestManager(t)
	var out, progress bytes.Buffer

	if err := runScan(context.Background(), m, scanOptions{path: path, previews: true}, &out, &progress); err != nil {
		t.Fatalf("runScan failed: %v", err)
	}

	if state := m.ImportController().State(); state != pipeline.StateCompleted {
		t.Errorf("import state = %s, want completed", state)
	}
	if state := m.PreviewController().State(); state != pipeline.StateCompleted {
		t.Errorf("preview state = %s, want completed", state)
	}
	if !strings.Contains(progress.String(), "Preview generation completed. Generated previews: 2/2") {
		t.Errorf("progress missing preview summary:\n%s", progress.String())
	}
	if !strings.Contains(out.String(), "yes") {
		t.Errorf("table should mark generated previews:\n%s", out.String())
	}
}

func TestRunScanNoDuplicates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inventory.csv")
	content := "Name,Path,Size\none.mp4," + dir + ",1\ntwo.mp4," + dir + ",2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	var out, progress bytes.Buffer

	if err := runScan(context.Background(), newTestManager(t), scanOptions{path: path}, &out, &progress); err != nil {
		t.Fatalf("runScan failed: %v", err)
	}
	if strings.TrimSpace(out.String()) != "No duplicates found." {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRunScanMissingInventory(t *testing.T) {
	var out, progress bytes.Buffer
	opts := scanOptions{path: filepath.Join(t.TempDir(), "missing.csv")}

	err := runScan(context.Background(), newTestManager(t), opts, &out, &progress)
	if err == nil {
		t.Fatal("expected error for missing inventory")
	}
	if !strings.HasPrefix(err.Error(), "Failed to import CSV:") {
		t.Errorf("error = %q, want the import failure message", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no table, got %q", out.String())
	}
}

func TestRunScanWritesThumbnails(t *testing.T) {
	path := writeInventory(t, "a.mp4", "b.mp4")
	thumbs := filepath.Join(t.TempDir(), "thumbs")
	var out, progress bytes.Buffer

	opts := scanOptions{path: path, previews: true, thumbsDir: thumbs}
	if err := runScan(context.Background(), newTestManager(t), opts, &out, &progress); err != nil {
		t.Fatalf("runScan failed: %v", err)
	}

	for _, name := range []string{"0000-a.jpg", "0001-b.jpg"} {
		data, err := os.ReadFile(filepath.Join(thumbs, name))
		if err != nil {
			t.Errorf("missing thumbnail %s: %v", name, err)
			continue
		}
		if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
			t.Errorf("%s is not a JPEG", name)
		}
	}
	if !strings.Contains(progress.String(), "Wrote 2 thumbnails") {
		t.Errorf("progress missing thumbnail summary:\n%s", progress.String())
	}
}

func TestRunScanCancelled(t *testing.T) {
	path := writeInventory(t, "a.mp4", "b.mp4")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out, progress bytes.Buffer

	if err := runScan(ctx, newTestManager(t), scanOptions{path: path}, &out, &progress); err != context.Canceled {
		t.Errorf("runScan error = %v, want context.Canceled", err)
	}
}

func TestThumbnailFileName(t *testing.T) {
	tests := []struct {
		index int
		name  string
		want  string
	}{
		{0, "clip.mp4", "0000-clip.jpg"},
		{12, "a:b?.mov", "0012-a_b_.jpg"},
		{3, ".mp4", "0003-unnamed.jpg"},
	}

	for _, tt := range tests {
		d := dupes.Duplicate{Index: tt.index, Record: inventory.Record{Name: tt.name}}
		if got := thumbnailFileName(d); got != tt.want {
			t.Errorf("thumbnailFileName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

// =============================================================================
// Table Tests
// =============================================================================

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"Name", "Size"},
		[][]string{{"a.mp4", "1 KiB"}, {"b.mp4"}},
		[]columnAlignment{alignLeft, alignRight},
		tableOptions{},
	)

	if !strings.Contains(out, "a.mp4") || !strings.Contains(out, "1 KiB") || !strings.Contains(out, "b.mp4") {
		t.Errorf("table missing cells:\n%s", out)
	}
	if strings.ContainsRune(out, '╭') {
		t.Errorf("plain table should not use box drawing:\n%s", out)
	}

	fancy := renderTable([]string{"Name"}, [][]string{{"a"}}, nil, tableOptions{fancy: true})
	if !strings.ContainsRune(fancy, '╭') {
		t.Errorf("fancy table should use rounded corners:\n%s", fancy)
	}

	if renderTable(nil, nil, nil, tableOptions{}) != "" {
		t.Error("table without headers should render empty")
	}
}

func TestTableOptionsForBuffer(t *testing.T) {
	if opts := tableOptionsFor(&bytes.Buffer{}); opts.fancy || opts.width != 0 {
		t.Errorf("non-terminal writer should get plain options, got %+v", opts)
	}
}

// =============================================================================
// Command Tests
// =============================================================================

func TestRootCommandRejectsUnknownLogLevel(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--log-level", "loud", "version"})
	cmd.SetOut(&bytes.Buffer{})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for unknown log level")
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetArgs([]string{"version"})
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "dupe-checker "+startup.Version) {
		t.Errorf("unexpected version output %q", out.String())
	}
}

func TestScanCommandRequiresPath(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"scan"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error without inventory path")
	}
}
