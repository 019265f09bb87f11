package pipeline

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"dupe-checker/internal/dupes"
	"dupe-checker/internal/media"
)

type fakeProber struct {
	mu        sync.Mutex
	durations map[string]float64
	calls     []string
	hook      func(call int, path string)
}

func (p *fakeProber) Probe(_ context.Context, path string) (float64, error) {
	p.mu.Lock()
	p.calls = append(p.calls, path)
	call := len(p.calls)
	d, ok := p.durations[filepath.Base(path)]
	hook := p.hook
	p.mu.Unlock()

	if hook != nil {
		hook(call, path)
	}
	if !ok {
		return 0, media.ErrNoDuration
	}
	return d, nil
}

func (p *fakeProber) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

type extractCall struct {
	Path   string
	Offset float64
}

type fakeExtractor struct {
	mu    sync.Mutex
	calls []extractCall
	fail  map[string]bool
	hook  func(call int, path string)
}

func (e *fakeExtractor) Extract(_ context.Context, path string, offset float64) (image.Image, error) {
	e.mu.Lock()
	e.calls = append(e.calls, extractCall{Path: path, Offset: offset})
	call := len(e.calls)
	fail := e.fail[filepath.Base(path)]
	hook := e.hook
	e.mu.Unlock()

	if hook != nil {
		hook(call, path)
	}
	if fail {
		return nil, errors.New("no frame")
	}
	return image.NewRGBA(image.Rect(0, 0, 32, 18)), nil
}

func (e *fakeExtractor) Calls() []extractCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]extractCall(nil), e.calls...)
}

type testEnv struct {
	dir       string
	prober    *fakeProber
	extractor *fakeExtractor
	manager   *Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		dir:       t.TempDir(),
		prober:    &fakeProber{durations: map[string]float64{}},
		extractor: &fakeExtractor{fail: map[string]bool{}},
	}
	env.manager = NewManager(Options{
		Prober:    env.prober,
		Extractor: env.extractor,
		Renderer:  media.NewThumbnailer(24, 16),
		Policy:    dupes.DefaultPolicy(),
	})
	t.Cleanup(env.manager.Close)
	return env
}

// media creates an empty file in a subdirectory of the environment and
// returns that directory.
func (e *testEnv) media(t *testing.T, sub, name string) string {
	t.Helper()
	dir := filepath.Join(e.dir, sub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}
	return dir
}

func (e *testEnv) inventory(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(e.dir, "inventory.csv")
	content := "Name,Path,Size\n" + strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write inventory: %v", err)
	}
	return path
}

// sizedInventory creates n media files of equal size and an inventory that
// lists them, so every row is a duplicate.
func (e *testEnv) sizedInventory(t *testing.T, n int) string {
	t.Helper()
	var lines []string
	for i := 0; i < n; i++ {
		name := "clip" + string(rune('a'+i)) + ".mp4"
		dir := e.media(t, "media", name)
		lines = append(lines, name+","+dir+",1000")
	}
	return e.inventory(t, lines...)
}

func waitDone(t *testing.T, c *Controller) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("%s pipeline did not finish", c.name)
	}
}

func eventsOf[T Event](events []Event) []T {
	var out []T
	for _, ev := range events {
		if v, ok := ev.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func statusTexts(events []Event) []string {
	var out []string
	for _, ev := range eventsOf[StatusChanged](events) {
		out = append(out, ev.Text)
	}
	return out
}

func containsPrefix(texts []string, prefix string) bool {
	for _, s := range texts {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
