// Package testutil holds helpers shared by the app, cli and cmd tests.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/bndl/internal/app"
	"github.com/vk/bndl/internal/config"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteFiles writes files (relative path to content) below dir, creating
// subdirectories as needed, and returns the absolute paths in map order of
// the input keys.
func WriteFiles(t *testing.T, dir string, files map[string]string) map[string]string {
	t.Helper()
	paths := make(map[string]string, len(files))
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		paths[name] = path
	}
	return paths
}

// Harness is an App wired for tests with its log output captured.
type Harness struct {
	App  *app.App
	Dir  string
	Logs *SafeBuffer
}

// NewHarness creates an App with debug logging and an in-memory plan cache.
// mutate, if not nil, adjusts the configuration before the App is built.
func NewHarness(t *testing.T, mutate func(*config.Config)) *Harness {
	t.Helper()

	cfg := config.Default()
	cfg.LogLevel = "debug"
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())

	logs := &SafeBuffer{}
	a, err := app.New(logs, cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, a.Close())
		if os.Getenv("BNDL_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return &Harness{App: a, Dir: t.TempDir(), Logs: logs}
}
