package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linkshelf/internal/config"
	"github.com/MrSnakeDoc/linkshelf/internal/domain"
	"github.com/MrSnakeDoc/linkshelf/internal/httpserver"
	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
	"github.com/MrSnakeDoc/linkshelf/internal/store"
	filestore "github.com/MrSnakeDoc/linkshelf/internal/store/file"
)

// useEnv points linkctl at a fresh cache and the given server ("" = none).
func useEnv(t *testing.T, serverURL string) string {
	t.Helper()
	cache := filepath.Join(t.TempDir(), "cache.db")
	t.Setenv("SHELF_CACHE_FILE", cache)
	t.Setenv("SHELF_SERVER_URL", serverURL)
	t.Setenv("SHELF_LOG_LEVEL", "error")
	t.Setenv("SHELF_PRETTY_LOG", "false")
	t.Setenv("SHELF_LOCAL_HISTORY_LIMIT", "")
	return cache
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errw bytes.Buffer
	err := run(args, strings.NewReader(""), &out, &errw)
	return out.String(), errw.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := runCLI(t, args...)
	require.NoError(t, err, errOut)
	return out
}

func decodeOut[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func addLink(t *testing.T, title, url string) domain.LinkRecord {
	t.Helper()
	return decodeOut[domain.LinkRecord](t, mustRun(t, "--json", "add", "--title", title, "--url", url))
}

func TestAddAndList(t *testing.T) {
	useEnv(t, "")

	rec := addLink(t, "Go", "https://go.dev")
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)

	links := decodeOut[domain.Collection](t, mustRun(t, "--json", "list"))
	require.Len(t, links, 1)
	assert.Equal(t, rec, links[0])

	out := mustRun(t, "list")
	assert.Contains(t, out, "Go")
	assert.Contains(t, out, "https://go.dev")
	assert.Contains(t, out, "favicons?domain=go.dev")
}

func TestListEmpty(t *testing.T) {
	useEnv(t, "")

	assert.Contains(t, mustRun(t, "list"), "No links yet")
	assert.Equal(t, "[]\n", mustRun(t, "--json", "list"))
}

func TestAddRejectsInvalidInput(t *testing.T) {
	useEnv(t, "")

	_, errOut, err := runCLI(t, "add", "--title", "Bad", "--url", "ftp://files.example")
	require.Error(t, err)
	assert.Contains(t, errOut, "url: must start with http:// or https://")

	_, _, err = runCLI(t, "add", "--url", "https://ok.example")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title: is required")

	assert.Equal(t, "[]\n", mustRun(t, "--json", "history"))
}

func TestEditKeepsUnchangedFields(t *testing.T) {
	useEnv(t, "")
	rec := decodeOut[domain.LinkRecord](t, mustRun(t, "--json", "add",
		"--title", "Go", "--url", "https://go.dev", "--description", "The Go site"))

	time.Sleep(2 * time.Millisecond)
	updated := decodeOut[domain.LinkRecord](t, mustRun(t, "--json", "edit", rec.ID, "--title", "Go home"))

	assert.Equal(t, rec.ID, updated.ID)
	assert.Equal(t, "Go home", updated.Title)
	assert.Equal(t, "https://go.dev", updated.URL)
	assert.Equal(t, "The Go site", updated.Description)
	assert.Equal(t, rec.CreatedAt, updated.CreatedAt)
	assert.Greater(t, updated.UpdatedAt, rec.UpdatedAt)

	_, _, err := runCLI(t, "edit", rec.ID, "--url", "not a url")
	assert.Error(t, err)

	_, _, err = runCLI(t, "edit", "missing", "--title", "x")
	assert.ErrorContains(t, err, `no link with id "missing"`)
}

func TestRemoveAndHistory(t *testing.T) {
	useEnv(t, "")
	a := addLink(t, "A", "https://a.example")
	addLink(t, "B", "https://b.example")

	out := mustRun(t, "--yes", "rm", a.ID)
	assert.Contains(t, out, "Deleted A")

	links := decodeOut[domain.Collection](t, mustRun(t, "--json", "list"))
	require.Len(t, links, 1)
	assert.Equal(t, "B", links[0].Title)

	hist := decodeOut[[]domain.Snapshot](t, mustRun(t, "--json", "history"))
	require.Len(t, hist, 3)
	assert.Equal(t, domain.ActionDelete, hist[0].Action)
	assert.Equal(t, domain.ActionCreate, hist[2].Action)

	limited := decodeOut[[]domain.Snapshot](t, mustRun(t, "--json", "history", "--limit", "1"))
	assert.Len(t, limited, 1)

	text := mustRun(t, "history")
	assert.Contains(t, text, "deleted")
	assert.Contains(t, text, "2 → 1 links")

	_, _, err := runCLI(t, "--yes", "rm", "missing")
	assert.Error(t, err)
}

func TestRestore(t *testing.T) {
	useEnv(t, "")
	addLink(t, "A", "https://a.example")
	addLink(t, "B", "https://b.example")

	hist := decodeOut[[]domain.Snapshot](t, mustRun(t, "--json", "history"))
	first := hist[len(hist)-1]

	restored := decodeOut[domain.Collection](t, mustRun(t, "--json", "--yes", "restore", first.ID))
	require.Len(t, restored, 1)
	assert.Equal(t, "A", restored[0].Title)

	after := decodeOut[[]domain.Snapshot](t, mustRun(t, "--json", "history"))
	assert.Len(t, after, len(hist)+1)
	assert.Equal(t, domain.ActionRestore, after[0].Action)

	_, _, err := runCLI(t, "--yes", "restore", "missing")
	assert.ErrorContains(t, err, "no history entry")
}

func TestThemePersists(t *testing.T) {
	useEnv(t, "")

	assert.Equal(t, "light\n", mustRun(t, "theme"))
	assert.Equal(t, "dark\n", mustRun(t, "theme", "toggle"))
	assert.Equal(t, "dark\n", mustRun(t, "theme"))
	assert.Equal(t, "light\n", mustRun(t, "theme", "light"))

	_, _, err := runCLI(t, "theme", "solarized")
	assert.Error(t, err)
	assert.Equal(t, "[]\n", mustRun(t, "--json", "history"))
}

func TestImportHomepageServices(t *testing.T) {
	useEnv(t, "")
	path := filepath.Join(t.TempDir(), "services.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`---
- Media:
    - Jellyfin:
        icon: jellyfin.png
        href: https://jellyfin.home.example
        description: Movies
    - Broken:
        href: jellyfin.local
    - Sonarr:
        href: https://sonarr.home.example
`), 0o644))

	out, errOut, err := runCLI(t, "import", path)
	require.NoError(t, err, errOut)
	assert.Contains(t, out, "Imported 2 links")
	assert.Contains(t, out, "1 skipped")
	assert.Contains(t, errOut, "Media/Broken")

	links := decodeOut[domain.Collection](t, mustRun(t, "--json", "list"))
	require.Len(t, links, 2)
	assert.Equal(t, "Jellyfin", links[0].Title)
	assert.Equal(t, "Movies", links[0].Description)
	assert.Contains(t, links[0].Icon, "jellyfin.png")
	assert.Equal(t, "Sonarr", links[1].Title)

	hist := decodeOut[[]domain.Snapshot](t, mustRun(t, "--json", "history"))
	assert.Len(t, hist, 2)
}

func TestImportMissingFile(t *testing.T) {
	useEnv(t, "")
	_, _, err := runCLI(t, "import", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestVersionSkipsSession(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never")
	t.Setenv("SHELF_CACHE_FILE", filepath.Join(dir, "cache.db"))

	out := mustRun(t, "version")
	assert.True(t, strings.HasPrefix(out, "linkctl "))
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestSyncWithoutServer(t *testing.T) {
	useEnv(t, "")
	_, _, err := runCLI(t, "sync")
	assert.ErrorContains(t, err, "no server configured")
}

// startServer runs the real router with the server's default configuration.
func startServer(t *testing.T) (*httptest.Server, *store.Service) {
	t.Helper()

	for _, k := range []string{"SHELF_RATE_BURST", "SHELF_RATE_PER_MIN", "SHELF_BODY_LIMIT", "SHELF_HISTORY_LIMIT", "SHELF_STORE_BACKEND"} {
		t.Setenv(k, "")
	}
	cfg := config.Load()

	svc := store.NewService(filestore.New(filepath.Join(t.TempDir(), "data.json")), cfg.HistoryLimit, logger.NewNop())
	require.NoError(t, svc.Load(context.Background()))

	d := deps.Deps{
		Logger:     logger.NewNop(),
		StartTime:  time.Now(),
		Store:      svc,
		BodyLimit:  cfg.BodyLimit,
		RateBurst:  cfg.RateBurst,
		RatePerMin: cfg.RatePerMin,
	}
	srv := httptest.NewServer(httpserver.NewRouter(d.Logger, d))
	t.Cleanup(srv.Close)
	return srv, svc
}

func TestChangesReachServerAndOtherClients(t *testing.T) {
	srv, svc := startServer(t)

	useEnv(t, srv.URL)
	rec := addLink(t, "Go", "https://go.dev")

	items, err := svc.Items(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, rec.ID, items[0].ID)

	// a second machine with an empty cache
	useEnv(t, srv.URL)
	out := mustRun(t, "sync")
	assert.Contains(t, out, "Synced 1 links, 2 history entries")

	links := decodeOut[domain.Collection](t, mustRun(t, "--offline", "--json", "list"))
	require.Len(t, links, 1)
	assert.Equal(t, rec.ID, links[0].ID)
}

func TestOfflineDoesNotPush(t *testing.T) {
	srv, svc := startServer(t)

	useEnv(t, srv.URL)
	addLink(t, "Online", "https://online.example")
	mustRun(t, "--offline", "add", "--title", "Local", "--url", "https://local.example")

	items, err := svc.Items(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestImportSurvivesNextRunRefresh(t *testing.T) {
	srv, svc := startServer(t)
	useEnv(t, srv.URL)
	t.Setenv("SHELF_DRAIN_TIMEOUT", "30s")

	const n = 40
	var yaml strings.Builder
	yaml.WriteString("- Lab:\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&yaml, "    - Service %d:\n        href: https://s%d.home.example\n", i, i)
	}
	path := filepath.Join(t.TempDir(), "services.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml.String()), 0o644))

	out := mustRun(t, "import", path)
	assert.Contains(t, out, fmt.Sprintf("Imported %d links", n))

	items, err := svc.Items(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, n)

	// the next invocation refreshes from the server first
	links := decodeOut[domain.Collection](t, mustRun(t, "--json", "list"))
	require.Len(t, links, n)
	assert.Equal(t, "Service 0", links[0].Title)
	assert.Equal(t, fmt.Sprintf("Service %d", n-1), links[n-1].Title)
}
