package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"shopvision/internal/cache"
	"shopvision/internal/config"
	"shopvision/internal/events"
	"shopvision/internal/http/handlers"
	applog "shopvision/internal/log"
	"shopvision/internal/repos"
	"shopvision/web"
)

const (
	sellerEmail   = "vendedora@shopvision.test"
	customerEmail = "cliente@shopvision.test"
	demoPassword  = "Passw0rd!"
)

func testConfig() config.Config {
	return config.Config{
		Env:     "test",
		DB:      config.DBConfig{Driver: "sqlite", DSN: ":memory:", Seed: true},
		Auth:    config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
		Pricing: config.DefaultPricing(),
	}
}

type testEnv struct {
	app  *fiber.App
	deps *handlers.Deps
	snap *cache.MemorySnapshot
}

func newEnv(t *testing.T, appCfg handlers.AppConfig) *testEnv {
	t.Helper()
	cfg := testConfig()
	db, err := repos.OpenDB(cfg.DB)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	snap := cache.NewMemorySnapshot()
	deps := handlers.NewDeps(db, cfg, snap, events.Nop{})
	if appCfg.Views == nil {
		appCfg.Views = web.Engine()
	}
	return &testEnv{app: handlers.NewApp(deps, appCfg), deps: deps, snap: snap}
}

func newTestEnv(t *testing.T) *testEnv {
	return newEnv(t, handlers.AppConfig{})
}

// do sends a request with an optional JSON body and bearer token.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	out, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, out
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": demoPassword})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d body=%s", email, resp.StatusCode, body)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.Token == "" {
		t.Fatalf("login %s: no token in %s", email, body)
	}
	return out.Token
}

func decode(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Status int            `json:"status"`
	ReqID  string         `json:"req_id"`
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

type lockedWriter struct {
	mu sync.Mutex
	w  *bytes.Buffer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// captureLogs swaps the app logger's sink while fn runs and parses the
// JSON lines it wrote.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	lw := &lockedWriter{w: &bytes.Buffer{}}
	prev := applog.SetOutput(lw)
	defer applog.SetOutput(prev)

	fn()

	lw.mu.Lock()
	defer lw.mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(lw.w.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findAction(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
