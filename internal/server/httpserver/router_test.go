package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/foteam/sessionstore/internal/core/domain"
	"github.com/foteam/sessionstore/internal/core/service"
	"github.com/foteam/sessionstore/internal/server/config"
	"github.com/foteam/sessionstore/internal/server/httpserver/handler"
	"github.com/foteam/sessionstore/internal/storage/codec"
	"github.com/foteam/sessionstore/internal/storage/filestore"
	"github.com/foteam/sessionstore/internal/telemetry/logger"
	"github.com/foteam/sessionstore/internal/telemetry/metric"
)

type testEnv struct {
	dir    string
	server *httptest.Server
	client *http.Client
	cookie config.CookieConfig
}

func newTestEnv(t *testing.T, mutate func(*RouterConfig)) *testEnv {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "sessions")
	store, err := filestore.Open(filestore.Config{
		Dir:    dir,
		TTL:    30 * time.Minute,
		Logger: logger.Discard(),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	cfg := &RouterConfig{
		Manager: service.NewManager(store, service.WithLogger(logger.Discard())),
		Cookie:  config.Default().Session.Cookie,
		Logger:  logger.Discard(),
	}
	if mutate != nil {
		mutate(cfg)
	}
	srv := httptest.NewServer(NewRouter(cfg))
	t.Cleanup(srv.Close)

	return &testEnv{dir: dir, server: srv, client: srv.Client(), cookie: cfg.Cookie}
}

// do sends a request carrying sid (if any) and returns the response and
// the session cookie it set, if any.
func (e *testEnv) do(t *testing.T, method, path, sid, body string) (*http.Response, *http.Cookie) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.server.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: e.cookie.Name, Value: sid})
	}
	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	for _, c := range resp.Cookies() {
		if c.Name == e.cookie.Name {
			return resp, c
		}
	}
	return resp, nil
}

func (e *testEnv) record(t *testing.T, id string) (domain.Attributes, bool) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.dir, "sess_"+id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false
	}
	if err != nil {
		t.Fatal(err)
	}
	return codec.Decode(data), true
}

func decodeCart(t *testing.T, resp *http.Response) handler.CartResponse {
	t.Helper()
	var env struct {
		Code string               `json:"code"`
		Data handler.CartResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env.Data
}

func TestRouter_NewSessionSetsCookie(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, c := env.do(t, http.MethodGet, "/cart", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if c == nil {
		t.Fatal("no session cookie set")
	}
	if !domain.IsValidSessionID(c.Value) || len(c.Value) != 64 {
		t.Errorf("cookie value %q is not a session id", c.Value)
	}
	if !c.HttpOnly || c.Path != "/" || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie attributes = %+v", c)
	}
	if resp.Header.Get(HeaderRequestID) == "" {
		t.Error("missing request id header")
	}

	cart := decodeCart(t, resp)
	if cart.Count != 0 || len(cart.Items) != 0 {
		t.Errorf("cart = %+v, want empty", cart)
	}

	rec, ok := env.record(t, c.Value)
	if !ok {
		t.Fatal("record not persisted for new session")
	}
	if rec[domain.KeyInitiated] != true {
		t.Errorf("record = %v", rec)
	}
}

func TestRouter_CartFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	_, c := env.do(t, http.MethodGet, "/cart", "", "")
	sid := c.Value

	resp, c := env.do(t, http.MethodPost, "/cart/items", sid, `{"photo_id":7,"price":25000}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add status = %d", resp.StatusCode)
	}
	if c != nil {
		t.Errorf("cookie re-sent for known id: %+v", c)
	}

	resp, _ = env.do(t, http.MethodPost, "/cart/items", sid, `{"photo_id":7,"price":25000}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("duplicate add status = %d, want 200", resp.StatusCode)
	}
	env.do(t, http.MethodPost, "/cart/items", sid, `{"photo_id":9,"price":15000}`)

	resp, _ = env.do(t, http.MethodGet, "/cart", sid, "")
	cart := decodeCart(t, resp)
	if cart.Count != 2 || cart.Total != 40000 {
		t.Errorf("cart = %+v, want 2 items totalling 40000", cart)
	}

	resp, _ = env.do(t, http.MethodDelete, "/cart/items/7", sid, "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("remove status = %d", resp.StatusCode)
	}
	resp, _ = env.do(t, http.MethodDelete, "/cart/items/7", sid, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second remove status = %d, want 404", resp.StatusCode)
	}

	resp, _ = env.do(t, http.MethodDelete, "/cart", sid, "")
	if cart := decodeCart(t, resp); cart.Count != 0 {
		t.Errorf("cart after clear = %+v", cart)
	}

	rec, _ := env.record(t, sid)
	if items, _ := rec[domain.KeyCart].([]any); len(items) != 0 {
		t.Errorf("stored cart = %v, want empty", rec[domain.KeyCart])
	}
}

func TestRouter_AddItemValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"zero photo", `{"photo_id":0,"price":1}`},
		{"negative price", `{"photo_id":1,"price":-1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := env.do(t, http.MethodPost, "/cart/items", "", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestRouter_MalformedCookieReplaced(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, c := env.do(t, http.MethodGet, "/cart", "../../etc/passwd", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if c == nil || c.Value == "../../etc/passwd" || !domain.IsValidSessionID(c.Value) {
		t.Fatalf("cookie = %+v, want a fresh id", c)
	}
}

func TestRouter_LoginRotatesID(t *testing.T) {
	env := newTestEnv(t, nil)
	_, c := env.do(t, http.MethodGet, "/cart", "", "")
	oldID := c.Value
	env.do(t, http.MethodPost, "/cart/items", oldID, `{"photo_id":3,"price":100}`)

	resp, c := env.do(t, http.MethodPost, "/login", oldID, `{"user_id":42,"username":"runner"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	if c == nil || c.Value == oldID {
		t.Fatalf("cookie = %+v, want rotated id", c)
	}

	if _, ok := env.record(t, oldID); ok {
		t.Error("old record still on disk")
	}
	rec, ok := env.record(t, c.Value)
	if !ok {
		t.Fatal("new record missing")
	}
	if uid, _ := domain.AsInt64(rec[handler.KeyUserID]); uid != 42 {
		t.Errorf("user_id = %v", rec[handler.KeyUserID])
	}
	if items, _ := rec[domain.KeyCart].([]any); len(items) != 1 {
		t.Errorf("cart not carried over: %v", rec[domain.KeyCart])
	}

	resp, _ = env.do(t, http.MethodPost, "/login", c.Value, `{"user_id":0}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid login status = %d, want 400", resp.StatusCode)
	}
}

func TestRouter_Logout(t *testing.T) {
	env := newTestEnv(t, nil)
	_, c := env.do(t, http.MethodGet, "/cart", "", "")
	sid := c.Value

	resp, c := env.do(t, http.MethodPost, "/logout", sid, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status = %d", resp.StatusCode)
	}
	if c == nil || c.MaxAge >= 0 {
		t.Errorf("cookie = %+v, want deletion", c)
	}
	if _, ok := env.record(t, sid); ok {
		t.Error("record survived logout")
	}
}

func TestRouter_Probes(t *testing.T) {
	env := newTestEnv(t, func(cfg *RouterConfig) {
		cfg.HandlerOptions = []handler.Option{
			handler.WithReadiness(func(context.Context) error { return errors.New("disk gone") }),
		}
	})

	resp, c := env.do(t, http.MethodGet, "/healthz", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}
	if c != nil {
		t.Error("probe opened a session")
	}
	entries, _ := os.ReadDir(env.dir)
	if len(entries) != 0 {
		t.Errorf("probe wrote %d records", len(entries))
	}

	resp, _ = env.do(t, http.MethodGet, "/readyz", "", "")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("readyz status = %d, want 503", resp.StatusCode)
	}
}

func TestRouter_Metrics(t *testing.T) {
	reg := metric.NewRegistry()
	env := newTestEnv(t, func(cfg *RouterConfig) {
		cfg.Metrics = reg
		cfg.MetricsToken = "scrape"
	})
	env.do(t, http.MethodGet, "/cart", "", "")

	resp, _ := env.do(t, http.MethodGet, "/metrics", "", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, env.server.URL+"/metrics", nil)
	req.Header.Set("Authorization", "Bearer scrape")
	resp, err := env.client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "foteam_http_requests_total") {
		t.Error("request counter missing from exposition")
	}
}
