package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/aulas/aulas-bff/internal/auth"
	"github.com/aulas/aulas-bff/internal/backend"
	"github.com/aulas/aulas-bff/internal/config"
	"github.com/aulas/aulas-bff/internal/cron"
)

const testToken = "tok-123"

func init() {
	gin.SetMode(gin.TestMode)
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	cookies  map[string]string
	wantCode int
	wantData string
}

// capturedRequest is what the fake Backend Service saw.
type capturedRequest struct {
	Method        string
	Path          string
	Authorization []string
	ContentType   string
	Body          []byte
}

// fakeBackend routes by "METHOD /path" and records every call.
type fakeBackend struct {
	srv *httptest.Server

	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  []capturedRequest
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{routes: map[string]http.HandlerFunc{}}
	fb.srv = httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))

	fb.mu.Lock()
	fb.calls = append(fb.calls, capturedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Values("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		Body:          body,
	})
	h, ok := fb.routes[r.Method+" "+r.URL.Path]
	fb.mu.Unlock()

	if !ok {
		http.Error(w, "no route", http.StatusNotFound)
		return
	}
	h(w, r)
}

func (fb *fakeBackend) on(method, path string, h http.HandlerFunc) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.routes[method+" "+path] = h
}

func (fb *fakeBackend) json(method, path string, status int, body string) {
	fb.on(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
}

func (fb *fakeBackend) requests() []capturedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]capturedRequest(nil), fb.calls...)
}

func (fb *fakeBackend) last(t *testing.T) capturedRequest {
	t.Helper()
	reqs := fb.requests()
	if len(reqs) == 0 {
		t.Fatal("backend was not called")
	}
	return reqs[len(reqs)-1]
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func testConfig(apiURL string) *config.Config {
	return &config.Config{
		APIURL:            apiURL,
		ProtectedPrefixes: []string{"/dashboard", "/assignments", "/my-submissions"},
	}
}

func newTestRouter(t *testing.T, fb *fakeBackend) *gin.Engine {
	t.Helper()
	return newTestRouterWith(t, testConfig(fb.srv.URL), stubPinger{})
}

func newTestRouterWith(t *testing.T, cfg *config.Config, p cron.Pinger) *gin.Engine {
	t.Helper()
	gate := auth.NewGate(cfg, auth.NewUnverifiedReader())
	return SetupRouter(cfg, backend.NewClient(cfg), gate, cron.NewMonitor(p))
}

func sessionCookies(role string) map[string]string {
	return map[string]string{
		auth.CookieToken:    testToken,
		auth.CookieUserName: "Ana",
		auth.CookieRole:     role,
		auth.CookieUserID:   "12",
	}
}

func newRequest(method, path string, body []byte, cookies map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for name, value := range cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func runHTTPTests(t *testing.T, r http.Handler, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(r, newRequest(tt.method, tt.path, tt.body, tt.cookies))
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantData != "" {
				assert.JSONEq(t, tt.wantData, rec.Body.String())
			}
		})
	}
}
