package dispatcher

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/routekeeper/gatewayproxy/internal/keypool"
	"github.com/routekeeper/gatewayproxy/internal/registry"
)

func newTestRouter(d *Dispatcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.NoRoute(d.Handle)
	return router
}

func newDispatcherForUpstream(t *testing.T, upstream *httptest.Server, creds []keypool.Credential) *Dispatcher {
	t.Helper()
	host := strings.TrimPrefix(strings.TrimPrefix(upstream.URL, "https://"), "http://")
	pool := keypool.NewFromCredentials(creds, keypool.DefaultCooldown)
	d := New(pool, registry.Global(), host, false)
	d.Client = upstream.Client()
	return d
}

func TestHandle_SuccessfulNonStreamRelaysBodyAndMarksSuccess(t *testing.T) {
	upstream := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key-a" {
			t.Errorf("Authorization = %q, want Bearer key-a", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	d := newDispatcherForUpstream(t, upstream, []keypool.Credential{"key-a"})
	router := newTestRouter(d)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{"model":"gpt-4o"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Errorf("body = %q, want relayed upstream body", rec.Body.String())
	}
}

func TestHandle_QuotaErrorRetriesNextCredential(t *testing.T) {
	var calls int
	upstream := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		auth := r.Header.Get("Authorization")
		if auth == "Bearer key-bad" {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	d := newDispatcherForUpstream(t, upstream, []keypool.Credential{"key-bad", "key-good"})
	router := newTestRouter(d)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{"model":"gpt-4o"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 after retry; body=%s", rec.Code, rec.Body.String())
	}
	if calls != 2 {
		t.Errorf("upstream calls = %d, want 2 (one failed, one retried)", calls)
	}
}

func TestHandle_AllKeysExhaustedReturns503(t *testing.T) {
	upstream := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"quota exceeded"}`))
	}))
	defer upstream.Close()

	d := newDispatcherForUpstream(t, upstream, []keypool.Credential{"key-a", "key-b"})
	router := newTestRouter(d)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{"model":"gpt-4o"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503; body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "all_keys_exhausted") {
		t.Errorf("body = %q, want all_keys_exhausted error type", rec.Body.String())
	}
}

func TestHandle_EmptyPoolReturnsConfigurationError(t *testing.T) {
	d := newDispatcherForUpstream(t, httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})), nil)
	router := newTestRouter(d)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{"model":"gpt-4o"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500; body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "configuration_error") {
		t.Errorf("body = %q, want configuration_error", rec.Body.String())
	}
}

func TestHandle_StreamingSuccessRelaysSSEVerbatim(t *testing.T) {
	upstream := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher := w.(http.Flusher)
		_, _ = w.Write([]byte("data: {\"chunk\":1}\n\n"))
		flusher.Flush()
		_, _ = w.Write([]byte("data: [DONE]\n\n"))
		flusher.Flush()
	}))
	defer upstream.Close()

	d := newDispatcherForUpstream(t, upstream, []keypool.Credential{"key-a"})
	router := newTestRouter(d)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{"model":"gpt-4o","stream":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "chunk") || !strings.Contains(body, "[DONE]") {
		t.Errorf("body = %q, want relayed SSE frames", body)
	}
}

func TestHandle_StreamingErrorEmitsErrorFrameWithDone(t *testing.T) {
	upstream := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"quota exceeded"}`))
	}))
	defer upstream.Close()

	d := newDispatcherForUpstream(t, upstream, []keypool.Credential{"key-a"})
	router := newTestRouter(d)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{"model":"gpt-4o","stream":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "data: ") || !strings.Contains(body, "[DONE]") {
		t.Errorf("body = %q, want an error data frame followed by [DONE]", body)
	}
}

func TestHandle_UnauthorizedClientIsRejectedByAuthMiddleware(t *testing.T) {
	upstream := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("upstream should not be called when client auth fails upstream of the dispatcher")
	}))
	defer upstream.Close()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth != "Bearer proxy-secret" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"type": "invalid_api_key"}})
			return
		}
		c.Next()
	})
	d := newDispatcherForUpstream(t, upstream, []keypool.Credential{"key-a"})
	router.NoRoute(d.Handle)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
