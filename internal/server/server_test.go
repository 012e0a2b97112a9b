package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jam/internal/auth"
	"github.com/desertthunder/jam/internal/shared"
)

func newTestRouter(t *testing.T, state string) (*CallbackHandler, *auth.Manager, *httptest.Server) {
	t.Helper()

	logger := log.New(io.Discard)
	manager := auth.NewManager(auth.Options{
		ClientID:    "client",
		RedirectURI: "http://127.0.0.1:3000/callback",
		Logger:      logger,
	})
	t.Cleanup(func() { manager.Invalidate() })

	handler := NewCallbackHandler(CallbackOpts{Completer: manager, State: state, Logger: logger})
	router := NewMuxRouter()
	router.Use(RequestLogger(logger))
	router.Handler(handler)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return handler, manager, srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func waitResult(t *testing.T, h *CallbackHandler) CallbackResult {
	t.Helper()
	select {
	case r := <-h.Result():
		return r
	case <-time.After(time.Second):
		t.Fatal("no callback result delivered")
		return CallbackResult{}
	}
}

func TestCallbackHandler(t *testing.T) {
	t.Run("serves page that strips and forwards the fragment", func(t *testing.T) {
		_, _, srv := newTestRouter(t, "s1")

		status, body := get(t, srv.URL+"/callback")
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d", status)
		}
		for _, want := range []string{"window.location.hash", "history.replaceState", `fetch("/token?"`} {
			if !strings.Contains(body, want) {
				t.Errorf("expected page to contain %q", want)
			}
		}
	})

	t.Run("completes authorization once", func(t *testing.T) {
		h, manager, srv := newTestRouter(t, "s1")

		status, _ := get(t, srv.URL+"/token?access_token=abc&token_type=Bearer&expires_in=3600&state=s1")
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d", status)
		}

		result := waitResult(t, h)
		if result.Error() != nil {
			t.Fatalf("unexpected error %v", result.Error())
		}
		if result.Credential.AccessToken != "abc" {
			t.Errorf("expected abc, got %s", result.Credential.AccessToken)
		}
		if manager.State() != auth.HasCredential {
			t.Errorf("expected manager to hold the credential, got %v", manager.State())
		}

		status, _ = get(t, srv.URL+"/token?access_token=other&expires_in=3600&state=s1")
		if status != http.StatusBadRequest {
			t.Errorf("expected second callback to be rejected, got %d", status)
		}
	})

	t.Run("rejects state mismatch", func(t *testing.T) {
		h, manager, srv := newTestRouter(t, "expected")

		status, _ := get(t, srv.URL+"/token?access_token=abc&expires_in=3600&state=forged")
		if status != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", status)
		}
		if manager.State() == auth.HasCredential {
			t.Error("forged callback must not store a credential")
		}
		select {
		case r := <-h.Result():
			t.Fatalf("expected no result for a forged callback, got %+v", r)
		default:
		}

		status, _ = get(t, srv.URL+"/token?access_token=abc&expires_in=3600&state=expected")
		if status != http.StatusOK {
			t.Fatalf("expected the real callback to succeed, got %d", status)
		}
		if r := waitResult(t, h); r.Error() != nil || r.Credential.AccessToken != "abc" {
			t.Errorf("expected abc, got %+v", r)
		}
	})

	t.Run("provider error", func(t *testing.T) {
		h, _, srv := newTestRouter(t, "s1")

		status, body := get(t, srv.URL+"/token?error=access_denied&state=s1")
		if status != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", status)
		}
		if !strings.Contains(body, "access_denied") {
			t.Errorf("expected reason in body, got %q", body)
		}
		if err := waitResult(t, h).Error(); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("empty request does not consume the callback", func(t *testing.T) {
		h, _, srv := newTestRouter(t, "")

		if status, _ := get(t, srv.URL+"/token"); status != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", status)
		}

		if status, _ := get(t, srv.URL+"/token?access_token=late&expires_in=60"); status != http.StatusOK {
			t.Fatalf("expected 200 for the real callback, got %d", status)
		}
		if r := waitResult(t, h); r.Credential.AccessToken != "late" {
			t.Errorf("expected late, got %+v", r)
		}
	})
}

func TestMuxRouter(t *testing.T) {
	t.Run("method matching", func(t *testing.T) {
		router := NewMuxRouter()
		router.Handle(http.MethodPost, "/submit", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/submit", nil))
		if rec.Code != http.StatusAccepted {
			t.Errorf("expected 202, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/submit", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		var order []string
		tag := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewMuxRouter()
		router.Use(tag("first"), tag("second"))
		router.Handle(http.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("request logger tags requests and hides the query", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf)
		logger.SetLevel(log.DebugLevel)

		router := NewMuxRouter()
		router.Use(RequestLogger(logger))
		router.Handle(http.MethodGet, "/token", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/token?access_token=secret&expires_in=3600", nil))

		id := rec.Header().Get(RequestIDHeader)
		if id == "" {
			t.Fatal("expected a request id header")
		}
		out := buf.String()
		if !strings.Contains(out, "/token") || !strings.Contains(out, id) {
			t.Errorf("expected path and id in log, got %q", out)
		}
		if strings.Contains(out, "secret") {
			t.Errorf("access token leaked into log: %q", out)
		}
	})
}
