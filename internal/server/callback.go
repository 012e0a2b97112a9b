package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jam/internal/auth"
)

// TokenPath receives the parameters the callback page lifts out of the fragment.
const TokenPath = "/token"

// Completer turns a redirect locator into a credential. [auth.Manager] implements it.
type Completer interface {
	CompleteAuthorization(locator string) (auth.Credential, error)
}

// CallbackResult contains the outcome of an implicit grant redirect.
type CallbackResult struct {
	Credential auth.Credential
	err        error
}

func (c CallbackResult) Error() error {
	return c.err
}

// CallbackOpts configures a [CallbackHandler].
type CallbackOpts struct {
	Completer    Completer
	State        string // expected state; empty skips the check
	CallbackPath string // path of the configured redirect URI, defaults to /callback
	Logger       *log.Logger
}

// CallbackHandler serves the redirect page and captures the token it forwards.
type CallbackHandler struct {
	completer    Completer
	state        string
	callbackPath string
	logger       *log.Logger

	resultChan chan CallbackResult
	once       sync.Once
	handled    bool
	mu         sync.Mutex
}

// NewCallbackHandler creates a handler for one authorization attempt.
func NewCallbackHandler(opts CallbackOpts) *CallbackHandler {
	if opts.CallbackPath == "" {
		opts.CallbackPath = "/callback"
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &CallbackHandler{
		completer:    opts.Completer,
		state:        opts.State,
		callbackPath: opts.CallbackPath,
		logger:       opts.Logger,
		resultChan:   make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{h.callbackPath, TokenPath}
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == TokenPath {
		h.capture(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, callbackPage, TokenPath)
}

// capture completes authorization from the forwarded parameters. Only the first request carrying the expected state is processed.
func (h *CallbackHandler) capture(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	if r.URL.RawQuery == "" {
		http.Error(w, "No authorization parameters received", http.StatusBadRequest)
		return
	}

	// A request with the wrong state does not use up the single result.
	if h.state != "" && r.URL.Query().Get("state") != h.state {
		h.logger.Warn("callback rejected: invalid state parameter")
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	if h.handled {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.handled = true
	h.mu.Unlock()

	locator := "#" + r.URL.RawQuery
	h.logger.Debug("callback received", "location", auth.StripCredential(locator))

	cred, err := h.completer.CompleteAuthorization(locator)
	if err != nil {
		h.Send(CallbackResult{err: err})
		http.Error(w, "Authorization failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.Send(CallbackResult{Credential: cred})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "ok")
}

// Send sends the result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving the flow's completion.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

const callbackPage = `<!DOCTYPE html>
<html>
<head>
    <title>jam authorization</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        h1.failed { color: #c0392b; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1 id="title">Completing authorization…</h1>
        <p id="detail">Hold on a moment.</p>
    </div>
    <script>
        var params = window.location.hash.length > 1
            ? window.location.hash.substring(1)
            : window.location.search.substring(1);
        window.history.replaceState(null, "", window.location.pathname);

        var title = document.getElementById("title");
        var detail = document.getElementById("detail");

        fetch("%s?" + params).then(function (resp) {
            return resp.text().then(function (text) {
                if (resp.ok) {
                    title.textContent = "✓ Authorization Successful";
                    detail.textContent = "You can close this window and return to the terminal.";
                } else {
                    title.className = "failed";
                    title.textContent = "Authorization Failed";
                    detail.textContent = text;
                }
            });
        }).catch(function (err) {
            title.className = "failed";
            title.textContent = "Authorization Failed";
            detail.textContent = String(err);
        });
    </script>
</body>
</html>
`
