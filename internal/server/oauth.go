package server

import (
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// successPage is served after a completed authorization so the user knows
// to return to the terminal.
const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>podsift</title>
    <style>
        body { font-family: system-ui, sans-serif; display: flex;
               align-items: center; justify-content: center;
               height: 100vh; margin: 0; background: #fafafa; }
        main { text-align: center; background: #fff; padding: 2.5rem 3rem;
               border-radius: 10px; box-shadow: 0 1px 6px rgba(0,0,0,0.12); }
        h1 { color: #1DB954; margin: 0 0 0.75rem; }
        p { color: #555; margin: 0; }
    </style>
</head>
<body>
    <main>
        <h1>Authorization complete</h1>
        <p>podsift has received the authorization. You can close this tab.</p>
    </main>
</body>
</html>
`

// OAuthResult is the outcome of one authorization code exchange.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler serves the redirect URI of the authorization code flow.
// It accepts a single callback, verifies the state parameter, exchanges
// the code for tokens, and delivers the outcome over Result.
type OAuthHandler struct {
	config  *oauth2.Config
	state   string
	results chan OAuthResult
	deliver sync.Once

	mu      sync.Mutex
	handled bool
}

// NewOAuthHandler creates a handler expecting the given state parameter.
// The state must be cryptographically random for CSRF protection.
func NewOAuthHandler(config *oauth2.Config, state string) *OAuthHandler {
	return &OAuthHandler{
		config:  config,
		state:   state,
		results: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{"/callback"}
}

func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.claim() {
		http.Error(w, "authorization already completed", http.StatusConflict)
		return
	}

	query := r.URL.Query()
	if query.Get("state") != h.state {
		h.reject(w, http.StatusBadRequest, "state mismatch",
			fmt.Errorf("state parameter does not match"))
		return
	}

	code := query.Get("code")
	if code == "" {
		h.reject(w, http.StatusBadRequest, "authorization denied",
			fmt.Errorf("authorization denied: %s (%s)",
				query.Get("error"), query.Get("error_description")))
		return
	}

	token, err := h.config.Exchange(r.Context(), code)
	if err != nil {
		h.reject(w, http.StatusInternalServerError, "code exchange failed",
			fmt.Errorf("code exchange failed: %w", err))
		return
	}

	h.Send(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, successPage)
}

// claim marks the callback as taken. Further requests are rejected so a
// stray second redirect cannot race the exchange.
func (h *OAuthHandler) claim() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.handled {
		return false
	}
	h.handled = true
	return true
}

func (h *OAuthHandler) reject(w http.ResponseWriter, status int, message string, err error) {
	h.Send(OAuthResult{err: err})
	http.Error(w, message, status)
}

// Send delivers the result exactly once; later calls are dropped.
func (h *OAuthHandler) Send(result OAuthResult) {
	h.deliver.Do(func() {
		h.results <- result
		close(h.results)
	})
}

// Result returns the channel carrying the single flow outcome. It is
// closed after delivery.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.results
}
