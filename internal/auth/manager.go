package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jam/internal/shared"
	"golang.org/x/oauth2"
)

// Navigator sends the user to an authorization URL, usually by opening a browser.
type Navigator func(url string) error

// Options configures a [Manager].
type Options struct {
	ClientID    string
	RedirectURI string
	Scope       string // defaults to [DefaultScope]
	AuthURL     string // defaults to [DefaultAuthURL]
	Store       Store  // defaults to a [MemoryStore]
	Navigate    Navigator
	Now         func() time.Time
	Logger      *log.Logger
}

// Manager owns the single access token.
//
// It is safe for concurrent use: the expiry timer and the callback server run on their own goroutines.
type Manager struct {
	mu       sync.Mutex
	config   *oauth2.Config
	store    Store
	navigate Navigator
	now      func() time.Time
	logger   *log.Logger

	cred  *Credential
	state State
	timer *time.Timer
}

// NewManager creates a Manager in the [NoCredential] state. The store is not read until a credential is requested.
func NewManager(opts Options) *Manager {
	if opts.Scope == "" {
		opts.Scope = DefaultScope
	}
	if opts.AuthURL == "" {
		opts.AuthURL = DefaultAuthURL
	}
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &Manager{
		config: &oauth2.Config{
			ClientID:    opts.ClientID,
			RedirectURL: opts.RedirectURI,
			Scopes:      []string{opts.Scope},
			Endpoint:    oauth2.Endpoint{AuthURL: opts.AuthURL},
		},
		store:    opts.Store,
		navigate: opts.Navigate,
		now:      opts.Now,
		logger:   opts.Logger,
		state:    NoCredential,
	}
}

// Credential returns the held or stored credential when it is unexpired.
//
// It never redirects. An expired stored credential is discarded.
// Without a valid credential the error matches [shared.ErrUnauthorized].
func (m *Manager) Credential() (Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cachedLocked()
}

func (m *Manager) cachedLocked() (Credential, error) {
	now := m.now()

	if m.cred != nil {
		if m.cred.ValidAt(now) {
			return *m.cred, nil
		}
		m.discardLocked()
	}

	c, ok, err := loadCredential(m.store)
	if err != nil {
		return Credential{}, err
	}

	if ok && c.ValidAt(now) {
		m.holdLocked(c)
		m.logger.Debug("restored cached credential", "expires", c.Expiry.Format(time.RFC3339))
		return c, nil
	}

	if ok {
		m.logger.Debug("discarding expired cached credential")
		m.discardLocked()
	}
	if m.state == Expired {
		m.state = NoCredential
	}

	return Credential{}, shared.ErrUnauthorized
}

// GetCredential returns a usable credential or starts authorization.
//
// The cached credential wins. Otherwise a locator carrying a token (or a provider error) is completed.
// Otherwise the user is sent to the authorization URL and a [*RedirectError] is returned.
func (m *Manager) GetCredential(locator string) (Credential, error) {
	c, err := m.Credential()
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, shared.ErrUnauthorized) {
		return Credential{}, err
	}

	vals := parseLocator(locator)
	if vals.Get("error") != "" || (vals.Get("access_token") != "" && vals.Get("expires_in") != "") {
		return m.CompleteAuthorization(locator)
	}

	state, err := shared.GenerateState()
	if err != nil {
		return Credential{}, err
	}

	redirect := m.BeginAuthorization(state)
	if m.navigate != nil {
		if err := m.navigate(redirect.URL); err != nil {
			m.logger.Warn("could not open authorization URL", "error", err)
		}
	}

	return Credential{}, &RedirectError{Redirect: redirect}
}

// BeginAuthorization builds the implicit grant authorization URL. state is omitted when empty.
func (m *Manager) BeginAuthorization(state string) Redirect {
	u := m.config.AuthCodeURL(state, oauth2.SetAuthURLParam("response_type", "token"))

	m.mu.Lock()
	if m.cred == nil {
		m.state = Redirecting
	}
	m.mu.Unlock()

	m.logger.Info("authorization required", "url", u)
	return Redirect{URL: u, State: state}
}

// CompleteAuthorization captures the token embedded in locator, persists it and schedules its invalidation.
func (m *Manager) CompleteAuthorization(locator string) (Credential, error) {
	c, err := extractCredential(parseLocator(locator), m.now())
	if err != nil {
		m.logger.Error("authorization could not be completed", "error", err)
		return Credential{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := saveCredential(m.store, c); err != nil {
		return Credential{}, err
	}
	m.holdLocked(c)

	m.logger.Info("authorization complete", "expires", c.Expiry.Format(time.RFC3339))
	return c, nil
}

// Invalidate clears the held credential and both cache keys.
func (m *Manager) Invalidate() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopTimerLocked()
	m.cred = nil
	m.state = NoCredential
	return clearCredential(m.store)
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Token implements [oauth2.TokenSource] over [Manager.Credential].
func (m *Manager) Token() (*oauth2.Token, error) {
	c, err := m.Credential()
	if err != nil {
		return nil, err
	}
	return c.Token(), nil
}

func (m *Manager) holdLocked(c Credential) {
	m.stopTimerLocked()

	held := &c
	m.cred = held
	m.state = HasCredential
	m.timer = time.AfterFunc(c.Expiry.Sub(m.now()), func() { m.expire(held) })
}

// expire runs when held's lifetime elapses. A credential replaced in the meantime is left alone.
func (m *Manager) expire(held *Credential) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cred != held {
		return
	}

	m.cred = nil
	m.timer = nil
	m.state = Expired
	if err := clearCredential(m.store); err != nil {
		m.logger.Error("failed to clear expired credential", "error", err)
	}
	m.logger.Info("access token expired")
}

// discardLocked drops an expired credential from memory and the store.
func (m *Manager) discardLocked() {
	m.stopTimerLocked()
	m.cred = nil
	m.state = NoCredential
	if err := clearCredential(m.store); err != nil {
		m.logger.Error("failed to clear expired credential", "error", err)
	}
}

func (m *Manager) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}
