package auth

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/jam/internal/shared"
	"golang.org/x/oauth2"
)

const (
	// TokenKey and ExpiryKey name the two cache entries. Expiry is stored as Unix milliseconds.
	TokenKey  = "spotify_access_token"
	ExpiryKey = "spotify_token_expiry"

	DefaultScope   = "playlist-modify-public"
	DefaultAuthURL = "https://accounts.spotify.com/authorize"
)

var (
	ErrNoEmbeddedToken      = fmt.Errorf("no access token in redirect location")
	ErrAuthorizationPending = fmt.Errorf("authorization pending: user redirected to provider")
)

// tokenParams are removed from a locator once the credential has been captured.
var tokenParams = []string{"access_token", "token_type", "expires_in", "state", "error", "error_description"}

// Credential is a bearer token with an absolute expiry.
type Credential struct {
	AccessToken string    `json:"access_token"`
	Expiry      time.Time `json:"expiry"`
}

// ValidAt reports whether the credential can be used at now. It is expired exactly at Expiry.
func (c Credential) ValidAt(now time.Time) bool {
	return c.AccessToken != "" && now.Before(c.Expiry)
}

// Token converts the credential to an [oauth2.Token].
func (c Credential) Token() *oauth2.Token {
	return &oauth2.Token{AccessToken: c.AccessToken, TokenType: "Bearer", Expiry: c.Expiry}
}

// State is the manager's position in the credential lifecycle.
type State int

const (
	NoCredential State = iota
	Redirecting
	HasCredential
	Expired
)

func (s State) String() string {
	switch s {
	case NoCredential:
		return "no credential"
	case Redirecting:
		return "redirecting"
	case HasCredential:
		return "has credential"
	case Expired:
		return "expired"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Redirect is an authorization request the user must complete in a browser.
type Redirect struct {
	URL   string `json:"url"`
	State string `json:"state,omitempty"`
}

// RedirectError is returned when no credential exists and the user has been sent to authorize.
//
// It matches both [ErrAuthorizationPending] and [shared.ErrUnauthorized].
type RedirectError struct {
	Redirect Redirect
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("%v: continue at %s", ErrAuthorizationPending, e.Redirect.URL)
}

func (e *RedirectError) Unwrap() []error {
	return []error{ErrAuthorizationPending, shared.ErrUnauthorized}
}

// parseLocator returns the parameters of a redirect locator. Fragment values win over query values.
func parseLocator(locator string) url.Values {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return url.Values{}
	}

	if isBareParams(locator) {
		vals, _ := url.ParseQuery(locator)
		return vals
	}

	u, err := url.Parse(locator)
	if err != nil {
		return url.Values{}
	}

	vals := u.Query()
	if u.Fragment != "" {
		frag, _ := url.ParseQuery(u.Fragment)
		for k, v := range frag {
			vals[k] = v
		}
	}
	return vals
}

// isBareParams reports whether locator is a parameter string such as "access_token=...&expires_in=..." rather than a URL.
func isBareParams(locator string) bool {
	return strings.Contains(locator, "=") && !strings.ContainsAny(locator, "?#") && !strings.Contains(locator, "://")
}

// HasEmbeddedToken reports whether locator carries both an access token and a lifetime.
func HasEmbeddedToken(locator string) bool {
	vals := parseLocator(locator)
	return vals.Get("access_token") != "" && vals.Get("expires_in") != ""
}

// extractCredential builds a credential from locator parameters. Expiry is now plus expires_in seconds.
func extractCredential(vals url.Values, now time.Time) (Credential, error) {
	if reason := vals.Get("error"); reason != "" {
		return Credential{}, fmt.Errorf("%w: %s", shared.ErrAuthFailed, reason)
	}

	token := vals.Get("access_token")
	lifetime := vals.Get("expires_in")
	if token == "" || lifetime == "" {
		return Credential{}, ErrNoEmbeddedToken
	}

	seconds, err := strconv.Atoi(lifetime)
	if err != nil || seconds <= 0 {
		return Credential{}, fmt.Errorf("%w: invalid expires_in %q", ErrNoEmbeddedToken, lifetime)
	}

	return Credential{AccessToken: token, Expiry: now.Add(time.Duration(seconds) * time.Second)}, nil
}

// StripCredential returns locator with the token parameters removed from its query and fragment.
func StripCredential(locator string) string {
	if isBareParams(locator) {
		vals, err := url.ParseQuery(locator)
		if err != nil {
			return locator
		}
		return dropTokenParams(vals).Encode()
	}

	u, err := url.Parse(locator)
	if err != nil {
		return locator
	}

	if u.RawQuery != "" {
		u.RawQuery = dropTokenParams(u.Query()).Encode()
	}
	if u.Fragment != "" {
		frag, err := url.ParseQuery(u.Fragment)
		if err == nil {
			u.Fragment = dropTokenParams(frag).Encode()
			u.RawFragment = ""
		}
	}
	return u.String()
}

func dropTokenParams(vals url.Values) url.Values {
	for _, k := range tokenParams {
		vals.Del(k)
	}
	return vals
}
