package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/jam/internal/auth"
	"github.com/desertthunder/jam/internal/server"
	"github.com/desertthunder/jam/internal/shared"
	"github.com/urfave/cli/v3"
)

// loginTimeout bounds how long the callback server waits for the browser.
var loginTimeout = 2 * time.Minute

type authStatus struct {
	State      string     `json:"state"`
	Authorized bool       `json:"authorized"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	ExpiresIn  string     `json:"expires_in,omitempty"`
	Cache      string     `json:"cache"`
}

// AuthLogin obtains an access token through the implicit grant.
//
// With --locator the token is read from a redirect URL pasted by the user; otherwise a local callback server
// receives it from the browser.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.auth == nil {
		return fmt.Errorf("%w: credential manager not initialized", shared.ErrServiceUnavailable)
	}

	if cmd.Bool("force") {
		if err := r.auth.Invalidate(); err != nil {
			return fmt.Errorf("failed to clear cached token: %w", err)
		}
	}

	_, err := r.login(ctx, cmd.String("locator"))
	return err
}

// AuthStatus reports whether an unexpired access token is cached.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.auth == nil {
		return fmt.Errorf("%w: credential manager not initialized", shared.ErrServiceUnavailable)
	}

	status := authStatus{Cache: r.config.Cache.Driver}
	cred, err := r.auth.Credential()
	switch {
	case err == nil:
		status.Authorized = true
		status.ExpiresAt = &cred.Expiry
		status.ExpiresIn = time.Until(cred.Expiry).Round(time.Second).String()
	case !errors.Is(err, shared.ErrUnauthorized):
		return err
	}
	status.State = r.auth.State().String()

	if cmd.Bool("json") {
		return r.writeJSON(status, cmd.Bool("pretty"))
	}

	if !status.Authorized {
		r.writePlain("✗ Not authorized\n")
		r.writePlain("Run 'jam auth login' to authorize jam with Spotify.\n")
		return nil
	}

	r.writePlain("✓ Authorized\n")
	r.writePlain("Expires: %s (in %s)\n", cred.Expiry.Local().Format(time.RFC1123), status.ExpiresIn)
	r.writePlain("Cache: %s\n", status.Cache)
	return nil
}

// AuthLogout removes the cached access token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.auth == nil {
		return fmt.Errorf("%w: credential manager not initialized", shared.ErrServiceUnavailable)
	}

	if err := r.auth.Invalidate(); err != nil {
		return fmt.Errorf("failed to clear cached token: %w", err)
	}

	r.logger.Info("access token removed")
	return r.writePlain("✓ Logged out\n")
}

// ensureCredential starts authorization when no valid access token is cached.
func (r *Runner) ensureCredential(ctx context.Context) error {
	if r.auth == nil {
		return fmt.Errorf("%w: credential manager not initialized", shared.ErrServiceUnavailable)
	}

	_, err := r.auth.Credential()
	if err == nil {
		return nil
	}
	if !errors.Is(err, shared.ErrUnauthorized) {
		return err
	}

	r.writePlain("⚠ No valid access token. Starting authorization...\n")
	_, err = r.login(ctx, "")
	return err
}

func (r *Runner) login(ctx context.Context, locator string) (auth.Credential, error) {
	if err := r.config.Validate(); err != nil {
		return auth.Credential{}, fmt.Errorf("%w (edit %s or run 'jam setup --client-id <id>')", err, r.configPath)
	}

	if locator != "" {
		cred, err := r.auth.CompleteAuthorization(locator)
		if err != nil {
			return auth.Credential{}, err
		}
		r.reportCredential(cred)
		return cred, nil
	}

	if cred, err := r.auth.Credential(); err == nil {
		r.writePlain("✓ Already authorized (expires %s)\n", cred.Expiry.Local().Format(time.RFC1123))
		return cred, nil
	}

	cred, err := r.authorizeInBrowser(ctx)
	if err != nil {
		return auth.Credential{}, err
	}
	r.reportCredential(cred)
	return cred, nil
}

// authorizeInBrowser runs the callback server, sends the user to the authorization page and waits for the token.
func (r *Runner) authorizeInBrowser(ctx context.Context) (auth.Credential, error) {
	redirectURL, err := url.Parse(r.config.Credentials.Spotify.RedirectURI)
	if err != nil {
		return auth.Credential{}, fmt.Errorf("%w: redirect_uri: %v", shared.ErrInvalidConfig, err)
	}

	addr := r.config.Server.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return auth.Credential{}, fmt.Errorf("failed to start callback server on %s: %w", addr, err)
	}

	// Connections made before Serve starts wait in the listen backlog.
	cred, err := r.auth.GetCredential("")
	var redirect *auth.RedirectError
	switch {
	case err == nil:
		ln.Close()
		return cred, nil
	case !errors.As(err, &redirect):
		ln.Close()
		return auth.Credential{}, err
	}

	logger := shared.WithLogger(r.logger, "component", "callback")
	handler := server.NewCallbackHandler(server.CallbackOpts{
		Completer:    r.auth,
		State:        redirect.Redirect.State,
		CallbackPath: redirectURL.Path,
		Logger:       logger,
	})
	router := server.NewMuxRouter()
	router.Use(server.RequestLogger(logger))
	router.Handler(handler)

	httpServer := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Infof("starting callback server at %v", ln.Addr())
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	r.writePlain("If it does not open, visit this URL:\n%s\n\n", redirect.Redirect.URL)
	r.writePlain("→ Waiting for authorization (%v timeout)...\n", loginTimeout)

	timeout := time.NewTimer(loginTimeout)
	defer timeout.Stop()

	select {
	case result := <-handler.Result():
		if result.Error() != nil {
			return auth.Credential{}, fmt.Errorf("%w: %w", shared.ErrAuthFailed, result.Error())
		}
		return result.Credential, nil
	case err := <-serverErrors:
		return auth.Credential{}, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return auth.Credential{}, fmt.Errorf("%w: authorization timed out after %v", shared.ErrTimeout, loginTimeout)
	case <-ctx.Done():
		return auth.Credential{}, ctx.Err()
	}
}

func (r *Runner) reportCredential(cred auth.Credential) {
	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Token cached in %s until %s\n", r.config.Cache.Driver, cred.Expiry.Local().Format(time.RFC1123))
}
