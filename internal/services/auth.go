package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/server"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// TokenStore is the persistence surface the authenticator needs. The
// repositories package provides the SQLite implementation.
type TokenStore interface {
	GetByAccount(account string) (*models.CachedToken, error) // GetByAccount returns the stored token for one account
	Latest() (*models.CachedToken, error)                     // Latest returns the most recently refreshed token
	Upsert(token *models.CachedToken) error                   // Upsert writes a token, replacing any row for the same account
}

// Authenticator owns the authorization-code flow with PKCE and the token
// cache around it. Logins go through the browser once; afterwards
// [Authenticator.CachedSession] rebuilds sessions from stored tokens,
// refreshing them silently as they expire.
type Authenticator struct {
	config  *shared.Config
	store   TokenStore
	logger  *log.Logger
	openURL func(string) error
}

// NewAuthenticator wires the flow to a config and token store. A nil store
// disables caching; logins still work but every run needs the browser.
func NewAuthenticator(config *shared.Config, store TokenStore, logger *log.Logger) *Authenticator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Authenticator{
		config:  config,
		store:   store,
		logger:  logger,
		openURL: shared.OpenBrowser,
	}
}

// oauthConfig builds the authorization-code config. There is no client
// secret; the per-login PKCE verifier proves possession instead.
func (a *Authenticator) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:    a.config.Credentials.Spotify.ClientID,
		RedirectURL: a.config.Credentials.Spotify.RedirectURI,
		Scopes: []string{
			spotifyauth.ScopeUserReadPrivate,
			spotifyauth.ScopePlaylistReadPrivate,
			spotifyauth.ScopePlaylistReadCollaborative,
			spotifyauth.ScopePlaylistModifyPublic,
			spotifyauth.ScopePlaylistModifyPrivate,
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyauth.AuthURL,
			TokenURL: spotifyauth.TokenURL,
		},
	}
}

// Login runs the browser authorization flow end to end: local callback
// server, browser handoff, code exchange, token persistence. Progress
// messages for the user go to out. Returns a ready session and the account
// the token was stored under.
func (a *Authenticator) Login(ctx context.Context, out io.Writer) (*SpotifySession, string, error) {
	if err := a.config.SpotifyReady(); err != nil {
		return nil, "", err
	}

	state, err := shared.GenerateState()
	if err != nil {
		return nil, "", err
	}
	verifier := oauth2.GenerateVerifier()
	conf := a.oauthConfig()

	token, err := a.waitForCallback(ctx, conf, state, verifier, out)
	if err != nil {
		return nil, "", err
	}

	session, account, err := a.sessionFromToken(ctx, conf, token)
	if err != nil {
		return nil, "", err
	}

	if err := a.persist(account, token); err != nil {
		a.logger.Warn("token not cached, next run will need the browser again", "error", err)
	}
	return session, account, nil
}

// CachedSession builds a session from a stored token without the browser.
// account narrows the lookup; empty means the most recently used account.
// The token is verified against the profile endpoint, and a refreshed access
// token is written back to the store.
func (a *Authenticator) CachedSession(ctx context.Context, account string) (*SpotifySession, string, error) {
	row, err := a.lookup(account)
	if err != nil {
		return nil, "", err
	}

	conf := a.oauthConfig()
	stored := row.OAuthToken()
	source := conf.TokenSource(ctx, stored)

	client := spotify.New(oauth2.NewClient(ctx, source))
	session := NewSpotifySession(client, a.config.API.RateLimit, a.logger)

	resolved, err := session.CurrentAccount(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("%w: stored token rejected: %v", shared.ErrNotAuthenticated, err)
	}

	if fresh, err := source.Token(); err == nil && fresh.AccessToken != stored.AccessToken {
		if err := a.persist(resolved, fresh); err != nil {
			a.logger.Warn("refreshed token not cached", "error", err)
		}
	}
	return session, resolved, nil
}

// waitForCallback serves the redirect URI on a loopback HTTP server, points
// the browser at the authorization page, and blocks until the callback
// delivers a token or the flow times out.
func (a *Authenticator) waitForCallback(ctx context.Context, conf *oauth2.Config, state, verifier string, out io.Writer) (*oauth2.Token, error) {
	addr, err := a.config.CallbackAddr()
	if err != nil {
		return nil, err
	}

	handler := server.NewOAuthHandler(conf, state, oauth2.VerifierOption(verifier))
	router := server.NewBasicRouter()
	router.Use(server.RequestLog(a.logger))
	router.Handler(handler)

	httpServer := &http.Server{Addr: addr, Handler: router}
	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Info("waiting for authorization callback", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	authURL := conf.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
	fmt.Fprintf(out, "→ Opening browser for Spotify authorization...\n")
	if err := a.openURL(authURL); err != nil {
		a.logger.Warn("could not open browser", "error", err)
		fmt.Fprintf(out, "⚠ Could not open browser automatically.\nOpen this URL instead:\n%s\n\n", authURL)
	}
	fmt.Fprintf(out, "→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult
	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("callback server error: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("error shutting down callback server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return result.Token, nil
}

// sessionFromToken builds a session around token and resolves its account by
// hitting the profile endpoint, which doubles as a validity check.
func (a *Authenticator) sessionFromToken(ctx context.Context, conf *oauth2.Config, token *oauth2.Token) (*SpotifySession, string, error) {
	httpClient := oauth2.NewClient(ctx, conf.TokenSource(ctx, token))
	session := NewSpotifySession(spotify.New(httpClient), a.config.API.RateLimit, a.logger)

	account, err := session.CurrentAccount(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return session, account, nil
}

func (a *Authenticator) lookup(account string) (*models.CachedToken, error) {
	if a.store == nil {
		return nil, fmt.Errorf("%w: no token store configured", shared.ErrNotAuthenticated)
	}
	if account != "" {
		return a.store.GetByAccount(account)
	}
	return a.store.Latest()
}

func (a *Authenticator) persist(account string, token *oauth2.Token) error {
	if a.store == nil {
		return nil
	}
	return a.store.Upsert(models.TokenFromOAuth(account, token))
}
