package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/desertthunder/lfx/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// playlistScopes covers creating and filling playlists of either
// visibility.
var playlistScopes = []string{"playlist-modify-private", "playlist-modify-public"}

// Authorizer runs the complete loopback flow: state generation, browser
// launch, callback wait, code exchange. It holds the only oauth2.Config
// in the program; the catalog client downstream sees a bearer token and
// nothing else.
type Authorizer struct {
	config  *oauth2.Config
	host    string
	port    int
	timeout time.Duration
	out     io.Writer

	// overridable for tests
	openBrowser func(url string) error
}

// NewAuthorizer builds an Authorizer from the loaded config. User-facing
// progress lines go to out.
func NewAuthorizer(config *shared.Config, out io.Writer) *Authorizer {
	if out == nil {
		out = io.Discard
	}

	timeout := time.Duration(config.Server.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = DefaultCallbackTimeout
	}

	return &Authorizer{
		config: &oauth2.Config{
			ClientID:     config.Spotify.ClientID,
			ClientSecret: config.Spotify.ClientSecret,
			RedirectURL:  config.Spotify.RedirectURI,
			Scopes:       playlistScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyAuthURL,
				TokenURL: spotifyTokenURL,
			},
		},
		host:        config.Server.Host,
		port:        config.Server.Port,
		timeout:     timeout,
		out:         out,
		openBrowser: shared.OpenBrowser,
	}
}

// Authorize performs the one-shot flow and returns the token. Only the
// access token is consumed downstream; nothing is ever written to disk.
func (a *Authorizer) Authorize(ctx context.Context) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	// Bind before launching the browser so the redirect cannot race the
	// listener.
	listener, err := NewCallbackListener(a.host, a.port, state, a.timeout)
	if err != nil {
		return nil, err
	}

	authURL := a.config.AuthCodeURL(state)

	fmt.Fprintf(a.out, "→ Opening browser for Spotify authorization...\n")
	if err := a.openBrowser(authURL); err != nil {
		fmt.Fprintf(a.out, "⚠ Could not open browser automatically.\n")
		fmt.Fprintf(a.out, "Please open this URL in your browser:\n%s\n\n", authURL)
	}

	fmt.Fprintf(a.out, "→ Waiting for authorization (%s timeout)...\n", a.timeout)

	code, err := listener.Wait(ctx)
	if err != nil {
		return nil, err
	}

	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, fmt.Errorf("%w: status %d, body: %s", shared.ErrTokenExchange,
				retrieveErr.Response.StatusCode, strings.TrimSpace(string(retrieveErr.Body)))
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenExchange, err)
	}

	return token, nil
}
