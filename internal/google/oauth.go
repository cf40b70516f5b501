package google

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ErrMissingCode is returned by Exchange when no authorization code is given.
var ErrMissingCode = errors.New("missing authorization code")

// OAuthConfig holds the client registration used for the consent flow.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Endpoint overrides google.Endpoint. Used in tests.
	Endpoint *oauth2.Endpoint
}

// Flow runs the authorization-code exchange.
type Flow struct {
	conf *oauth2.Config
}

// NewFlow creates a Flow requesting DefaultOAuthScopes.
func NewFlow(cfg OAuthConfig) (*Flow, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("google client id and secret are required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("google redirect URL is required")
	}

	endpoint := google.Endpoint
	if cfg.Endpoint != nil {
		endpoint = *cfg.Endpoint
	}

	return &Flow{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       DefaultOAuthScopes,
		},
	}, nil
}

// AuthURL returns the consent page URL. Offline access and a forced consent
// prompt make Google issue a refresh token on every grant.
func (f *Flow) AuthURL(state string) string {
	return f.conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades an authorization code for tokens.
func (f *Flow) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, ErrMissingCode
	}
	tok, err := f.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, errors.New("token response has no access token")
	}
	return tok, nil
}

// NewState returns a random value for the OAuth state parameter.
func NewState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DashboardURL returns the frontend page that receives the access token.
func DashboardURL(frontendURL, accessToken string) string {
	q := url.Values{}
	q.Set("access_token", accessToken)
	return strings.TrimRight(frontendURL, "/") + "/dashboard?" + q.Encode()
}
