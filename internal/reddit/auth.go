package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"modbot/internal/config"
)

const (
	authorizeURL = "https://www.reddit.com/api/v1/authorize"
	tokenURL     = "https://www.reddit.com/api/v1/access_token"

	// Scopes required to read moderated communities and mod surfaces.
	oauthScope = "identity read modposts modflair modcontributors"
)

// Authenticator handles the authorization-code flow against Reddit.
type Authenticator struct {
	clientID     string
	clientSecret string
	redirectURI  string
	userAgent    string
	httpClient   *http.Client
}

// NewAuthenticator builds an Authenticator from configuration.
func NewAuthenticator(cfg config.Reddit) (*Authenticator, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("reddit credentials not configured")
	}
	return &Authenticator{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
		userAgent:    cfg.UserAgent,
		httpClient:   &http.Client{Timeout: config.ParseTimeout(cfg.Timeout, 15*time.Second)},
	}, nil
}

// AuthURL returns the Reddit authorization URL for the given state.
func (a *Authenticator) AuthURL(state string) string {
	q := url.Values{}
	q.Set("client_id", a.clientID)
	q.Set("response_type", "code")
	q.Set("state", state)
	q.Set("redirect_uri", a.redirectURI)
	q.Set("duration", "permanent")
	q.Set("scope", oauthScope)
	return authorizeURL + "?" + q.Encode()
}

// ExchangeCode trades an authorization code for a bearer token. The token
// is opaque to the rest of the system.
func (a *Authenticator) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", a.redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.SetBasicAuth(a.clientID, a.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		Error       string `json:"error"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || tokenResp.AccessToken == "" {
		if tokenResp.Error != "" {
			return "", fmt.Errorf("token exchange failed: %s", tokenResp.Error)
		}
		return "", fmt.Errorf("token exchange failed with status %d", resp.StatusCode)
	}

	return tokenResp.AccessToken, nil
}

// Identity is the subset of api/v1/me used to build a user profile.
type Identity struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsMod      bool   `json:"is_mod"`
	TotalKarma int64  `json:"total_karma"`
}

// Me fetches the authenticated user's identity.
func (c *Client) Me(ctx context.Context) (*Identity, error) {
	if c.token == "" {
		return nil, fmt.Errorf("reddit access token required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, oauthBaseURL+"/api/v1/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build identity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity request returned status %d", resp.StatusCode)
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}
	if id.Name == "" {
		return nil, fmt.Errorf("invalid identity response from Reddit")
	}
	return &id, nil
}

// ModeratedSubreddit is one entry from subreddits/mine/moderator.
type ModeratedSubreddit struct {
	ID                string `json:"id"`
	DisplayName       string `json:"display_name"`
	DisplayNamePrefix string `json:"display_name_prefixed"`
	PublicDescription string `json:"public_description"`
	Subscribers       int64  `json:"subscribers"`
}

// ModeratedSubreddits lists the communities the authenticated user moderates.
func (c *Client) ModeratedSubreddits(ctx context.Context) ([]ModeratedSubreddit, error) {
	if c.token == "" {
		return nil, fmt.Errorf("reddit access token required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, oauthBaseURL+"/subreddits/mine/moderator", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build moderator listing request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("moderator listing request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("moderator listing returned status %d", resp.StatusCode)
	}

	var envelope struct {
		Data struct {
			Children []struct {
				Data ModeratedSubreddit `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode moderator listing: %w", err)
	}

	subs := make([]ModeratedSubreddit, 0, len(envelope.Data.Children))
	for _, child := range envelope.Data.Children {
		subs = append(subs, child.Data)
	}
	return subs, nil
}
