package reddit

import (
	"context"

	"modbot/internal/config"
)

// Service bundles the OAuth flow and identity lookups behind one surface
// for the HTTP layer. Listing fetches stay on Client; the service only
// covers account-level operations.
type Service struct {
	auth *Authenticator
	cfg  config.Reddit
}

// NewService creates a service. Returns an error when Reddit credentials
// are not configured.
func NewService(cfg config.Reddit) (*Service, error) {
	auth, err := NewAuthenticator(cfg)
	if err != nil {
		return nil, err
	}
	return &Service{auth: auth, cfg: cfg}, nil
}

// AuthURL returns the Reddit authorization URL for the given state.
func (s *Service) AuthURL(state string) (string, error) {
	return s.auth.AuthURL(state), nil
}

// Exchange trades an authorization code for an access token.
func (s *Service) Exchange(ctx context.Context, code string) (string, error) {
	return s.auth.ExchangeCode(ctx, code)
}

// Identity returns the Reddit account behind a token.
func (s *Service) Identity(ctx context.Context, token string) (*Identity, error) {
	return NewClient(s.cfg, token).Me(ctx)
}

// ModeratedSubreddits lists the communities the token's account moderates.
func (s *Service) ModeratedSubreddits(ctx context.Context, token string) ([]ModeratedSubreddit, error) {
	return NewClient(s.cfg, token).ModeratedSubreddits(ctx)
}
