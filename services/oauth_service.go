package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/elimS2/prompt-manager/errs"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// OAuthService wraps the Google authorization-code flow: building the
// consent URL, exchanging the code, and fetching the userinfo profile.
type OAuthService struct {
	config *oauth2.Config
	logger zerolog.Logger
}

func NewOAuthService(clientID, clientSecret, redirectURL string) *OAuthService {
	return &OAuthService{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		logger: log.With().Str("serviceName", "oauthService").Logger(),
	}
}

// AuthURL returns the Google consent URL bound to the given state token.
func (s *OAuthService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// GenerateState returns a random URL-safe token for CSRF protection of the
// callback.
func (s *OAuthService) GenerateState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", errs.NewInternalErrorWithCause("failed to generate oauth state", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Exchange trades the authorization code for a token and fetches the user's
// Google profile with it.
func (s *OAuthService) Exchange(ctx context.Context, code string) (*GoogleProfile, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, errs.NewUnauthorizedError("failed to exchange authorization code")
	}

	resp, err := s.config.Client(ctx, token).Get(googleUserinfoURL)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("failed to fetch google userinfo", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.NewInternalError(fmt.Sprintf("google userinfo returned status %d", resp.StatusCode))
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, errs.NewInternalErrorWithCause("failed to decode google userinfo", err)
	}

	s.logger.Debug().Str("sub", profile.Sub).Msg("Fetched google profile")
	return &profile, nil
}
