package oauth

import (
	"context"
	"fmt"
	"time"

	"flight-price-tracker/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// GmailOAuth handles OAuth authentication with Gmail
type GmailOAuth struct {
	config       *oauth2.Config
	refreshToken string
	state        string
	logger       logger.Logger
}

// NewGmailOAuth creates a new Gmail OAuth handler. redirectURL is only needed for the consent flow.
func NewGmailOAuth(clientID, clientSecret, refreshToken, redirectURL string, logger logger.Logger) *GmailOAuth {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{gmail.GmailReadonlyScope},
	}

	return &GmailOAuth{
		config:       config,
		refreshToken: refreshToken,
		state:        uuid.NewString(),
		logger:       logger,
	}
}

// GetTokenSource returns a token source that can be used with Gmail API
func (o *GmailOAuth) GetTokenSource(ctx context.Context) oauth2.TokenSource {
	token := &oauth2.Token{
		RefreshToken: o.refreshToken,
		Expiry:       time.Now(), // Force refresh
	}

	return o.config.TokenSource(ctx, token)
}

// GenerateAuthURL generates a URL for the user to authorize read-only mailbox access
func (o *GmailOAuth) GenerateAuthURL() string {
	return o.config.AuthCodeURL(o.state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ValidState reports whether a callback carries the state of GenerateAuthURL
func (o *GmailOAuth) ValidState(state string) bool {
	return state != "" && state == o.state
}

// ExchangeCode exchanges an authorization code for a token
func (o *GmailOAuth) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := o.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	if token.RefreshToken == "" {
		return nil, fmt.Errorf("no refresh token returned; revoke the app's access and retry")
	}

	o.logger.Info("Refresh token obtained", "expiry", token.Expiry)
	return token, nil
}
