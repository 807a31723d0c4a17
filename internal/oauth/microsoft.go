// Package oauth implements the Microsoft identity flow: authorization URL,
// code exchange, and profile fetch from Microsoft Graph.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"

	"github.com/mrossig/vidriera/internal/config"
)

const graphMeURL = "https://graph.microsoft.com/v1.0/me"

// Profile is the subset of the Graph /me document the service needs.
type Profile struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// Email returns the best available email for the account. Personal accounts
// often leave "mail" empty and carry the address in userPrincipalName.
func (p *Profile) Email() string {
	if p.Mail != "" {
		return p.Mail
	}
	return p.UserPrincipalName
}

// MicrosoftClient wraps the oauth2 code flow for the Microsoft endpoint.
type MicrosoftClient struct {
	config     *oauth2.Config
	httpClient *http.Client
}

func NewMicrosoftClient(cfg *config.OAuthConfig, redirectURL string) *MicrosoftClient {
	return &MicrosoftClient{
		config: &oauth2.Config{
			ClientID:     cfg.MicrosoftClientID,
			ClientSecret: cfg.MicrosoftClientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "profile", "email", "User.Read"},
			Endpoint:     microsoft.AzureADEndpoint(cfg.MicrosoftTenant),
		},
		httpClient: http.DefaultClient,
	}
}

// AuthCodeURL builds the consent page URL for the given anti-CSRF state.
func (c *MicrosoftClient) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a token and fetches the user's
// Graph profile with it.
func (c *MicrosoftClient) Exchange(ctx context.Context, code string) (*Profile, error) {
	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return c.fetchProfile(ctx, token)
}

func (c *MicrosoftClient) fetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, graphMeURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile request: %w", err)
	}
	token.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("graph returned status %d: %s", resp.StatusCode, body)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("graph profile missing id")
	}

	return &profile, nil
}
