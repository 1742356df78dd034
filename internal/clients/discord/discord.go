// Package discord wraps the Discord OAuth2 authorization-code flow. The
// login handler only ever sees the identity tuple; tokens stay in here.
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/Dyslex1k/SceneSearch/internal/platform/logger"
)

const userEndpoint = "https://discord.com/api/users/@me"

var endpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/api/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

// Identity is the tuple the login upsert consumes.
type Identity struct {
	DiscordID     string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar"`
}

type Provider interface {
	AuthURL(state string) string
	FetchIdentity(ctx context.Context, code string) (*Identity, error)
}

type provider struct {
	config *oauth2.Config
	log    *logger.Logger
}

func NewProvider(clientID, clientSecret, redirectURL string, baseLog *logger.Logger) Provider {
	return &provider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"identify"},
			Endpoint:     endpoint,
		},
		log: baseLog.With("client", "DiscordProvider"),
	}
}

func (p *provider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// FetchIdentity exchanges the callback code for an access token and reads
// the authenticated user. The access token is never returned to callers.
func (p *provider) FetchIdentity(ctx context.Context, code string) (*Identity, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("discord: token exchange: %w", err)
	}

	client := p.config.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("discord: build user request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discord: fetch user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discord: fetch user: status %d", resp.StatusCode)
	}

	var ident Identity
	if err := json.NewDecoder(resp.Body).Decode(&ident); err != nil {
		return nil, fmt.Errorf("discord: decode user: %w", err)
	}
	if ident.DiscordID == "" {
		return nil, fmt.Errorf("discord: user response missing id")
	}
	return &ident, nil
}
