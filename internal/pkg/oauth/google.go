package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"
)

type GoogleInfo struct {
	Name         string
	Email        string
	RefreshToken string
}

type clientSecrets map[string]creds

type creds struct {
	ClientId                string   `json:"client_id"`
	ProjectId               string   `json:"project_id"`
	AuthUri                 string   `json:"auth_uri"`
	TokenUri                string   `json:"token_uri"`
	AuthProviderX509CertUrl string   `json:"auth_provider_x509_cert_url"`
	ClientSecret            string   `json:"client_secret"`
	RedirectUris            []string `json:"redirect_uris"`
}

var scopes = []string{
	people.UserinfoEmailScope,
	people.UserinfoProfileScope,
	calendar.CalendarReadonlyScope,
}

// Parser exchanges Google auth codes and issues token sources for stored
// refresh tokens.
type Parser struct {
	conf *oauth2.Config
}

func NewParser(clientSecretPath, clientType, redirectURL string) (*Parser, error) {
	file, err := os.Open(clientSecretPath)
	if err != nil {
		return nil, fmt.Errorf("can't open client secret: %w", err)
	}
	defer file.Close()

	cs := make(clientSecrets)
	if err := json.NewDecoder(file).Decode(&cs); err != nil {
		return nil, fmt.Errorf("can't parse secrets: %w", err)
	}

	secret, ok := cs[clientType]
	if !ok {
		return nil, fmt.Errorf("no %q client in secrets", clientType)
	}

	return &Parser{conf: &oauth2.Config{
		ClientID:     secret.ClientId,
		ClientSecret: secret.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       scopes,
	}}, nil
}

func (p *Parser) GetInfoGoogle(ctx context.Context, authCode string) (*GoogleInfo, error) {
	token, err := p.conf.Exchange(ctx, authCode, oauth2.AccessTypeOffline)
	if err != nil {
		return nil, fmt.Errorf("code exchange: %w", err)
	}

	peopleService, err := people.NewService(ctx,
		option.WithScopes(people.UserinfoEmailScope, people.UserinfoProfileScope),
		option.WithTokenSource(p.conf.TokenSource(ctx, token)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to People API: %w", err)
	}

	resp, err := peopleService.People.
		Get("people/me").
		PersonFields("names,emailAddresses").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to make request for user info: %w", err)
	}

	if resp.HTTPStatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get user info: code: %d", resp.HTTPStatusCode)
	}

	info := &GoogleInfo{RefreshToken: token.RefreshToken}

	for _, n := range resp.Names {
		if n.Metadata.Primary {
			info.Name = n.DisplayName
			break
		}
	}

	for _, e := range resp.EmailAddresses {
		if e.Metadata.Primary {
			info.Email = e.Value
			break
		}
	}

	return info, nil
}

// TokenSource returns a token source refreshing access tokens from a stored
// refresh token.
func (p *Parser) TokenSource(ctx context.Context, refreshToken string) oauth2.TokenSource {
	return p.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
}
