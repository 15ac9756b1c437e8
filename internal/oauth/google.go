package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"sso-backend/internal/domain"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// GoogleConfig configures the Google provider. Endpoint and UserInfoURL default
// to Google's production URLs.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoint     oauth2.Endpoint
	UserInfoURL  string
	HTTPClient   *http.Client
}

// GoogleProvider implements ExternalIdentityProvider for Google accounts.
type GoogleProvider struct {
	oauth       *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

func NewGoogleProvider(cfg GoogleConfig) (*GoogleProvider, error) {
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, errors.New("google client id and secret are required")
	}
	if cfg.Endpoint.AuthURL == "" || cfg.Endpoint.TokenURL == "" {
		cfg.Endpoint = endpoints.Google
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = googleUserInfoURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     cfg.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: cfg.UserInfoURL,
		httpClient:  cfg.HTTPClient,
	}, nil
}

func (p *GoogleProvider) Name() domain.Provider {
	return domain.ProviderGoogle
}

func (p *GoogleProvider) AuthorizationURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

func (p *GoogleProvider) ExchangeCode(ctx context.Context, code string) (*domain.ExternalUser, error) {
	if strings.TrimSpace(code) == "" {
		return nil, errors.New("authorization code is required")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	resp, err := p.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read userinfo: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed: status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("parse userinfo: %w", err)
	}
	if strings.TrimSpace(info.Email) == "" {
		return nil, errors.New("userinfo missing email")
	}
	if !info.EmailVerified {
		return nil, errors.New("google email is not verified")
	}

	name := strings.TrimSpace(info.Name)
	if name == "" {
		name = info.Email
	}
	return &domain.ExternalUser{
		Email:    info.Email,
		FullName: name,
		Provider: domain.ProviderGoogle,
	}, nil
}
