package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/prombank/prompthouse/internal/config"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Profile представляет профиль пользователя у внешнего провайдера
type Profile struct {
	ID        string // стабильный id у провайдера
	Email     string
	FirstName string
	LastName  string
	Picture   string
}

// GoogleProvider обменивает authorization code на профиль пользователя Google
type GoogleProvider struct {
	oauth2Config    *oauth2.Config
	exchangeTimeout time.Duration
}

// NewGoogleProvider creates a Google OAuth provider from configuration.
// Returns nil if the provider is not configured.
func NewGoogleProvider(cfg config.OAuthConfig) *GoogleProvider {
	if !cfg.Configured() {
		return nil
	}

	return &GoogleProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
		},
		exchangeTimeout: cfg.ExchangeTimeout,
	}
}

// AuthCodeURL возвращает URL авторизации провайдера с anti-forgery state
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state)
}

// Exchange обменивает authorization code на access token.
// Серверный вызов к провайдеру ограничен коротким таймаутом:
// таймаут — восстановимая ошибка, не падение процесса.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, p.exchangeTimeout)
	defer cancel()

	token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	return token, nil
}

// FetchProfile запрашивает профиль пользователя у провайдера
func (p *GoogleProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, p.exchangeTimeout)
	defer cancel()

	client := p.oauth2Config.Client(ctx, token)

	resp, err := client.Get(userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info request failed with status %d", resp.StatusCode)
	}

	var userInfo struct {
		ID         string `json:"id"`
		Sub        string `json:"sub"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	profile := &Profile{
		ID:        userInfo.ID,
		Email:     userInfo.Email,
		FirstName: userInfo.GivenName,
		LastName:  userInfo.FamilyName,
		Picture:   userInfo.Picture,
	}

	// Разные версии userinfo endpoint называют id по-разному
	if profile.ID == "" {
		profile.ID = userInfo.Sub
	}

	if profile.ID == "" {
		return nil, fmt.Errorf("missing user id in provider response")
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("missing email in provider response")
	}

	return profile, nil
}

// GenerateState создает случайный anti-forgery state для OAuth редиректа
func GenerateState() (string, error) {
	stateBytes := make([]byte, 32)
	if _, err := rand.Read(stateBytes); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(stateBytes), nil
}
