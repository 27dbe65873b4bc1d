package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
)

const (
	googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
	facebookGraphURL   = "https://graph.facebook.com/me"
	mockTokenPrefix    = "mock-"
)

// socialVerifier validates provider tokens against Google and Facebook.
type socialVerifier struct {
	client         *http.Client
	mock           bool
	googleClientID string
	googleURL      string
	facebookURL    string
}

// SocialVerifierOptions configures NewSocialVerifier.
type SocialVerifierOptions struct {
	Mock           bool
	GoogleClientID string
}

// NewSocialVerifier creates a SocialVerifier backed by the providers' public endpoints.
func NewSocialVerifier(opts SocialVerifierOptions) SocialVerifier {
	return &socialVerifier{
		client:         &http.Client{Timeout: 10 * time.Second},
		mock:           opts.Mock,
		googleClientID: opts.GoogleClientID,
		googleURL:      googleTokenInfoURL,
		facebookURL:    facebookGraphURL,
	}
}

// Verify resolves token into an identity. With mock mode on, tokens of the
// form "mock-<provider>:<email>" are accepted without a network call.
func (v *socialVerifier) Verify(ctx context.Context, provider, token string) (*SocialIdentity, error) {
	p, err := parseProvider(provider)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, apperrors.ErrInvalidSocialToken
	}

	if v.mock && strings.HasPrefix(token, mockTokenPrefix) {
		return mockIdentity(p, token)
	}

	switch p {
	case models.AuthProviderGoogle:
		return v.verifyGoogle(ctx, token)
	default:
		return v.verifyFacebook(ctx, token)
	}
}

func parseProvider(provider string) (models.AuthProvider, error) {
	switch strings.ToLower(provider) {
	case "google":
		return models.AuthProviderGoogle, nil
	case "facebook":
		return models.AuthProviderFacebook, nil
	}
	return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported provider")
}

func mockIdentity(p models.AuthProvider, token string) (*SocialIdentity, error) {
	_, email, ok := strings.Cut(token, ":")
	email = strings.TrimSpace(email)
	if !ok || email == "" {
		return nil, apperrors.ErrInvalidSocialToken
	}
	return &SocialIdentity{
		Provider:   p,
		ProviderID: "mock:" + normalizeEmail(email),
		Email:      email,
		Name:       email,
	}, nil
}

type googleTokenInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Aud   string `json:"aud"`
}

func (v *socialVerifier) verifyGoogle(ctx context.Context, token string) (*SocialIdentity, error) {
	var info googleTokenInfo
	if err := v.getJSON(ctx, v.googleURL, url.Values{"id_token": {token}}, &info); err != nil {
		return nil, err
	}
	if v.googleClientID != "" && info.Aud != v.googleClientID {
		return nil, apperrors.ErrInvalidSocialToken
	}
	if info.Sub == "" || info.Email == "" {
		return nil, apperrors.ErrInvalidSocialToken
	}
	return &SocialIdentity{
		Provider:   models.AuthProviderGoogle,
		ProviderID: info.Sub,
		Email:      info.Email,
		Name:       info.Name,
	}, nil
}

type facebookMe struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (v *socialVerifier) verifyFacebook(ctx context.Context, token string) (*SocialIdentity, error) {
	var me facebookMe
	q := url.Values{"fields": {"id,name,email"}, "access_token": {token}}
	if err := v.getJSON(ctx, v.facebookURL, q, &me); err != nil {
		return nil, err
	}
	if me.ID == "" || me.Email == "" {
		return nil, apperrors.ErrInvalidSocialToken
	}
	return &SocialIdentity{
		Provider:   models.AuthProviderFacebook,
		ProviderID: me.ID,
		Email:      me.Email,
		Name:       me.Name,
	}, nil
}

func (v *socialVerifier) getJSON(ctx context.Context, endpoint string, q url.Values, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidSocialToken, fmt.Errorf("provider request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.Wrap(apperrors.ErrInvalidSocialToken, fmt.Errorf("provider returned %d", resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidSocialToken, err)
	}
	return nil
}
