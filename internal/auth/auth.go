// Package auth loads OAuth2 credentials for the publishing platform.
//
// Client secrets and the refresh token come from the configured files, or from
// base64-encoded environment variables so automation hosts never need
// credential files on disk. Refreshed access tokens are written back to the
// token file when one is in use.
package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"

	"kamishibai/internal/config"
	"kamishibai/internal/services"
)

// Environment variables that override the credential files.
const (
	EnvClientSecrets = "KAMISHIBAI_GOOGLE_SECRETS_B64"
	EnvToken         = "KAMISHIBAI_GOOGLE_TOKEN_B64"
)

// TokenSource builds a self-refreshing token source scoped to video upload.
// When the token was loaded from a file, refreshed tokens are persisted back
// to it.
func TokenSource(ctx context.Context, cfg config.YouTube) (oauth2.TokenSource, error) {
	oauthConfig, err := loadOAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	token, fromFile, tokenPath, err := loadToken(cfg)
	if err != nil {
		return nil, err
	}

	base := oauthConfig.TokenSource(ctx, token)
	if !fromFile {
		return base, nil
	}
	return &persistingTokenSource{base: base, path: tokenPath, last: token.AccessToken}, nil
}

// Refresh forces a token refresh and persists the result, so installs can
// renew credentials ahead of a scheduled run.
func Refresh(ctx context.Context, cfg config.YouTube) (*oauth2.Token, error) {
	oauthConfig, err := loadOAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	token, fromFile, tokenPath, err := loadToken(cfg)
	if err != nil {
		return nil, err
	}
	if token.RefreshToken == "" {
		return nil, services.Wrap(services.ErrUnauthorized, "auth", "refresh", "stored token has no refresh token", nil)
	}

	// Expire the access token so the source performs a real refresh.
	token.Expiry = time.Unix(1, 0)
	refreshed, err := oauthConfig.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, services.Wrap(services.ErrUnauthorized, "auth", "refresh", "token refresh rejected", err)
	}

	if fromFile {
		if err := writeToken(tokenPath, refreshed); err != nil {
			return nil, err
		}
	}
	return refreshed, nil
}

// EncodeCredentials reads the configured credential files and returns their
// base64 encodings, ready to paste into automation secrets.
func EncodeCredentials(cfg config.YouTube) (secrets, token string, err error) {
	secretsBytes, err := os.ReadFile(cfg.ClientSecretsFile)
	if err != nil {
		return "", "", services.Wrap(services.ErrConfiguration, "auth", "encode", "read client secrets", err)
	}
	tokenBytes, err := os.ReadFile(cfg.TokenFile)
	if err != nil {
		return "", "", services.Wrap(services.ErrConfiguration, "auth", "encode", "read token", err)
	}
	return base64.StdEncoding.EncodeToString(secretsBytes),
		base64.StdEncoding.EncodeToString(tokenBytes), nil
}

func loadOAuthConfig(cfg config.YouTube) (*oauth2.Config, error) {
	raw, err := readCredential(EnvClientSecrets, cfg.ClientSecretsFile, "client secrets")
	if err != nil {
		return nil, err
	}
	oauthConfig, err := google.ConfigFromJSON(raw, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "auth", "parse client secrets", "", err)
	}
	return oauthConfig, nil
}

func loadToken(cfg config.YouTube) (token *oauth2.Token, fromFile bool, path string, err error) {
	if encoded := strings.TrimSpace(os.Getenv(EnvToken)); encoded != "" {
		raw, decodeErr := base64.StdEncoding.DecodeString(encoded)
		if decodeErr != nil {
			return nil, false, "", services.Wrap(services.ErrConfiguration, "auth", "load token",
				fmt.Sprintf("decode %s", EnvToken), decodeErr)
		}
		token, err = parseToken(raw)
		return token, false, "", err
	}

	if cfg.TokenFile == "" {
		return nil, false, "", services.Wrap(services.ErrConfiguration, "auth", "load token",
			fmt.Sprintf("no token file configured and %s unset", EnvToken), nil)
	}
	raw, readErr := os.ReadFile(cfg.TokenFile)
	if readErr != nil {
		return nil, false, "", services.Wrap(services.ErrConfiguration, "auth", "load token", cfg.TokenFile, readErr)
	}
	token, err = parseToken(raw)
	return token, true, cfg.TokenFile, err
}

func readCredential(envName, filePath, label string) ([]byte, error) {
	if encoded := strings.TrimSpace(os.Getenv(envName)); encoded != "" {
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "auth", "load "+label,
				fmt.Sprintf("decode %s", envName), err)
		}
		return raw, nil
	}
	if filePath == "" {
		return nil, services.Wrap(services.ErrConfiguration, "auth", "load "+label,
			fmt.Sprintf("no file configured and %s unset", envName), nil)
	}
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "auth", "load "+label, filePath, err)
	}
	return raw, nil
}

// authorizedUserToken is the legacy stored-credential layout from earlier
// installs, where the access token lives under "token".
type authorizedUserToken struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	Expiry       string `json:"expiry"`
}

func parseToken(raw []byte) (*oauth2.Token, error) {
	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "auth", "parse token", "", err)
	}
	if token.AccessToken != "" || token.RefreshToken != "" {
		return &token, nil
	}

	var legacy authorizedUserToken
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "auth", "parse token", "", err)
	}
	if legacy.Token == "" && legacy.RefreshToken == "" {
		return nil, services.Wrap(services.ErrConfiguration, "auth", "parse token", "token JSON has no usable fields", nil)
	}

	converted := &oauth2.Token{
		AccessToken:  legacy.Token,
		RefreshToken: legacy.RefreshToken,
		TokenType:    "Bearer",
	}
	if legacy.Expiry != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.999999"} {
			if expiry, err := time.Parse(layout, legacy.Expiry); err == nil {
				converted.Expiry = expiry
				break
			}
		}
	}
	return converted, nil
}

func writeToken(path string, token *oauth2.Token) error {
	raw, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace token: %w", err)
	}
	return nil
}

// persistingTokenSource writes refreshed tokens back to the token file so the
// next run starts with a live access token.
type persistingTokenSource struct {
	base oauth2.TokenSource
	path string
	last string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.base.Token()
	if err != nil {
		return nil, err
	}
	if token.AccessToken != p.last {
		p.last = token.AccessToken
		if writeErr := writeToken(p.path, token); writeErr != nil {
			// Persisting is best effort; the in-memory token is still valid.
			return token, nil
		}
	}
	return token, nil
}
