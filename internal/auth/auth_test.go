package auth

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"kamishibai/internal/config"
)

func TestParseTokenModernFormat(t *testing.T) {
	raw := []byte(`{"access_token":"live","refresh_token":"keep","token_type":"Bearer","expiry":"2026-01-02T09:00:00+09:00"}`)

	token, err := parseToken(raw)
	if err != nil {
		t.Fatalf("parseToken failed: %v", err)
	}
	if token.AccessToken != "live" || token.RefreshToken != "keep" {
		t.Fatalf("unexpected token: %+v", token)
	}
}

func TestParseTokenLegacyFormat(t *testing.T) {
	raw := []byte(`{"token":"old-access","refresh_token":"old-refresh","expiry":"2025-12-27T00:00:00.123456"}`)

	token, err := parseToken(raw)
	if err != nil {
		t.Fatalf("parseToken failed: %v", err)
	}
	if token.AccessToken != "old-access" {
		t.Fatalf("expected legacy token field mapped to access token, got %q", token.AccessToken)
	}
	if token.RefreshToken != "old-refresh" {
		t.Fatalf("expected refresh token carried over, got %q", token.RefreshToken)
	}
	if token.Expiry.IsZero() {
		t.Fatal("expected legacy expiry parsed")
	}
	if token.Expiry.Year() != 2025 || token.Expiry.Month() != time.December {
		t.Fatalf("unexpected expiry: %v", token.Expiry)
	}
}

func TestParseTokenRejectsEmptyObject(t *testing.T) {
	if _, err := parseToken([]byte(`{}`)); err == nil {
		t.Fatal("expected error for token JSON without usable fields")
	}
}

func TestLoadTokenPrefersEnvironment(t *testing.T) {
	dir := t.TempDir()
	tokenPath := filepath.Join(dir, "token.json")
	if err := os.WriteFile(tokenPath, []byte(`{"access_token":"from-file"}`), 0o600); err != nil {
		t.Fatalf("write token file: %v", err)
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(`{"access_token":"from-env","refresh_token":"r"}`))
	t.Setenv(EnvToken, encoded)

	token, fromFile, _, err := loadToken(config.YouTube{TokenFile: tokenPath})
	if err != nil {
		t.Fatalf("loadToken failed: %v", err)
	}
	if fromFile {
		t.Fatal("expected environment token not to be marked file-backed")
	}
	if token.AccessToken != "from-env" {
		t.Fatalf("expected environment token to win, got %q", token.AccessToken)
	}
}

func TestLoadTokenFromFile(t *testing.T) {
	t.Setenv(EnvToken, "")
	dir := t.TempDir()
	tokenPath := filepath.Join(dir, "token.json")
	if err := os.WriteFile(tokenPath, []byte(`{"access_token":"from-file","refresh_token":"r"}`), 0o600); err != nil {
		t.Fatalf("write token file: %v", err)
	}

	token, fromFile, path, err := loadToken(config.YouTube{TokenFile: tokenPath})
	if err != nil {
		t.Fatalf("loadToken failed: %v", err)
	}
	if !fromFile || path != tokenPath {
		t.Fatalf("expected file-backed token at %s, got fromFile=%v path=%s", tokenPath, fromFile, path)
	}
	if token.AccessToken != "from-file" {
		t.Fatalf("unexpected access token %q", token.AccessToken)
	}
}

func TestEncodeCredentialsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	secretsPath := filepath.Join(dir, "client_secrets.json")
	tokenPath := filepath.Join(dir, "token.json")
	if err := os.WriteFile(secretsPath, []byte(`{"installed":{}}`), 0o600); err != nil {
		t.Fatalf("write secrets: %v", err)
	}
	if err := os.WriteFile(tokenPath, []byte(`{"access_token":"x"}`), 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}

	secrets, token, err := EncodeCredentials(config.YouTube{
		ClientSecretsFile: secretsPath,
		TokenFile:         tokenPath,
	})
	if err != nil {
		t.Fatalf("EncodeCredentials failed: %v", err)
	}

	decodedSecrets, err := base64.StdEncoding.DecodeString(secrets)
	if err != nil {
		t.Fatalf("decode secrets: %v", err)
	}
	if string(decodedSecrets) != `{"installed":{}}` {
		t.Fatalf("secrets round trip mismatch: %s", decodedSecrets)
	}
	decodedToken, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if string(decodedToken) != `{"access_token":"x"}` {
		t.Fatalf("token round trip mismatch: %s", decodedToken)
	}
}

func TestWriteTokenReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "token.json")

	token, err := parseToken([]byte(`{"access_token":"new","refresh_token":"r"}`))
	if err != nil {
		t.Fatalf("parseToken failed: %v", err)
	}
	if err := writeToken(path, token); err != nil {
		t.Fatalf("writeToken failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read written token: %v", err)
	}
	reparsed, err := parseToken(raw)
	if err != nil {
		t.Fatalf("reparse written token: %v", err)
	}
	if reparsed.AccessToken != "new" || reparsed.RefreshToken != "r" {
		t.Fatalf("unexpected reparsed token: %+v", reparsed)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("expected temp file removed after rename")
	}
}
