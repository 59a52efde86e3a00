package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGitHubOAuthProvider_GetLoginURL_ContainsRequiredParams(t *testing.T) {
	provider := NewGitHubOAuthProvider(GitHubOAuthConfig{
		ClientID:    "gh-client-id",
		RedirectURL: "http://localhost:8080/auth/github/callback",
	})

	url := provider.GetLoginURL("gh-state")

	tests := []struct {
		name     string
		contains string
	}{
		{"client_id", "client_id=gh-client-id"},
		{"redirect_uri", "redirect_uri="},
		{"state", "state=gh-state"},
		{"scope", "scope="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(url, tt.contains) {
				t.Errorf("URL should contain %q, got %q", tt.contains, url)
			}
		})
	}
}

func TestGitHubOAuthProvider_ExchangeCode_Success(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// GitHubはAcceptヘッダーがないとフォームエンコードで返すため、検証する
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept header = %q, want application/json", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "gh-access-token",
			"token_type":   "bearer",
			"scope":        "read:user,user:email",
		})
	}))
	defer tokenServer.Close()

	userServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader != "Bearer gh-access-token" {
			t.Errorf("unexpected Authorization header: %q", authHeader)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    9876543,
			"login": "janedoe",
			"name":  "Jane Doe",
			"email": "jane@example.com",
		})
	}))
	defer userServer.Close()

	provider := NewGitHubOAuthProvider(GitHubOAuthConfig{
		ClientID:     "gh-client-id",
		ClientSecret: "gh-client-secret",
		RedirectURL:  "http://localhost:8080/auth/github/callback",
		TokenURL:     tokenServer.URL,
		UserURL:      userServer.URL,
	})

	userInfo, err := provider.ExchangeCode(context.Background(), "gh-code")
	if err != nil {
		t.Fatalf("ExchangeCode() error = %v", err)
	}

	if userInfo.Provider != "github" {
		t.Errorf("provider = %q, want %q", userInfo.Provider, "github")
	}
	if userInfo.ProviderUserID != "9876543" {
		t.Errorf("providerUserID = %q, want %q", userInfo.ProviderUserID, "9876543")
	}
	if userInfo.Name != "janedoe" {
		t.Errorf("name = %q, want %q", userInfo.Name, "janedoe")
	}
	if userInfo.FullName != "Jane Doe" {
		t.Errorf("fullName = %q, want %q", userInfo.FullName, "Jane Doe")
	}
}

func TestGitHubOAuthProvider_ExchangeCode_EmptyUserID(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "token"})
	}))
	defer tokenServer.Close()

	userServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"login": "nobody"})
	}))
	defer userServer.Close()

	provider := NewGitHubOAuthProvider(GitHubOAuthConfig{
		TokenURL: tokenServer.URL,
		UserURL:  userServer.URL,
	})

	_, err := provider.ExchangeCode(context.Background(), "code")
	if err == nil {
		t.Fatal("expected error for missing user id")
	}
}

func TestNewGitHubOAuthProvider_DefaultURLs(t *testing.T) {
	provider := NewGitHubOAuthProvider(GitHubOAuthConfig{})

	if provider.config.AuthURL != defaultGitHubAuthURL {
		t.Errorf("AuthURL = %q, want default", provider.config.AuthURL)
	}
	if provider.config.TokenURL != defaultGitHubTokenURL {
		t.Errorf("TokenURL = %q, want default", provider.config.TokenURL)
	}
	if provider.config.UserURL != defaultGitHubUserURL {
		t.Errorf("UserURL = %q, want default", provider.config.UserURL)
	}
}
