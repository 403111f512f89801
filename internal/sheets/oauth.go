package sheets

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

// CallbackAddr is where the consent redirect lands during interactive auth.
const CallbackAddr = "localhost:8080"

const authTimeout = 5 * time.Minute

// OAuth2Config holds the desktop client credentials used by "sage auth sheets".
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	TokenFile    string // saved token; empty disables persistence
}

func oauthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
}

// AuthenticateOAuth2Interactive prints a consent URL, waits for the browser
// redirect on CallbackAddr, and exchanges the code for an offline token.
func AuthenticateOAuth2Interactive(ctx context.Context, config OAuth2Config) (*oauth2.Token, error) {
	oc := oauthConfig(config.ClientID, config.ClientSecret, "http://"+CallbackAddr+"/callback")

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", CallbackAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}

	codes := make(chan string, 1)
	failures := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			sendOnce(failures, errors.New("oauth callback state mismatch"))
		case q.Get("code") == "":
			http.Error(w, "no authorization code received", http.StatusBadRequest)
			sendOnce(failures, errors.New("no authorization code received"))
		default:
			_, _ = fmt.Fprint(w, "<html><body><h1>Sage is authorized</h1><p>You can close this window.</p></body></html>")
			sendOnce(codes, q.Get("code"))
		}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			sendOnce(failures, fmt.Errorf("callback server: %w", serveErr))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	slog.Info("Google Sheets authentication required")
	slog.Info("Visit this URL to authorize sage", "url", oc.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	var code string
	select {
	case code = <-codes:
	case err := <-failures:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(authTimeout):
		return nil, fmt.Errorf("no authorization received within %s", authTimeout)
	}

	token, err := oc.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	persistToken(config.TokenFile, token)
	return token, nil
}

// LoadToken reads a token written by a previous authentication.
func LoadToken(tokenFile string) (*oauth2.Token, error) {
	data, err := os.ReadFile(tokenFile) // #nosec G304
	if err != nil {
		return nil, err
	}

	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, fmt.Errorf("decode token %s: %w", tokenFile, err)
	}
	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func persistToken(path string, token *oauth2.Token) {
	if path == "" {
		return
	}
	if err := saveToken(path, token); err != nil {
		slog.Warn("Failed to save token", "file", path, "error", err)
		return
	}
	slog.Debug("Token saved", "file", path)
}

// RefreshTokenIfNeeded returns token unchanged while it is valid and
// otherwise trades its refresh token for a new one.
func RefreshTokenIfNeeded(ctx context.Context, config OAuth2Config, token *oauth2.Token) (*oauth2.Token, error) {
	if token.Valid() {
		return token, nil
	}

	fresh, err := oauthConfig(config.ClientID, config.ClientSecret, "").TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	persistToken(config.TokenFile, fresh)
	return fresh, nil
}

// GetOrCreateToken reuses the saved token when there is one and falls back
// to the interactive flow.
func GetOrCreateToken(ctx context.Context, config OAuth2Config) (*oauth2.Token, error) {
	if config.TokenFile != "" {
		if token, err := LoadToken(config.TokenFile); err == nil {
			slog.Info("Using saved Google Sheets token", "file", config.TokenFile)
			return RefreshTokenIfNeeded(ctx, config, token)
		}
	}
	return AuthenticateOAuth2Interactive(ctx, config)
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func sendOnce[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
	}
}
