package library

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/oauth2"

	"photovault/internal/services"
)

const (
	scopePhotosReadonly = "https://www.googleapis.com/auth/photoslibrary.readonly"

	// Documented Google endpoints, used when the credentials file omits them.
	defaultAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	defaultTokenURL = "https://oauth2.googleapis.com/token"
)

// credentialsBlock is the client section of an installed-app credentials
// file downloaded from the Google Cloud console.
type credentialsBlock struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	AuthURI      string   `json:"auth_uri"`
	TokenURI     string   `json:"token_uri"`
	RedirectURIs []string `json:"redirect_uris"`
}

type credentialsFile struct {
	Installed *credentialsBlock `json:"installed"`
	Web       *credentialsBlock `json:"web"`
}

// oauthConfig builds the OAuth2 configuration from a credentials file.
func oauthConfig(path string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrAuth, "library", "credentials",
			fmt.Sprintf("credentials file %s not readable; download it from the Google Cloud console", path), err)
	}

	var parsed credentialsFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, services.Wrap(services.ErrAuth, "library", "credentials", "parse credentials file", err)
	}

	block := parsed.Installed
	if block == nil {
		block = parsed.Web
	}
	if block == nil || block.ClientID == "" || block.ClientSecret == "" {
		return nil, services.Wrap(services.ErrAuth, "library", "credentials",
			"credentials file has no installed-app client", nil)
	}

	authURL := block.AuthURI
	if authURL == "" {
		authURL = defaultAuthURL
	}
	tokenURL := block.TokenURI
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	redirect := "http://localhost"
	if len(block.RedirectURIs) > 0 && block.RedirectURIs[0] != "" {
		redirect = block.RedirectURIs[0]
	}

	return &oauth2.Config{
		ClientID:     block.ClientID,
		ClientSecret: block.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
		RedirectURL: redirect,
		Scopes:      []string{scopePhotosReadonly},
	}, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(file).Decode(token); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return token, nil
}

// saveToken persists a token with owner-only permissions.
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	defer file.Close()
	return json.NewEncoder(file).Encode(token)
}

// persistingTokenSource saves refreshed tokens back to disk and keeps a
// previously issued refresh token when the refresh reply omits one.
type persistingTokenSource struct {
	src  oauth2.TokenSource
	path string

	mu   sync.Mutex
	last *oauth2.Token
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.src.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if token.RefreshToken == "" && p.last != nil && p.last.RefreshToken != "" {
		token.RefreshToken = p.last.RefreshToken
	}

	changed := p.last == nil ||
		token.AccessToken != p.last.AccessToken ||
		token.RefreshToken != p.last.RefreshToken ||
		!token.Expiry.Equal(p.last.Expiry)
	if changed {
		_ = saveToken(p.path, token)
		p.last = token
	}

	return token, nil
}

// Login runs the manual authorization-code flow: it prints the consent URL
// to out, reads the pasted code from in, exchanges it, and stores the token
// at tokenFile.
func Login(ctx context.Context, credentialsFile, tokenFile string, out io.Writer, in io.Reader) error {
	conf, err := oauthConfig(credentialsFile)
	if err != nil {
		return err
	}

	authURL := conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Open the following link in your browser, authorize the application,\nand paste the code here:\n\n%s\n\nCode: ", authURL)

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return services.Wrap(services.ErrAuth, "library", "login", "read authorization code", err)
		}
		return services.Wrap(services.ErrAuth, "library", "login", "no authorization code provided", nil)
	}
	code := strings.TrimSpace(scanner.Text())
	if code == "" {
		return services.Wrap(services.ErrAuth, "library", "login", "no authorization code provided", nil)
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return services.Wrap(services.ErrAuth, "library", "login", "exchange authorization code", err)
	}

	if err := saveToken(tokenFile, token); err != nil {
		return services.Wrap(services.ErrAuth, "library", "login", "persist token", err)
	}
	fmt.Fprintf(out, "\nToken saved to %s\n", tokenFile)
	return nil
}

// ResetAuth removes the cached token so the next run re-authenticates.
func ResetAuth(tokenFile string) (bool, error) {
	err := os.Remove(tokenFile)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("remove token file: %w", err)
}
