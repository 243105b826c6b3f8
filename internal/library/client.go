package library

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"photovault/internal/config"
	"photovault/internal/logging"
	"photovault/internal/services"
)

const (
	defaultBaseURL = "https://photoslibrary.googleapis.com/v1"
	albumsPageSize = 50
	maxPageSize    = 100
)

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL overrides the API endpoint (primarily for tests).
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithHTTPClient injects a pre-authenticated HTTP client (primarily for tests).
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// Client talks to the photo library API on behalf of one account.
type Client struct {
	settings config.Library
	http     *http.Client
	baseURL  string
	logger   *slog.Logger
}

// NewClient constructs a client. The HTTP session is established by
// Authenticate unless one was injected.
func NewClient(settings config.Library, logger *slog.Logger, opts ...ClientOption) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &Client{
		settings: settings,
		baseURL:  defaultBaseURL,
		logger:   logging.NewComponentLogger(logger, "library"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Authenticate establishes the OAuth2 session and verifies it with a
// one-item probe. Refreshed tokens are persisted back to the token file.
// Every failure carries the auth marker; nothing downstream can proceed
// without a session.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.http == nil {
		conf, err := oauthConfig(c.settings.CredentialsFile)
		if err != nil {
			return err
		}

		token, err := tokenFromFile(c.settings.TokenFile)
		if err != nil {
			return services.Wrap(services.ErrAuth, "library", "token",
				`no usable cached token; run "photovault login" first`, err)
		}

		// Token refreshes must outlive a cancelled run so draining workers
		// can still complete their downloads.
		sourceCtx := context.WithoutCancel(ctx)
		source := &persistingTokenSource{
			src:  conf.TokenSource(sourceCtx, token),
			path: c.settings.TokenFile,
			last: token,
		}
		c.http = oauth2.NewClient(sourceCtx, source)
	}

	var page itemsPage
	if err := c.getJSON(ctx, fmt.Sprintf("%s/mediaItems?pageSize=1", c.baseURL), &page); err != nil {
		return services.Wrap(services.ErrAuth, "library", "probe", "verify session", err)
	}

	c.logger.Info("authenticated with photo library API")
	return nil
}

// HTTPClient exposes the authenticated session so media downloads carry
// the same credentials as API calls. Nil until Authenticate succeeds.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Albums returns every album, following pagination to the end.
func (c *Client) Albums(ctx context.Context) ([]Album, error) {
	var albums []Album
	pageToken := ""
	for {
		endpoint := fmt.Sprintf("%s/albums?pageSize=%d", c.baseURL, albumsPageSize)
		if pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var page albumsPage
		if err := c.getJSON(ctx, endpoint, &page); err != nil {
			return nil, services.Wrap(services.ErrEnumeration, "library", "albums", "list albums", err)
		}
		if len(page.Albums) == 0 {
			break
		}
		albums = append(albums, page.Albums...)
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	c.logger.Info("retrieved albums", logging.Int("album_count", len(albums)))
	return albums, nil
}

type albumsPage struct {
	Albums        []Album `json:"albums"`
	NextPageToken string  `json:"nextPageToken"`
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.doJSON(req, out)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	if c.http == nil {
		return errors.New("client not authenticated")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
