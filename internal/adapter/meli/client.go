package meli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexanderjung3838-wq/roboentrega/internal/domain"
)

// TokenResponse models the marketplace token endpoint response for both the
// authorization-code and refresh-token grants.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// API encapsulates outbound HTTP calls to the marketplace.
type API interface {
	AuthorizationURL() string
	ExchangeCode(ctx context.Context, code string) (*TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error)
	FetchOrder(ctx context.Context, accessToken, resource string) (*domain.Order, error)
	SendMessage(ctx context.Context, accessToken string, packID, sellerID int64, msg domain.OutboundMessage) error
}

// Credentials identifies the registered marketplace application.
type Credentials struct {
	AppID        string
	ClientSecret string
	RedirectURI  string
}

// HTTPClient is the default API implementation.
type HTTPClient struct {
	creds       Credentials
	apiBaseURL  string
	authBaseURL string
	httpClient  *http.Client
}

var _ API = (*HTTPClient)(nil)

// NewHTTPClient constructs the default marketplace client. Base URLs are
// taken as-is so tests can point the client at a local server.
func NewHTTPClient(creds Credentials, apiBaseURL, authBaseURL string, client *http.Client) *HTTPClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		creds:       creds,
		apiBaseURL:  strings.TrimRight(apiBaseURL, "/"),
		authBaseURL: strings.TrimRight(authBaseURL, "/"),
		httpClient:  client,
	}
}

// AuthorizationURL builds the marketplace authorization page URL. The result
// is deterministic for a given configuration.
func (c *HTTPClient) AuthorizationURL() string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.creds.AppID)
	q.Set("redirect_uri", c.creds.RedirectURI)
	return c.authBaseURL + "/authorization?" + q.Encode()
}

// ExchangeCode performs the authorization_code grant.
func (c *HTTPClient) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("client_id", c.creds.AppID)
	data.Set("client_secret", c.creds.ClientSecret)
	data.Set("code", code)
	data.Set("redirect_uri", c.creds.RedirectURI)
	return c.tokenGrant(ctx, data)
}

// RefreshToken performs the refresh_token grant.
func (c *HTTPClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("client_id", c.creds.AppID)
	data.Set("client_secret", c.creds.ClientSecret)
	data.Set("refresh_token", refreshToken)
	return c.tokenGrant(ctx, data)
}

func (c *HTTPClient) tokenGrant(ctx context.Context, data url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+"/oauth/token", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("token grant failed: status=%d body=%s", resp.StatusCode, truncate(body))
	}

	var token TokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token grant returned no access_token")
	}
	return &token, nil
}

// FetchOrder loads the order referenced by a webhook resource path.
func (c *HTTPClient) FetchOrder(ctx context.Context, accessToken, resource string) (*domain.Order, error) {
	if !strings.HasPrefix(resource, "/") {
		resource = "/" + resource
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+resource, nil)
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read order response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("order fetch failed: status=%d body=%s", resp.StatusCode, truncate(body))
	}

	var order domain.Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &order, nil
}

// SendMessage posts a buyer message through the per-pack messaging endpoint.
func (c *HTTPClient) SendMessage(ctx context.Context, accessToken string, packID, sellerID int64, msg domain.OutboundMessage) error {
	payload := map[string]any{
		"from": map[string]int64{"user_id": msg.From},
		"to":   map[string]int64{"user_id": msg.To},
		"text": msg.Text,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/messages/packs/%d/sellers/%d", c.apiBaseURL, packID, sellerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build message request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("message request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read message response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("message send failed: status=%d body=%s", resp.StatusCode, truncate(body))
	}
	return nil
}

// truncate bounds upstream error payloads before they land in logs.
func truncate(body []byte) string {
	const max = 512
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
