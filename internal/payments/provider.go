package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/axcshop/axcshop-backend/pkg/config"
	pkgerrors "github.com/axcshop/axcshop-backend/pkg/errors"
)

const providerName = "wallet"

const responseBodyReadLimit int64 = 1024

// ProviderLookup is the wallet gateway's view of a payment. Amount is the
// provider's decimal string; it is never parsed with floats.
type ProviderLookup struct {
	Status      string `json:"status"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	ProviderRef string `json:"reference"`
}

// ProviderClient looks a payment up at the provider by its reference token.
type ProviderClient interface {
	LookupPayment(ctx context.Context, providerRef string) (*ProviderLookup, error)
}

// WalletClient talks to the wallet gateway's payment lookup REST endpoint.
type WalletClient struct {
	httpClient *http.Client
	baseURL    string
	appKey     string
	appSecret  string
}

// Option configures optional client behavior.
type Option func(*WalletClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *WalletClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewWalletClient builds the gateway client from config.
func NewWalletClient(cfg config.WalletConfig, opts ...Option) (*WalletClient, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("wallet base url is required")
	}
	if strings.TrimSpace(cfg.AppKey) == "" || strings.TrimSpace(cfg.AppSecret) == "" {
		return nil, fmt.Errorf("wallet app credentials are required")
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &WalletClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		appKey:     cfg.AppKey,
		appSecret:  cfg.AppSecret,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// LookupPayment fetches the payment record behind a provider reference.
func (c *WalletClient) LookupPayment(ctx context.Context, providerRef string) (*ProviderLookup, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "wallet client not configured")
	}
	trimmed := strings.TrimSpace(providerRef)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider reference is required")
	}

	endpoint := fmt.Sprintf("%s/v1/payments/%s", strings.TrimRight(c.baseURL, "/"), url.PathEscape(trimmed))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build payment lookup request")
	}
	req.Header.Set("X-App-Key", c.appKey)
	req.Header.Set("X-App-Secret", c.appSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute payment lookup request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found at provider")
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "payment lookup failed")
	}

	var lookup ProviderLookup
	if err := json.NewDecoder(resp.Body).Decode(&lookup); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment lookup response")
	}
	if lookup.Status == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "provider response missing status")
	}
	return &lookup, nil
}
