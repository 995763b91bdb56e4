// Package econagent provides a small Go client for the EconAgent REST API.
package econagent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"
)

// DefaultHTTPTimeout defines the timeout used by clients created without a
// custom http.Client. It is intentionally short to avoid hanging network calls.
const DefaultHTTPTimeout = 15 * time.Second

// Client wraps the HTTP interactions with the EconAgent REST API. All
// operations for a client instance act on the agent identified by CallerKey.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	callerKey  string
}

// Request mirrors the transport-agnostic request accepted by the server.
type Request struct {
	Operation string         `json:"operation"`
	Arguments map[string]any `json:"arguments,omitempty"`
	CallerKey string         `json:"caller_key"`
}

// Envelope is the uniform response shape of every operation. Status is
// "success" or "error"; Message and Code are set only on errors. Fields
// carries the operation-specific payload.
type Envelope struct {
	Status  string
	Message string
	Code    string
	Fields  map[string]any
}

// UnmarshalJSON splits the flat response object into the well-known keys and
// the operation-specific remainder.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Status, _ = raw["status"].(string)
	e.Message, _ = raw["message"].(string)
	e.Code, _ = raw["code"].(string)
	delete(raw, "status")
	delete(raw, "message")
	delete(raw, "code")
	e.Fields = raw
	return nil
}

// Err converts an error envelope into a Go error; success envelopes yield nil.
func (e Envelope) Err() error {
	if e.Status != "error" {
		return nil
	}
	if e.Code != "" {
		return fmt.Errorf("econagent api error (%s): %s", e.Code, e.Message)
	}
	return fmt.Errorf("econagent api error: %s", e.Message)
}

// APIError represents transport level failures (non-200 responses).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("econagent http error (%d): %s", e.StatusCode, e.Message)
}

// NewClient instantiates a client for the EconAgent API. callerKey identifies
// the calling workspace; the server keeps one agent per key. When httpClient
// is nil, a default client with a sensible timeout is used.
func NewClient(rawURL, callerKey string, httpClient *http.Client) *Client {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		panic(fmt.Sprintf("invalid base url: %v", err))
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &Client{baseURL: parsed, httpClient: httpClient, callerKey: callerKey}
}

// Invoke sends an arbitrary operation to the server. Most callers should use
// the typed helpers below instead.
func (c *Client) Invoke(ctx context.Context, operation string, arguments map[string]any) (Envelope, error) {
	req := Request{Operation: operation, Arguments: arguments, CallerKey: c.callerKey}
	var env Envelope
	if err := c.post(ctx, "/api/v1/invoke", req, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

// Create initializes the caller's agent, optionally seeding token holdings.
// Calling it again for the same caller returns the existing agent.
func (c *Client) Create(ctx context.Context, initialHoldings map[string]float64) (Envelope, error) {
	args := map[string]any{}
	if len(initialHoldings) > 0 {
		args["initial_holdings"] = initialHoldings
	}
	return c.invokeChecked(ctx, "create", args)
}

// AddTransaction records a ledger entry. metadata may be nil.
func (c *Client) AddTransaction(ctx context.Context, txType, symbol string, amount float64, metadata map[string]any) (Envelope, error) {
	args := map[string]any{
		"type":   txType,
		"symbol": symbol,
		"amount": amount,
	}
	if metadata != nil {
		args["metadata"] = metadata
	}
	return c.invokeChecked(ctx, "add_transaction", args)
}

// TokenBalance returns the caller's balance for a symbol.
func (c *Client) TokenBalance(ctx context.Context, symbol string) (float64, error) {
	env, err := c.invokeChecked(ctx, "get_token_balance", map[string]any{"symbol": symbol})
	if err != nil {
		return 0, err
	}
	balance, _ := env.Fields["balance"].(float64)
	return balance, nil
}

// PortfolioValue values the caller's holdings against the supplied feeds.
// Symbols missing from the feeds are valued at defaultPrice.
func (c *Client) PortfolioValue(ctx context.Context, priceFeeds map[string]float64, defaultPrice float64) (float64, error) {
	args := map[string]any{"default_price": defaultPrice}
	if len(priceFeeds) > 0 {
		args["price_feeds"] = priceFeeds
	}
	env, err := c.invokeChecked(ctx, "get_portfolio_value", args)
	if err != nil {
		return 0, err
	}
	value, _ := env.Fields["value"].(float64)
	return value, nil
}

// SignTransaction asks the caller's wallet to sign a transaction payload.
func (c *Client) SignTransaction(ctx context.Context, tx map[string]any) (Envelope, error) {
	return c.invokeChecked(ctx, "sign_transaction", tx)
}

// Prices fetches the server's static price feeds.
func (c *Client) Prices(ctx context.Context) (map[string]float64, error) {
	var feeds map[string]float64
	if err := c.get(ctx, "/api/v1/prices", &feeds); err != nil {
		return nil, err
	}
	return feeds, nil
}

func (c *Client) invokeChecked(ctx context.Context, operation string, arguments map[string]any) (Envelope, error) {
	env, err := c.Invoke(ctx, operation, arguments)
	if err != nil {
		return Envelope{}, err
	}
	if err := env.Err(); err != nil {
		return env, err
	}
	return env, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	rel := &url.URL{Path: path.Join(c.baseURL.Path, endpoint)}
	u := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read error response: %w", err)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
