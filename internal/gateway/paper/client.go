package paper

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"klinebot/internal/pkg/text"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const (
	authTarget   = "AWSCognitoIdentityProviderService.InitiateAuth"
	authFlow     = "USER_PASSWORD_AUTH"
	errorExcerpt = 512
)

// ErrNoStatusData is returned when a status response lacks a "data" document.
var ErrNoStatusData = errors.New("paper status response has no data")

// APIError is a non-2xx answer from the auth or paper API.
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("paper %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("paper %s: status %d: %s", e.Op, e.Status, e.Body)
}

// OrderRequest is the payload of /order. Side CLOSE with size 0 flattens the
// position.
type OrderRequest struct {
	Symbol string  `json:"symbol"`
	Side   string  `json:"side"`
	Size   float64 `json:"size"`
}

type leverageRequest struct {
	Symbol   string `json:"symbol"`
	Leverage int    `json:"leverage"`
}

type envelope struct {
	Payload any `json:"payload"`
}

// Client wraps the paper-trading REST API.
type Client struct {
	cfg  Config
	http *resty.Client
}

func NewClient(cfg Config) (*Client, error) {
	final := cfg.withDefaults()
	if final.APIKey == "" {
		return nil, fmt.Errorf("paper api_key is required")
	}
	rc := resty.New().
		SetBaseURL(final.BaseURL).
		SetTimeout(final.Timeout).
		SetHeader("Accept", "application/json")
	if final.InsecureSkipVerify {
		rc.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) // #nosec G402
	}
	return &Client{cfg: final, http: rc}, nil
}

// Authenticate exchanges username and password for an access token.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"AuthFlow": authFlow,
		"ClientId": c.cfg.ClientID,
		"AuthParameters": map[string]string{
			"USERNAME": c.cfg.Username,
			"PASSWORD": c.cfg.Password,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode auth payload: %w", err)
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-amz-json-1.1").
		SetHeader("X-Amz-Target", authTarget).
		SetBody(payload).
		Post(c.cfg.AuthURL)
	if err != nil {
		return "", fmt.Errorf("paper auth: %w", err)
	}
	if err := checkResponse("auth", resp); err != nil {
		return "", err
	}
	token := gjson.GetBytes(resp.Body(), "AuthenticationResult.AccessToken").String()
	if token == "" {
		return "", fmt.Errorf("paper auth: response has no access token")
	}
	return token, nil
}

// Status returns the "data" document of /getstatus for one symbol.
func (c *Client) Status(ctx context.Context, token, symbol string) (json.RawMessage, error) {
	body, err := c.call(ctx, "status", http.MethodGet, "/getstatus", token, map[string]string{"symbol": symbol}, nil)
	if err != nil {
		return nil, err
	}
	data := gjson.GetBytes(body, "data")
	if !data.Exists() || data.Type == gjson.Null {
		return nil, fmt.Errorf("%w (symbol=%s)", ErrNoStatusData, symbol)
	}
	return json.RawMessage(data.Raw), nil
}

// OverallStatus returns the full /getstatus response across all symbols.
func (c *Client) OverallStatus(ctx context.Context, token string) (json.RawMessage, error) {
	body, err := c.call(ctx, "status", http.MethodGet, "/getstatus", token, nil, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *Client) SetLeverage(ctx context.Context, token, symbol string, leverage int) (json.RawMessage, error) {
	req := envelope{Payload: leverageRequest{Symbol: symbol, Leverage: leverage}}
	body, err := c.call(ctx, "setleverage", http.MethodPost, "/setleverage", token, nil, req)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *Client) Order(ctx context.Context, token string, order OrderRequest) (json.RawMessage, error) {
	body, err := c.call(ctx, "order", http.MethodPost, "/order", token, nil, envelope{Payload: order})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *Client) call(ctx context.Context, op, method, path, token string, query map[string]string, payload any) ([]byte, error) {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-api-key", c.cfg.APIKey).
		SetHeader("Authorization", "Bearer "+token)
	for k, v := range query {
		if strings.TrimSpace(v) != "" {
			req.SetQueryParam(k, v)
		}
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", op, err)
		}
		req.SetBody(raw)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("paper %s: %w", op, err)
	}
	if err := checkResponse(op, resp); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func checkResponse(op string, resp *resty.Response) error {
	if resp.StatusCode() >= 200 && resp.StatusCode() < 300 {
		return nil
	}
	return &APIError{Op: op, Status: resp.StatusCode(), Body: text.Truncate(string(resp.Body()), errorExcerpt)}
}
