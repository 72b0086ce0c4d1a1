package client

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

const (
	submitPath = "/api/submit"
	healthPath = "/api/health"
	configPath = "/api/config"
)

// BookingClient talks to a running booking form server.
type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseUrl string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *BookingClient) Submit(ctx context.Context, body any) (*Response, error) {
	return c.httpClient.POST(ctx, submitPath, body)
}

func (c *BookingClient) SubmitForm(ctx context.Context, form url.Values) (*Response, error) {
	return c.httpClient.POSTForm(ctx, submitPath, form)
}

func (c *BookingClient) SubmitRaw(ctx context.Context, rawBody []byte) (*Response, error) {
	return c.httpClient.POSTRaw(ctx, submitPath, rawBody)
}

func (c *BookingClient) Health(ctx context.Context) (*Response, error) {
	return c.httpClient.GET(ctx, healthPath)
}

// WaitForHealthy polls the liveness endpoint until it answers 200.
func (c *BookingClient) WaitForHealthy(ctx context.Context, maxWait time.Duration) error {
	return c.httpClient.WaitForHealthy(ctx, maxWait)
}

// SiteKey fetches the public reCAPTCHA site key the server hands to the form.
func (c *BookingClient) SiteKey(ctx context.Context) (string, error) {
	resp, err := c.httpClient.GET(ctx, configPath)
	if err != nil {
		return "", err
	}
	var cfg struct {
		RecaptchaSiteKey string `json:"recaptchaSiteKey"`
	}
	if err := resp.DecodeJSON(&cfg); err != nil {
		return "", fmt.Errorf("could not decode config response:\n%s\n%w", resp.ToString(), err)
	}
	return cfg.RecaptchaSiteKey, nil
}

// SubmitResult is the body of a /api/submit response.
type SubmitResult struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func (c *BookingClient) DecodeSubmitResult(resp *Response) (*SubmitResult, error) {
	var result SubmitResult
	if err := resp.DecodeJSON(&result); err != nil {
		return nil, fmt.Errorf("could not decode submit response:\n%s\n%w", resp.ToString(), err)
	}
	return &result, nil
}
