package dadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"
)

const (
	DefaultEndpoint = "https://suggestions.dadata.ru/suggestions/api/4_1/rs/suggest/party_by"

	maxErrorBody = 500
)

var (
	ErrMissingAPIKey     = errors.New("missing DADATA_API_KEY")
	ErrTransport         = errors.New("suggestion request failed")
	ErrUnexpectedStatus  = errors.New("unexpected response status")
	ErrMalformedResponse = errors.New("malformed suggestion response")
)

// Config holds what the client needs for its whole lifetime. It is built once
// at startup and never re-read from the environment.
type Config struct {
	APIKey   string
	Endpoint string
}

func NewConfig(apiKey, endpoint string) (Config, error) {
	if apiKey == "" {
		return Config{}, ErrMissingAPIKey
	}

	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	return Config{
		APIKey:   apiKey,
		Endpoint: endpoint,
	}, nil
}

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("suggestion endpoint returned status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

type Client struct {
	config Config
	client *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.client = hc
	}
}

func NewClient(cfg Config, opts ...ClientOption) *Client {
	c := &Client{
		config: cfg,
		// no client timeout: a request lives as long as its context
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 2,
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FindParties sends a single POST with the given payload. There is no retry:
// every failure is returned to the caller as is.
func (c *Client) FindParties(ctx context.Context, payload PartyRequest) (*SuggestionsResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Token "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       truncate(respBody, maxErrorBody),
		}
	}

	// Numbers stay json.Number so long registration numbers keep every digit.
	dec := json.NewDecoder(bytes.NewReader(respBody))
	dec.UseNumber()

	var out SuggestionsResponse
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return &out, nil
}

// truncate cuts b to at most n bytes without splitting a UTF-8 sequence.
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}

	for n > 0 && !utf8.RuneStart(b[n]) {
		n--
	}

	return string(b[:n])
}
