package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/valyala/fastrand"
)

// ErrNotConfigured marks a missing backend configuration; callers surface it
// as a setup prompt instead of a failure.
var ErrNotConfigured = fmt.Errorf("assistant backend is not configured")

type Config struct {
	APIURL  string        `envconfig:"LUCKY6_ASSIST_URL"`
	APIKey  string        `envconfig:"LUCKY6_ASSIST_KEY"`
	Timeout time.Duration `envconfig:"LUCKY6_ASSIST_TIMEOUT" default:"30s"`
}

func New(config Config) *Client {
	return &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// Client talks to the number-recommendation backend. The game treats it as an
// opaque suggestion source; nothing in the draw logic depends on it.
type Client struct {
	config Config
	client *http.Client
}

type request struct {
	Message     string `json:"message"`
	ContextData string `json:"contextData"`
}

type response struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

func (c *Client) Configured() bool {
	return c.config.APIURL != ""
}

// Recommend forwards a user message plus game context and returns the
// backend's reply text.
func (c *Client) Recommend(ctx context.Context, message, contextData string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(request{Message: message, ContextData: contextData})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("assistant request: %w", err)
	}
	defer resp.Body.Close()

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if out.Error != "" {
			return "", fmt.Errorf("assistant backend: %s", out.Error)
		}
		return "", fmt.Errorf("assistant backend status %d", resp.StatusCode)
	}

	return out.Response, nil
}

// QuickPick suggests six unique numbers from [1, domainMax]. A convenience
// path only, so the fast non-crypto generator is fine here.
func QuickPick(domainMax int) []int {
	picked := map[int]bool{}
	numbers := make([]int, 0, 6)
	for len(numbers) < 6 {
		n := int(fastrand.Uint32n(uint32(domainMax))) + 1
		if picked[n] {
			continue
		}
		picked[n] = true
		numbers = append(numbers, n)
	}
	return numbers
}
