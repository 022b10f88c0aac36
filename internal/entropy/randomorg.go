package entropy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const randomOrgEndpoint = "https://api.random.org/json-rpc/4/invoke"

// RandomOrg draws true random fractions from random.org through a local
// pool, falling back to crypto/rand whenever the pool cannot be refilled.
type RandomOrg struct {
	apiKey   string
	endpoint string
	client   *http.Client

	mu   sync.Mutex
	pool []float64
}

// NewRandomOrg creates a random.org source. Returns nil if apiKey is empty;
// a nil *RandomOrg is still a valid Source.
func NewRandomOrg(apiKey string) *RandomOrg {
	if apiKey == "" {
		return nil
	}
	return &RandomOrg{
		apiKey:   apiKey,
		endpoint: randomOrgEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Float returns a pooled fraction in [0, 1).
func (c *RandomOrg) Float() float64 {
	if c == nil {
		return cryptoRandFloat()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pool) < 10 {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		data, err := c.fetch(ctx, 100)
		cancel()
		if err != nil {
			slog.Debug("random.org refill failed", "error", err)
		} else {
			c.pool = append(c.pool, data...)
		}
	}

	if len(c.pool) == 0 {
		return cryptoRandFloat()
	}

	val := c.pool[0]
	c.pool = c.pool[1:]
	return clampUnit(val)
}

// Enabled returns true if the source has a valid API key.
func (c *RandomOrg) Enabled() bool {
	return c != nil && c.apiKey != ""
}

func (c *RandomOrg) fetch(ctx context.Context, n int) ([]float64, error) {
	req := map[string]any{
		"jsonrpc": "2.0",
		"method":  "generateDecimalFractions",
		"params": map[string]any{
			"apiKey":        c.apiKey,
			"n":             n,
			"decimalPlaces": 6,
		},
		"id": 1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("POST random.org: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var result struct {
		Result struct {
			Random struct {
				Data []float64 `json:"data"`
			} `json:"random"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("random.org: %s", result.Error.Message)
	}
	return result.Result.Random.Data, nil
}
