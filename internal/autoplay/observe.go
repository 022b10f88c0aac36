// Package autoplay is a heuristic player. It observes a game through the
// HTTP API, ranks candidate actions, and submits the best one that the
// core has not already refused at the current version.
package autoplay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/agro-hegemony/internal/catalog"
	"github.com/talgya/agro-hegemony/internal/engine"
	"github.com/talgya/agro-hegemony/internal/protocol"
)

// Catalog mirrors the parts of GET /api/v1/catalog the player reads.
type Catalog struct {
	Digest      string               `json:"digest"`
	Crops       []catalog.Crop       `json:"crops"`
	Regions     []catalog.Region     `json:"regions"`
	Productions []catalog.Production `json:"productions"`
	Campaigns   []catalog.Campaign   `json:"campaigns"`
}

// BestPrice is the top regional price of one crop.
type BestPrice struct {
	Region string  `json:"region"`
	Price  float64 `json:"price"`
}

// Prices mirrors GET /api/v1/games/{id}/prices.
type Prices struct {
	Turn   int                  `json:"turn"`
	Quotes []engine.Quote       `json:"quotes"`
	Best   map[string]BestPrice `json:"best"`
}

// Quote returns the price of crop in region, or 0.
func (p *Prices) Quote(crop, region string) float64 {
	for _, q := range p.Quotes {
		if q.Crop == crop && q.Region == region {
			return q.Price
		}
	}
	return 0
}

// Snapshot holds everything collected during one observation.
type Snapshot struct {
	State  *engine.State
	Prices Prices
}

// Observer fetches game state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Catalog fetches the reference data.
func (o *Observer) Catalog(ctx context.Context) (*Catalog, error) {
	var cat Catalog
	if err := o.fetchJSON(ctx, "/api/v1/catalog", &cat); err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	return &cat, nil
}

// Observe fetches the state and market prices of a game.
func (o *Observer) Observe(ctx context.Context, gameID string) (*Snapshot, error) {
	var msg protocol.StateMsg
	if err := o.fetchJSON(ctx, "/api/v1/games/"+gameID, &msg); err != nil {
		return nil, fmt.Errorf("fetch state: %w", err)
	}
	if msg.State == nil {
		return nil, fmt.Errorf("fetch state: empty state for %s", gameID)
	}
	snap := &Snapshot{State: msg.State}
	if err := o.fetchJSON(ctx, "/api/v1/games/"+gameID+"/prices", &snap.Prices); err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	return snap, nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
