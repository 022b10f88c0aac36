package autoplay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/agro-hegemony/internal/engine"
	"github.com/talgya/agro-hegemony/internal/protocol"
)

const (
	maxRetries = 3
	retryWait  = 5 * time.Second
)

// APIError is an ERROR envelope returned by the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// IsStale reports whether err is a conditional dispatch against an old
// version.
func IsStale(err error) bool {
	var e *APIError
	return errors.As(err, &e) && e.Code == protocol.ErrStale
}

// decodeAPIError returns the ERROR envelope in body when it carries a code
// the protocol defines.
func decodeAPIError(status int, body []byte) (*APIError, bool) {
	var msg protocol.ErrorMsg
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, false
	}
	if msg.Type != protocol.TypeError || msg.Code == "" || !protocol.IsKnownCode(msg.Code) {
		return nil, false
	}
	return &APIError{Status: status, Code: msg.Code, Message: msg.Message}, true
}

// Actor submits actions and creates games through the API.
type Actor struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL.
func NewActor(baseURL string) *Actor {
	return &Actor{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Create starts a new game.
func (a *Actor) Create(ctx context.Context, ruleset, role string, seed int64) (*engine.State, error) {
	var msg protocol.StateMsg
	req := protocol.NewGameRequest{Ruleset: ruleset, Role: role, Seed: seed}
	if err := a.post(ctx, "/api/v1/games", req, &msg, http.StatusCreated); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	return msg.State, nil
}

// Act submits act conditioned on version. A refusal by the core is not an
// error: the result reports Changed=false.
func (a *Actor) Act(ctx context.Context, gameID string, act engine.Action, version uint64) (*protocol.Result, error) {
	raw, err := json.Marshal(act)
	if err != nil {
		return nil, fmt.Errorf("marshal action: %w", err)
	}
	var res protocol.Result
	req := protocol.ActionRequest{Action: raw, ExpectedVersion: version}
	if err := a.post(ctx, "/api/v1/games/"+gameID+"/actions", req, &res, http.StatusOK, http.StatusConflict); err != nil {
		return nil, fmt.Errorf("%s: %w", act.Kind, err)
	}
	if res.Type != protocol.TypeResult {
		return nil, fmt.Errorf("%s: unexpected response type %q", act.Kind, res.Type)
	}
	return &res, nil
}

func (a *Actor) post(ctx context.Context, path string, body, target any, accept ...int) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var status int
	var respBody []byte
	for attempt := 0; ; attempt++ {
		status, respBody, err = a.send(ctx, path, payload)
		if err != nil {
			return err
		}
		if status != http.StatusTooManyRequests || attempt == maxRetries {
			break
		}
		// Rate limited: wait out the window, then try again.
		select {
		case <-time.After(retryWait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if e, found := decodeAPIError(status, respBody); found {
		return fmt.Errorf("POST %s: %w", path, e)
	}
	ok := false
	for _, code := range accept {
		if status == code {
			ok = true
		}
	}
	if !ok {
		return fmt.Errorf("POST %s failed (%d): %s", path, status, string(respBody))
	}
	if err := json.Unmarshal(respBody, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (a *Actor) send(ctx context.Context, path string, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
