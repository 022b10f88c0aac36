// Package protocol defines the JSON messages exchanged with clients: action
// requests, dispatch results and pushed state updates.
package protocol

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/talgya/agro-hegemony/internal/engine"
)

const Version = "1.0"

// Message types.
const (
	TypeState  = "STATE"
	TypeResult = "RESULT"
	TypeError  = "ERROR"
)

// ErrInvalidAction reports an action that does not match the schema.
var ErrInvalidAction = errors.New("invalid action")

//go:embed schemas/action.schema.json
var actionSchemaJSON string

var (
	schemaOnce   sync.Once
	actionSchema *jsonschema.Schema
	schemaErr    error
)

func schema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		actionSchema, schemaErr = jsonschema.CompileString("action.schema.json", actionSchemaJSON)
	})
	return actionSchema, schemaErr
}

// DecodeAction validates raw against the action schema and decodes it.
func DecodeAction(raw []byte) (engine.Action, error) {
	s, err := schema()
	if err != nil {
		return engine.Action{}, fmt.Errorf("compile action schema: %w", err)
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return engine.Action{}, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	if err := s.Validate(doc); err != nil {
		return engine.Action{}, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}

	var act engine.Action
	if err := json.Unmarshal(raw, &act); err != nil {
		return engine.Action{}, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	return act, nil
}

// ActionRequest is the body of an action submission. ExpectedVersion, when
// set, makes the dispatch conditional on the current state version.
type ActionRequest struct {
	Action          json.RawMessage `json:"action"`
	ExpectedVersion uint64          `json:"expected_version,omitempty"`
}

// NewGameRequest creates a game.
type NewGameRequest struct {
	Ruleset string `json:"ruleset"`
	Role    string `json:"role"`
	Seed    int64  `json:"seed,omitempty"`
}

// Result reports what a dispatch did. Changed is false when the action was
// refused by the core and the state is the one the client already had.
type Result struct {
	Type    string          `json:"type"`
	GameID  string          `json:"game_id"`
	Version uint64          `json:"version"`
	Changed bool            `json:"changed"`
	Outcome *engine.Outcome `json:"outcome,omitempty"`
	State   *engine.State   `json:"state"`
}

// StateMsg is pushed to stream subscribers after every change.
type StateMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	GameID          string            `json:"game_id"`
	Version         uint64            `json:"version"`
	Action          engine.ActionKind `json:"action,omitempty"`
	State           *engine.State     `json:"state"`
}

// NewStateMsg wraps st for streaming.
func NewStateMsg(st *engine.State, kind engine.ActionKind) StateMsg {
	return StateMsg{
		Type:            TypeState,
		ProtocolVersion: Version,
		GameID:          st.GameID,
		Version:         st.Version,
		Action:          kind,
		State:           st,
	}
}

// ErrorMsg is the body of every error response.
type ErrorMsg struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewError(code, message string) ErrorMsg {
	return ErrorMsg{Type: TypeError, Code: code, Message: message}
}
