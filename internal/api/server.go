// Package api serves games over HTTP.
// Game endpoints are public; each game is addressed by its id.
// Snapshot export and import require the admin bearer token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/talgya/agro-hegemony/internal/catalog"
	"github.com/talgya/agro-hegemony/internal/engine"
	"github.com/talgya/agro-hegemony/internal/persistence"
	"github.com/talgya/agro-hegemony/internal/persistence/snapshot"
	"github.com/talgya/agro-hegemony/internal/protocol"
	"github.com/talgya/agro-hegemony/internal/session"
)

const (
	maxStreamConns = 64
	maxBodyBytes   = 64 << 10
	snapshotExt    = ".agrosnap.zst"
)

// Server exposes a session manager over HTTP.
type Server struct {
	Sessions    *session.Manager
	DB          *persistence.DB // optional; enables listing and turn history
	Addr        string
	AdminKey    string // Bearer token for admin endpoints. Empty = admin disabled.
	SnapshotDir string

	// ActionRate caps action submissions per client IP per minute.
	ActionRate int

	started    time.Time
	streamConn int32
	httpServer *http.Server
}

// Handler builds the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	if s.started.IsZero() {
		s.started = time.Now()
	}
	rate := s.ActionRate
	if rate <= 0 {
		rate = 120
	}
	actionLimiter := NewRateLimiter(rate, time.Minute)
	createLimiter := NewRateLimiter(30, time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/catalog", s.handleCatalog)

	mux.HandleFunc("GET /api/v1/games", s.handleListGames)
	mux.HandleFunc("POST /api/v1/games", RateLimitMiddleware(createLimiter, s.handleCreateGame))
	mux.HandleFunc("GET /api/v1/games/{id}", s.handleGetGame)
	mux.HandleFunc("POST /api/v1/games/{id}/actions", RateLimitMiddleware(actionLimiter, s.handleAction))
	mux.HandleFunc("GET /api/v1/games/{id}/prices", s.handlePrices)
	mux.HandleFunc("GET /api/v1/games/{id}/history", s.handleHistory)
	mux.HandleFunc("GET /api/v1/games/{id}/stream", s.handleStream)

	// Admin endpoints.
	mux.HandleFunc("POST /api/v1/games/{id}/snapshot", s.adminOnly(s.handleSnapshot))
	mux.HandleFunc("POST /api/v1/snapshots/import", s.adminOnly(s.handleImport))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	s.httpServer = &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", s.Addr, "admin_auth", s.AdminKey != "", "history", s.DB != nil)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			writeError(w, http.StatusForbidden, protocol.ErrBadRequest, "admin endpoints disabled (no AGROSIM_ADMIN_KEY set)")
			return
		}
		if !s.checkBearerToken(r) {
			writeError(w, http.StatusUnauthorized, protocol.ErrBadRequest, "unauthorized")
			return
		}
		next(w, r)
	}
}

func (s *Server) catalog() *catalog.Catalog {
	return s.Sessions.Core().Catalog
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cat := s.catalog()
	status := map[string]any{
		"name":             "agro-hegemony",
		"protocol_version": protocol.Version,
		"uptime_seconds":   int(time.Since(s.started).Seconds()),
		"live_games":       len(s.Sessions.Games()),
		"stream_clients":   atomic.LoadInt32(&s.streamConn),
		"catalog_digest":   cat.Digest,
		"persistent":       s.DB != nil,
	}
	if s.DB != nil {
		status["dialect"] = s.DB.Dialect()
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	type roleEntry struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	type rulesetEntry struct {
		ID        string             `json:"id"`
		Name      string             `json:"name"`
		Resources []catalog.Resource `json:"resources"`
		Min       int                `json:"min"`
		Max       int                `json:"max"`
		StartYear int                `json:"start_year"`
		EndYear   int                `json:"end_year,omitempty"`
	}

	cat := s.catalog()
	roles := make([]roleEntry, 0, len(cat.RoleOrder))
	for _, id := range cat.RoleOrder {
		r := cat.Roles[id]
		roles = append(roles, roleEntry{ID: r.ID, Name: r.Name, Description: r.Description})
	}
	rulesets := make([]rulesetEntry, 0, len(cat.Rulesets))
	for _, rs := range cat.Rulesets {
		rulesets = append(rulesets, rulesetEntry{
			ID:        rs.ID,
			Name:      rs.Name,
			Resources: rs.Resources,
			Min:       rs.Min,
			Max:       rs.Max,
			StartYear: rs.Clock.StartYear,
			EndYear:   rs.Clock.EndYear,
		})
	}
	sort.Slice(rulesets, func(i, j int) bool { return rulesets[i].ID < rulesets[j].ID })

	productions := make([]catalog.Production, 0, len(cat.Productions))
	for _, p := range cat.Productions {
		productions = append(productions, p)
	}
	sort.Slice(productions, func(i, j int) bool { return productions[i].ID < productions[j].ID })
	campaigns := make([]catalog.Campaign, 0, len(cat.Campaigns))
	for _, c := range cat.Campaigns {
		campaigns = append(campaigns, c)
	}
	sort.Slice(campaigns, func(i, j int) bool { return campaigns[i].ID < campaigns[j].ID })

	writeJSON(w, http.StatusOK, map[string]any{
		"digest":      cat.Digest,
		"rulesets":    rulesets,
		"roles":       roles,
		"crops":       cat.Crops,
		"regions":     cat.Regions,
		"productions": productions,
		"campaigns":   campaigns,
		"actions":     engine.ActionKinds,
	})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		ids := s.Sessions.Games()
		sort.Strings(ids)
		writeJSON(w, http.StatusOK, map[string]any{"games": ids})
		return
	}
	limit := queryInt(r, "limit", 50, 500)
	games, err := s.DB.ListGames(r.Context(), limit)
	if err != nil {
		slog.Error("list games failed", "error", err)
		writeError(w, http.StatusInternalServerError, protocol.ErrInternal, "list games failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req protocol.NewGameRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, protocol.ErrBadRequest, "invalid JSON body")
		return
	}
	cat := s.catalog()
	if _, ok := cat.Rulesets[req.Ruleset]; req.Ruleset != "" && !ok {
		writeError(w, http.StatusBadRequest, protocol.ErrBadRequest, fmt.Sprintf("unknown ruleset %q", req.Ruleset))
		return
	}
	if _, ok := cat.Roles[req.Role]; !ok {
		writeError(w, http.StatusBadRequest, protocol.ErrBadRequest, fmt.Sprintf("unknown role %q", req.Role))
		return
	}
	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	st, err := s.Sessions.Create(r.Context(), engine.GameOptions{
		Ruleset: engine.Ruleset(req.Ruleset),
		Role:    req.Role,
		Seed:    seed,
	})
	if err != nil {
		slog.Error("create game failed", "error", err)
		writeError(w, http.StatusInternalServerError, protocol.ErrInternal, "create game failed")
		return
	}
	writeJSON(w, http.StatusCreated, protocol.NewStateMsg(st, ""))
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	st, err := s.Sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, protocol.NewStateMsg(st, ""))
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req protocol.ActionRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, protocol.ErrBadRequest, "invalid JSON body")
		return
	}
	status, body := s.dispatch(r.Context(), r.PathValue("id"), req)
	writeJSON(w, status, body)
}

// dispatch runs one action request and returns the HTTP status and body.
// A refused action answers 409 with changed=false and the unchanged state.
func (s *Server) dispatch(ctx context.Context, id string, req protocol.ActionRequest) (int, any) {
	act, err := protocol.DecodeAction(req.Action)
	if err != nil {
		return http.StatusBadRequest, protocol.NewError(protocol.ErrBadRequest, err.Error())
	}

	res, err := s.Sessions.Dispatch(ctx, id, act, req.ExpectedVersion)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, protocol.NewError(protocol.ErrNotFound, err.Error())
	case errors.Is(err, session.ErrStale):
		return http.StatusConflict, protocol.NewError(protocol.ErrStale, err.Error())
	case err != nil:
		slog.Error("dispatch failed", "game", id, "action", act.Kind, "error", err)
		return http.StatusInternalServerError, protocol.NewError(protocol.ErrInternal, "dispatch failed")
	}

	out := protocol.Result{
		Type:    protocol.TypeResult,
		GameID:  res.State.GameID,
		Version: res.State.Version,
		Changed: res.Changed,
		Outcome: res.State.Outcome,
		State:   res.State,
	}
	if !res.Changed {
		return http.StatusConflict, out
	}
	return http.StatusOK, out
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	st, err := s.Sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	core := s.Sessions.Core()
	writeJSON(w, http.StatusOK, map[string]any{
		"game_id": st.GameID,
		"turn":    st.Time.Turn,
		"quotes":  core.Quotes(st),
		"best":    core.BestMarkets(st),
		"news":    st.Market.News,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st, err := s.Sessions.Get(r.Context(), id)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	limit := queryInt(r, "limit", 64, 1000)
	if s.DB == nil {
		records := st.History
		if len(records) > limit {
			records = records[len(records)-limit:]
		}
		writeJSON(w, http.StatusOK, map[string]any{"game_id": id, "history": records})
		return
	}
	records, err := s.DB.History(r.Context(), id, limit)
	if err != nil {
		slog.Error("history query failed", "game", id, "error", err)
		writeError(w, http.StatusInternalServerError, protocol.ErrInternal, "history query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"game_id": id, "history": records})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.SnapshotDir == "" {
		writeError(w, http.StatusServiceUnavailable, protocol.ErrInternal, "snapshot directory not configured")
		return
	}
	st, err := s.Sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeSessionError(w, err)
		return
	}

	name := fmt.Sprintf("%s-v%d%s", st.GameID, st.Version, snapshotExt)
	size, err := snapshot.Write(filepath.Join(s.SnapshotDir, name), st, s.catalog().Digest)
	if err != nil {
		slog.Error("snapshot export failed", "game", st.GameID, "error", err)
		writeError(w, http.StatusInternalServerError, protocol.ErrInternal, "snapshot failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"game_id": st.GameID,
		"version": st.Version,
		"file":    name,
		"bytes":   size,
	})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		File string `json:"file"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil || req.File == "" {
		writeError(w, http.StatusBadRequest, protocol.ErrBadRequest, "expected {\"file\": name}")
		return
	}
	if s.SnapshotDir == "" {
		writeError(w, http.StatusServiceUnavailable, protocol.ErrInternal, "snapshot directory not configured")
		return
	}
	// Only bare file names inside the snapshot directory are accepted.
	if filepath.Base(req.File) != req.File || !strings.HasSuffix(req.File, snapshotExt) {
		writeError(w, http.StatusBadRequest, protocol.ErrBadRequest, "invalid snapshot file name")
		return
	}

	hdr, st, err := snapshot.Read(filepath.Join(s.SnapshotDir, req.File))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, protocol.ErrNotFound, "snapshot not found")
			return
		}
		writeError(w, http.StatusBadRequest, protocol.ErrBadRequest, err.Error())
		return
	}
	if hdr.CatalogDigest != "" && hdr.CatalogDigest != s.catalog().Digest {
		slog.Warn("snapshot built against a different catalog", "file", req.File, "digest", hdr.CatalogDigest)
	}
	if err := s.Sessions.Restore(r.Context(), st); err != nil {
		writeError(w, http.StatusBadRequest, protocol.ErrBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, protocol.NewStateMsg(st, engine.ActReset))
}

func writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, protocol.ErrNotFound, err.Error())
		return
	}
	slog.Error("session error", "error", err)
	writeError(w, http.StatusInternalServerError, protocol.ErrInternal, "internal error")
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, protocol.NewError(code, message))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}

func queryInt(r *http.Request, key string, def, max int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}
