// Package persistence stores game snapshots and turn history in SQL.
// SQLite is the default dialect; Postgres is used for shared deployments.
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/agro-hegemony/internal/engine"
	"github.com/talgya/agro-hegemony/internal/weather"
)

// Dialect names a supported SQL backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Options selects the backend.
type Options struct {
	Dialect     Dialect
	SQLitePath  string
	PostgresDSN string
}

// DB wraps a SQL connection for game state persistence.
type DB struct {
	conn    *sqlx.DB
	dialect Dialect
}

// Open opens or creates the database described by opts and migrates it.
func Open(ctx context.Context, opts Options) (*DB, error) {
	if opts.Dialect == "" {
		opts.Dialect = DialectSQLite
	}

	var driver, dsn string
	switch opts.Dialect {
	case DialectSQLite:
		path := strings.TrimSpace(opts.SQLitePath)
		if path == "" {
			path = filepath.Join("data", "agrosim.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
		driver, dsn = "sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000"
	case DialectPostgres:
		if strings.TrimSpace(opts.PostgresDSN) == "" {
			return nil, errors.New("postgres dialect requires a DSN")
		}
		driver, dsn = "pgx", opts.PostgresDSN
	default:
		return nil, fmt.Errorf("unsupported dialect %q", opts.Dialect)
	}

	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", opts.Dialect, err)
	}
	if opts.Dialect == DialectSQLite {
		conn.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s db: %w", opts.Dialect, err)
	}

	db := &DB{conn: conn, dialect: opts.Dialect}
	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	slog.Info("database ready", "dialect", opts.Dialect)
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Dialect reports the backend in use.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		ruleset TEXT NOT NULL,
		role TEXT NOT NULL,
		version BIGINT NOT NULL,
		turn INTEGER NOT NULL,
		completed INTEGER NOT NULL,
		snapshot TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS game_history (
		game_id TEXT NOT NULL,
		turn INTEGER NOT NULL,
		year INTEGER NOT NULL,
		week INTEGER NOT NULL,
		season TEXT NOT NULL,
		owned_cells INTEGER NOT NULL,
		ledger_json TEXT NOT NULL,
		PRIMARY KEY (game_id, turn)
	)`,
	`CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_games_updated ON games(updated_at)`,
}

func (db *DB) migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveGame upserts the snapshot of st and appends any history rows not yet
// stored, in one transaction.
func (db *DB) SaveGame(ctx context.Context, st *engine.State) error {
	snap, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", st.GameID, err)
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	completed := 0
	if st.GameCompleted {
		completed = 1
	}
	_, err = tx.ExecContext(ctx, db.conn.Rebind(`INSERT INTO games
		(id, ruleset, role, version, turn, completed, snapshot, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			ruleset = excluded.ruleset,
			role = excluded.role,
			version = excluded.version,
			turn = excluded.turn,
			completed = excluded.completed,
			snapshot = excluded.snapshot,
			updated_at = excluded.updated_at`),
		st.GameID, string(st.Ruleset), st.Role, int64(st.Version), st.Time.Turn,
		completed, string(snap), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert game %s: %w", st.GameID, err)
	}

	// Rows past the current turn belong to an abandoned timeline (a reset
	// or a restored snapshot).
	if _, err := tx.ExecContext(ctx, db.conn.Rebind("DELETE FROM game_history WHERE game_id = ? AND turn > ?"),
		st.GameID, st.Time.Turn); err != nil {
		return fmt.Errorf("trim history %s: %w", st.GameID, err)
	}
	for _, h := range st.History {
		ledger, _ := json.Marshal(h.Ledger)
		_, err := tx.ExecContext(ctx, db.conn.Rebind(`INSERT INTO game_history
			(game_id, turn, year, week, season, owned_cells, ledger_json)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (game_id, turn) DO UPDATE SET
				year = excluded.year,
				week = excluded.week,
				season = excluded.season,
				owned_cells = excluded.owned_cells,
				ledger_json = excluded.ledger_json`),
			st.GameID, h.Turn, h.Year, h.Week, string(h.Season), h.OwnedCells, string(ledger),
		)
		if err != nil {
			return fmt.Errorf("insert history %s/%d: %w", st.GameID, h.Turn, err)
		}
	}

	return tx.Commit()
}

// LoadGame returns the stored snapshot for id. It returns a nil state and
// nil error when the game does not exist.
func (db *DB) LoadGame(ctx context.Context, id string) (*engine.State, error) {
	var snap string
	err := db.conn.GetContext(ctx, &snap, db.conn.Rebind("SELECT snapshot FROM games WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", id, err)
	}
	var st engine.State
	if err := json.Unmarshal([]byte(snap), &st); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", id, err)
	}
	return &st, nil
}

// GameSummary is one row of the games table.
type GameSummary struct {
	ID        string `db:"id" json:"id"`
	Ruleset   string `db:"ruleset" json:"ruleset"`
	Role      string `db:"role" json:"role"`
	Version   int64  `db:"version" json:"version"`
	Turn      int    `db:"turn" json:"turn"`
	Completed bool   `db:"completed" json:"completed"`
	UpdatedAt string `db:"updated_at" json:"updated_at"`
}

// ListGames returns the most recently updated games.
func (db *DB) ListGames(ctx context.Context, limit int) ([]GameSummary, error) {
	var out []GameSummary
	err := db.conn.SelectContext(ctx, &out, db.conn.Rebind(
		`SELECT id, ruleset, role, version, turn, completed <> 0 AS completed, updated_at
		FROM games ORDER BY updated_at DESC LIMIT ?`), limit)
	return out, err
}

// History returns up to limit turn records of a game, oldest first.
func (db *DB) History(ctx context.Context, gameID string, limit int) ([]engine.TurnRecord, error) {
	type row struct {
		Turn       int    `db:"turn"`
		Year       int    `db:"year"`
		Week       int    `db:"week"`
		Season     string `db:"season"`
		OwnedCells int    `db:"owned_cells"`
		LedgerJSON string `db:"ledger_json"`
	}
	var rows []row
	err := db.conn.SelectContext(ctx, &rows, db.conn.Rebind(
		`SELECT turn, year, week, season, owned_cells, ledger_json FROM (
			SELECT * FROM game_history WHERE game_id = ? ORDER BY turn DESC LIMIT ?
		) recent ORDER BY turn ASC`), gameID, limit)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", gameID, err)
	}
	out := make([]engine.TurnRecord, 0, len(rows))
	for _, r := range rows {
		rec := engine.TurnRecord{
			Turn:       r.Turn,
			Year:       r.Year,
			Week:       r.Week,
			Season:     weather.Season(r.Season),
			OwnedCells: r.OwnedCells,
		}
		if err := json.Unmarshal([]byte(r.LedgerJSON), &rec.Ledger); err != nil {
			return nil, fmt.Errorf("decode ledger %s/%d: %w", gameID, r.Turn, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// SaveMeta stores a key-value pair in server metadata.
func (db *DB) SaveMeta(ctx context.Context, key, value string) error {
	_, err := db.conn.ExecContext(ctx, db.conn.Rebind(
		`INSERT INTO world_meta (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`),
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := db.conn.GetContext(ctx, &value, db.conn.Rebind("SELECT value FROM world_meta WHERE key = ?"), key)
	return value, err
}
