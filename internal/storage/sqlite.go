// Package storage provides SQLite-based persistence for match results,
// replay journals and player scores.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-brix/internal/multiplayer"
)

// ErrNotFound is returned when a match or replay does not exist.
var ErrNotFound = errors.New("storage: not found")

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// MatchRecord is one finished match.
type MatchRecord struct {
	ID           int64
	MatchID      string
	Mode         string // "local", "online"
	Player1      string
	Player2      string
	Score1       int
	Score2       int
	Winner       int    // seat index, -1 when nobody won
	EndReason    string // "completed", "disconnect", "aborted"
	Ticks        int
	Seed         uint32
	DurationSecs int
	HasReplay    bool
	CreatedAt    time.Time
}

// WinnerName returns the name of the winning player, or empty.
func (r MatchRecord) WinnerName() string {
	switch r.Winner {
	case 0:
		return r.Player1
	case 1:
		return r.Player2
	default:
		return ""
	}
}

// ScoreEntry is the score of one player in one match.
type ScoreEntry struct {
	ID        int64
	Player    string
	Score     int
	MatchID   string
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			mode TEXT NOT NULL,
			player1 TEXT NOT NULL,
			player2 TEXT NOT NULL,
			score1 INTEGER NOT NULL DEFAULT 0,
			score2 INTEGER NOT NULL DEFAULT 0,
			winner INTEGER NOT NULL DEFAULT -1,
			end_reason TEXT NOT NULL,
			ticks INTEGER NOT NULL DEFAULT 0,
			seed INTEGER NOT NULL DEFAULT 0,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matches_player1 ON matches(player1);
		CREATE INDEX IF NOT EXISTS idx_matches_player2 ON matches(player2);

		CREATE TABLE IF NOT EXISTS replays (
			match_id TEXT PRIMARY KEY REFERENCES matches(match_id),
			journal BLOB NOT NULL
		);

		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player TEXT NOT NULL,
			score INTEGER NOT NULL,
			match_id TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(score DESC);
		CREATE INDEX IF NOT EXISTS idx_scores_player ON scores(player);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveMatch records a match, its compressed journal (if any) and one score
// row per player in a single transaction. Returns the row ID of the match.
func (s *Store) SaveMatch(rec MatchRecord, journal []byte) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.Exec(
		`INSERT INTO matches
		 (match_id, mode, player1, player2, score1, score2, winner, end_reason, ticks, seed, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.MatchID, rec.Mode, rec.Player1, rec.Player2, rec.Score1, rec.Score2,
		rec.Winner, rec.EndReason, rec.Ticks, int64(rec.Seed), rec.DurationSecs,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save match: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	if len(journal) > 0 {
		if _, err := tx.Exec("INSERT INTO replays (match_id, journal) VALUES (?, ?)", rec.MatchID, journal); err != nil {
			return 0, fmt.Errorf("storage: cannot save replay: %w", err)
		}
	}

	for _, p := range []struct {
		name  string
		score int
	}{{rec.Player1, rec.Score1}, {rec.Player2, rec.Score2}} {
		if p.name == "" {
			continue
		}
		if _, err := tx.Exec("INSERT INTO scores (player, score, match_id) VALUES (?, ?, ?)", p.name, p.score, rec.MatchID); err != nil {
			return 0, fmt.Errorf("storage: cannot save score: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit match: %w", err)
	}
	return id, nil
}

const matchColumns = `m.id, m.match_id, m.mode, m.player1, m.player2, m.score1, m.score2, m.winner,
	m.end_reason, m.ticks, m.seed, m.duration_secs, r.match_id IS NOT NULL, m.created_at`

const matchFrom = ` FROM matches m LEFT JOIN replays r ON r.match_id = m.match_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(row scanner) (MatchRecord, error) {
	var rec MatchRecord
	var seed int64
	var createdAt any
	err := row.Scan(
		&rec.ID, &rec.MatchID, &rec.Mode, &rec.Player1, &rec.Player2, &rec.Score1, &rec.Score2,
		&rec.Winner, &rec.EndReason, &rec.Ticks, &seed, &rec.DurationSecs, &rec.HasReplay, &createdAt,
	)
	rec.Seed = uint32(seed)
	rec.CreatedAt = parseTime(createdAt)
	return rec, err
}

// parseTime handles both time.Time and the textual DATETIME form.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// MatchByID retrieves a match by its match ID.
func (s *Store) MatchByID(matchID string) (*MatchRecord, error) {
	rec, err := scanMatch(s.db.QueryRow("SELECT "+matchColumns+matchFrom+" WHERE m.match_id = ?", matchID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match: %w", err)
	}
	return &rec, nil
}

// ErrAmbiguous is returned when a match ID prefix matches several matches.
var ErrAmbiguous = errors.New("storage: ambiguous match id")

// ResolveMatchID expands a unique prefix of a match ID to the full ID.
func (s *Store) ResolveMatchID(prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("%w: empty match id", ErrNotFound)
	}
	rows, err := s.db.Query(
		"SELECT match_id FROM matches WHERE substr(match_id, 1, ?) = ? LIMIT 2",
		len(prefix), prefix,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot query match ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("storage: cannot scan row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("storage: row iteration error: %w", err)
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: match %s", ErrNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguous, prefix)
	}
}

// Journal returns the compressed journal stored for a match.
func (s *Store) Journal(matchID string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRow("SELECT journal FROM replays WHERE match_id = ?", matchID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: replay of %s", ErrNotFound, matchID)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query replay: %w", err)
	}
	return blob, nil
}

// RecentMatches retrieves the most recent matches.
func (s *Store) RecentMatches(limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryMatches(
		"SELECT "+matchColumns+matchFrom+" ORDER BY m.created_at DESC, m.id DESC LIMIT ?",
		limit,
	)
}

// PlayerMatches retrieves the match history of one player.
func (s *Store) PlayerMatches(player string, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryMatches(
		"SELECT "+matchColumns+matchFrom+
			" WHERE m.player1 = ? OR m.player2 = ? ORDER BY m.created_at DESC, m.id DESC LIMIT ?",
		player, player, limit,
	)
}

func (s *Store) queryMatches(query string, args ...any) ([]MatchRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		rec, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// TopScores retrieves the best N scores over all players.
func (s *Store) TopScores(limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, player, score, match_id, created_at
		 FROM scores
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.Player, &e.Score, &e.MatchID, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// HighScore returns the best score of a player, 0 if none.
func (s *Store) HighScore(player string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow("SELECT MAX(score) FROM scores WHERE player = ?", player).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}
	if !score.Valid {
		return 0, nil
	}
	return int(score.Int64), nil
}

// SaveMatchResult implements multiplayer.MatchResultSaver.
func (s *Store) SaveMatchResult(data multiplayer.MatchResultData) error {
	_, err := s.SaveMatch(MatchRecord{
		MatchID:      data.MatchID,
		Mode:         data.Mode,
		Player1:      data.Player1,
		Player2:      data.Player2,
		Score1:       data.Score1,
		Score2:       data.Score2,
		Winner:       data.Winner,
		EndReason:    data.EndReason,
		Ticks:        data.Ticks,
		Seed:         data.Seed,
		DurationSecs: data.DurationSecs,
	}, data.Journal)
	return err
}

var _ multiplayer.MatchResultSaver = (*Store)(nil)
