// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists scored ideas, notification markers, and scoring
// failure counts in a SQLite database under the data directory.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/idea-engine/pkg/types"
)

const dbFile = "ideas.db"

// Store manages the idea database.
type Store struct {
	db      *sql.DB
	dataDir string
}

// NewStore opens or creates the SQLite database at dataDir/ideas.db and
// creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dataDir: dataDir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ideas (
			source TEXT NOT NULL,
			url TEXT NOT NULL,
			source_id TEXT,
			title TEXT NOT NULL,
			body TEXT,
			origin_score INTEGER,
			fingerprint TEXT,
			sources TEXT,
			member_count INTEGER,
			score REAL,
			tags TEXT,
			summary TEXT,
			difficulty TEXT,
			market_potential TEXT,
			insight TEXT,
			model_raw TEXT,
			first_seen TEXT,
			scored_at TEXT,
			PRIMARY KEY (source, url)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ideas_score ON ideas(score)`,
		`CREATE TABLE IF NOT EXISTS notified (
			source TEXT NOT NULL,
			url TEXT NOT NULL,
			notified_at TEXT NOT NULL,
			PRIMARY KEY (source, url)
		)`,
		`CREATE TABLE IF NOT EXISTS scoring_failures (
			source TEXT NOT NULL,
			url TEXT NOT NULL,
			attempts INTEGER NOT NULL,
			last_error TEXT,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (source, url)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// UpsertScored writes one scored idea, replacing any previous record for the
// same (source, url) key, and clears its scoring failure marker.
func (s *Store) UpsertScored(ctx context.Context, idea types.ScoredIdea) error {
	key := idea.Key()
	raw := idea.Idea.Primary.Raw

	sourcesJSON, _ := json.Marshal(idea.Idea.Sources)
	tagsJSON, _ := json.Marshal(idea.Analysis.Tags)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ideas (source, url, source_id, title, body, origin_score,
			fingerprint, sources, member_count, score, tags, summary,
			difficulty, market_potential, insight, model_raw, first_seen, scored_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source, url) DO UPDATE SET
			source_id=excluded.source_id, title=excluded.title, body=excluded.body,
			origin_score=excluded.origin_score, fingerprint=excluded.fingerprint,
			sources=excluded.sources, member_count=excluded.member_count,
			score=excluded.score, tags=excluded.tags, summary=excluded.summary,
			difficulty=excluded.difficulty, market_potential=excluded.market_potential,
			insight=excluded.insight, model_raw=excluded.model_raw,
			scored_at=excluded.scored_at`,
		string(key.Source), key.URL, raw.SourceID, raw.Title, raw.Body,
		raw.OriginScore, idea.Idea.Primary.Fingerprint, string(sourcesJSON),
		len(idea.Idea.Members), idea.Analysis.Score, string(tagsJSON),
		idea.Analysis.Summary, string(idea.Analysis.Difficulty),
		string(idea.Analysis.MarketPotential), idea.Analysis.Insight,
		idea.ModelRawResponse, raw.FetchedAt.UTC().Format(time.RFC3339),
		idea.ScoredAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting idea: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM scoring_failures WHERE source = ? AND url = ?`,
		string(key.Source), key.URL,
	); err != nil {
		return fmt.Errorf("clearing failure marker: %w", err)
	}

	return tx.Commit()
}

// RecordScoringFailure increments the consecutive failure count for a key
// and returns the new count.
func (s *Store) RecordScoringFailure(ctx context.Context, key types.IdeaKey, cause error) (int, error) {
	causeText := ""
	if cause != nil {
		causeText = cause.Error()
	}
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scoring_failures (source, url, attempts, last_error, updated_at)
		 VALUES (?, ?, 1, ?, ?)
		 ON CONFLICT(source, url) DO UPDATE SET
			attempts=attempts+1, last_error=excluded.last_error,
			updated_at=excluded.updated_at`,
		string(key.Source), key.URL, causeText, now,
	)
	if err != nil {
		return 0, fmt.Errorf("recording scoring failure: %w", err)
	}

	var attempts int
	err = s.db.QueryRowContext(ctx,
		`SELECT attempts FROM scoring_failures WHERE source = ? AND url = ?`,
		string(key.Source), key.URL,
	).Scan(&attempts)
	if err != nil {
		return 0, fmt.Errorf("reading failure count: %w", err)
	}
	return attempts, nil
}

// ExhaustedKeys returns the keys whose consecutive scoring failures have
// reached maxRuns. The orchestrator skips these before batching.
func (s *Store) ExhaustedKeys(ctx context.Context, maxRuns int) (map[types.IdeaKey]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, url FROM scoring_failures WHERE attempts >= ?`, maxRuns)
	if err != nil {
		return nil, fmt.Errorf("querying scoring failures: %w", err)
	}
	defer rows.Close()

	keys := make(map[types.IdeaKey]bool)
	for rows.Next() {
		var source, url string
		if err := rows.Scan(&source, &url); err != nil {
			return nil, fmt.Errorf("scanning failure row: %w", err)
		}
		keys[types.IdeaKey{Source: types.SourceName(source), URL: url}] = true
	}
	return keys, rows.Err()
}

// NotifiedKeys returns every key that has already been notified.
func (s *Store) NotifiedKeys(ctx context.Context) (map[types.IdeaKey]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source, url FROM notified`)
	if err != nil {
		return nil, fmt.Errorf("querying notified markers: %w", err)
	}
	defer rows.Close()

	keys := make(map[types.IdeaKey]bool)
	for rows.Next() {
		var source, url string
		if err := rows.Scan(&source, &url); err != nil {
			return nil, fmt.Errorf("scanning notified row: %w", err)
		}
		keys[types.IdeaKey{Source: types.SourceName(source), URL: url}] = true
	}
	return keys, rows.Err()
}

// MarkNotified records that a key has been delivered to the chat.
func (s *Store) MarkNotified(ctx context.Context, key types.IdeaKey, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notified (source, url, notified_at) VALUES (?, ?, ?)
		 ON CONFLICT(source, url) DO UPDATE SET notified_at=excluded.notified_at`,
		string(key.Source), key.URL, at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("marking notified: %w", err)
	}
	return nil
}

// TopQuery filters the stored ideas returned by TopIdeas.
type TopQuery struct {
	MinScore float64
	Source   types.SourceName
	Limit    int
}

// StoredIdea is one persisted idea row, shaped for listings and exports.
type StoredIdea struct {
	Source          types.SourceName      `json:"source" yaml:"source"`
	URL             string                `json:"url" yaml:"url"`
	Title           string                `json:"title" yaml:"title"`
	OriginScore     int                   `json:"origin_score" yaml:"origin_score"`
	Sources         []types.SourceName    `json:"sources" yaml:"sources"`
	MemberCount     int                   `json:"member_count" yaml:"member_count"`
	Score           float64               `json:"score" yaml:"score"`
	Tags            []string              `json:"tags,omitempty" yaml:"tags,omitempty"`
	Summary         string                `json:"summary" yaml:"summary"`
	Difficulty      types.Difficulty      `json:"difficulty" yaml:"difficulty"`
	MarketPotential types.MarketPotential `json:"market_potential" yaml:"market_potential"`
	Insight         string                `json:"insight,omitempty" yaml:"insight,omitempty"`
	ScoredAt        string                `json:"scored_at" yaml:"scored_at"`
	Notified        bool                  `json:"notified" yaml:"notified"`
}

// TopIdeas returns stored ideas ordered by descending score, filtered by the
// query options.
func (s *Store) TopIdeas(ctx context.Context, q TopQuery) ([]StoredIdea, error) {
	builder := sq.Select(
		"i.source", "i.url", "i.title", "i.origin_score", "i.sources",
		"i.member_count", "i.score", "i.tags", "i.summary", "i.difficulty",
		"i.market_potential", "i.insight", "i.scored_at",
		"n.url IS NOT NULL",
	).
		From("ideas i").
		LeftJoin("notified n ON n.source = i.source AND n.url = i.url").
		OrderBy("i.score DESC", "i.scored_at DESC")

	if q.MinScore > 0 {
		builder = builder.Where(sq.GtOrEq{"i.score": q.MinScore})
	}
	if q.Source != "" {
		builder = builder.Where(sq.Eq{"i.source": string(q.Source)})
	}
	if q.Limit > 0 {
		builder = builder.Limit(uint64(q.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying ideas: %w", err)
	}
	defer rows.Close()

	var out []StoredIdea
	for rows.Next() {
		var (
			rec                  StoredIdea
			source               string
			sourcesJSON, tagJSON sql.NullString
			insight              sql.NullString
		)
		err := rows.Scan(&source, &rec.URL, &rec.Title, &rec.OriginScore,
			&sourcesJSON, &rec.MemberCount, &rec.Score, &tagJSON, &rec.Summary,
			&rec.Difficulty, &rec.MarketPotential, &insight, &rec.ScoredAt,
			&rec.Notified)
		if err != nil {
			return nil, fmt.Errorf("scanning idea row: %w", err)
		}
		rec.Source = types.SourceName(source)
		rec.Insight = insight.String
		if sourcesJSON.Valid {
			json.Unmarshal([]byte(sourcesJSON.String), &rec.Sources)
		}
		if tagJSON.Valid {
			json.Unmarshal([]byte(tagJSON.String), &rec.Tags)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
