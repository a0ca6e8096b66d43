// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists users, detection results, and per-class
// recommendations in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/haircheck/pkg/types"
)

const defaultDBPath = "data/haircheck.db"

// ErrNotFound reports that a requested row does not exist. The API layer
// maps it to a not-found response.
var ErrNotFound = errors.New("not found")

// Store manages the haircheck SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the SQLite database at cfg.Path, bootstraps
// the schema, and seeds recommendations from cfg.RecommendationsFile when
// one is configured.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = defaultDBPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if cfg.RecommendationsFile != "" {
		if err := s.SeedRecommendations(context.Background(), cfg.RecommendationsFile); err != nil {
			db.Close()
			return nil, fmt.Errorf("seeding recommendations: %w", err)
		}
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT,
			email TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS detections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL REFERENCES users(id),
			class TEXT NOT NULL,
			confidence REAL NOT NULL,
			image BLOB NOT NULL,
			detected_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_detections_user_id ON detections(user_id)`,
		`CREATE TABLE IF NOT EXISTS recommendations (
			class TEXT PRIMARY KEY,
			recommendation TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// EnsureUser upserts a user record, refreshing name and email on repeat
// logins.
func (s *Store) EnsureUser(ctx context.Context, u types.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, email=excluded.email`,
		u.ID, u.Name, u.Email, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

// InsertDetection stores one analysis result with its annotated JPEG and
// returns the assigned row ID.
func (s *Store) InsertDetection(ctx context.Context, det types.Detection, image []byte) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO detections (user_id, class, confidence, image, detected_at)
		 VALUES (?, ?, ?, ?, ?)`,
		det.UserID, det.Class, det.Confidence, image,
		det.DetectedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting detection: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading detection id: %w", err)
	}
	return id, nil
}

// DetectionImage returns the stored annotated JPEG for a detection.
func (s *Store) DetectionImage(ctx context.Context, id int64) ([]byte, error) {
	var image []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT image FROM detections WHERE id = ?`, id,
	).Scan(&image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("detection %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading detection image: %w", err)
	}
	return image, nil
}

// UserDetections returns a user's detections newest-first, without the
// image blobs.
func (s *Store) UserDetections(ctx context.Context, userID string) ([]types.Detection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, class, confidence, detected_at
		 FROM detections WHERE user_id = ?
		 ORDER BY detected_at DESC, id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying detections: %w", err)
	}
	defer rows.Close()

	var dets []types.Detection
	for rows.Next() {
		var d types.Detection
		var detectedAt string
		if err := rows.Scan(&d.ID, &d.UserID, &d.Class, &d.Confidence, &detectedAt); err != nil {
			return nil, fmt.Errorf("scanning detection: %w", err)
		}
		d.DetectedAt, err = time.Parse(time.RFC3339Nano, detectedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing detection timestamp: %w", err)
		}
		dets = append(dets, d)
	}
	return dets, rows.Err()
}

// ClassGroup is one insights entry: all of a user's detections for a
// class, newest-first.
type ClassGroup struct {
	Class      string            `json:"class"`
	Detections []types.Detection `json:"detections"`
}

// Insights groups a user's detections by class. Groups are ordered by
// their most recent detection, and detections within a group are
// newest-first.
func (s *Store) Insights(ctx context.Context, userID string) ([]ClassGroup, error) {
	dets, err := s.UserDetections(ctx, userID)
	if err != nil {
		return nil, err
	}

	// UserDetections is newest-first, so the first appearance of each
	// class fixes the group order.
	index := make(map[string]int)
	var groups []ClassGroup
	for _, d := range dets {
		i, ok := index[d.Class]
		if !ok {
			i = len(groups)
			index[d.Class] = i
			groups = append(groups, ClassGroup{Class: d.Class})
		}
		groups[i].Detections = append(groups[i].Detections, d)
	}
	return groups, nil
}

// Recommendation returns the stored advice for a detection class.
func (s *Store) Recommendation(ctx context.Context, class string) (string, error) {
	var rec string
	err := s.db.QueryRowContext(ctx,
		`SELECT recommendation FROM recommendations WHERE class = ?`, class,
	).Scan(&rec)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("recommendation for %q: %w", class, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("reading recommendation: %w", err)
	}
	return rec, nil
}

// SeedRecommendations loads a YAML file mapping detection classes to
// advice text and upserts every entry.
func (s *Store) SeedRecommendations(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading recommendations file: %w", err)
	}

	var recs map[string]string
	if err := yaml.Unmarshal(data, &recs); err != nil {
		return fmt.Errorf("parsing recommendations file: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO recommendations (class, recommendation) VALUES (?, ?)
		 ON CONFLICT(class) DO UPDATE SET recommendation=excluded.recommendation`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for class, rec := range recs {
		if _, err := stmt.ExecContext(ctx, class, rec); err != nil {
			return fmt.Errorf("upserting recommendation for %q: %w", class, err)
		}
	}

	return tx.Commit()
}
