// Package sqlite provides a SQLite-backed implementation of the track repository port.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ewilliams-labs/jukebox/internal/core/domain"
	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
)

// maxQueryParams keeps IN lists under SQLite's bound parameter limit.
const maxQueryParams = 500

// Adapter implements ports.TrackRepository for SQLite
type Adapter struct {
	db *sql.DB
}

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open db: %w", err)
	}
	// every connection to :memory: is a separate database
	if storagePath == ":memory:" || strings.Contains(storagePath, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to ping db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		return nil, fmt.Errorf("sqlite: migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

// SaveTracks upserts tracks and replaces their artist credits in one
// transaction. Blank cover URLs and durations never overwrite stored ones.
func (a *Adapter) SaveTracks(ctx context.Context, tracks []domain.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	stmtTrack, err := tx.PrepareContext(ctx, `
		INSERT INTO tracks (id, title, artist, album, duration_ms, popularity, cover_url)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			artist=excluded.artist,
			album=excluded.album,
			duration_ms=COALESCE(NULLIF(excluded.duration_ms, 0), tracks.duration_ms),
			popularity=excluded.popularity,
			cover_url=COALESCE(NULLIF(excluded.cover_url, ''), tracks.cover_url),
			updated_at=CURRENT_TIMESTAMP;
	`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare track upsert: %w", err)
	}
	defer stmtTrack.Close()

	stmtClear, err := tx.PrepareContext(ctx, "DELETE FROM track_artists WHERE track_id = ?")
	if err != nil {
		return fmt.Errorf("sqlite: prepare artist reset: %w", err)
	}
	defer stmtClear.Close()

	stmtArtist, err := tx.PrepareContext(ctx, `
		INSERT INTO track_artists (track_id, position, name) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare artist insert: %w", err)
	}
	defer stmtArtist.Close()

	for _, t := range tracks {
		if _, err := stmtTrack.ExecContext(ctx,
			t.ID,
			t.Title,
			t.Artist,
			t.Album,
			t.DurationMs,
			t.Popularity,
			t.CoverURL,
		); err != nil {
			return fmt.Errorf("sqlite: failed to save track %s: %w", t.ID, err)
		}
		if len(t.Artists) == 0 {
			continue
		}
		if _, err := stmtClear.ExecContext(ctx, t.ID); err != nil {
			return fmt.Errorf("sqlite: failed to clear artists of %s: %w", t.ID, err)
		}
		for i, name := range t.Artists {
			if _, err := stmtArtist.ExecContext(ctx, t.ID, i, name); err != nil {
				return fmt.Errorf("sqlite: failed to link artist %q to %s: %w", name, t.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: transaction commit failed: %w", err)
	}
	return nil
}

// GetByIDs returns the stored tracks among ids in no particular order.
// Unknown ids are ignored.
func (a *Adapter) GetByIDs(ctx context.Context, ids []string) ([]domain.Track, error) {
	var out []domain.Track
	for start := 0; start < len(ids); start += maxQueryParams {
		chunk := ids[start:min(start+maxQueryParams, len(ids))]
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		query := `
			SELECT id, title, artist, album, duration_ms, popularity, cover_url
			FROM tracks
			WHERE id IN (` + placeholders(len(chunk)) + `)`
		tracks, err := a.queryTracks(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		out = append(out, tracks...)
	}
	if err := a.loadArtists(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchByPrefix matches tracks whose title or any artist starts with prefix,
// case-insensitively, most popular first.
func (a *Adapter) SearchByPrefix(ctx context.Context, prefix string, limit int) ([]domain.Track, error) {
	pattern := escapeLike(prefix) + "%"
	tracks, err := a.queryTracks(ctx, `
		SELECT id, title, artist, album, duration_ms, popularity, cover_url
		FROM tracks
		WHERE title LIKE ? ESCAPE '\'
			OR id IN (SELECT track_id FROM track_artists WHERE name LIKE ? ESCAPE '\')
		ORDER BY popularity DESC, title ASC, id ASC
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	if err := a.loadArtists(ctx, tracks); err != nil {
		return nil, err
	}
	if tracks == nil {
		tracks = []domain.Track{}
	}
	return tracks, nil
}

// Count returns the number of stored tracks.
func (a *Adapter) Count(ctx context.Context) (int, error) {
	var n int
	if err := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tracks").Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: failed to count tracks: %w", err)
	}
	return n, nil
}

func (a *Adapter) queryTracks(ctx context.Context, query string, args ...any) ([]domain.Track, error) {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []domain.Track
	for rows.Next() {
		var track domain.Track
		var album sql.NullString
		var coverURL sql.NullString
		var duration sql.NullInt64
		if err := rows.Scan(
			&track.ID,
			&track.Title,
			&track.Artist,
			&album,
			&duration,
			&track.Popularity,
			&coverURL,
		); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan track: %w", err)
		}
		if album.Valid {
			track.Album = album.String
		}
		if duration.Valid {
			track.DurationMs = int(duration.Int64)
		}
		if coverURL.Valid {
			track.CoverURL = coverURL.String
		}
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate tracks: %w", err)
	}
	return tracks, nil
}

// loadArtists fills Artists on tracks from track_artists, in credit order.
func (a *Adapter) loadArtists(ctx context.Context, tracks []domain.Track) error {
	if len(tracks) == 0 {
		return nil
	}
	pos := make(map[string]int, len(tracks))
	for i, t := range tracks {
		pos[t.ID] = i
	}

	for start := 0; start < len(tracks); start += maxQueryParams {
		chunk := tracks[start:min(start+maxQueryParams, len(tracks))]
		args := make([]any, len(chunk))
		for i, t := range chunk {
			args[i] = t.ID
		}
		rows, err := a.db.QueryContext(ctx, `
			SELECT track_id, name FROM track_artists
			WHERE track_id IN (`+placeholders(len(chunk))+`)
			ORDER BY track_id, position`, args...)
		if err != nil {
			return fmt.Errorf("sqlite: failed to query artists: %w", err)
		}
		for rows.Next() {
			var id, name string
			if err := rows.Scan(&id, &name); err != nil {
				rows.Close()
				return fmt.Errorf("sqlite: failed to scan artist: %w", err)
			}
			i := pos[id]
			tracks[i].Artists = append(tracks[i].Artists, name)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return fmt.Errorf("sqlite: failed to iterate artists: %w", err)
		}
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS tracks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		artist TEXT NOT NULL,
		album TEXT,
		duration_ms INTEGER,
		popularity REAL NOT NULL DEFAULT 0,
		cover_url TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS track_artists (
		track_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		PRIMARY KEY (track_id, position),
		FOREIGN KEY(track_id) REFERENCES tracks(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_tracks_title ON tracks(title COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_tracks_popularity ON tracks(popularity DESC);
	CREATE INDEX IF NOT EXISTS idx_track_artists_name ON track_artists(name COLLATE NOCASE);
	`
	_, err := a.db.Exec(query)
	return err
}
