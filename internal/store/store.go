// Package store persists speakers and voice messages in a local SQLite
// database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS speakers (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	speaker_id  TEXT NOT NULL UNIQUE,
	embedding   BLOB NOT NULL,
	first_seen  REAL NOT NULL,
	last_seen   REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS voice_messages (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	speaker_ref    INTEGER NOT NULL REFERENCES speakers(id),
	archive_ref    TEXT NOT NULL,
	duration       REAL NOT NULL,
	language       TEXT NOT NULL,
	transcription  TEXT NOT NULL,
	confidence     REAL NOT NULL,
	timestamp      REAL NOT NULL,
	notes          TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_messages_speaker ON voice_messages(speaker_ref);
CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON voice_messages(timestamp);
`

// Store wraps the SQLite handle. Safe for concurrent use; SQLite serializes
// writers internally.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Pragmas are per-connection; a single pooled connection keeps
	// foreign_keys in force and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the connection is still usable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// NewSpeakerID mints a compact unique speaker identifier.
func NewSpeakerID() string {
	return "spk_" + uuid.NewString()[:8]
}

// ListSpeakers returns all enrolled speakers, most recently seen first.
func (s *Store) ListSpeakers(ctx context.Context) ([]Speaker, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, speaker_id, embedding, first_seen, last_seen
		FROM speakers
		ORDER BY last_seen DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query speakers: %w", err)
	}
	defer rows.Close()

	var speakers []Speaker
	for rows.Next() {
		var sp Speaker
		var firstSeen, lastSeen float64
		if err := rows.Scan(&sp.ID, &sp.SpeakerID, &sp.Embedding, &firstSeen, &lastSeen); err != nil {
			return nil, fmt.Errorf("scan speaker: %w", err)
		}
		sp.FirstSeen = timeFromUnix(firstSeen)
		sp.LastSeen = timeFromUnix(lastSeen)
		speakers = append(speakers, sp)
	}
	return speakers, rows.Err()
}

// CreateSpeaker enrolls a new speaker with the given voiceprint and returns
// the created row.
func (s *Store) CreateSpeaker(ctx context.Context, embedding []byte, seen time.Time) (Speaker, error) {
	sp := Speaker{
		SpeakerID: NewSpeakerID(),
		Embedding: embedding,
		FirstSeen: seen,
		LastSeen:  seen,
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO speakers (speaker_id, embedding, first_seen, last_seen)
		VALUES (?, ?, ?, ?)
	`, sp.SpeakerID, sp.Embedding, unixFromTime(seen), unixFromTime(seen))
	if err != nil {
		return Speaker{}, fmt.Errorf("insert speaker: %w", err)
	}
	sp.ID, err = res.LastInsertId()
	if err != nil {
		return Speaker{}, fmt.Errorf("insert speaker: %w", err)
	}
	return sp, nil
}

// RefreshSpeaker bumps last_seen and, when embedding is non-nil, replaces the
// stored voiceprint.
func (s *Store) RefreshSpeaker(ctx context.Context, speakerID string, embedding []byte, seen time.Time) error {
	var err error
	if embedding != nil {
		_, err = s.db.ExecContext(ctx, `
			UPDATE speakers SET embedding = ?, last_seen = ? WHERE speaker_id = ?
		`, embedding, unixFromTime(seen), speakerID)
	} else {
		_, err = s.db.ExecContext(ctx, `
			UPDATE speakers SET last_seen = ? WHERE speaker_id = ?
		`, unixFromTime(seen), speakerID)
	}
	if err != nil {
		return fmt.Errorf("refresh speaker %s: %w", speakerID, err)
	}
	return nil
}

// InsertMessage persists one voice message and bumps the owning speaker's
// last_seen in the same transaction.
func (s *Store) InsertMessage(ctx context.Context, msg VoiceMessage) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO voice_messages
			(speaker_ref, archive_ref, duration, language, transcription, confidence, timestamp, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, msg.SpeakerRef, msg.ArchiveRef, msg.Duration, msg.Language,
		msg.Transcription, msg.Confidence, unixFromTime(msg.Timestamp), msg.Notes)
	if err != nil {
		return 0, fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert message: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE speakers SET last_seen = ? WHERE id = ?
	`, unixFromTime(msg.Timestamp), msg.SpeakerRef); err != nil {
		return 0, fmt.Errorf("bump speaker last_seen: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit message: %w", err)
	}
	return id, nil
}

// Messages returns persisted messages, newest first. A non-empty speakerID
// filters to that speaker; limit <= 0 means no limit.
func (s *Store) Messages(ctx context.Context, limit, offset int, speakerID string) ([]VoiceMessage, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT m.id, m.speaker_ref, s.speaker_id, m.archive_ref, m.duration,
		       m.language, m.transcription, m.confidence, m.timestamp, m.notes
		FROM voice_messages m
		JOIN speakers s ON s.id = m.speaker_ref
	`)
	var args []any
	if speakerID != "" {
		sb.WriteString(" WHERE s.speaker_id = ?")
		args = append(args, speakerID)
	}
	sb.WriteString(" ORDER BY m.timestamp DESC, m.id DESC")
	if limit > 0 {
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, limit, offset)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []VoiceMessage
	for rows.Next() {
		var m VoiceMessage
		var ts float64
		if err := rows.Scan(&m.ID, &m.SpeakerRef, &m.SpeakerID, &m.ArchiveRef,
			&m.Duration, &m.Language, &m.Transcription, &m.Confidence, &ts, &m.Notes); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Timestamp = timeFromUnix(ts)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// UpdateNotes replaces the notes on a message. Unknown ids are reported.
func (s *Store) UpdateNotes(ctx context.Context, id int64, notes string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE voice_messages SET notes = ? WHERE id = ?
	`, notes, id)
	if err != nil {
		return fmt.Errorf("update notes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update notes: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update notes: message %d not found", id)
	}
	return nil
}

// SpeakerSummaries returns per-speaker aggregates, most recently seen first.
func (s *Store) SpeakerSummaries(ctx context.Context) ([]SpeakerSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.speaker_id, s.first_seen, s.last_seen, COUNT(m.id)
		FROM speakers s
		LEFT JOIN voice_messages m ON m.speaker_ref = s.id
		GROUP BY s.id
		ORDER BY s.last_seen DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query speaker summaries: %w", err)
	}
	defer rows.Close()

	var summaries []SpeakerSummary
	for rows.Next() {
		var sum SpeakerSummary
		var firstSeen, lastSeen float64
		if err := rows.Scan(&sum.SpeakerID, &firstSeen, &lastSeen, &sum.MessageCount); err != nil {
			return nil, fmt.Errorf("scan speaker summary: %w", err)
		}
		sum.FirstSeen = timeFromUnix(firstSeen)
		sum.LastSeen = timeFromUnix(lastSeen)
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// Stats returns corpus-wide totals.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	row := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM voice_messages),
			(SELECT COUNT(*) FROM speakers),
			(SELECT COUNT(DISTINCT language) FROM voice_messages WHERE language != ''),
			(SELECT COALESCE(SUM(duration), 0) FROM voice_messages)
	`)
	if err := row.Scan(&st.Messages, &st.Speakers, &st.Languages, &st.TotalDuration); err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	return st, nil
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
