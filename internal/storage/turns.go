package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// CreateSession persists a new session record.
func (s *Store) CreateSession(sess Session) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, language, created_at) VALUES (?, ?, ?)`,
		sess.ID, sess.Language, sess.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// GetSession returns the session with the given id, or ErrNotFound.
func (s *Store) GetSession(id string) (Session, error) {
	var sess Session
	var createdAt string
	err := s.db.QueryRow(
		"SELECT id, language, created_at FROM sessions WHERE id = ?", id,
	).Scan(&sess.ID, &sess.Language, &createdAt)
	if err == sql.ErrNoRows {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Session{}, fmt.Errorf("parsing created_at: %w", err)
	}
	sess.CreatedAt = t
	return sess, nil
}

// AppendTurn persists one turn at the end of its session's log.
func (s *Store) AppendTurn(t Turn) error {
	_, err := s.db.Exec(`
		INSERT INTO turns (id, session_id, seq, text, is_assistant, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.SessionID, t.Seq, t.Text, boolToInt(t.IsAssistant),
		t.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("appending turn: %w", err)
	}
	return nil
}

// Turns returns a session's turns in append order.
func (s *Store) Turns(sessionID string) ([]Turn, error) {
	rows, err := s.db.Query(`
		SELECT id, session_id, seq, text, is_assistant, created_at
		FROM turns WHERE session_id = ? ORDER BY seq ASC`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		var isAssistant int
		var createdAt string
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Seq, &t.Text, &isAssistant, &createdAt); err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		t.IsAssistant = isAssistant != 0
		t.CreatedAt = ts
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// TurnCount reports the total number of persisted turns across all sessions.
func (s *Store) TurnCount() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM turns").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
