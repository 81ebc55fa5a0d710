package db

import (
	"database/sql"
	"time"

	"github.com/kvasir-media/clipstream/internal/model"
)

// SaveSession stores the current session, replacing any previous one.
// The client holds at most one authenticated session at a time.
func SaveSession(database *sql.DB, s *model.Session) error {
	_, err := database.Exec(
		`INSERT INTO session (id, user_id, name, email, token, created_at)
		 VALUES (1, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   user_id = excluded.user_id,
		   name = excluded.name,
		   email = excluded.email,
		   token = excluded.token,
		   created_at = excluded.created_at`,
		s.UserID, s.Name, s.Email, s.Token, s.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetSession returns the persisted session, or nil when logged out.
func GetSession(database *sql.DB) (*model.Session, error) {
	s := &model.Session{}
	var createdAt SQLiteTime
	err := database.QueryRow(
		`SELECT user_id, name, email, token, created_at FROM session WHERE id = 1`,
	).Scan(&s.UserID, &s.Name, &s.Email, &s.Token, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.CreatedAt = createdAt.Time
	return s, nil
}

// DeleteSession clears the persisted session.
func DeleteSession(database *sql.DB) error {
	_, err := database.Exec(`DELETE FROM session WHERE id = 1`)
	return err
}
