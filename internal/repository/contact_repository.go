package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/tourism-portal/internal/model"
)

// ContactRepo stores messages submitted through the portal contact form.
type ContactRepo struct{ db *sql.DB }

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

// Create inserts the message and populates ID and CreatedAt.
func (r *ContactRepo) Create(ctx context.Context, m *model.ContactMessage) error {
	m.CreatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO contact_messages (name, email, subject, message, created_at) VALUES (?, ?, ?, ?, ?)",
		m.Name, m.Email, m.Subject, m.Message, m.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// ListRecent returns the newest messages first, at most limit rows.
func (r *ContactRepo) ListRecent(ctx context.Context, limit int) ([]*model.ContactMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, email, subject, message, created_at FROM contact_messages ORDER BY created_at DESC, id DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ContactMessage
	for rows.Next() {
		m := new(model.ContactMessage)
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
