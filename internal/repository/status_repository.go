package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/tourism-portal/internal/model"
)

// StatusRepo reads the seeded `statuses` table.
type StatusRepo struct{ db *sql.DB }

func NewStatusRepo(db *sql.DB) *StatusRepo { return &StatusRepo{db: db} }

// FindByTypeAndLabel looks up a status row by discriminator and label. The
// label comparison follows the column collation (case-insensitive).
func (r *StatusRepo) FindByTypeAndLabel(ctx context.Context, typ model.StatusType, label string) (*model.Status, error) {
	var s model.Status
	err := r.db.QueryRowContext(ctx,
		"SELECT id, status, type FROM statuses WHERE type = ? AND status = ? LIMIT 1",
		string(typ), label).Scan(&s.ID, &s.Status, &s.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByType returns all statuses of one family ordered by id.
func (r *StatusRepo) ListByType(ctx context.Context, typ model.StatusType) ([]model.Status, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, status, type FROM statuses WHERE type = ? ORDER BY id", string(typ))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Status
	for rows.Next() {
		var s model.Status
		if err := rows.Scan(&s.ID, &s.Status, &s.Type); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
