package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/tourism-portal/internal/model"
)

// RoleRepo reads the seeded `roles` table.
type RoleRepo struct{ db *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{db: db} }

// GetByName returns the role with the given name.
func (r *RoleRepo) GetByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM roles WHERE name = ? LIMIT 1", name).
		Scan(&role.ID, &role.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}
