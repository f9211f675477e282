package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/tourism-portal/internal/model"
)

// UserRepo encapsulates queries against `users` and its role/status joins.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userSelect = `SELECT u.id, u.name, u.username, u.email, u.password_hash,
       u.role_id, u.status_id, u.online_status_id, u.created_at, u.updated_at,
       r.name, s.status, COALESCE(os.status, '')
FROM users u
JOIN roles r ON r.id = u.role_id
JOIN statuses s ON s.id = u.status_id
LEFT JOIN statuses os ON os.id = u.online_status_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*model.User, error) {
	var (
		u      model.User
		online sql.NullInt32
	)
	if err := s.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash,
		&u.RoleID, &u.StatusID, &online, &u.CreatedAt, &u.UpdatedAt,
		&u.RoleName, &u.StatusLabel, &u.OnlineLabel); err != nil {
		return nil, err
	}
	if online.Valid {
		v := uint16(online.Int32)
		u.OnlineStatusID = &v
	}
	return &u, nil
}

func nullableStatus(id *uint16) any {
	if id == nil {
		return nil
	}
	return *id
}

// Create inserts the user and populates its ID. Username and email
// uniqueness is enforced by the table's unique keys.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Username = strings.TrimSpace(u.Username)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, username, email, password_hash, role_id, status_id, online_status_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Name, u.Username, u.Email, u.PasswordHash, u.RoleID, u.StatusID, nullableStatus(u.OnlineStatusID))
	if err != nil {
		return mapDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByID fetches a user with role and status labels.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, userSelect+" WHERE u.id = ? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

// FindByIdentifier resolves a login identifier that may be an email or a
// username. An exact email match is preferred over a username match; ties
// fall to the lowest id.
func (r *UserRepo) FindByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	ident := strings.TrimSpace(identifier)
	email := strings.ToLower(ident)
	u, err := scanUser(r.db.QueryRowContext(ctx,
		userSelect+" WHERE u.email = ? OR u.username = ? ORDER BY (u.email = ?) DESC, u.id ASC LIMIT 1",
		email, ident, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

// SetOnlineStatus points online_status_id at statusID, or NULL when nil.
// No other column is written.
func (r *UserRepo) SetOnlineStatus(ctx context.Context, id uint64, statusID *uint16) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET online_status_id = ? WHERE id = ?", nullableStatus(statusID), id)
	return err
}

// SetAccountStatus changes the lifecycle status of a user.
func (r *UserRepo) SetAccountStatus(ctx context.Context, id uint64, statusID uint16) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET status_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", statusID, id)
	return err
}

// List returns every user ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]*model.User, error) {
	return r.query(ctx, userSelect+" ORDER BY u.id")
}

// ListByRoleAndStatus returns users holding roleName whose account status is
// statusLabel, ordered by name.
func (r *UserRepo) ListByRoleAndStatus(ctx context.Context, roleName, statusLabel string) ([]*model.User, error) {
	return r.query(ctx, userSelect+" WHERE r.name = ? AND s.status = ? ORDER BY u.name, u.id", roleName, statusLabel)
}

func (r *UserRepo) query(ctx context.Context, q string, args ...any) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// CountByStatus returns the number of users per account status label.
// Labels with no users are present with a zero count.
func (r *UserRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.status, COUNT(u.id)
		 FROM statuses s LEFT JOIN users u ON u.status_id = s.id
		 WHERE s.type = 'ACCOUNT'
		 GROUP BY s.id, s.status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			label string
			n     int
		)
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		out[label] = n
	}
	return out, rows.Err()
}
