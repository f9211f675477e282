package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/tourism-portal/internal/model"
)

// AttractionRepo covers CRUD and public listing of `attractions`.
type AttractionRepo struct{ db *sql.DB }

func NewAttractionRepo(db *sql.DB) *AttractionRepo { return &AttractionRepo{db: db} }

const attractionSelect = `SELECT id, name, description, location, category, rating, image, status, created_at, updated_at FROM attractions`

func scanAttraction(s rowScanner) (*model.Attraction, error) {
	var a model.Attraction
	var image sql.NullString
	if err := s.Scan(&a.ID, &a.Name, &a.Description, &a.Location, &a.Category,
		&a.Rating, &image, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Image = stringPtr(image)
	return &a, nil
}

// List returns attractions ordered by name. activeOnly restricts the result
// to publicly visible rows.
func (r *AttractionRepo) List(ctx context.Context, activeOnly bool) ([]*model.Attraction, error) {
	q, args := attractionSelect, []any{}
	if activeOnly {
		q += " WHERE status = ?"
		args = append(args, model.ListingActive)
	}
	rows, err := r.db.QueryContext(ctx, q+" ORDER BY name, id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Attraction
	for rows.Next() {
		a, err := scanAttraction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetByID fetches one attraction.
func (r *AttractionRepo) GetByID(ctx context.Context, id uint64) (*model.Attraction, error) {
	a, err := scanAttraction(r.db.QueryRowContext(ctx, attractionSelect+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

// Create inserts the attraction and populates its ID.
func (r *AttractionRepo) Create(ctx context.Context, a *model.Attraction) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO attractions (name, description, location, category, rating, image, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.Name, a.Description, a.Location, a.Category, a.Rating, a.Image, a.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// Update overwrites every editable column. Returns ErrNotFound when the row
// does not exist.
func (r *AttractionRepo) Update(ctx context.Context, a *model.Attraction) error {
	if _, err := r.GetByID(ctx, a.ID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE attractions SET name = ?, description = ?, location = ?, category = ?, rating = ?,
		 image = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		a.Name, a.Description, a.Location, a.Category, a.Rating, a.Image, a.Status, a.ID)
	return err
}

// Delete removes an attraction. Returns ErrNotFound when nothing was deleted.
func (r *AttractionRepo) Delete(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.db, "DELETE FROM attractions WHERE id = ?", id)
}

// CountActive returns the number of publicly visible attractions.
func (r *AttractionRepo) CountActive(ctx context.Context) (int, error) {
	return countActive(ctx, r.db, "SELECT COUNT(*) FROM attractions WHERE status = ?")
}
