package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/tourism-portal/internal/model"
)

// AccommodationRepo covers CRUD and public listing of `accommodations`.
type AccommodationRepo struct{ db *sql.DB }

func NewAccommodationRepo(db *sql.DB) *AccommodationRepo { return &AccommodationRepo{db: db} }

const accommodationSelect = `SELECT id, name, description, address, type, price_range, contact_number,
       rating, image, status, created_at, updated_at FROM accommodations`

func scanAccommodation(s rowScanner) (*model.Accommodation, error) {
	var (
		a              model.Accommodation
		contact, image sql.NullString
	)
	if err := s.Scan(&a.ID, &a.Name, &a.Description, &a.Address, &a.Type, &a.PriceRange,
		&contact, &a.Rating, &image, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.ContactNumber = stringPtr(contact)
	a.Image = stringPtr(image)
	return &a, nil
}

// List returns accommodations ordered by name; activeOnly hides inactive rows.
func (r *AccommodationRepo) List(ctx context.Context, activeOnly bool) ([]*model.Accommodation, error) {
	q, args := accommodationSelect, []any{}
	if activeOnly {
		q += " WHERE status = ?"
		args = append(args, model.ListingActive)
	}
	rows, err := r.db.QueryContext(ctx, q+" ORDER BY name, id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Accommodation
	for rows.Next() {
		a, err := scanAccommodation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetByID fetches one accommodation.
func (r *AccommodationRepo) GetByID(ctx context.Context, id uint64) (*model.Accommodation, error) {
	a, err := scanAccommodation(r.db.QueryRowContext(ctx, accommodationSelect+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

// Create inserts the accommodation and populates its ID.
func (r *AccommodationRepo) Create(ctx context.Context, a *model.Accommodation) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO accommodations (name, description, address, type, price_range, contact_number, rating, image, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Name, a.Description, a.Address, a.Type, a.PriceRange, a.ContactNumber, a.Rating, a.Image, a.Status)
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

// Update overwrites every editable column.
func (r *AccommodationRepo) Update(ctx context.Context, a *model.Accommodation) error {
	if _, err := r.GetByID(ctx, a.ID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE accommodations SET name = ?, description = ?, address = ?, type = ?, price_range = ?,
		 contact_number = ?, rating = ?, image = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		a.Name, a.Description, a.Address, a.Type, a.PriceRange, a.ContactNumber, a.Rating, a.Image, a.Status, a.ID)
	return err
}

// Delete removes an accommodation.
func (r *AccommodationRepo) Delete(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.db, "DELETE FROM accommodations WHERE id = ?", id)
}

// CountActive returns the number of publicly visible accommodations.
func (r *AccommodationRepo) CountActive(ctx context.Context) (int, error) {
	return countActive(ctx, r.db, "SELECT COUNT(*) FROM accommodations WHERE status = ?")
}
