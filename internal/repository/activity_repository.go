package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/tourism-portal/internal/model"
)

// ActivityRepo covers CRUD of `activities` and their ordered FAQ rows. FAQs
// are written as a set: every save replaces the previous entries.
type ActivityRepo struct{ db *sql.DB }

func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{db: db} }

const activitySelect = `SELECT id, name, description, location, duration, rating, image, status, created_at, updated_at FROM activities`

func scanActivity(s rowScanner) (*model.Activity, error) {
	var a model.Activity
	var image sql.NullString
	if err := s.Scan(&a.ID, &a.Name, &a.Description, &a.Location, &a.Duration,
		&a.Rating, &image, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Image = stringPtr(image)
	return &a, nil
}

// List returns activities without their FAQs, ordered by name.
func (r *ActivityRepo) List(ctx context.Context, activeOnly bool) ([]*model.Activity, error) {
	q, args := activitySelect, []any{}
	if activeOnly {
		q += " WHERE status = ?"
		args = append(args, model.ListingActive)
	}
	rows, err := r.db.QueryContext(ctx, q+" ORDER BY name, id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetByID fetches one activity with its FAQs in sort order.
func (r *ActivityRepo) GetByID(ctx context.Context, id uint64) (*model.Activity, error) {
	a, err := scanActivity(r.db.QueryRowContext(ctx, activitySelect+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.FAQs, err = r.faqs(ctx, id)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *ActivityRepo) faqs(ctx context.Context, activityID uint64) ([]model.ActivityFAQ, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, activity_id, question, answer, sort_order FROM activity_faqs WHERE activity_id = ? ORDER BY sort_order, id",
		activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ActivityFAQ
	for rows.Next() {
		var f model.ActivityFAQ
		if err := rows.Scan(&f.ID, &f.ActivityID, &f.Question, &f.Answer, &f.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Create inserts the activity and its FAQs in one transaction.
func (r *ActivityRepo) Create(ctx context.Context, a *model.Activity) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO activities (name, description, location, duration, rating, image, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.Name, a.Description, a.Location, a.Duration, a.Rating, a.Image, a.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	if err = insertFAQs(ctx, tx, a); err != nil {
		return err
	}
	return tx.Commit()
}

// Update overwrites the activity columns and replaces its FAQs.
func (r *ActivityRepo) Update(ctx context.Context, a *model.Activity) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists uint64
	if err = tx.QueryRowContext(ctx, "SELECT id FROM activities WHERE id = ? FOR UPDATE", a.ID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrNotFound
		}
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE activities SET name = ?, description = ?, location = ?, duration = ?, rating = ?,
		 image = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		a.Name, a.Description, a.Location, a.Duration, a.Rating, a.Image, a.Status, a.ID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM activity_faqs WHERE activity_id = ?", a.ID); err != nil {
		return err
	}
	if err = insertFAQs(ctx, tx, a); err != nil {
		return err
	}
	return tx.Commit()
}

// insertFAQs writes a.FAQs with sort_order equal to their slice position.
func insertFAQs(ctx context.Context, tx *sql.Tx, a *model.Activity) error {
	for i := range a.FAQs {
		f := &a.FAQs[i]
		f.ActivityID = a.ID
		f.SortOrder = i
		res, err := tx.ExecContext(ctx,
			"INSERT INTO activity_faqs (activity_id, question, answer, sort_order) VALUES (?, ?, ?, ?)",
			a.ID, f.Question, f.Answer, f.SortOrder)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		f.ID = uint64(id)
	}
	return nil
}

// Delete removes an activity; FAQs go with it through the foreign key cascade.
func (r *ActivityRepo) Delete(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.db, "DELETE FROM activities WHERE id = ?", id)
}

// CountActive returns the number of publicly visible activities.
func (r *ActivityRepo) CountActive(ctx context.Context) (int, error) {
	return countActive(ctx, r.db, "SELECT COUNT(*) FROM activities WHERE status = ?")
}
