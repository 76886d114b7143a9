package pgstore

import (
	"context"
	"time"

	"github.com/BearBump/CarTrack/internal/apperr"
	"github.com/BearBump/CarTrack/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const showcaseColumns = `id, title, description, image_url, sort_order, visible, created_at`

func scanShowcase(r rowScanner) (*models.ShowcaseItem, error) {
	var it models.ShowcaseItem
	if err := r.Scan(&it.ID, &it.Title, &it.Description, &it.ImageURL, &it.Order, &it.Visible, &it.CreatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *Storage) CreateShowcaseItem(ctx context.Context, in models.ShowcaseCreateInput) (*models.ShowcaseItem, error) {
	var out *models.ShowcaseItem
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE showcase_items IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return errors.Wrap(err, "lock showcase")
		}
		var order int
		if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(sort_order), -1) + 1 FROM showcase_items`).Scan(&order); err != nil {
			return errors.Wrap(err, "next showcase order")
		}
		it, err := scanShowcase(tx.QueryRow(ctx, `
INSERT INTO showcase_items (title, description, image_url, sort_order, visible, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING `+showcaseColumns,
			in.Title, emptyToNil(in.Description), in.ImageURL, order, in.Visible, time.Now().UTC()))
		if err != nil {
			return errors.Wrap(err, "insert showcase item")
		}
		out = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Storage) UpdateShowcaseItem(ctx context.Context, id uint64, in models.ShowcaseUpdateInput) (*models.ShowcaseItem, error) {
	var out *models.ShowcaseItem
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		it, err := scanShowcase(tx.QueryRow(ctx, `SELECT `+showcaseColumns+` FROM showcase_items WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if isNoRows(err) {
				return apperr.NotFound("showcase item %d not found", id)
			}
			return errors.Wrap(err, "select showcase item")
		}
		if in.Title != nil {
			it.Title = *in.Title
		}
		if in.Description != nil {
			it.Description = emptyToNil(in.Description)
		}
		if in.ImageURL != nil {
			it.ImageURL = *in.ImageURL
		}
		if in.Visible != nil {
			it.Visible = *in.Visible
		}
		updated, err := scanShowcase(tx.QueryRow(ctx, `
UPDATE showcase_items
SET title = $2, description = $3, image_url = $4, visible = $5
WHERE id = $1
RETURNING `+showcaseColumns,
			id, it.Title, it.Description, it.ImageURL, it.Visible))
		if err != nil {
			return errors.Wrap(err, "update showcase item")
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Storage) DeleteShowcaseItem(ctx context.Context, id uint64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM showcase_items WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete showcase item")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("showcase item %d not found", id)
	}
	return nil
}

// ListShowcaseItems: visibleOnly=true для публичной витрины.
func (s *Storage) ListShowcaseItems(ctx context.Context, visibleOnly bool) ([]*models.ShowcaseItem, error) {
	rows, err := s.db.Query(ctx, `
SELECT `+showcaseColumns+`
FROM showcase_items
WHERE (NOT $1 OR visible)
ORDER BY sort_order ASC, id ASC
`, visibleOnly)
	if err != nil {
		return nil, errors.Wrap(err, "select showcase items")
	}
	defer rows.Close()

	out := make([]*models.ShowcaseItem, 0)
	for rows.Next() {
		it, err := scanShowcase(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan showcase item")
		}
		out = append(out, it)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) ReorderShowcaseItems(ctx context.Context, ids []uint64) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		for i, id := range ids {
			tag, err := tx.Exec(ctx, `UPDATE showcase_items SET sort_order = $2 WHERE id = $1`, id, i)
			if err != nil {
				return errors.Wrap(err, "reorder showcase item")
			}
			if tag.RowsAffected() == 0 {
				return apperr.NotFound("showcase item %d not found", id)
			}
		}
		return nil
	})
}
