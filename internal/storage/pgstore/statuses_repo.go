package pgstore

import (
	"context"
	"time"

	"github.com/BearBump/CarTrack/internal/apperr"
	"github.com/BearBump/CarTrack/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const statusColumns = `id, name, description, sort_order, is_transit, notify_on_entry, color, created_at, updated_at`

func scanStatus(r rowScanner) (*models.Status, error) {
	var st models.Status
	if err := r.Scan(
		&st.ID, &st.Name, &st.Description, &st.Order,
		&st.IsTransit, &st.NotifyOnEntry, &st.Color,
		&st.CreatedAt, &st.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &st, nil
}

// CreateStatus вставляет статус. Если Order не задан, берётся max(sort_order)+1;
// таблица блокируется на время вставки, чтобы два параллельных create не получили одну позицию.
func (s *Storage) CreateStatus(ctx context.Context, in models.StatusCreateInput) (*models.Status, error) {
	now := time.Now().UTC()
	var out *models.Status
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		order := 0
		if in.Order != nil {
			order = *in.Order
		} else {
			if _, err := tx.Exec(ctx, `LOCK TABLE statuses IN SHARE ROW EXCLUSIVE MODE`); err != nil {
				return errors.Wrap(err, "lock statuses")
			}
			if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(sort_order), -1) + 1 FROM statuses`).Scan(&order); err != nil {
				return errors.Wrap(err, "next status order")
			}
		}

		st, err := scanStatus(tx.QueryRow(ctx, `
INSERT INTO statuses (name, description, sort_order, is_transit, notify_on_entry, color, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
RETURNING `+statusColumns,
			in.Name, in.Description, order, in.IsTransit, in.NotifyOnEntry, in.Color, now))
		if err != nil {
			if isUniqueViolation(err) {
				return apperr.Conflict("status %q already exists", in.Name)
			}
			return errors.Wrap(err, "insert status")
		}
		out = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Storage) GetStatus(ctx context.Context, id uint64) (*models.Status, error) {
	st, err := scanStatus(s.db.QueryRow(ctx, `SELECT `+statusColumns+` FROM statuses WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound("status %d not found", id)
		}
		return nil, errors.Wrap(err, "select status")
	}
	return st, nil
}

func (s *Storage) ListStatuses(ctx context.Context) ([]*models.Status, error) {
	rows, err := s.db.Query(ctx, `SELECT `+statusColumns+` FROM statuses ORDER BY sort_order ASC, id ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "select statuses")
	}
	defer rows.Close()

	out := make([]*models.Status, 0)
	for rows.Next() {
		st, err := scanStatus(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan status")
		}
		out = append(out, st)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) UpdateStatus(ctx context.Context, id uint64, in models.StatusUpdateInput) (*models.Status, error) {
	var out *models.Status
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		st, err := scanStatus(tx.QueryRow(ctx, `SELECT `+statusColumns+` FROM statuses WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if isNoRows(err) {
				return apperr.NotFound("status %d not found", id)
			}
			return errors.Wrap(err, "select status")
		}

		if in.Name != nil {
			st.Name = *in.Name
		}
		if in.Description != nil {
			st.Description = emptyToNil(in.Description)
		}
		if in.Order != nil {
			st.Order = *in.Order
		}
		if in.IsTransit != nil {
			st.IsTransit = *in.IsTransit
		}
		if in.NotifyOnEntry != nil {
			st.NotifyOnEntry = *in.NotifyOnEntry
		}
		if in.Color != nil {
			st.Color = emptyToNil(in.Color)
		}

		updated, err := scanStatus(tx.QueryRow(ctx, `
UPDATE statuses
SET name = $2, description = $3, sort_order = $4, is_transit = $5,
    notify_on_entry = $6, color = $7, updated_at = $8
WHERE id = $1
RETURNING `+statusColumns,
			id, st.Name, st.Description, st.Order, st.IsTransit, st.NotifyOnEntry, st.Color, time.Now().UTC()))
		if err != nil {
			if isUniqueViolation(err) {
				return apperr.Conflict("status %q already exists", st.Name)
			}
			return errors.Wrap(err, "update status")
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReorderStatuses присваивает sort_order = позиция в ids одной транзакцией.
// Неизвестный id откатывает всю пачку.
func (s *Storage) ReorderStatuses(ctx context.Context, ids []uint64) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		now := time.Now().UTC()
		for i, id := range ids {
			tag, err := tx.Exec(ctx, `UPDATE statuses SET sort_order = $2, updated_at = $3 WHERE id = $1`, id, i, now)
			if err != nil {
				return errors.Wrap(err, "reorder status")
			}
			if tag.RowsAffected() == 0 {
				return apperr.NotFound("status %d not found", id)
			}
		}
		return nil
	})
}

func (s *Storage) CountShipmentsWithStatus(ctx context.Context, statusID uint64) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM shipments WHERE current_status_id = $1`, statusID).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count shipments by status")
	}
	return n, nil
}

// DeleteStatus удаляет статус; внешний ключ shipments.current_status_id (RESTRICT)
// не даёт удалить статус, на который кто-то ссылается, даже в гонке с переходом.
func (s *Storage) DeleteStatus(ctx context.Context, id uint64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM statuses WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.Conflict("Cannot delete: shipments are using this status")
		}
		return errors.Wrap(err, "delete status")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("status %d not found", id)
	}
	return nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
