package pgstore

import (
	"context"

	"github.com/BearBump/CarTrack/internal/apperr"
	"github.com/BearBump/CarTrack/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const historyColumns = `id, shipment_id, status_id, status_name, changed_at, changed_by, notes`

func scanHistory(r rowScanner) (*models.StatusHistory, error) {
	var h models.StatusHistory
	if err := r.Scan(&h.ID, &h.ShipmentID, &h.StatusID, &h.StatusName, &h.ChangedAt, &h.ChangedBy, &h.Notes); err != nil {
		return nil, err
	}
	return &h, nil
}

// ApplyTransition переводит отправку в новый статус и пишет запись истории
// в одной транзакции: либо оба изменения, либо ни одного.
func (s *Storage) ApplyTransition(ctx context.Context, tr models.Transition) (*models.StatusHistory, error) {
	var out *models.StatusHistory
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		// FOR SHARE держит статус от удаления до конца транзакции.
		var statusName string
		err := tx.QueryRow(ctx, `SELECT name FROM statuses WHERE id = $1 FOR SHARE`, tr.StatusID).Scan(&statusName)
		if err != nil {
			if isNoRows(err) {
				return apperr.NotFound("status %d not found", tr.StatusID)
			}
			return errors.Wrap(err, "lock status")
		}

		tag, err := tx.Exec(ctx, `
UPDATE shipments
SET current_status_id = $2, updated_at = $3
WHERE id = $1
`, tr.ShipmentID, tr.StatusID, tr.ChangedAt.UTC())
		if err != nil {
			return errors.Wrap(err, "update shipment status")
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("shipment %d not found", tr.ShipmentID)
		}

		h, err := scanHistory(tx.QueryRow(ctx, `
INSERT INTO status_history (shipment_id, status_id, status_name, changed_at, changed_by, notes)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING `+historyColumns,
			tr.ShipmentID, tr.StatusID, statusName, tr.ChangedAt.UTC(), tr.ChangedBy, emptyToNil(tr.Notes)))
		if err != nil {
			return errors.Wrap(err, "insert status history")
		}
		out = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListStatusHistory возвращает историю отправки в порядке времени.
func (s *Storage) ListStatusHistory(ctx context.Context, shipmentID uint64) ([]*models.StatusHistory, error) {
	rows, err := s.db.Query(ctx, `
SELECT `+historyColumns+`
FROM status_history
WHERE shipment_id = $1
ORDER BY changed_at ASC, id ASC
`, shipmentID)
	if err != nil {
		return nil, errors.Wrap(err, "select status history")
	}
	defer rows.Close()

	out := make([]*models.StatusHistory, 0)
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan status history")
		}
		out = append(out, h)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
