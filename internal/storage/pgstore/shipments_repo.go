package pgstore

import (
	"context"
	"strings"
	"time"

	"github.com/BearBump/CarTrack/internal/apperr"
	"github.com/BearBump/CarTrack/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const shipmentColumns = `
  id, tracking_token, manufacturer, model, vin, year, color,
  owner_name, owner_email, owner_phone, notes, pictures,
  current_status_id, created_at, updated_at, created_by`

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 500
)

func scanShipment(r rowScanner) (*models.Shipment, error) {
	var sh models.Shipment
	if err := r.Scan(
		&sh.ID, &sh.TrackingToken, &sh.Manufacturer, &sh.Model, &sh.VIN, &sh.Year, &sh.Color,
		&sh.OwnerName, &sh.OwnerEmail, &sh.OwnerPhone, &sh.Notes, &sh.Pictures,
		&sh.CurrentStatusID, &sh.CreatedAt, &sh.UpdatedAt, &sh.CreatedBy,
	); err != nil {
		return nil, err
	}
	if sh.Pictures == nil {
		sh.Pictures = []string{}
	}
	return &sh, nil
}

func (s *Storage) CreateShipment(ctx context.Context, in models.ShipmentCreateInput, token string, createdBy *uint64) (*models.Shipment, error) {
	now := time.Now().UTC()
	pictures := in.Pictures
	if pictures == nil {
		pictures = []string{}
	}

	sh, err := scanShipment(s.db.QueryRow(ctx, `
INSERT INTO shipments (
  tracking_token, manufacturer, model, vin, year, color,
  owner_name, owner_email, owner_phone, notes, pictures,
  created_by, created_at, updated_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$13)
RETURNING `+shipmentColumns,
		token, in.Manufacturer, in.Model, in.VIN, in.Year, emptyToNil(in.Color),
		in.OwnerName, emptyToNil(in.OwnerEmail), emptyToNil(in.OwnerPhone), emptyToNil(in.Notes), pictures,
		createdBy, now))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("tracking token already in use")
		}
		return nil, errors.Wrap(err, "insert shipment")
	}
	return sh, nil
}

func (s *Storage) GetShipment(ctx context.Context, id uint64) (*models.Shipment, error) {
	sh, err := scanShipment(s.db.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound("shipment %d not found", id)
		}
		return nil, errors.Wrap(err, "select shipment")
	}
	return sh, nil
}

func (s *Storage) GetShipmentByToken(ctx context.Context, token string) (*models.Shipment, error) {
	sh, err := scanShipment(s.db.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE tracking_token = $1`, token))
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound("shipment not found")
		}
		return nil, errors.Wrap(err, "select shipment by token")
	}
	return sh, nil
}

// UpdateShipment меняет всё, кроме токена и текущего статуса.
func (s *Storage) UpdateShipment(ctx context.Context, id uint64, in models.ShipmentUpdateInput) (*models.Shipment, error) {
	var out *models.Shipment
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		sh, err := scanShipment(tx.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if isNoRows(err) {
				return apperr.NotFound("shipment %d not found", id)
			}
			return errors.Wrap(err, "select shipment")
		}

		applyShipmentUpdate(sh, in)

		updated, err := scanShipment(tx.QueryRow(ctx, `
UPDATE shipments
SET manufacturer = $2, model = $3, vin = $4, year = $5, color = $6,
    owner_name = $7, owner_email = $8, owner_phone = $9, notes = $10, pictures = $11,
    updated_at = $12
WHERE id = $1
RETURNING `+shipmentColumns,
			id, sh.Manufacturer, sh.Model, sh.VIN, sh.Year, sh.Color,
			sh.OwnerName, sh.OwnerEmail, sh.OwnerPhone, sh.Notes, sh.Pictures,
			time.Now().UTC()))
		if err != nil {
			return errors.Wrap(err, "update shipment")
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func applyShipmentUpdate(sh *models.Shipment, in models.ShipmentUpdateInput) {
	if in.Manufacturer != nil {
		sh.Manufacturer = *in.Manufacturer
	}
	if in.Model != nil {
		sh.Model = *in.Model
	}
	if in.VIN != nil {
		sh.VIN = *in.VIN
	}
	if in.Year != nil {
		if *in.Year == 0 {
			sh.Year = nil
		} else {
			sh.Year = in.Year
		}
	}
	if in.Color != nil {
		sh.Color = emptyToNil(in.Color)
	}
	if in.OwnerName != nil {
		sh.OwnerName = *in.OwnerName
	}
	if in.OwnerEmail != nil {
		sh.OwnerEmail = emptyToNil(in.OwnerEmail)
	}
	if in.OwnerPhone != nil {
		sh.OwnerPhone = emptyToNil(in.OwnerPhone)
	}
	if in.Notes != nil {
		sh.Notes = emptyToNil(in.Notes)
	}
	if in.Pictures != nil {
		sh.Pictures = append([]string{}, (*in.Pictures)...)
	}
}

// DeleteShipment удаляет отправку; история уходит каскадом.
func (s *Storage) DeleteShipment(ctx context.Context, id uint64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM shipments WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete shipment")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("shipment %d not found", id)
	}
	return nil
}

func (s *Storage) SearchShipments(ctx context.Context, q models.ShipmentSearch) ([]*models.Shipment, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	query := strings.TrimSpace(q.Query)
	pattern := "%" + escapeLike(query) + "%"

	rows, err := s.db.Query(ctx, `
SELECT `+shipmentColumns+`
FROM shipments
WHERE ($1 = '' OR vin ILIKE $2 OR manufacturer ILIKE $2 OR model ILIKE $2 OR owner_name ILIKE $2)
  AND ($3::BIGINT IS NULL OR current_status_id = $3)
ORDER BY created_at DESC, id DESC
LIMIT $4
`, query, pattern, q.StatusID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "search shipments")
	}
	defer rows.Close()

	out := make([]*models.Shipment, 0)
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan shipment")
		}
		out = append(out, sh)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
