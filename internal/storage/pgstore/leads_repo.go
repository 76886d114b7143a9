package pgstore

import (
	"context"
	"strings"
	"time"

	"github.com/BearBump/CarTrack/internal/apperr"
	"github.com/BearBump/CarTrack/internal/models"
	"github.com/pkg/errors"
)

const leadColumns = `id, name, email, phone, document_status, message, contacted, created_at`

func scanLead(r rowScanner) (*models.Lead, error) {
	var l models.Lead
	if err := r.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.DocumentStatus, &l.Message, &l.Contacted, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Storage) CreateLead(ctx context.Context, in models.LeadCreateInput) (*models.Lead, error) {
	l, err := scanLead(s.db.QueryRow(ctx, `
INSERT INTO leads (name, email, phone, document_status, message, contacted, created_at)
VALUES ($1,$2,$3,$4,$5,false,$6)
RETURNING `+leadColumns,
		in.Name, strings.TrimSpace(in.Email), in.Phone, in.DocumentStatus, emptyToNil(in.Message), time.Now().UTC()))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("a request from %s has already been received", in.Email)
		}
		return nil, errors.Wrap(err, "insert lead")
	}
	return l, nil
}

// ListLeads возвращает заявки от новых к старым; contacted=nil отключает фильтр.
func (s *Storage) ListLeads(ctx context.Context, contacted *bool) ([]*models.Lead, error) {
	rows, err := s.db.Query(ctx, `
SELECT `+leadColumns+`
FROM leads
WHERE ($1::BOOLEAN IS NULL OR contacted = $1)
ORDER BY created_at DESC, id DESC
`, contacted)
	if err != nil {
		return nil, errors.Wrap(err, "select leads")
	}
	defer rows.Close()

	out := make([]*models.Lead, 0)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan lead")
		}
		out = append(out, l)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) SetLeadContacted(ctx context.Context, id uint64, contacted bool) (*models.Lead, error) {
	l, err := scanLead(s.db.QueryRow(ctx, `
UPDATE leads SET contacted = $2 WHERE id = $1
RETURNING `+leadColumns, id, contacted))
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound("lead %d not found", id)
		}
		return nil, errors.Wrap(err, "update lead")
	}
	return l, nil
}

func (s *Storage) DeleteLead(ctx context.Context, id uint64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete lead")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead %d not found", id)
	}
	return nil
}

// DeleteLeads удаляет пачку; отсутствующие id пропускаются, возвращается число удалённых.
func (s *Storage) DeleteLeads(ctx context.Context, ids []uint64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	raw := make([]int64, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, int64(id))
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM leads WHERE id = ANY($1)`, raw)
	if err != nil {
		return 0, errors.Wrap(err, "delete leads")
	}
	return int(tag.RowsAffected()), nil
}
