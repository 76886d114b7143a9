package pgstore

import (
	"context"
	"time"

	"github.com/BearBump/CarTrack/internal/apperr"
	"github.com/BearBump/CarTrack/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const templateColumns = `id, name, type, subject, content, is_default, created_at, updated_at`

func scanTemplate(r rowScanner) (*models.Template, error) {
	var t models.Template
	if err := r.Scan(&t.ID, &t.Name, &t.Type, &t.Subject, &t.Content, &t.IsDefault, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// clearDefault снимает флаг по умолчанию со всех шаблонов типа, кроме keepID.
func clearDefault(ctx context.Context, tx pgx.Tx, typ models.TemplateType, keepID uint64) error {
	_, err := tx.Exec(ctx, `UPDATE templates SET is_default = false WHERE type = $1 AND is_default AND id <> $2`, typ, keepID)
	return errors.Wrap(err, "clear default template")
}

func (s *Storage) CreateTemplate(ctx context.Context, in models.TemplateCreateInput) (*models.Template, error) {
	now := time.Now().UTC()
	var out *models.Template
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if in.IsDefault {
			if err := clearDefault(ctx, tx, in.Type, 0); err != nil {
				return err
			}
		}
		t, err := scanTemplate(tx.QueryRow(ctx, `
INSERT INTO templates (name, type, subject, content, is_default, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$6)
RETURNING `+templateColumns,
			in.Name, in.Type, emptyToNil(in.Subject), in.Content, in.IsDefault, now))
		if err != nil {
			if isUniqueViolation(err) {
				return apperr.Conflict("another %s template became default concurrently", in.Type)
			}
			return errors.Wrap(err, "insert template")
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Storage) GetTemplate(ctx context.Context, id uint64) (*models.Template, error) {
	t, err := scanTemplate(s.db.QueryRow(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound("template %d not found", id)
		}
		return nil, errors.Wrap(err, "select template")
	}
	return t, nil
}

func (s *Storage) ListTemplates(ctx context.Context, typ *models.TemplateType) ([]*models.Template, error) {
	rows, err := s.db.Query(ctx, `
SELECT `+templateColumns+`
FROM templates
WHERE ($1::TEXT IS NULL OR type = $1)
ORDER BY type ASC, is_default DESC, name ASC, id ASC
`, typ)
	if err != nil {
		return nil, errors.Wrap(err, "select templates")
	}
	defer rows.Close()

	out := make([]*models.Template, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan template")
		}
		out = append(out, t)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) UpdateTemplate(ctx context.Context, id uint64, in models.TemplateUpdateInput) (*models.Template, error) {
	var out *models.Template
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		t, err := scanTemplate(tx.QueryRow(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if isNoRows(err) {
				return apperr.NotFound("template %d not found", id)
			}
			return errors.Wrap(err, "select template")
		}

		if in.Name != nil {
			t.Name = *in.Name
		}
		if in.Subject != nil {
			t.Subject = emptyToNil(in.Subject)
		}
		if in.Content != nil {
			t.Content = *in.Content
		}
		if in.IsDefault != nil {
			t.IsDefault = *in.IsDefault
		}
		if t.IsDefault {
			if err := clearDefault(ctx, tx, t.Type, t.ID); err != nil {
				return err
			}
		}

		updated, err := scanTemplate(tx.QueryRow(ctx, `
UPDATE templates
SET name = $2, subject = $3, content = $4, is_default = $5, updated_at = $6
WHERE id = $1
RETURNING `+templateColumns,
			id, t.Name, t.Subject, t.Content, t.IsDefault, time.Now().UTC()))
		if err != nil {
			if isUniqueViolation(err) {
				return apperr.Conflict("another %s template became default concurrently", t.Type)
			}
			return errors.Wrap(err, "update template")
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetDefaultTemplate делает шаблон единственным по умолчанию для своего типа.
func (s *Storage) SetDefaultTemplate(ctx context.Context, id uint64) (*models.Template, error) {
	isDefault := true
	return s.UpdateTemplate(ctx, id, models.TemplateUpdateInput{IsDefault: &isDefault})
}

// DefaultTemplate возвращает шаблон по умолчанию или NotFound, если его нет.
func (s *Storage) DefaultTemplate(ctx context.Context, typ models.TemplateType) (*models.Template, error) {
	t, err := scanTemplate(s.db.QueryRow(ctx, `SELECT `+templateColumns+` FROM templates WHERE type = $1 AND is_default`, typ))
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound("no default %s template", typ)
		}
		return nil, errors.Wrap(err, "select default template")
	}
	return t, nil
}

func (s *Storage) DeleteTemplate(ctx context.Context, id uint64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete template")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("template %d not found", id)
	}
	return nil
}
