package pgstore

import (
	"context"
	"strings"
	"time"

	"github.com/BearBump/CarTrack/internal/apperr"
	"github.com/BearBump/CarTrack/internal/models"
	"github.com/pkg/errors"
)

const userColumns = `id, email, name, password_hash, role, created_at`

func scanUser(r rowScanner) (*models.User, error) {
	var u models.User
	if err := r.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Storage) CreateUser(ctx context.Context, u models.User) (*models.User, error) {
	out, err := scanUser(s.db.QueryRow(ctx, `
INSERT INTO users (email, name, password_hash, role, created_at)
VALUES ($1,$2,$3,$4,$5)
RETURNING `+userColumns,
		strings.TrimSpace(u.Email), u.Name, u.PasswordHash, u.Role, time.Now().UTC()))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("user %s already exists", u.Email)
		}
		return nil, errors.Wrap(err, "insert user")
	}
	return out, nil
}

func (s *Storage) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound("user %d not found", id)
		}
		return nil, errors.Wrap(err, "select user")
	}
	return u, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email)))
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, errors.Wrap(err, "select user by email")
	}
	return u, nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "select users")
	}
	defer rows.Close()

	out := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan user")
		}
		out = append(out, u)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id uint64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete user")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user %d not found", id)
	}
	return nil
}
