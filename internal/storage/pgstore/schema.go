package pgstore

import (
	"context"

	"github.com/pkg/errors"
)

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  email TEXT NOT NULL,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_email ON users(lower(email))`,
		`
CREATE TABLE IF NOT EXISTS statuses (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  description TEXT NULL,
  sort_order INT NOT NULL,
  is_transit BOOLEAN NOT NULL DEFAULT false,
  notify_on_entry BOOLEAN NOT NULL DEFAULT false,
  color TEXT NULL,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_statuses_sort_order ON statuses(sort_order, id)`,
		`
CREATE TABLE IF NOT EXISTS shipments (
  id BIGSERIAL PRIMARY KEY,
  tracking_token TEXT NOT NULL UNIQUE,
  manufacturer TEXT NOT NULL,
  model TEXT NOT NULL,
  vin TEXT NOT NULL,
  year INT NULL,
  color TEXT NULL,
  owner_name TEXT NOT NULL,
  owner_email TEXT NULL,
  owner_phone TEXT NULL,
  notes TEXT NULL,
  pictures TEXT[] NOT NULL DEFAULT '{}',
  current_status_id BIGINT NULL REFERENCES statuses(id) ON DELETE RESTRICT,
  created_by BIGINT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_shipments_current_status_id ON shipments(current_status_id)`,
		`CREATE INDEX IF NOT EXISTS idx_shipments_created_at ON shipments(created_at DESC, id DESC)`,
		// История только дописывается; при удалении статуса остаётся снимок имени.
		`
CREATE TABLE IF NOT EXISTS status_history (
  id BIGSERIAL PRIMARY KEY,
  shipment_id BIGINT NOT NULL REFERENCES shipments(id) ON DELETE CASCADE,
  status_id BIGINT NULL REFERENCES statuses(id) ON DELETE SET NULL,
  status_name TEXT NOT NULL,
  changed_at TIMESTAMPTZ NOT NULL,
  changed_by BIGINT NULL REFERENCES users(id) ON DELETE SET NULL,
  notes TEXT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_status_history_shipment_changed_at ON status_history(shipment_id, changed_at, id)`,
		`
CREATE TABLE IF NOT EXISTS leads (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT NOT NULL,
  document_status TEXT NOT NULL,
  message TEXT NULL,
  contacted BOOLEAN NOT NULL DEFAULT false,
  created_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at DESC)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_leads_email ON leads(lower(email))`,
		`
CREATE TABLE IF NOT EXISTS templates (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  type TEXT NOT NULL,
  subject TEXT NULL,
  content TEXT NOT NULL,
  is_default BOOLEAN NOT NULL DEFAULT false,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
		// Не больше одного шаблона по умолчанию на тип.
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_templates_default_per_type ON templates(type) WHERE is_default`,
		`
CREATE TABLE IF NOT EXISTS showcase_items (
  id BIGSERIAL PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NULL,
  image_url TEXT NOT NULL,
  sort_order INT NOT NULL,
  visible BOOLEAN NOT NULL DEFAULT true,
  created_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_showcase_items_sort_order ON showcase_items(sort_order, id)`,
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}
