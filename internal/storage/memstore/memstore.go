// Package memstore is an in-memory store with the same semantics as pgstore.
// Используется в тестах сервисов и HTTP-слоя.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BearBump/CarTrack/internal/apperr"
	"github.com/BearBump/CarTrack/internal/models"
)

type Store struct {
	mu sync.Mutex

	seq       uint64
	statuses  map[uint64]*models.Status
	shipments map[uint64]*models.Shipment
	history   []*models.StatusHistory
	leads     map[uint64]*models.Lead
	templates map[uint64]*models.Template
	users     map[uint64]*models.User
	showcase  map[uint64]*models.ShowcaseItem

	now func() time.Time
}

func New() *Store {
	return &Store{
		statuses:  make(map[uint64]*models.Status),
		shipments: make(map[uint64]*models.Shipment),
		leads:     make(map[uint64]*models.Lead),
		templates: make(map[uint64]*models.Template),
		users:     make(map[uint64]*models.User),
		showcase:  make(map[uint64]*models.ShowcaseItem),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) nextID() uint64 {
	s.seq++
	return s.seq
}

func emptyToNil(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	v := *p
	return &v
}

func copyStatus(st *models.Status) *models.Status {
	c := *st
	return &c
}

func copyShipment(sh *models.Shipment) *models.Shipment {
	c := *sh
	c.Pictures = append([]string{}, sh.Pictures...)
	return &c
}

// ---- statuses ----

func (s *Store) CreateStatus(ctx context.Context, in models.StatusCreateInput) (*models.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.statuses {
		if st.Name == in.Name {
			return nil, apperr.Conflict("status %q already exists", in.Name)
		}
	}
	order := 0
	if in.Order != nil {
		order = *in.Order
	} else {
		order = -1
		for _, st := range s.statuses {
			if st.Order > order {
				order = st.Order
			}
		}
		order++
	}
	now := s.now()
	st := &models.Status{
		ID:            s.nextID(),
		Name:          in.Name,
		Description:   emptyToNil(in.Description),
		Order:         order,
		IsTransit:     in.IsTransit,
		NotifyOnEntry: in.NotifyOnEntry,
		Color:         emptyToNil(in.Color),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.statuses[st.ID] = st
	return copyStatus(st), nil
}

func (s *Store) GetStatus(ctx context.Context, id uint64) (*models.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[id]
	if !ok {
		return nil, apperr.NotFound("status %d not found", id)
	}
	return copyStatus(st), nil
}

func (s *Store) ListStatuses(ctx context.Context) ([]*models.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Status, 0, len(s.statuses))
	for _, st := range s.statuses {
		out = append(out, copyStatus(st))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uint64, in models.StatusUpdateInput) (*models.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[id]
	if !ok {
		return nil, apperr.NotFound("status %d not found", id)
	}
	if in.Name != nil {
		for _, other := range s.statuses {
			if other.ID != id && other.Name == *in.Name {
				return nil, apperr.Conflict("status %q already exists", *in.Name)
			}
		}
	}
	c := copyStatus(st)
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Description != nil {
		c.Description = emptyToNil(in.Description)
	}
	if in.Order != nil {
		c.Order = *in.Order
	}
	if in.IsTransit != nil {
		c.IsTransit = *in.IsTransit
	}
	if in.NotifyOnEntry != nil {
		c.NotifyOnEntry = *in.NotifyOnEntry
	}
	if in.Color != nil {
		c.Color = emptyToNil(in.Color)
	}
	c.UpdatedAt = s.now()
	s.statuses[id] = c
	return copyStatus(c), nil
}

func (s *Store) ReorderStatuses(ctx context.Context, ids []uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.statuses[id]; !ok {
			return apperr.NotFound("status %d not found", id)
		}
	}
	now := s.now()
	for i, id := range ids {
		s.statuses[id].Order = i
		s.statuses[id].UpdatedAt = now
	}
	return nil
}

func (s *Store) CountShipmentsWithStatus(ctx context.Context, statusID uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countWithStatus(statusID), nil
}

func (s *Store) countWithStatus(statusID uint64) int {
	n := 0
	for _, sh := range s.shipments {
		if sh.CurrentStatusID != nil && *sh.CurrentStatusID == statusID {
			n++
		}
	}
	return n
}

func (s *Store) DeleteStatus(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.statuses[id]; !ok {
		return apperr.NotFound("status %d not found", id)
	}
	if s.countWithStatus(id) > 0 {
		return apperr.Conflict("Cannot delete: shipments are using this status")
	}
	delete(s.statuses, id)
	for _, h := range s.history {
		if h.StatusID != nil && *h.StatusID == id {
			h.StatusID = nil
		}
	}
	return nil
}

// ---- shipments ----

func (s *Store) CreateShipment(ctx context.Context, in models.ShipmentCreateInput, token string, createdBy *uint64) (*models.Shipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sh := range s.shipments {
		if sh.TrackingToken == token {
			return nil, apperr.Conflict("tracking token already in use")
		}
	}
	now := s.now()
	sh := &models.Shipment{
		ID:            s.nextID(),
		TrackingToken: token,
		Manufacturer:  in.Manufacturer,
		Model:         in.Model,
		VIN:           in.VIN,
		Year:          in.Year,
		Color:         emptyToNil(in.Color),
		OwnerName:     in.OwnerName,
		OwnerEmail:    emptyToNil(in.OwnerEmail),
		OwnerPhone:    emptyToNil(in.OwnerPhone),
		Notes:         emptyToNil(in.Notes),
		Pictures:      append([]string{}, in.Pictures...),
		CreatedAt:     now,
		UpdatedAt:     now,
		CreatedBy:     createdBy,
	}
	s.shipments[sh.ID] = sh
	return copyShipment(sh), nil
}

func (s *Store) GetShipment(ctx context.Context, id uint64) (*models.Shipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shipments[id]
	if !ok {
		return nil, apperr.NotFound("shipment %d not found", id)
	}
	return copyShipment(sh), nil
}

func (s *Store) GetShipmentByToken(ctx context.Context, token string) (*models.Shipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sh := range s.shipments {
		if sh.TrackingToken == token {
			return copyShipment(sh), nil
		}
	}
	return nil, apperr.NotFound("shipment not found")
}

func (s *Store) UpdateShipment(ctx context.Context, id uint64, in models.ShipmentUpdateInput) (*models.Shipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shipments[id]
	if !ok {
		return nil, apperr.NotFound("shipment %d not found", id)
	}
	c := copyShipment(sh)
	if in.Manufacturer != nil {
		c.Manufacturer = *in.Manufacturer
	}
	if in.Model != nil {
		c.Model = *in.Model
	}
	if in.VIN != nil {
		c.VIN = *in.VIN
	}
	if in.Year != nil {
		if *in.Year == 0 {
			c.Year = nil
		} else {
			y := *in.Year
			c.Year = &y
		}
	}
	if in.Color != nil {
		c.Color = emptyToNil(in.Color)
	}
	if in.OwnerName != nil {
		c.OwnerName = *in.OwnerName
	}
	if in.OwnerEmail != nil {
		c.OwnerEmail = emptyToNil(in.OwnerEmail)
	}
	if in.OwnerPhone != nil {
		c.OwnerPhone = emptyToNil(in.OwnerPhone)
	}
	if in.Notes != nil {
		c.Notes = emptyToNil(in.Notes)
	}
	if in.Pictures != nil {
		c.Pictures = append([]string{}, (*in.Pictures)...)
	}
	c.UpdatedAt = s.now()
	s.shipments[id] = c
	return copyShipment(c), nil
}

func (s *Store) DeleteShipment(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shipments[id]; !ok {
		return apperr.NotFound("shipment %d not found", id)
	}
	delete(s.shipments, id)
	kept := s.history[:0]
	for _, h := range s.history {
		if h.ShipmentID != id {
			kept = append(kept, h)
		}
	}
	s.history = kept
	return nil
}

func (s *Store) SearchShipments(ctx context.Context, q models.ShipmentSearch) ([]*models.Shipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	needle := strings.ToLower(strings.TrimSpace(q.Query))

	out := make([]*models.Shipment, 0)
	for _, sh := range s.shipments {
		if q.StatusID != nil && (sh.CurrentStatusID == nil || *sh.CurrentStatusID != *q.StatusID) {
			continue
		}
		if needle != "" && !matches(sh, needle) {
			continue
		}
		out = append(out, copyShipment(sh))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func matches(sh *models.Shipment, needle string) bool {
	for _, f := range []string{sh.VIN, sh.Manufacturer, sh.Model, sh.OwnerName} {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// ---- history ----

func (s *Store) ApplyTransition(ctx context.Context, tr models.Transition) (*models.StatusHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[tr.StatusID]
	if !ok {
		return nil, apperr.NotFound("status %d not found", tr.StatusID)
	}
	sh, ok := s.shipments[tr.ShipmentID]
	if !ok {
		return nil, apperr.NotFound("shipment %d not found", tr.ShipmentID)
	}

	statusID := tr.StatusID
	sh.CurrentStatusID = &statusID
	sh.UpdatedAt = tr.ChangedAt.UTC()

	h := &models.StatusHistory{
		ID:         s.nextID(),
		ShipmentID: tr.ShipmentID,
		StatusID:   &statusID,
		StatusName: st.Name,
		ChangedAt:  tr.ChangedAt.UTC(),
		ChangedBy:  tr.ChangedBy,
		Notes:      emptyToNil(tr.Notes),
	}
	s.history = append(s.history, h)
	c := *h
	return &c, nil
}

func (s *Store) ListStatusHistory(ctx context.Context, shipmentID uint64) ([]*models.StatusHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.StatusHistory, 0)
	for _, h := range s.history {
		if h.ShipmentID == shipmentID {
			c := *h
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ChangedAt.Equal(out[j].ChangedAt) {
			return out[i].ChangedAt.Before(out[j].ChangedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
