package statuses

import (
	"context"
	"strings"

	"github.com/BearBump/CarTrack/internal/apperr"
	"github.com/BearBump/CarTrack/internal/models"
	"github.com/BearBump/CarTrack/internal/validation"
)

type Repository interface {
	CreateStatus(ctx context.Context, in models.StatusCreateInput) (*models.Status, error)
	GetStatus(ctx context.Context, id uint64) (*models.Status, error)
	ListStatuses(ctx context.Context) ([]*models.Status, error)
	UpdateStatus(ctx context.Context, id uint64, in models.StatusUpdateInput) (*models.Status, error)
	ReorderStatuses(ctx context.Context, ids []uint64) error
	CountShipmentsWithStatus(ctx context.Context, statusID uint64) (int, error)
	DeleteStatus(ctx context.Context, id uint64) error
}

// TrackingInvalidator сбрасывает кэш публичных страниц отслеживания,
// в которых показан весь пайплайн.
type TrackingInvalidator interface {
	InvalidateAllTracking(ctx context.Context)
}

type Option func(*Service)

func WithTrackingInvalidator(inv TrackingInvalidator) Option {
	return func(s *Service) { s.tracking = inv }
}

// Service is the status registry: the ordered pipeline of import stages.
type Service struct {
	repo     Repository
	tracking TrackingInvalidator
}

func New(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) changed(ctx context.Context) {
	if s.tracking != nil {
		s.tracking.InvalidateAllTracking(ctx)
	}
}

func (s *Service) Create(ctx context.Context, in models.StatusCreateInput) (*models.Status, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Order != nil && *in.Order < 0 {
		return nil, apperr.Validation("order must not be negative")
	}
	st, err := s.repo.CreateStatus(ctx, in)
	if err != nil {
		return nil, err
	}
	s.changed(ctx)
	return st, nil
}

func (s *Service) Get(ctx context.Context, id uint64) (*models.Status, error) {
	return s.repo.GetStatus(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*models.Status, error) {
	return s.repo.ListStatuses(ctx)
}

// Update меняет только переданные поля; порядок остальных статусов не трогается.
func (s *Service) Update(ctx context.Context, id uint64, in models.StatusUpdateInput) (*models.Status, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation("name must not be empty")
		}
		in.Name = &name
	}
	if in.Order != nil && *in.Order < 0 {
		return nil, apperr.Validation("order must not be negative")
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	st, err := s.repo.UpdateStatus(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.changed(ctx)
	return st, nil
}

// Reorder присваивает order = позиция в ids. Всё или ничего.
func (s *Service) Reorder(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return apperr.Validation("ids must not be empty")
	}
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return apperr.Validation("duplicate status id %d", id)
		}
		seen[id] = struct{}{}
	}
	if err := s.repo.ReorderStatuses(ctx, ids); err != nil {
		return err
	}
	s.changed(ctx)
	return nil
}

// Delete отказывает, пока статус является текущим хотя бы у одной отправки.
func (s *Service) Delete(ctx context.Context, id uint64) error {
	if _, err := s.repo.GetStatus(ctx, id); err != nil {
		return err
	}
	n, err := s.repo.CountShipmentsWithStatus(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict("Cannot delete: %d shipment(s) are using this status", n)
	}
	if err := s.repo.DeleteStatus(ctx, id); err != nil {
		return err
	}
	s.changed(ctx)
	return nil
}
