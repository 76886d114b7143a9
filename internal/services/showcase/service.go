package showcase

import (
	"context"
	"strings"

	"github.com/BearBump/CarTrack/internal/apperr"
	"github.com/BearBump/CarTrack/internal/models"
	"github.com/BearBump/CarTrack/internal/validation"
)

type Repository interface {
	CreateShowcaseItem(ctx context.Context, in models.ShowcaseCreateInput) (*models.ShowcaseItem, error)
	UpdateShowcaseItem(ctx context.Context, id uint64, in models.ShowcaseUpdateInput) (*models.ShowcaseItem, error)
	DeleteShowcaseItem(ctx context.Context, id uint64) error
	ListShowcaseItems(ctx context.Context, visibleOnly bool) ([]*models.ShowcaseItem, error)
	ReorderShowcaseItems(ctx context.Context, ids []uint64) error
}

type Service struct {
	repo Repository
}

func New(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, in models.ShowcaseCreateInput) (*models.ShowcaseItem, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return s.repo.CreateShowcaseItem(ctx, in)
}

func (s *Service) Update(ctx context.Context, id uint64, in models.ShowcaseUpdateInput) (*models.ShowcaseItem, error) {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperr.Validation("title must not be empty")
		}
		in.Title = &title
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return s.repo.UpdateShowcaseItem(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id uint64) error {
	return s.repo.DeleteShowcaseItem(ctx, id)
}

// List: публичная витрина видит только visible-элементы.
func (s *Service) List(ctx context.Context, visibleOnly bool) ([]*models.ShowcaseItem, error) {
	return s.repo.ListShowcaseItems(ctx, visibleOnly)
}

func (s *Service) Reorder(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return apperr.Validation("ids must not be empty")
	}
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return apperr.Validation("duplicate item id %d", id)
		}
		seen[id] = struct{}{}
	}
	return s.repo.ReorderShowcaseItems(ctx, ids)
}
