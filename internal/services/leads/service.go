package leads

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/BearBump/CarTrack/internal/apperr"
	"github.com/BearBump/CarTrack/internal/models"
	"github.com/BearBump/CarTrack/internal/validation"
	"github.com/ttacon/libphonenumber"
)

type Repository interface {
	CreateLead(ctx context.Context, in models.LeadCreateInput) (*models.Lead, error)
	ListLeads(ctx context.Context, contacted *bool) ([]*models.Lead, error)
	SetLeadContacted(ctx context.Context, id uint64, contacted bool) (*models.Lead, error)
	DeleteLead(ctx context.Context, id uint64) error
	DeleteLeads(ctx context.Context, ids []uint64) (int, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

type Service struct {
	repo          Repository
	rl            RateLimiter
	perMinute     int64
	defaultRegion string
}

func New(repo Repository, rl RateLimiter, perMinute int64, defaultRegion string) *Service {
	if defaultRegion == "" {
		defaultRegion = "US"
	}
	return &Service{repo: repo, rl: rl, perMinute: perMinute, defaultRegion: strings.ToUpper(defaultRegion)}
}

// Submit принимает публичную форму заявки. clientKey (обычно IP) используется для лимита.
func (s *Service) Submit(ctx context.Context, in models.LeadCreateInput, clientKey string) (*models.Lead, error) {
	if err := s.allow(ctx, clientKey); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Message != nil {
		msg := strings.TrimSpace(*in.Message)
		in.Message = &msg
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if !in.DocumentStatus.Valid() {
		return nil, apperr.Validation("documentStatus must be one of HAS_PASSPORT, PASSPORT_IN_PROGRESS, NO_PASSPORT, NOT_REQUIRED")
	}
	phone, err := NormalizePhone(in.Phone, s.defaultRegion)
	if err != nil {
		return nil, err
	}
	in.Phone = phone

	l, err := s.repo.CreateLead(ctx, in)
	if err != nil {
		return nil, err
	}
	slog.Info("lead submitted", "lead_id", l.ID, "document_status", string(l.DocumentStatus))
	return l, nil
}

func (s *Service) allow(ctx context.Context, clientKey string) error {
	if s.rl == nil || s.perMinute <= 0 || clientKey == "" {
		return nil
	}
	ok, _, err := s.rl.Allow(ctx, "rl:lead:"+clientKey, s.perMinute, time.Minute)
	if err != nil {
		// Redis недоступен — форму не блокируем
		slog.Warn("lead rate limit check failed", "error", err.Error())
		return nil
	}
	if !ok {
		return apperr.RateLimited("too many requests, try again later")
	}
	return nil
}

// NormalizePhone приводит номер к E.164; номер без кода страны разбирается в region.
func NormalizePhone(raw, region string) (string, error) {
	p, err := libphonenumber.Parse(raw, region)
	if err != nil {
		return "", apperr.Validation("phone is not a valid phone number")
	}
	if !libphonenumber.IsValidNumber(p) {
		return "", apperr.Validation("phone is not a valid phone number")
	}
	return libphonenumber.Format(p, libphonenumber.E164), nil
}

func (s *Service) List(ctx context.Context, contacted *bool) ([]*models.Lead, error) {
	return s.repo.ListLeads(ctx, contacted)
}

func (s *Service) SetContacted(ctx context.Context, id uint64, contacted bool) (*models.Lead, error) {
	return s.repo.SetLeadContacted(ctx, id, contacted)
}

func (s *Service) Delete(ctx context.Context, id uint64) error {
	return s.repo.DeleteLead(ctx, id)
}

func (s *Service) DeleteMany(ctx context.Context, ids []uint64) (int, error) {
	if len(ids) == 0 {
		return 0, apperr.Validation("ids must not be empty")
	}
	return s.repo.DeleteLeads(ctx, ids)
}
