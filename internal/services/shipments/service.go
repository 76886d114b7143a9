package shipments

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/BearBump/CarTrack/internal/apperr"
	"github.com/BearBump/CarTrack/internal/cache"
	"github.com/BearBump/CarTrack/internal/models"
	"github.com/BearBump/CarTrack/internal/validation"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	minYear        = 1886
	tokenAttempts  = 3
	maxSearchLimit = 500
)

type Repository interface {
	CreateShipment(ctx context.Context, in models.ShipmentCreateInput, token string, createdBy *uint64) (*models.Shipment, error)
	GetShipment(ctx context.Context, id uint64) (*models.Shipment, error)
	GetShipmentByToken(ctx context.Context, token string) (*models.Shipment, error)
	UpdateShipment(ctx context.Context, id uint64, in models.ShipmentUpdateInput) (*models.Shipment, error)
	DeleteShipment(ctx context.Context, id uint64) error
	SearchShipments(ctx context.Context, q models.ShipmentSearch) ([]*models.Shipment, error)

	ApplyTransition(ctx context.Context, tr models.Transition) (*models.StatusHistory, error)
	ListStatusHistory(ctx context.Context, shipmentID uint64) ([]*models.StatusHistory, error)

	GetStatus(ctx context.Context, id uint64) (*models.Status, error)
	ListStatuses(ctx context.Context) ([]*models.Status, error)
}

// Notifier получает управление после коммита перехода.
type Notifier interface {
	StatusEntered(ctx context.Context, sh *models.Shipment, st *models.Status) error
}

type Option func(*Service)

// WithTokenGenerator подменяет генератор токенов (в тестах).
func WithTokenGenerator(gen func() string) Option {
	return func(s *Service) { s.newToken = gen }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithTrackingCache включает кэш публичной страницы отслеживания.
func WithTrackingCache(c cache.BytesCache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.trackingTTL = ttl
	}
}

type Service struct {
	repo        Repository
	notifier    Notifier
	cache       cache.BytesCache
	trackingTTL time.Duration
	newToken    func() string
	now         func() time.Time
}

func New(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		newToken: uuid.NewString,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create заводит отправку с новым токеном. При коллизии токена (unique) пробует ещё раз.
func (s *Service) Create(ctx context.Context, in models.ShipmentCreateInput, actor models.Actor) (*models.Shipment, error) {
	trimCreate(&in)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := s.checkYear(in.Year); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < tokenAttempts; attempt++ {
		sh, err := s.repo.CreateShipment(ctx, in, s.newToken(), actor.UserRef())
		if err == nil {
			slog.Info("shipment created", "shipment_id", sh.ID, "created_by", actor.UserID)
			return sh, nil
		}
		if !errors.Is(err, apperr.ErrConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *Service) Get(ctx context.Context, id uint64) (*models.Shipment, error) {
	return s.repo.GetShipment(ctx, id)
}

func (s *Service) GetByToken(ctx context.Context, token string) (*models.Shipment, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.NotFound("shipment not found")
	}
	return s.repo.GetShipmentByToken(ctx, token)
}

// Update не трогает токен и текущий статус.
func (s *Service) Update(ctx context.Context, id uint64, in models.ShipmentUpdateInput) (*models.Shipment, error) {
	for name, p := range map[string]*string{
		"manufacturer": in.Manufacturer,
		"model":        in.Model,
		"vin":          in.VIN,
		"ownerName":    in.OwnerName,
	} {
		if p == nil {
			continue
		}
		*p = strings.TrimSpace(*p)
		if *p == "" {
			return nil, apperr.Validation("%s must not be empty", name)
		}
	}
	if in.OwnerEmail != nil {
		*in.OwnerEmail = strings.TrimSpace(*in.OwnerEmail)
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Year != nil && *in.Year != 0 {
		if err := s.checkYear(in.Year); err != nil {
			return nil, err
		}
	}

	sh, err := s.repo.UpdateShipment(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.invalidateTracking(ctx, sh.TrackingToken)
	return sh, nil
}

// Delete удаляет отправку вместе с историей.
func (s *Service) Delete(ctx context.Context, id uint64) error {
	sh, err := s.repo.GetShipment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteShipment(ctx, id); err != nil {
		return err
	}
	s.invalidateTracking(ctx, sh.TrackingToken)
	return nil
}

func (s *Service) Search(ctx context.Context, q models.ShipmentSearch) ([]*models.Shipment, error) {
	if q.Limit < 0 {
		return nil, apperr.Validation("limit must not be negative")
	}
	if q.Limit > maxSearchLimit {
		q.Limit = maxSearchLimit
	}
	q.Query = strings.TrimSpace(q.Query)
	return s.repo.SearchShipments(ctx, q)
}

func (s *Service) History(ctx context.Context, id uint64) ([]*models.StatusHistory, error) {
	if _, err := s.repo.GetShipment(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListStatusHistory(ctx, id)
}

func (s *Service) checkYear(year *int) error {
	if year == nil {
		return nil
	}
	maxYear := s.now().Year() + 1
	if *year < minYear || *year > maxYear {
		return apperr.Validation("year must be between %d and %d", minYear, maxYear)
	}
	return nil
}

func trimCreate(in *models.ShipmentCreateInput) {
	in.Manufacturer = strings.TrimSpace(in.Manufacturer)
	in.Model = strings.TrimSpace(in.Model)
	in.VIN = strings.TrimSpace(in.VIN)
	in.OwnerName = strings.TrimSpace(in.OwnerName)
	if in.OwnerEmail != nil {
		email := strings.TrimSpace(*in.OwnerEmail)
		in.OwnerEmail = &email
		if email == "" {
			in.OwnerEmail = nil
		}
	}
}
