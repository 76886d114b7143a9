package shipments

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/BearBump/CarTrack/internal/models"
	"github.com/BearBump/CarTrack/internal/services/timeline"
)

const vinVisibleTail = 6

// PublicTracking is what the owner sees by token. It carries no owner contact data.
type PublicTracking struct {
	TrackingToken string          `json:"trackingToken"`
	Manufacturer  string          `json:"manufacturer"`
	Model         string          `json:"model"`
	Year          *int            `json:"year,omitempty"`
	Color         *string         `json:"color,omitempty"`
	VIN           string          `json:"vin"`
	Pictures      []string        `json:"pictures"`
	CurrentStatus *models.Status  `json:"currentStatus,omitempty"`
	Steps         []timeline.Step `json:"steps"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Timeline is the staff view with full history entries.
func (s *Service) Timeline(ctx context.Context, id uint64) ([]timeline.Step, error) {
	sh, err := s.repo.GetShipment(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, sh)
}

func (s *Service) project(ctx context.Context, sh *models.Shipment) ([]timeline.Step, error) {
	statuses, err := s.repo.ListStatuses(ctx)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.ListStatusHistory(ctx, sh.ID)
	if err != nil {
		return nil, err
	}
	return timeline.Project(statuses, sh.CurrentStatusID, history), nil
}

// Track собирает публичную страницу по токену, через кэш если он настроен.
func (s *Service) Track(ctx context.Context, token string) (*PublicTracking, error) {
	token = strings.TrimSpace(token)
	if s.cache != nil && s.trackingTTL > 0 && token != "" {
		if b, ok, err := s.cache.Get(ctx, trackingKey(token)); err == nil && ok {
			var pt PublicTracking
			if json.Unmarshal(b, &pt) == nil {
				return &pt, nil
			}
		}
	}

	sh, err := s.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	steps, err := s.project(ctx, sh)
	if err != nil {
		return nil, err
	}

	pt := &PublicTracking{
		TrackingToken: sh.TrackingToken,
		Manufacturer:  sh.Manufacturer,
		Model:         sh.Model,
		Year:          sh.Year,
		Color:         sh.Color,
		VIN:           MaskVIN(sh.VIN),
		Pictures:      sh.Pictures,
		Steps:         publicSteps(steps),
		UpdatedAt:     sh.UpdatedAt,
	}
	if step, ok := timeline.CurrentStep(steps); ok {
		pt.CurrentStatus = step.Status
	}

	if s.cache != nil && s.trackingTTL > 0 {
		if b, err := json.Marshal(pt); err == nil {
			if err := s.cache.Set(ctx, trackingKey(token), b, s.trackingTTL); err != nil {
				slog.Warn("tracking cache set failed", "error", err.Error())
			}
		}
	}
	return pt, nil
}

// publicSteps убирает из истории, кто именно менял статус.
func publicSteps(steps []timeline.Step) []timeline.Step {
	out := make([]timeline.Step, len(steps))
	for i, st := range steps {
		out[i] = st
		if st.HistoryEntry != nil {
			h := *st.HistoryEntry
			h.ChangedBy = nil
			out[i].HistoryEntry = &h
		}
	}
	return out
}

// MaskVIN оставляет видимыми последние символы VIN.
func MaskVIN(vin string) string {
	r := []rune(vin)
	if len(r) <= vinVisibleTail {
		return vin
	}
	return strings.Repeat("*", len(r)-vinVisibleTail) + string(r[len(r)-vinVisibleTail:])
}

func (s *Service) invalidateTracking(ctx context.Context, token string) {
	if s.cache == nil || token == "" {
		return
	}
	if err := s.cache.Del(ctx, trackingKey(token)); err != nil {
		slog.Warn("tracking cache invalidate failed", "error", err.Error())
	}
}

// InvalidateAllTracking сбрасывает публичные страницы всех отправок:
// они содержат весь реестр статусов.
func (s *Service) InvalidateAllTracking(ctx context.Context) {
	if s.cache == nil {
		return
	}
	n, err := s.cache.DelPrefix(ctx, trackingKeyPrefix)
	if err != nil {
		slog.Warn("tracking cache flush failed", "error", err.Error())
		return
	}
	slog.Info("tracking cache flushed", "keys", n)
}

const trackingKeyPrefix = "tracking:"

func trackingKey(token string) string {
	return trackingKeyPrefix + token + ":public"
}
