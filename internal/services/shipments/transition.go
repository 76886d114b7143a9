package shipments

import (
	"context"
	"log/slog"
	"strings"

	"github.com/BearBump/CarTrack/internal/apperr"
	"github.com/BearBump/CarTrack/internal/models"
)

type TransitionInput struct {
	StatusID uint64  `json:"statusId"`
	Notes    *string `json:"notes,omitempty"`
}

// Transition переводит отправку в статус. Указатель и запись истории пишутся
// одной транзакцией; уведомление — после коммита и не влияет на результат.
// Правил предшествования нет: можно вернуться назад или повторить текущий статус.
func (s *Service) Transition(ctx context.Context, shipmentID uint64, in TransitionInput, actor models.Actor) (*models.StatusHistory, error) {
	if in.StatusID == 0 {
		return nil, apperr.Validation("statusId is required")
	}
	st, err := s.repo.GetStatus(ctx, in.StatusID)
	if err != nil {
		return nil, err
	}
	sh, err := s.repo.GetShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	var notes *string
	if in.Notes != nil {
		if n := strings.TrimSpace(*in.Notes); n != "" {
			notes = &n
		}
	}

	h, err := s.repo.ApplyTransition(ctx, models.Transition{
		ShipmentID: sh.ID,
		StatusID:   st.ID,
		StatusName: st.Name,
		ChangedBy:  actor.UserRef(),
		Notes:      notes,
		ChangedAt:  s.now(),
	})
	if err != nil {
		return nil, err
	}

	slog.Info("shipment status changed",
		"shipment_id", sh.ID,
		"status_id", st.ID,
		"status", st.Name,
		"changed_by", actor.UserID,
	)

	s.invalidateTracking(ctx, sh.TrackingToken)

	statusID := st.ID
	sh.CurrentStatusID = &statusID
	s.notifyEntered(ctx, sh, st)

	return h, nil
}

func (s *Service) notifyEntered(ctx context.Context, sh *models.Shipment, st *models.Status) {
	if s.notifier == nil || !st.NotifyOnEntry {
		return
	}
	if sh.OwnerEmail == nil || strings.TrimSpace(*sh.OwnerEmail) == "" {
		return
	}
	if err := s.notifier.StatusEntered(ctx, sh, st); err != nil {
		// переход уже закоммичен, ошибку уведомления только логируем
		slog.Error("status notification failed",
			"shipment_id", sh.ID,
			"status_id", st.ID,
			"error", apperr.Notification(err, "notify owner").Error(),
		)
	}
}
