package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/BearBump/CarTrack/internal/apperr"
	"github.com/BearBump/CarTrack/internal/broker/messages"
	"github.com/BearBump/CarTrack/internal/models"
	"github.com/BearBump/CarTrack/internal/placeholder"
	"github.com/BearBump/CarTrack/internal/tracklink"
	"github.com/pkg/errors"
)

const (
	fallbackSubject = "{{manufacturer}} {{model}}: %s"
	fallbackBody    = `<p>Hello {{ownerName}},</p>
<p>your {{manufacturer}} {{model}} (VIN {{vin}}) has reached the stage <b>%s</b>.</p>
<p>Follow the progress at <a href="{{trackingUrl}}">{{trackingUrl}}</a>.</p>`
)

type Repository interface {
	GetShipment(ctx context.Context, id uint64) (*models.Shipment, error)
	GetStatus(ctx context.Context, id uint64) (*models.Status, error)
	GetTemplate(ctx context.Context, id uint64) (*models.Template, error)
	DefaultTemplate(ctx context.Context, typ models.TemplateType) (*models.Template, error)
}

type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Notifier рендерит письмо владельцу и кладёт его в Kafka; отправкой занимается notifier-процесс.
type Notifier struct {
	repo    Repository
	pub     Publisher
	topic   string
	baseURL string
	now     func() time.Time
}

func New(repo Repository, pub Publisher, topic, baseURL string) *Notifier {
	return &Notifier{
		repo:    repo,
		pub:     pub,
		topic:   topic,
		baseURL: baseURL,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// StatusEntered вызывается после коммита перехода в статус с notifyOnEntry.
func (n *Notifier) StatusEntered(ctx context.Context, sh *models.Shipment, st *models.Status) error {
	if sh.OwnerEmail == nil || *sh.OwnerEmail == "" {
		return nil
	}
	tpl, err := n.repo.DefaultTemplate(ctx, models.TemplateTypeEmail)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return apperr.Notification(err, "load default email template")
	}

	subject, body := n.render(sh, tpl, st.Name)
	statusID := st.ID
	msg := messages.NotificationRequested{
		To:          *sh.OwnerEmail,
		Subject:     subject,
		HTMLBody:    body,
		ShipmentID:  sh.ID,
		StatusID:    &statusID,
		RequestedAt: n.now(),
	}
	if tpl != nil {
		msg.TemplateID = &tpl.ID
	}
	return n.publish(ctx, msg)
}

// SendTemplate отправляет письмо вручную по запросу оператора. При templateID=nil берётся шаблон по умолчанию.
func (n *Notifier) SendTemplate(ctx context.Context, shipmentID uint64, templateID *uint64) error {
	sh, err := n.repo.GetShipment(ctx, shipmentID)
	if err != nil {
		return err
	}
	if sh.OwnerEmail == nil || *sh.OwnerEmail == "" {
		return apperr.Validation("shipment has no owner email")
	}

	var tpl *models.Template
	if templateID != nil {
		tpl, err = n.repo.GetTemplate(ctx, *templateID)
		if err != nil {
			return err
		}
	} else {
		tpl, err = n.repo.DefaultTemplate(ctx, models.TemplateTypeEmail)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
	}

	statusName := "registered"
	if sh.CurrentStatusID != nil {
		if st, err := n.repo.GetStatus(ctx, *sh.CurrentStatusID); err == nil {
			statusName = st.Name
		}
	}
	subject, body := n.render(sh, tpl, statusName)
	msg := messages.NotificationRequested{
		To:          *sh.OwnerEmail,
		Subject:     subject,
		HTMLBody:    body,
		ShipmentID:  sh.ID,
		StatusID:    sh.CurrentStatusID,
		RequestedAt: n.now(),
	}
	if tpl != nil {
		msg.TemplateID = &tpl.ID
	}
	return n.publish(ctx, msg)
}

func (n *Notifier) render(sh *models.Shipment, tpl *models.Template, statusName string) (string, string) {
	v := placeholder.FromShipment(sh, tracklink.Build(n.baseURL, sh.TrackingToken), n.now())

	subjectTmpl := fmt.Sprintf(fallbackSubject, statusName)
	bodyTmpl := fmt.Sprintf(fallbackBody, html.EscapeString(statusName))
	if tpl != nil {
		bodyTmpl = tpl.Content
		if tpl.Subject != nil && strings.TrimSpace(*tpl.Subject) != "" {
			subjectTmpl = *tpl.Subject
		}
	}
	return placeholder.Replace(subjectTmpl, v), placeholder.Replace(bodyTmpl, v)
}

func (n *Notifier) publish(ctx context.Context, msg messages.NotificationRequested) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return apperr.Notification(err, "marshal notification")
	}
	key := []byte(strconv.FormatUint(msg.ShipmentID, 10))
	if err := n.pub.Publish(ctx, n.topic, key, b); err != nil {
		return apperr.Notification(err, "publish notification")
	}
	slog.Info("notification queued", "shipment_id", msg.ShipmentID, "to", msg.To)
	return nil
}
