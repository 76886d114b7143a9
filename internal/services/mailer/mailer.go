package mailer

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BearBump/CarTrack/internal/broker/messages"
	"github.com/BearBump/CarTrack/internal/integrations/mail"
)

type Consumer interface {
	Consume(ctx context.Context, handler func(key, value []byte) error) error
}

// Mailer читает NotificationRequested из Kafka и отправляет письма.
// Ошибки доставки логируются и считаются, сообщение всё равно коммитится:
// повторов нет, переход статуса от письма не зависит.
type Mailer struct {
	consumer Consumer
	sender   mail.Sender
	timeout  time.Duration

	startedAtUnixNano int64
	lastMessageNano   atomic.Int64
	totalReceived     atomic.Int64
	totalSent         atomic.Int64
	totalFailed       atomic.Int64
	totalMalformed    atomic.Int64
	lastErrorMu       sync.Mutex
	lastError         string
}

func New(consumer Consumer, sender mail.Sender) *Mailer {
	return &Mailer{
		consumer:          consumer,
		sender:            sender,
		timeout:           30 * time.Second,
		startedAtUnixNano: time.Now().UTC().UnixNano(),
	}
}

func (m *Mailer) WithSendTimeout(d time.Duration) *Mailer {
	if d > 0 {
		m.timeout = d
	}
	return m
}

type Stats struct {
	StartedAt      time.Time  `json:"startedAt"`
	LastMessageAt  *time.Time `json:"lastMessageAt,omitempty"`
	TotalReceived  int64      `json:"totalReceived"`
	TotalSent      int64      `json:"totalSent"`
	TotalFailed    int64      `json:"totalFailed"`
	TotalMalformed int64      `json:"totalMalformed"`
	LastError      string     `json:"lastError,omitempty"`
}

func (m *Mailer) Stats() Stats {
	st := Stats{
		StartedAt:      time.Unix(0, m.startedAtUnixNano).UTC(),
		TotalReceived:  m.totalReceived.Load(),
		TotalSent:      m.totalSent.Load(),
		TotalFailed:    m.totalFailed.Load(),
		TotalMalformed: m.totalMalformed.Load(),
	}
	if n := m.lastMessageNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastMessageAt = &t
	}
	m.lastErrorMu.Lock()
	st.LastError = m.lastError
	m.lastErrorMu.Unlock()
	return st
}

func (m *Mailer) Run(ctx context.Context) error {
	return m.consumer.Consume(ctx, func(key, value []byte) error {
		m.Handle(ctx, value)
		return nil
	})
}

// Handle обрабатывает одно сообщение; никогда не возвращает ошибку наружу.
func (m *Mailer) Handle(ctx context.Context, value []byte) {
	m.totalReceived.Add(1)
	m.lastMessageNano.Store(time.Now().UTC().UnixNano())

	var msg messages.NotificationRequested
	if err := json.Unmarshal(value, &msg); err != nil || msg.To == "" {
		m.totalMalformed.Add(1)
		slog.Error("malformed notification skipped", "payload_size", len(value))
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.sender.Send(sendCtx, mail.Message{To: msg.To, Subject: msg.Subject, HTMLBody: msg.HTMLBody})
	if err != nil {
		m.totalFailed.Add(1)
		m.setLastError(err)
		slog.Error("notification delivery failed",
			"shipment_id", msg.ShipmentID,
			"to", msg.To,
			"error", err.Error(),
		)
		return
	}
	m.totalSent.Add(1)
	slog.Info("notification delivered", "shipment_id", msg.ShipmentID, "to", msg.To)
}

func (m *Mailer) setLastError(err error) {
	m.lastErrorMu.Lock()
	m.lastError = err.Error()
	m.lastErrorMu.Unlock()
}
