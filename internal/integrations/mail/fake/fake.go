package fake

import (
	"context"
	"log/slog"
	"sync"

	"github.com/BearBump/CarTrack/internal/integrations/mail"
)

// Sender — заглушка на случай, когда SMTP не настроен: письма только логируются
// и запоминаются (для тестов).
type Sender struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func New() *Sender { return &Sender{} }

// FailWith заставляет все следующие Send возвращать err.
func (s *Sender) FailWith(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *Sender) Send(ctx context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	slog.Info("fake mail sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

func (s *Sender) Sent() []mail.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mail.Message{}, s.sent...)
}
