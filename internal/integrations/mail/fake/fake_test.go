package fake

import (
	"context"
	"errors"
	"testing"

	"github.com/BearBump/CarTrack/internal/integrations/mail"
	"github.com/stretchr/testify/require"
)

func TestSender(t *testing.T) {
	s := New()
	require.NoError(t, s.Send(context.Background(), mail.Message{To: "a@b.c", Subject: "s"}))
	require.Len(t, s.Sent(), 1)

	s.FailWith(errors.New("down"))
	require.Error(t, s.Send(context.Background(), mail.Message{To: "a@b.c"}))
	require.Len(t, s.Sent(), 1)
}
