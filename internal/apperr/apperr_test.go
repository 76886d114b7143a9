package apperr

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestIs_MatchesSentinelByKind(t *testing.T) {
	err := Conflict("Cannot delete: %d shipment(s) are using this status", 3)
	require.True(t, errors.Is(err, ErrConflict))
	require.False(t, errors.Is(err, ErrNotFound))
	require.Equal(t, "Cannot delete: 3 shipment(s) are using this status", err.Error())
}

func TestIs_ThroughWrap(t *testing.T) {
	err := pkgerrors.Wrap(NotFound("shipment %d not found", 7), "load shipment")
	require.True(t, errors.Is(err, ErrNotFound))
	require.Equal(t, KindNotFound, KindOf(err))
}

func TestKindOf_PlainErrorIsInternal(t *testing.T) {
	require.Equal(t, KindInternal, KindOf(errors.New("boom")))
	require.Equal(t, "internal", KindOf(errors.New("boom")).String())
}

func TestNotification_KeepsCause(t *testing.T) {
	cause := errors.New("kafka down")
	err := Notification(cause, "publish notification")
	require.True(t, errors.Is(err, ErrNotification))
	require.True(t, errors.Is(err, cause))
	require.Contains(t, err.Error(), "kafka down")
}
