package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/BearBump/CarTrack/internal/apperr"
	"github.com/BearBump/CarTrack/internal/models"
	"github.com/stretchr/testify/require"
)

func TestStore_TransitionAndHistory(t *testing.T) {
	ctx := context.Background()
	s := New()

	a, err := s.CreateStatus(ctx, models.StatusCreateInput{Name: "Ordered"})
	require.NoError(t, err)
	b, err := s.CreateStatus(ctx, models.StatusCreateInput{Name: "Shipped"})
	require.NoError(t, err)
	require.Equal(t, 0, a.Order)
	require.Equal(t, 1, b.Order)

	sh, err := s.CreateShipment(ctx, models.ShipmentCreateInput{Manufacturer: "Audi", Model: "A4", VIN: "V", OwnerName: "O"}, "t1", nil)
	require.NoError(t, err)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = s.ApplyTransition(ctx, models.Transition{ShipmentID: sh.ID, StatusID: b.ID, ChangedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	_, err = s.ApplyTransition(ctx, models.Transition{ShipmentID: sh.ID, StatusID: a.ID, ChangedAt: base})
	require.NoError(t, err)

	hist, err := s.ListStatusHistory(ctx, sh.ID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	require.Equal(t, "Ordered", hist[0].StatusName)

	// неизвестный статус: ничего не меняется
	_, err = s.ApplyTransition(ctx, models.Transition{ShipmentID: sh.ID, StatusID: 999, ChangedAt: base})
	require.ErrorIs(t, err, apperr.ErrNotFound)
	got, _ := s.GetShipment(ctx, sh.ID)
	require.Equal(t, a.ID, *got.CurrentStatusID)
	hist, _ = s.ListStatusHistory(ctx, sh.ID)
	require.Len(t, hist, 2)

	require.ErrorIs(t, s.DeleteStatus(ctx, a.ID), apperr.ErrConflict)
	require.NoError(t, s.DeleteStatus(ctx, b.ID))
	hist, _ = s.ListStatusHistory(ctx, sh.ID)
	require.Nil(t, hist[1].StatusID)
	require.Equal(t, "Shipped", hist[1].StatusName)

	require.NoError(t, s.DeleteShipment(ctx, sh.ID))
	hist, _ = s.ListStatusHistory(ctx, sh.ID)
	require.Empty(t, hist)
}

func TestStore_ReorderUnknownLeavesOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, _ := s.CreateStatus(ctx, models.StatusCreateInput{Name: "A"})
	b, _ := s.CreateStatus(ctx, models.StatusCreateInput{Name: "B"})

	require.ErrorIs(t, s.ReorderStatuses(ctx, []uint64{b.ID, 42}), apperr.ErrNotFound)
	list, _ := s.ListStatuses(ctx)
	require.Equal(t, a.ID, list[0].ID)

	require.NoError(t, s.ReorderStatuses(ctx, []uint64{b.ID, a.ID}))
	list, _ = s.ListStatuses(ctx)
	require.Equal(t, b.ID, list[0].ID)
}

func TestStore_TemplatesSingleDefault(t *testing.T) {
	ctx := context.Background()
	s := New()
	x, _ := s.CreateTemplate(ctx, models.TemplateCreateInput{Name: "x", Type: models.TemplateTypeEmail, Content: "x", IsDefault: true})
	y, _ := s.CreateTemplate(ctx, models.TemplateCreateInput{Name: "y", Type: models.TemplateTypeEmail, Content: "y", IsDefault: true})

	def, err := s.DefaultTemplate(ctx, models.TemplateTypeEmail)
	require.NoError(t, err)
	require.Equal(t, y.ID, def.ID)

	_, err = s.SetDefaultTemplate(ctx, x.ID)
	require.NoError(t, err)
	def, _ = s.DefaultTemplate(ctx, models.TemplateTypeEmail)
	require.Equal(t, x.ID, def.ID)
}

func TestStore_SearchLimitAndQuery(t *testing.T) {
	ctx := context.Background()
	s := New()
	for i := 0; i < 3; i++ {
		_, err := s.CreateShipment(ctx, models.ShipmentCreateInput{Manufacturer: "Honda", Model: "Civic", VIN: "V", OwnerName: "O"}, string(rune('a'+i)), nil)
		require.NoError(t, err)
	}
	_, err := s.CreateShipment(ctx, models.ShipmentCreateInput{Manufacturer: "Mazda", Model: "MX-5", VIN: "W", OwnerName: "P"}, "z", nil)
	require.NoError(t, err)

	out, err := s.SearchShipments(ctx, models.ShipmentSearch{Query: "HONDA", Limit: 2})
	require.NoError(t, err)
	require.Len(t, out, 2)

	out, err = s.SearchShipments(ctx, models.ShipmentSearch{})
	require.NoError(t, err)
	require.Len(t, out, 4)
}
