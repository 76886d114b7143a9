package showcase

import (
	"context"
	"testing"

	"github.com/BearBump/CarTrack/internal/apperr"
	"github.com/BearBump/CarTrack/internal/models"
	"github.com/BearBump/CarTrack/internal/storage/memstore"
	"github.com/stretchr/testify/require"
)

func TestShowcase_Flow(t *testing.T) {
	svc := New(memstore.New())
	ctx := context.Background()

	_, err := svc.Create(ctx, models.ShowcaseCreateInput{Title: "GR86", ImageURL: "not a url"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	a, err := svc.Create(ctx, models.ShowcaseCreateInput{Title: "GR86", ImageURL: "https://cdn.example/gr86.jpg", Visible: true})
	require.NoError(t, err)
	b, err := svc.Create(ctx, models.ShowcaseCreateInput{Title: "Hidden", ImageURL: "https://cdn.example/h.jpg"})
	require.NoError(t, err)

	public, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, public, 1)
	require.Equal(t, a.ID, public[0].ID)

	require.ErrorIs(t, svc.Reorder(ctx, []uint64{a.ID, a.ID}), apperr.ErrValidation)
	require.ErrorIs(t, svc.Reorder(ctx, []uint64{b.ID, 404}), apperr.ErrNotFound)
	require.NoError(t, svc.Reorder(ctx, []uint64{b.ID, a.ID}))

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Equal(t, []uint64{b.ID, a.ID}, []uint64{all[0].ID, all[1].ID})

	visible := true
	_, err = svc.Update(ctx, b.ID, models.ShowcaseUpdateInput{Visible: &visible})
	require.NoError(t, err)
	public, _ = svc.List(ctx, true)
	require.Len(t, public, 2)

	require.NoError(t, svc.Delete(ctx, a.ID))
	require.ErrorIs(t, svc.Delete(ctx, a.ID), apperr.ErrNotFound)
}
