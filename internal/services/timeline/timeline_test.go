package timeline

import (
	"testing"
	"time"

	"github.com/BearBump/CarTrack/internal/models"
	"github.com/stretchr/testify/require"
)

func u64(v uint64) *uint64 { return &v }

func pipeline() []*models.Status {
	return []*models.Status{
		{ID: 10, Name: "Ordered", Order: 0},
		{ID: 20, Name: "In Transit", Order: 1, IsTransit: true},
		{ID: 30, Name: "Delivered", Order: 2},
	}
}

func completed(steps []Step) []bool {
	out := make([]bool, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.Completed)
	}
	return out
}

func current(steps []Step) []bool {
	out := make([]bool, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.IsCurrentStep)
	}
	return out
}

func TestProject_InTransit(t *testing.T) {
	steps := Project(pipeline(), u64(20), nil)
	require.Len(t, steps, 3)
	require.Equal(t, []bool{true, true, false}, completed(steps))
	require.Equal(t, []bool{false, true, false}, current(steps))

	cur, ok := CurrentStep(steps)
	require.True(t, ok)
	require.Equal(t, "In Transit", cur.Status.Name)
}

func TestProject_NoCurrentStatus(t *testing.T) {
	steps := Project(pipeline(), nil, nil)
	require.Equal(t, []bool{false, false, false}, completed(steps))
	require.Equal(t, []bool{false, false, false}, current(steps))
	_, ok := CurrentStep(steps)
	require.False(t, ok)
}

func TestProject_CurrentNotInList(t *testing.T) {
	steps := Project(pipeline(), u64(99), nil)
	require.Equal(t, []bool{false, false, false}, completed(steps))
	require.Equal(t, []bool{false, false, false}, current(steps))
}

func TestProject_LatestHistoryPerStatus(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	history := []*models.StatusHistory{
		{ID: 1, StatusID: u64(10), ChangedAt: t0},
		{ID: 2, StatusID: u64(20), ChangedAt: t0.Add(time.Hour)},
		{ID: 3, StatusID: u64(10), ChangedAt: t0.Add(2 * time.Hour)},
		{ID: 4, StatusID: nil, StatusName: "Removed", ChangedAt: t0.Add(3 * time.Hour)},
	}
	steps := Project(pipeline(), u64(10), history)

	require.Equal(t, []bool{true, false, false}, completed(steps))
	require.NotNil(t, steps[0].HistoryEntry)
	require.Equal(t, uint64(3), steps[0].HistoryEntry.ID)
	require.NotNil(t, steps[1].HistoryEntry)
	require.Equal(t, uint64(2), steps[1].HistoryEntry.ID)
	require.Nil(t, steps[2].HistoryEntry)
}

func TestProject_SameTimestampPrefersHigherID(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	history := []*models.StatusHistory{
		{ID: 8, StatusID: u64(30), ChangedAt: t0},
		{ID: 7, StatusID: u64(30), ChangedAt: t0},
	}
	steps := Project(pipeline(), u64(30), history)
	require.Equal(t, []bool{true, true, true}, completed(steps))
	require.Equal(t, uint64(8), steps[2].HistoryEntry.ID)
}

func TestProject_Empty(t *testing.T) {
	require.Empty(t, Project(nil, u64(1), nil))
}
