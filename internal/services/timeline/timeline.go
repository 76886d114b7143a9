// Package timeline derives the linear progress view of a shipment from the
// ordered status list, its current status pointer and its history.
package timeline

import (
	"github.com/BearBump/CarTrack/internal/models"
)

type Step struct {
	Status        *models.Status        `json:"status"`
	Completed     bool                  `json:"completed"`
	IsCurrentStep bool                  `json:"isCurrentStep"`
	HistoryEntry  *models.StatusHistory `json:"historyEntry,omitempty"`
}

// Project builds the steps. statuses must already be in pipeline order.
// If a status was entered several times only its latest history entry is attached.
func Project(statuses []*models.Status, currentStatusID *uint64, history []*models.StatusHistory) []Step {
	currentIndex := -1
	if currentStatusID != nil {
		for i, st := range statuses {
			if st.ID == *currentStatusID {
				currentIndex = i
				break
			}
		}
	}

	latest := latestByStatus(history)

	steps := make([]Step, 0, len(statuses))
	for i, st := range statuses {
		steps = append(steps, Step{
			Status:        st,
			Completed:     i <= currentIndex,
			IsCurrentStep: currentStatusID != nil && st.ID == *currentStatusID,
			HistoryEntry:  latest[st.ID],
		})
	}
	return steps
}

func latestByStatus(history []*models.StatusHistory) map[uint64]*models.StatusHistory {
	out := make(map[uint64]*models.StatusHistory, len(history))
	for _, h := range history {
		if h == nil || h.StatusID == nil {
			continue
		}
		prev, ok := out[*h.StatusID]
		if !ok || later(h, prev) {
			out[*h.StatusID] = h
		}
	}
	return out
}

// later breaks equal timestamps by id: rows are inserted in order.
func later(a, b *models.StatusHistory) bool {
	if a.ChangedAt.Equal(b.ChangedAt) {
		return a.ID > b.ID
	}
	return a.ChangedAt.After(b.ChangedAt)
}

// CurrentStep returns the step marked current, if any.
func CurrentStep(steps []Step) (Step, bool) {
	for _, s := range steps {
		if s.IsCurrentStep {
			return s, true
		}
	}
	return Step{}, false
}
