package cartrack_api

import (
	"net/http"

	"github.com/BearBump/CarTrack/internal/apperr"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (a *CarTrackAPI) listLeads(w http.ResponseWriter, r *http.Request) {
	contacted, err := queryBool(r, "contacted")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := a.leads.List(r.Context(), contacted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *CarTrackAPI) exportLeads(w http.ResponseWriter, r *http.Request) {
	contacted, err := queryBool(r, "contacted")
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := a.leads.ExportXLSX(r.Context(), contacted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="leads.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

type contactedRequest struct {
	Contacted *bool `json:"contacted"`
}

func (a *CarTrackAPI) setLeadContacted(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req contactedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Contacted == nil {
		writeError(w, r, apperr.Validation("contacted is required"))
		return
	}
	l, err := a.leads.SetContacted(r.Context(), id, *req.Contacted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (a *CarTrackAPI) deleteLead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.leads.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *CarTrackAPI) deleteLeads(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := a.leads.DeleteMany(r.Context(), req.IDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}
