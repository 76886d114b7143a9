package cartrack_api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/BearBump/CarTrack/internal/apperr"
	"github.com/BearBump/CarTrack/internal/models"
	"github.com/BearBump/CarTrack/internal/services/shipments"
)

func (a *CarTrackAPI) searchShipments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := models.ShipmentSearch{Query: q.Get("q")}
	if v := q.Get("statusId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, r, apperr.Validation("invalid statusId"))
			return
		}
		search.StatusID = &id
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, apperr.Validation("invalid limit"))
			return
		}
		search.Limit = n
	}
	out, err := a.shipments.Search(r.Context(), search)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *CarTrackAPI) createShipment(w http.ResponseWriter, r *http.Request) {
	var in models.ShipmentCreateInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	sh, err := a.shipments.Create(r.Context(), in, actorFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sh)
}

func (a *CarTrackAPI) getShipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	sh, err := a.shipments.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

func (a *CarTrackAPI) updateShipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in models.ShipmentUpdateInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	sh, err := a.shipments.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

func (a *CarTrackAPI) deleteShipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.shipments.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *CarTrackAPI) transitionShipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in shipments.TransitionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	h, err := a.shipments.Transition(r.Context(), id, in, actorFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h)
}

func (a *CarTrackAPI) shipmentHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := a.shipments.History(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *CarTrackAPI) shipmentTimeline(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	steps, err := a.shipments.Timeline(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, steps)
}

type sendEmailRequest struct {
	TemplateID *uint64 `json:"templateId,omitempty"`
}

// sendShipmentEmail: ручная отправка письма владельцу, без templateId берётся шаблон по умолчанию.
func (a *CarTrackAPI) sendShipmentEmail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req sendEmailRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.notifier.SendTemplate(r.Context(), id, req.TemplateID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"queued": true})
}

func (a *CarTrackAPI) renderDocument(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	templateID, err := pathID(r, "templateId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := a.templates.Render(r.Context(), templateID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (a *CarTrackAPI) renderDocumentPDF(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	templateID, err := pathID(r, "templateId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	pdf, name, err := a.templates.RenderPDF(r.Context(), templateID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
