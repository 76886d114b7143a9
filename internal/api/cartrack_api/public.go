package cartrack_api

import (
	"net/http"

	"github.com/BearBump/CarTrack/internal/models"
	"github.com/go-chi/chi/v5"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *CarTrackAPI) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type meResponse struct {
	UserID uint64      `json:"userId"`
	Role   models.Role `json:"role"`
}

func (a *CarTrackAPI) me(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	writeJSON(w, http.StatusOK, meResponse{UserID: actor.UserID, Role: actor.Role})
}

// track отдаёт публичную страницу владельца по токену.
func (a *CarTrackAPI) track(w http.ResponseWriter, r *http.Request) {
	pt, err := a.shipments.Track(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pt)
}

func (a *CarTrackAPI) submitLead(w http.ResponseWriter, r *http.Request) {
	var in models.LeadCreateInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	l, err := a.leads.Submit(r.Context(), in, clientIP(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (a *CarTrackAPI) listPublicShowcase(w http.ResponseWriter, r *http.Request) {
	items, err := a.showcase.List(r.Context(), true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
