package cartrack_api

import (
	"github.com/BearBump/CarTrack/internal/services/auth"
	"github.com/BearBump/CarTrack/internal/services/leads"
	"github.com/BearBump/CarTrack/internal/services/notify"
	"github.com/BearBump/CarTrack/internal/services/shipments"
	"github.com/BearBump/CarTrack/internal/services/showcase"
	"github.com/BearBump/CarTrack/internal/services/statuses"
	"github.com/BearBump/CarTrack/internal/services/templates"
	"github.com/go-chi/chi/v5"
)

type Deps struct {
	Auth      *auth.Service
	Shipments *shipments.Service
	Statuses  *statuses.Service
	Templates *templates.Service
	Leads     *leads.Service
	Showcase  *showcase.Service
	Notifier  *notify.Notifier
}

type CarTrackAPI struct {
	auth      *auth.Service
	shipments *shipments.Service
	statuses  *statuses.Service
	templates *templates.Service
	leads     *leads.Service
	showcase  *showcase.Service
	notifier  *notify.Notifier
}

func New(d Deps) *CarTrackAPI {
	return &CarTrackAPI{
		auth:      d.Auth,
		shipments: d.Shipments,
		statuses:  d.Statuses,
		templates: d.Templates,
		leads:     d.Leads,
		showcase:  d.Showcase,
		notifier:  d.Notifier,
	}
}

// Routes вешает /api на роутер. Публичные ручки без токена, остальные —
// только с bearer-токеном, /api/admin — только для ADMIN.
func (a *CarTrackAPI) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", a.login)
		r.Get("/track/{token}", a.track)
		r.Post("/leads", a.submitLead)
		r.Get("/showcase", a.listPublicShowcase)

		r.Group(func(r chi.Router) {
			r.Use(a.authenticate)

			r.Get("/auth/me", a.me)
			r.Get("/statuses", a.listStatuses)
			r.Get("/templates", a.listTemplates)
			r.Get("/templates/{id}", a.getTemplate)

			r.Get("/shipments", a.searchShipments)
			r.Post("/shipments", a.createShipment)
			r.Get("/shipments/{id}", a.getShipment)
			r.Patch("/shipments/{id}", a.updateShipment)
			r.Delete("/shipments/{id}", a.deleteShipment)
			r.Post("/shipments/{id}/status", a.transitionShipment)
			r.Get("/shipments/{id}/history", a.shipmentHistory)
			r.Get("/shipments/{id}/timeline", a.shipmentTimeline)
			r.Post("/shipments/{id}/email", a.sendShipmentEmail)
			r.Get("/shipments/{id}/documents/{templateId}", a.renderDocument)
			r.Get("/shipments/{id}/documents/{templateId}/pdf", a.renderDocumentPDF)

			r.Get("/leads", a.listLeads)
			r.Get("/leads/export.xlsx", a.exportLeads)
			r.Post("/leads/bulk-delete", a.deleteLeads)
			r.Patch("/leads/{id}", a.setLeadContacted)
			r.Delete("/leads/{id}", a.deleteLead)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(a.authenticate, requireAdmin)

			r.Post("/statuses", a.createStatus)
			r.Post("/statuses/reorder", a.reorderStatuses)
			r.Get("/statuses/{id}", a.getStatus)
			r.Patch("/statuses/{id}", a.updateStatus)
			r.Delete("/statuses/{id}", a.deleteStatus)

			r.Post("/templates", a.createTemplate)
			r.Patch("/templates/{id}", a.updateTemplate)
			r.Delete("/templates/{id}", a.deleteTemplate)
			r.Post("/templates/{id}/default", a.setDefaultTemplate)

			r.Get("/showcase", a.listAllShowcase)
			r.Post("/showcase", a.createShowcaseItem)
			r.Post("/showcase/reorder", a.reorderShowcase)
			r.Patch("/showcase/{id}", a.updateShowcaseItem)
			r.Delete("/showcase/{id}", a.deleteShowcaseItem)

			r.Get("/users", a.listUsers)
			r.Post("/users", a.createUser)
			r.Delete("/users/{id}", a.deleteUser)
		})
	})
}
