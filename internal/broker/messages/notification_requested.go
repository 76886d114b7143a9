package messages

import "time"

// NotificationRequested is a mail already rendered by the API; the notifier only sends it.
type NotificationRequested struct {
	To          string    `json:"to"`
	Subject     string    `json:"subject"`
	HTMLBody    string    `json:"html_body"`
	ShipmentID  uint64    `json:"shipment_id"`
	StatusID    *uint64   `json:"status_id,omitempty"`
	TemplateID  *uint64   `json:"template_id,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}
