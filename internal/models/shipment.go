package models

import "time"

type Shipment struct {
	ID              uint64    `json:"id"`
	TrackingToken   string    `json:"trackingToken"`
	Manufacturer    string    `json:"manufacturer"`
	Model           string    `json:"model"`
	VIN             string    `json:"vin"`
	Year            *int      `json:"year,omitempty"`
	Color           *string   `json:"color,omitempty"`
	OwnerName       string    `json:"ownerName"`
	OwnerEmail      *string   `json:"ownerEmail,omitempty"`
	OwnerPhone      *string   `json:"ownerPhone,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
	Pictures        []string  `json:"pictures"`
	CurrentStatusID *uint64   `json:"currentStatusId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	CreatedBy       *uint64   `json:"createdBy,omitempty"`
}

type ShipmentCreateInput struct {
	Manufacturer string   `json:"manufacturer" validate:"required,max=100"`
	Model        string   `json:"model" validate:"required,max=100"`
	VIN          string   `json:"vin" validate:"required,max=32"`
	Year         *int     `json:"year,omitempty"`
	Color        *string  `json:"color,omitempty" validate:"omitempty,max=50"`
	OwnerName    string   `json:"ownerName" validate:"required,max=200"`
	OwnerEmail   *string  `json:"ownerEmail,omitempty" validate:"omitempty,email"`
	OwnerPhone   *string  `json:"ownerPhone,omitempty" validate:"omitempty,max=32"`
	Notes        *string  `json:"notes,omitempty"`
	Pictures     []string `json:"pictures,omitempty" validate:"omitempty,dive,url"`
}

// ShipmentUpdateInput не содержит ни токена, ни текущего статуса:
// статус меняется только через переход (Transition).
type ShipmentUpdateInput struct {
	Manufacturer *string   `json:"manufacturer,omitempty" validate:"omitempty,max=100"`
	Model        *string   `json:"model,omitempty" validate:"omitempty,max=100"`
	VIN          *string   `json:"vin,omitempty" validate:"omitempty,max=32"`
	Year         *int      `json:"year,omitempty"`
	Color        *string   `json:"color,omitempty" validate:"omitempty,max=50"`
	OwnerName    *string   `json:"ownerName,omitempty" validate:"omitempty,max=200"`
	OwnerEmail   *string   `json:"ownerEmail,omitempty" validate:"omitempty,email"`
	OwnerPhone   *string   `json:"ownerPhone,omitempty" validate:"omitempty,max=32"`
	Notes        *string   `json:"notes,omitempty"`
	Pictures     *[]string `json:"pictures,omitempty" validate:"omitempty,dive,url"`
}

type ShipmentSearch struct {
	Query    string
	StatusID *uint64
	Limit    int
}

// StatusHistory — неизменяемая запись о переходе. StatusID становится nil,
// если статус позже удалили; StatusName хранит имя на момент перехода.
type StatusHistory struct {
	ID         uint64    `json:"id"`
	ShipmentID uint64    `json:"shipmentId"`
	StatusID   *uint64   `json:"statusId,omitempty"`
	StatusName string    `json:"statusName"`
	ChangedAt  time.Time `json:"changedAt"`
	ChangedBy  *uint64   `json:"changedBy,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
}

// Transition is written in one transaction: the pointer plus the history entry.
type Transition struct {
	ShipmentID uint64
	StatusID   uint64
	StatusName string
	ChangedBy  *uint64
	Notes      *string
	ChangedAt  time.Time
}
