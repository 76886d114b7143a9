package models

import "time"

// Status is a stage of the import pipeline. Order sets the position; values need not be contiguous.
type Status struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	Order         int       `json:"order"`
	IsTransit     bool      `json:"isTransit"`
	NotifyOnEntry bool      `json:"notifyOnEntry"`
	Color         *string   `json:"color,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type StatusCreateInput struct {
	Name          string  `json:"name" validate:"required,max=100"`
	Description   *string `json:"description,omitempty"`
	Order         *int    `json:"order,omitempty"`
	IsTransit     bool    `json:"isTransit"`
	NotifyOnEntry bool    `json:"notifyOnEntry"`
	Color         *string `json:"color,omitempty" validate:"omitempty,max=32"`
}

// StatusUpdateInput — частичное обновление: nil означает "не менять".
type StatusUpdateInput struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Description   *string `json:"description,omitempty"`
	Order         *int    `json:"order,omitempty"`
	IsTransit     *bool   `json:"isTransit,omitempty"`
	NotifyOnEntry *bool   `json:"notifyOnEntry,omitempty"`
	Color         *string `json:"color,omitempty" validate:"omitempty,max=32"`
}
