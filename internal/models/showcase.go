package models

import "time"

type ShowcaseItem struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl"`
	Order       int       `json:"order"`
	Visible     bool      `json:"visible"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ShowcaseCreateInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	ImageURL    string  `json:"imageUrl" validate:"required,url"`
	Visible     bool    `json:"visible"`
}

type ShowcaseUpdateInput struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	ImageURL    *string `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Visible     *bool   `json:"visible,omitempty"`
}
