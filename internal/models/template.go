package models

import "time"

type TemplateType string

const (
	TemplateTypeContract TemplateType = "CONTRACT"
	TemplateTypeBill     TemplateType = "BILL"
	TemplateTypeEmail    TemplateType = "EMAIL"
)

func (t TemplateType) Valid() bool {
	switch t {
	case TemplateTypeContract, TemplateTypeBill, TemplateTypeEmail:
		return true
	}
	return false
}

type Template struct {
	ID        uint64       `json:"id"`
	Name      string       `json:"name"`
	Type      TemplateType `json:"type"`
	Subject   *string      `json:"subject,omitempty"`
	Content   string       `json:"content"`
	IsDefault bool         `json:"isDefault"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

type TemplateCreateInput struct {
	Name      string       `json:"name" validate:"required,max=200"`
	Type      TemplateType `json:"type" validate:"required"`
	Subject   *string      `json:"subject,omitempty" validate:"omitempty,max=300"`
	Content   string       `json:"content" validate:"required"`
	IsDefault bool         `json:"isDefault"`
}

type TemplateUpdateInput struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Subject   *string `json:"subject,omitempty" validate:"omitempty,max=300"`
	Content   *string `json:"content,omitempty"`
	IsDefault *bool   `json:"isDefault,omitempty"`
}
