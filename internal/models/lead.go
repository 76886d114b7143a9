package models

import "time"

type DocumentStatus string

const (
	DocumentStatusHasPassport        DocumentStatus = "HAS_PASSPORT"
	DocumentStatusPassportInProgress DocumentStatus = "PASSPORT_IN_PROGRESS"
	DocumentStatusNoPassport         DocumentStatus = "NO_PASSPORT"
	DocumentStatusNotRequired        DocumentStatus = "NOT_REQUIRED"
)

func (d DocumentStatus) Valid() bool {
	switch d {
	case DocumentStatusHasPassport, DocumentStatusPassportInProgress, DocumentStatusNoPassport, DocumentStatusNotRequired:
		return true
	}
	return false
}

type Lead struct {
	ID             uint64         `json:"id"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone"`
	DocumentStatus DocumentStatus `json:"documentStatus"`
	Message        *string        `json:"message,omitempty"`
	Contacted      bool           `json:"contacted"`
	CreatedAt      time.Time      `json:"createdAt"`
}

type LeadCreateInput struct {
	Name           string         `json:"name" validate:"required,max=200"`
	Email          string         `json:"email" validate:"required,email"`
	Phone          string         `json:"phone" validate:"required,max=32"`
	DocumentStatus DocumentStatus `json:"documentStatus" validate:"required"`
	Message        *string        `json:"message,omitempty" validate:"omitempty,max=2000"`
}
