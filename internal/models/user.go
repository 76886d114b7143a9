package models

import "time"

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStaff
}

type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

type UserCreateInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=200"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     Role   `json:"role" validate:"required"`
}

// Actor is whoever performs the action. The zero Actor means an automatic change.
type Actor struct {
	UserID uint64
	Role   Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// UserRef возвращает ссылку на пользователя для записи в БД (nil для системных действий).
func (a Actor) UserRef() *uint64 {
	if a.UserID == 0 {
		return nil
	}
	id := a.UserID
	return &id
}
