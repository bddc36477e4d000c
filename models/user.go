package models

import (
	"fmt"
	"strings"
)

// UserPayload is the raw backend shape for an authenticated identity.
type UserPayload struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

func NewUser(p UserPayload) (User, error) {
	if strings.TrimSpace(p.ID) == "" {
		return User{}, fmt.Errorf("user payload missing _id")
	}
	if strings.TrimSpace(p.Email) == "" {
		return User{}, fmt.Errorf("user %s missing email", p.ID)
	}
	role := p.Role
	if role == "" {
		role = "user"
	}
	return User{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
		Phone: p.Phone,
		Role:  role,
	}, nil
}
