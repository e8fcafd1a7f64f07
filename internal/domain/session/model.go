package session

import (
	"time"

	"zoonica-gateway/internal/ports/auth"
)

// Session es la única fuente de verdad del usuario actual: se crea en el
// login y se borra en el logout.
type Session struct {
	Token string

	UserID string
	Email  string
	Name   string

	// UpstreamToken es el token del backend Zoónica para este usuario.
	UpstreamToken string

	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

func (s Session) Claims() auth.Claims {
	return auth.Claims{
		UserID:        s.UserID,
		Email:         s.Email,
		Name:          s.Name,
		UpstreamToken: s.UpstreamToken,
	}
}

// Identity es lo que devuelve el backend al autenticar.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Token  string
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignupInput struct {
	Nombre   string `json:"nombre" validate:"required,max=80"`
	Username string `json:"username" validate:"required,max=40"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}
