package session

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Authenticator es el servicio de cuentas del backend.
type Authenticator interface {
	SignIn(ctx context.Context, in LoginInput) (Identity, error)
	SignUp(ctx context.Context, in SignupInput) (Identity, error)
}
