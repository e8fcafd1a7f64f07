package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"zoonica-gateway/internal/platform/logger"
	"zoonica-gateway/internal/ports/auth"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("session not found")
)

const DefaultTTL = 24 * time.Hour

type Service struct {
	repo     Repository
	authn    Authenticator
	ttl      time.Duration
	log      logger.Logger
	validate *validator.Validate
	now      func() time.Time

	onLogout []func(userID string)
}

var _ auth.AuthVerifier = (*Service)(nil)

func NewService(repo Repository, authn Authenticator, ttl time.Duration, log logger.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:     repo,
		authn:    authn,
		ttl:      ttl,
		log:      log.With(map[string]any{"module": "session"}),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	id, err := s.authn.SignIn(ctx, in)
	if err != nil {
		s.log.Warn("upstream sign in failed", map[string]any{"email": in.Email, "error": err})
		return Session{}, err
	}
	return s.open(ctx, id)
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (Session, error) {
	in.Nombre = strings.TrimSpace(in.Nombre)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	id, err := s.authn.SignUp(ctx, in)
	if err != nil {
		s.log.Warn("upstream sign up failed", map[string]any{"email": in.Email, "error": err})
		return Session{}, err
	}
	if id.Name == "" {
		id.Name = in.Nombre
	}
	if id.Email == "" {
		id.Email = in.Email
	}
	return s.open(ctx, id)
}

func (s *Service) open(ctx context.Context, id Identity) (Session, error) {
	if strings.TrimSpace(id.UserID) == "" {
		return Session{}, fmt.Errorf("%w: upstream returned no user id", ErrUnauthorized)
	}

	now := s.now()
	sess := Session{
		Token:         uuid.NewString(),
		UserID:        id.UserID,
		Email:         id.Email,
		Name:          id.Name,
		UpstreamToken: id.Token,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}

	s.log.Info("session opened", map[string]any{"user_id": sess.UserID})
	return sess, nil
}

// OnLogout registra fn para que corra después de cada logout con el
// usuario de la sesión borrada. Se configura antes de servir requests.
func (s *Service) OnLogout(fn func(userID string)) {
	if fn != nil {
		s.onLogout = append(s.onLogout, fn)
	}
}

// Logout borra la sesión. Borrar una sesión inexistente no es error.
func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidInput
	}

	sess, err := s.repo.Get(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, token); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	for _, fn := range s.onLogout {
		fn(sess.UserID)
	}
	s.log.Info("session closed", map[string]any{"user_id": sess.UserID})
	return nil
}

// Verify implementa auth.AuthVerifier.
func (s *Service) Verify(ctx context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	sess, err := s.repo.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return auth.Claims{}, ErrUnauthorized
		}
		return auth.Claims{}, err
	}
	if sess.Expired(s.now()) {
		_ = s.repo.Delete(ctx, token)
		return auth.Claims{}, ErrUnauthorized
	}
	return sess.Claims(), nil
}

// Sweep borra las sesiones vencidas.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Debug("expired sessions removed", map[string]any{"count": n})
	}
	return n, nil
}

// RunSweeper llama a Sweep cada interval hasta que ctx se cancele.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.log.Warn("session sweep failed", map[string]any{"error": err})
			}
		}
	}
}
