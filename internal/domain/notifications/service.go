package notifications

import (
	"context"
	"errors"
	"strings"
)

var ErrInvalidInput = errors.New("invalid input")

type Service struct {
	src Source
}

func NewService(src Source) *Service {
	return &Service{src: src}
}

// List trae las notificaciones del usuario de la sesión; pendingOnly
// restringe a las no leídas.
func (s *Service) List(ctx context.Context, userID string, pendingOnly bool) ([]Notification, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	items, err := s.src.ListNotifications(ctx, userID, pendingOnly)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Notification{}
	}
	return items, nil
}
