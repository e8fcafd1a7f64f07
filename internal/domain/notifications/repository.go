package notifications

import "context"

type Source interface {
	ListNotifications(ctx context.Context, userID string, pendingOnly bool) ([]Notification, error)
}
