package events

import "context"

type Source interface {
	ListActiveEvents(ctx context.Context) ([]Event, error)
}
