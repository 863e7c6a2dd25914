package db

import "context"

func (s *gormStore) CreateEvent(ctx context.Context, event *Event) error {
	return s.db.WithContext(ctx).Create(event).Error
}
