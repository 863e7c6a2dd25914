package db

import (
	"context"
	"time"

	"gorm.io/gorm/clause"
)

func (s *gormStore) CreateTurn(ctx context.Context, turn *Turn) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(turn).Error
}

// GetTurn resolves a turn only when its game is visible to players.
func (s *gormStore) GetTurn(ctx context.Context, id uint) (*Turn, error) {
	var record Turn
	if err := s.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, err
	}
	if _, err := s.GetGame(ctx, record.GameID); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *gormStore) GetTurnAdmin(ctx context.Context, id uint) (*Turn, error) {
	var record Turn
	if err := s.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *gormStore) SaveTurn(ctx context.Context, turn *Turn) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(turn).Error
}

func (s *gormStore) DeleteTurn(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&Turn{}, id).Error
}

func (s *gormStore) TurnsForGame(ctx context.Context, gameID uint) ([]Turn, error) {
	var records []Turn
	err := s.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("order_index ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// PendingTurnForPlayer ignores turns orphaned by a soft-deleted game; those
// never block a new match.
func (s *gormStore) PendingTurnForPlayer(ctx context.Context, playerID uint) (*Turn, error) {
	var record Turn
	err := s.db.WithContext(ctx).
		Joins("JOIN games ON games.id = turns.game_id AND games.deleted_at IS NULL").
		Where("turns.player_id = ? AND turns.completed_at IS NULL", playerID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *gormStore) CountTurns(ctx context.Context, gameID uint) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Turn{}).
		Where("game_id = ?", gameID).
		Count(&count).Error
	return int(count), err
}

// CountCompletedTurns counts submitted turns that were not rejected by
// moderation. This is the count that drives drawing/writing parity and game
// completion.
func (s *gormStore) CountCompletedTurns(ctx context.Context, gameID uint) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Turn{}).
		Where("game_id = ? AND completed_at IS NOT NULL AND rejected_at IS NULL", gameID).
		Count(&count).Error
	return int(count), err
}

func (s *gormStore) DeletePendingTurnsAfter(ctx context.Context, gameID uint, orderIndex int) error {
	return s.db.WithContext(ctx).
		Where("game_id = ? AND order_index > ? AND completed_at IS NULL", gameID, orderIndex).
		Delete(&Turn{}).Error
}

func (s *gormStore) ListExpiredTurns(ctx context.Context, now time.Time) ([]Turn, error) {
	var records []Turn
	err := s.db.WithContext(ctx).
		Joins("JOIN games ON games.id = turns.game_id AND games.deleted_at IS NULL").
		Where("turns.completed_at IS NULL").
		Where("turns.expires_at IS NOT NULL AND turns.expires_at <= ?", now).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
