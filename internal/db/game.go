package db

import (
	"context"
	"time"

	"gorm.io/gorm/clause"
)

// DefaultConfig returns the seeded ruleset for the requested content filter.
func (s *gormStore) DefaultConfig(ctx context.Context, lewd bool) (*GameConfig, error) {
	name := "default"
	if lewd {
		name = "default-lewd"
	}
	var record GameConfig
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *gormStore) GetConfig(ctx context.Context, id uint) (*GameConfig, error) {
	var record GameConfig
	if err := s.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *gormStore) CreateGame(ctx context.Context, game *Game) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(game).Error
}

func (s *gormStore) GetGame(ctx context.Context, id uint) (*Game, error) {
	var record Game
	err := visibleGames(s.db.WithContext(ctx).Model(&Game{})).
		Preload("Config").
		First(&record, id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *gormStore) GetGameAdmin(ctx context.Context, id uint) (*Game, error) {
	var record Game
	err := s.db.WithContext(ctx).Unscoped().
		Preload("Config").
		First(&record, id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *gormStore) SaveGame(ctx context.Context, game *Game) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(game).Error
}

func (s *gormStore) SoftDeleteGame(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&Game{}, id).Error
}

// ListJoinableGames returns visible, uncompleted public games with every
// turn submitted, oldest first. Season chains are assigned by rotation and
// never joined through open matching. Per-player eligibility is decided by
// the caller.
func (s *gormStore) ListJoinableGames(ctx context.Context, lewd bool) ([]Game, error) {
	var records []Game
	err := visibleGames(s.db.WithContext(ctx).Model(&Game{})).
		Joins("JOIN game_configs ON game_configs.id = games.config_id").
		Where("game_configs.is_lewd = ?", lewd).
		Where("games.season_id IS NULL").
		Where("games.completed_at IS NULL").
		Where("NOT EXISTS (SELECT 1 FROM turns"+
			" WHERE turns.game_id = games.id AND turns.completed_at IS NULL)").
		Preload("Config").
		Preload("Turns").
		Order("games.created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *gormStore) ListExpiredGames(ctx context.Context, now time.Time) ([]Game, error) {
	var records []Game
	err := s.db.WithContext(ctx).
		Where("completed_at IS NULL").
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
