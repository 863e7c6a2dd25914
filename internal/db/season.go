package db

import (
	"context"
	"time"

	"gorm.io/gorm/clause"
)

func (s *gormStore) CreateSeason(ctx context.Context, season *Season) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(season).Error
}

func (s *gormStore) GetSeason(ctx context.Context, id uint) (*Season, error) {
	var record Season
	err := s.db.WithContext(ctx).
		Preload("Config").
		First(&record, id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *gormStore) SaveSeason(ctx context.Context, season *Season) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(season).Error
}

// SeasonRoster returns joined players in a stable order. Roster position
// drives the rotation matrix, so the ordering must not change once play
// begins.
func (s *gormStore) SeasonRoster(ctx context.Context, seasonID uint) ([]uint, error) {
	var rows []PlayerInSeason
	err := s.db.WithContext(ctx).
		Where("season_id = ? AND joined_at IS NOT NULL", seasonID).
		Order("joined_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	roster := make([]uint, 0, len(rows))
	for _, row := range rows {
		roster = append(roster, row.PlayerID)
	}
	return roster, nil
}

func (s *gormStore) SeasonChains(ctx context.Context, seasonID uint) ([]Game, error) {
	var records []Game
	err := s.db.WithContext(ctx).
		Where("season_id = ?", seasonID).
		Preload("Config").
		Preload("Turns").
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *gormStore) ListDueSeasons(ctx context.Context, now time.Time) ([]Season, error) {
	var records []Season
	err := s.db.WithContext(ctx).
		Where("started_at IS NULL AND starts_at <= ?", now).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *gormStore) UpsertSeasonPlayer(ctx context.Context, row *PlayerInSeason) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "season_id"}, {Name: "player_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"joined_at"}),
	}).Create(row).Error
}
