package db

import "context"

func (s *gormStore) CreateFlag(ctx context.Context, flag *TurnFlag) error {
	return s.db.WithContext(ctx).Create(flag).Error
}

func (s *gormStore) GetFlag(ctx context.Context, id uint) (*TurnFlag, error) {
	var record TurnFlag
	if err := s.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *gormStore) SaveFlag(ctx context.Context, flag *TurnFlag) error {
	return s.db.WithContext(ctx).Save(flag).Error
}

// PendingFlagForPlayer finds the reporter's unresolved flag, if any. A player
// may hold at most one at a time, globally.
func (s *gormStore) PendingFlagForPlayer(ctx context.Context, playerID uint) (*TurnFlag, error) {
	var record TurnFlag
	err := s.db.WithContext(ctx).
		Where("player_id = ? AND resolved_at IS NULL", playerID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// HasPlayerFlaggedGame reports whether the player ever flagged any turn in
// the game, resolved or not. Flaggers never rejoin a game they reported.
func (s *gormStore) HasPlayerFlaggedGame(ctx context.Context, playerID, gameID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&TurnFlag{}).
		Joins("JOIN turns ON turns.id = turn_flags.turn_id").
		Where("turn_flags.player_id = ? AND turns.game_id = ?", playerID, gameID).
		Count(&count).Error
	return count > 0, err
}

func (s *gormStore) HasUnresolvedFlag(ctx context.Context, gameID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&TurnFlag{}).
		Joins("JOIN turns ON turns.id = turn_flags.turn_id").
		Where("turns.game_id = ? AND turn_flags.resolved_at IS NULL", gameID).
		Count(&count).Error
	return count > 0, err
}
