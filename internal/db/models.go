package db

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GameConfig struct {
	ID                    uint   `gorm:"primaryKey"`
	Name                  string `gorm:"size:64;uniqueIndex;not null"`
	MinTurns              int    `gorm:"not null;default:4"`
	MaxTurns              int    `gorm:"not null;default:12"`
	WritingTimeoutSeconds int    `gorm:"not null"`
	DrawingTimeoutSeconds int    `gorm:"not null"`
	GameTimeoutSeconds    int    `gorm:"not null"`
	IsLewd                bool   `gorm:"not null;default:false"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (c GameConfig) WritingTimeout() time.Duration {
	return time.Duration(c.WritingTimeoutSeconds) * time.Second
}

func (c GameConfig) DrawingTimeout() time.Duration {
	return time.Duration(c.DrawingTimeoutSeconds) * time.Second
}

func (c GameConfig) GameTimeout() time.Duration {
	return time.Duration(c.GameTimeoutSeconds) * time.Second
}

type Game struct {
	ID           uint `gorm:"primaryKey"`
	ConfigID     uint `gorm:"index;not null"`
	Config       GameConfig
	SeasonID     *uint `gorm:"index"`
	RotationRow  *int
	PosterTurnID *uint
	CreatedAt    time.Time `gorm:"index;not null"`
	UpdatedAt    time.Time `gorm:"not null"`
	CompletedAt  *time.Time
	ExpiresAt    *time.Time     `gorm:"index"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
	Turns        []Turn
}

type Turn struct {
	ID          uint `gorm:"primaryKey"`
	GameID      uint `gorm:"index;not null;uniqueIndex:idx_turns_game_order"`
	PlayerID    uint `gorm:"index;not null"`
	OrderIndex  int  `gorm:"not null;uniqueIndex:idx_turns_game_order"`
	IsDrawing   bool `gorm:"not null"`
	Content     string
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	CompletedAt *time.Time
	ExpiresAt   *time.Time `gorm:"index"`
	RejectedAt  *time.Time
	Flags       []TurnFlag
}

// Pending reports whether the turn is still awaiting content.
func (t Turn) Pending() bool { return t.CompletedAt == nil }

// Counts reports whether the turn contributes to completed-turn counts.
func (t Turn) Counts() bool { return t.CompletedAt != nil && t.RejectedAt == nil }

type TurnFlag struct {
	ID          uint   `gorm:"primaryKey"`
	TurnID      uint   `gorm:"index;not null"`
	PlayerID    uint   `gorm:"index;not null"`
	Reason      string `gorm:"size:64;not null"`
	Explanation string `gorm:"size:1024"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	ResolvedAt  *time.Time
}

type Season struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:128;not null"`
	ConfigID  uint   `gorm:"index;not null"`
	Config    GameConfig
	StartsAt  time.Time `gorm:"index;not null"`
	StartedAt *time.Time
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Players   []PlayerInSeason
}

type PlayerInSeason struct {
	ID        uint      `gorm:"primaryKey"`
	SeasonID  uint      `gorm:"index;not null;uniqueIndex:idx_season_player"`
	PlayerID  uint      `gorm:"not null;uniqueIndex:idx_season_player"`
	InvitedAt time.Time `gorm:"not null"`
	JoinedAt  *time.Time
}

type Event struct {
	ID        uint  `gorm:"primaryKey"`
	GameID    *uint `gorm:"index"`
	TurnID    *uint `gorm:"index"`
	PlayerID  *uint `gorm:"index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
