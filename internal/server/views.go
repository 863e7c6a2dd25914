package server

import (
	"time"

	"picturechain/internal/db"
)

type turnPayload struct {
	ID          uint       `json:"id"`
	GameID      uint       `json:"game_id"`
	PlayerID    uint       `json:"player_id"`
	OrderIndex  int        `json:"order_index"`
	IsDrawing   bool       `json:"is_drawing"`
	Content     string     `json:"content,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
}

func turnView(turn db.Turn) turnPayload {
	return turnPayload{
		ID:          turn.ID,
		GameID:      turn.GameID,
		PlayerID:    turn.PlayerID,
		OrderIndex:  turn.OrderIndex,
		IsDrawing:   turn.IsDrawing,
		Content:     turn.Content,
		ExpiresAt:   turn.ExpiresAt,
		CompletedAt: turn.CompletedAt,
		RejectedAt:  turn.RejectedAt,
	}
}

type flagPayload struct {
	ID         uint       `json:"id"`
	TurnID     uint       `json:"turn_id"`
	ReporterID uint       `json:"reporter_id"`
	Reason     string     `json:"reason"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

func flagView(flag db.TurnFlag) flagPayload {
	return flagPayload{
		ID:         flag.ID,
		TurnID:     flag.TurnID,
		ReporterID: flag.PlayerID,
		Reason:     flag.Reason,
		ResolvedAt: flag.ResolvedAt,
	}
}

type gamePayload struct {
	ID           uint          `json:"id"`
	SeasonID     *uint         `json:"season_id,omitempty"`
	PosterTurnID *uint         `json:"poster_turn_id,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	ExpiresAt    *time.Time    `json:"expires_at,omitempty"`
	Turns        []turnPayload `json:"turns"`
}

// gameView assembles a game with its turns. Player views omit rejected
// turns; admin views include everything.
func gameView(game db.Game, turns []db.Turn, admin bool) gamePayload {
	out := gamePayload{
		ID:           game.ID,
		SeasonID:     game.SeasonID,
		PosterTurnID: game.PosterTurnID,
		CreatedAt:    game.CreatedAt,
		CompletedAt:  game.CompletedAt,
		ExpiresAt:    game.ExpiresAt,
		Turns:        make([]turnPayload, 0, len(turns)),
	}
	for _, turn := range turns {
		if !admin && turn.RejectedAt != nil {
			continue
		}
		out.Turns = append(out.Turns, turnView(turn))
	}
	return out
}
