package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"picturechain/internal/db"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// fakeStore is an in-memory db.Store mirroring the query semantics the
// engine relies on, including the moderation visibility scope.
type fakeStore struct {
	mu      sync.Mutex
	configs map[uint]db.GameConfig
	games   map[uint]db.Game
	turns   map[uint]db.Turn
	flags   map[uint]db.TurnFlag
	seasons map[uint]db.Season
	roster  map[uint][]db.PlayerInSeason
	events  []db.Event
	nextID  uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		configs: make(map[uint]db.GameConfig),
		games:   make(map[uint]db.Game),
		turns:   make(map[uint]db.Turn),
		flags:   make(map[uint]db.TurnFlag),
		seasons: make(map[uint]db.Season),
		roster:  make(map[uint][]db.PlayerInSeason),
		nextID:  1,
	}
}

func (s *fakeStore) id() uint {
	id := s.nextID
	s.nextID++
	return id
}

func (s *fakeStore) addConfig(cfg db.GameConfig) db.GameConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg.ID == 0 {
		cfg.ID = s.id()
	}
	s.configs[cfg.ID] = cfg
	return cfg
}

func (s *fakeStore) InTx(ctx context.Context, fn func(db.Store) error) error {
	return fn(s)
}

func (s *fakeStore) DefaultConfig(ctx context.Context, lewd bool) (*db.GameConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := "default"
	if lewd {
		name = "default-lewd"
	}
	for _, cfg := range s.configs {
		if cfg.Name == name {
			out := cfg
			return &out, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *fakeStore) GetConfig(ctx context.Context, id uint) (*db.GameConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.configs[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	out := cfg
	return &out, nil
}

func (s *fakeStore) CreateGame(ctx context.Context, game *db.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game.ID = s.id()
	stored := *game
	stored.Turns = nil
	stored.Config = db.GameConfig{}
	s.games[game.ID] = stored
	return nil
}

func (s *fakeStore) gameHidden(id uint) bool {
	game, ok := s.games[id]
	if !ok || game.DeletedAt.Valid {
		return true
	}
	for _, flag := range s.flags {
		if flag.ResolvedAt != nil {
			continue
		}
		turn, ok := s.turns[flag.TurnID]
		if ok && turn.GameID == id {
			return true
		}
	}
	return false
}

func (s *fakeStore) getGame(id uint, admin bool) (*db.Game, error) {
	game, ok := s.games[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	if !admin && s.gameHidden(id) {
		return nil, db.ErrNotFound
	}
	out := game
	out.Config = s.configs[game.ConfigID]
	return &out, nil
}

func (s *fakeStore) GetGame(ctx context.Context, id uint) (*db.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getGame(id, false)
}

func (s *fakeStore) GetGameAdmin(ctx context.Context, id uint) (*db.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getGame(id, true)
}

func (s *fakeStore) SaveGame(ctx context.Context, game *db.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *game
	stored.Turns = nil
	stored.Config = db.GameConfig{}
	s.games[game.ID] = stored
	return nil
}

func (s *fakeStore) SoftDeleteGame(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok || game.DeletedAt.Valid {
		return nil
	}
	game.DeletedAt = gorm.DeletedAt{Time: time.Now().UTC(), Valid: true}
	s.games[id] = game
	return nil
}

func (s *fakeStore) gameTurns(gameID uint) []db.Turn {
	var turns []db.Turn
	for _, turn := range s.turns {
		if turn.GameID == gameID {
			turns = append(turns, turn)
		}
	}
	sort.Slice(turns, func(i, j int) bool { return turns[i].OrderIndex < turns[j].OrderIndex })
	return turns
}

func (s *fakeStore) ListJoinableGames(ctx context.Context, lewd bool) ([]db.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.Game
	for id, game := range s.games {
		if s.gameHidden(id) || game.CompletedAt != nil || game.SeasonID != nil {
			continue
		}
		cfg := s.configs[game.ConfigID]
		if cfg.IsLewd != lewd {
			continue
		}
		pending := false
		for _, turn := range s.gameTurns(id) {
			if turn.Pending() {
				pending = true
				break
			}
		}
		if pending {
			continue
		}
		g := game
		g.Config = cfg
		g.Turns = s.gameTurns(id)
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *fakeStore) ListExpiredGames(ctx context.Context, now time.Time) ([]db.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.Game
	for _, game := range s.games {
		if game.DeletedAt.Valid || game.CompletedAt != nil {
			continue
		}
		if game.ExpiresAt != nil && !now.Before(*game.ExpiresAt) {
			out = append(out, game)
		}
	}
	return out, nil
}

func (s *fakeStore) CreateTurn(ctx context.Context, turn *db.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.turns {
		if existing.GameID == turn.GameID && existing.OrderIndex == turn.OrderIndex {
			return &pgconn.PgError{Code: "23505", Message: "duplicate key value"}
		}
	}
	turn.ID = s.id()
	s.turns[turn.ID] = *turn
	return nil
}

func (s *fakeStore) GetTurn(ctx context.Context, id uint) (*db.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	turn, ok := s.turns[id]
	if !ok || s.gameHidden(turn.GameID) {
		return nil, db.ErrNotFound
	}
	out := turn
	return &out, nil
}

func (s *fakeStore) GetTurnAdmin(ctx context.Context, id uint) (*db.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	turn, ok := s.turns[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	out := turn
	return &out, nil
}

func (s *fakeStore) SaveTurn(ctx context.Context, turn *db.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns[turn.ID] = *turn
	return nil
}

func (s *fakeStore) DeleteTurn(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, id)
	return nil
}

func (s *fakeStore) TurnsForGame(ctx context.Context, gameID uint) ([]db.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameTurns(gameID), nil
}

func (s *fakeStore) PendingTurnForPlayer(ctx context.Context, playerID uint) (*db.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, turn := range s.turns {
		if turn.PlayerID != playerID || !turn.Pending() {
			continue
		}
		game, ok := s.games[turn.GameID]
		if !ok || game.DeletedAt.Valid {
			continue
		}
		out := turn
		return &out, nil
	}
	return nil, db.ErrNotFound
}

func (s *fakeStore) CountTurns(ctx context.Context, gameID uint) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.gameTurns(gameID)), nil
}

func (s *fakeStore) CountCompletedTurns(ctx context.Context, gameID uint) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, turn := range s.gameTurns(gameID) {
		if turn.Counts() {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) DeletePendingTurnsAfter(ctx context.Context, gameID uint, orderIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, turn := range s.turns {
		if turn.GameID == gameID && turn.OrderIndex > orderIndex && turn.Pending() {
			delete(s.turns, id)
		}
	}
	return nil
}

func (s *fakeStore) ListExpiredTurns(ctx context.Context, now time.Time) ([]db.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.Turn
	for _, turn := range s.turns {
		game, ok := s.games[turn.GameID]
		if !ok || game.DeletedAt.Valid {
			continue
		}
		if turn.Pending() && turn.ExpiresAt != nil && !now.Before(*turn.ExpiresAt) {
			out = append(out, turn)
		}
	}
	return out, nil
}

func (s *fakeStore) CreateFlag(ctx context.Context, flag *db.TurnFlag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	flag.ID = s.id()
	s.flags[flag.ID] = *flag
	return nil
}

func (s *fakeStore) GetFlag(ctx context.Context, id uint) (*db.TurnFlag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	flag, ok := s.flags[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	out := flag
	return &out, nil
}

func (s *fakeStore) SaveFlag(ctx context.Context, flag *db.TurnFlag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[flag.ID] = *flag
	return nil
}

func (s *fakeStore) PendingFlagForPlayer(ctx context.Context, playerID uint) (*db.TurnFlag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, flag := range s.flags {
		if flag.PlayerID == playerID && flag.ResolvedAt == nil {
			out := flag
			return &out, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *fakeStore) HasPlayerFlaggedGame(ctx context.Context, playerID, gameID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, flag := range s.flags {
		if flag.PlayerID != playerID {
			continue
		}
		turn, ok := s.turns[flag.TurnID]
		if ok && turn.GameID == gameID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) HasUnresolvedFlag(ctx context.Context, gameID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, flag := range s.flags {
		if flag.ResolvedAt != nil {
			continue
		}
		turn, ok := s.turns[flag.TurnID]
		if ok && turn.GameID == gameID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) CreateSeason(ctx context.Context, season *db.Season) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	season.ID = s.id()
	stored := *season
	stored.Config = db.GameConfig{}
	s.seasons[season.ID] = stored
	return nil
}

func (s *fakeStore) GetSeason(ctx context.Context, id uint) (*db.Season, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	season, ok := s.seasons[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	out := season
	out.Config = s.configs[season.ConfigID]
	return &out, nil
}

func (s *fakeStore) SaveSeason(ctx context.Context, season *db.Season) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *season
	stored.Config = db.GameConfig{}
	s.seasons[season.ID] = stored
	return nil
}

func (s *fakeStore) SeasonRoster(ctx context.Context, seasonID uint) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := append([]db.PlayerInSeason(nil), s.roster[seasonID]...)
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.JoinedAt != nil && b.JoinedAt != nil && !a.JoinedAt.Equal(*b.JoinedAt) {
			return a.JoinedAt.Before(*b.JoinedAt)
		}
		return a.ID < b.ID
	})
	var out []uint
	for _, row := range rows {
		if row.JoinedAt != nil {
			out = append(out, row.PlayerID)
		}
	}
	return out, nil
}

func (s *fakeStore) SeasonChains(ctx context.Context, seasonID uint) ([]db.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.Game
	for id, game := range s.games {
		if game.SeasonID != nil && *game.SeasonID == seasonID {
			g := game
			g.Config = s.configs[game.ConfigID]
			g.Turns = s.gameTurns(id)
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) ListDueSeasons(ctx context.Context, now time.Time) ([]db.Season, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.Season
	for _, season := range s.seasons {
		if season.StartedAt == nil && !now.Before(season.StartsAt) {
			out = append(out, season)
		}
	}
	return out, nil
}

func (s *fakeStore) UpsertSeasonPlayer(ctx context.Context, row *db.PlayerInSeason) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.roster[row.SeasonID]
	for i := range rows {
		if rows[i].PlayerID == row.PlayerID {
			rows[i].JoinedAt = row.JoinedAt
			return nil
		}
	}
	row.ID = s.id()
	s.roster[row.SeasonID] = append(rows, *row)
	return nil
}

func (s *fakeStore) CreateEvent(ctx context.Context, event *db.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.ID = s.id()
	s.events = append(s.events, *event)
	return nil
}
