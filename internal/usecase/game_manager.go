package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/connectfour"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
	"github.com/rocketscienceinc/connectfour-backend/internal/pkg"
	"github.com/rocketscienceinc/connectfour-backend/internal/repository"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// GameManager stores games and runs moves against them. Calls for the same game are serialised.
type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo

	locksMutex sync.Mutex
	locks      map[string]*gameLock
}

// gameLock is dropped from the map once nobody holds or waits for it.
type gameLock struct {
	mu   sync.Mutex
	refs int
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		gameRepo: gameRepo,
		locks:    make(map[string]*gameLock),
	}
}

func (that *GameManager) CreateGame(ctx context.Context) (*entity.Game, error) {
	game := connectfour.CreateGame()
	game.ID = pkg.GenerateGameID()

	if err := that.updateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed create game: %w", err)
	}

	that.logger.Info("game created", "gameID", game.ID)

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	unlock := that.lock(id)
	defer unlock()

	return that.getGameByID(ctx, id)
}

// MakeMove - applies a move for whoever is to play. Rejected moves return the unchanged game
// together with the rejection error and are not stored.
func (that *GameManager) MakeMove(ctx context.Context, id string, column int) (*entity.Game, entity.MoveResult, error) {
	log := that.logger.With("method", "MakeMove", "gameID", id, "column", column)

	unlock := that.lock(id)
	defer unlock()

	game, err := that.getGameByID(ctx, id)
	if err != nil {
		return nil, entity.MoveResult{}, err
	}

	result, err := connectfour.ApplyMove(game, column)
	if err != nil {
		if apperror.IsRejectedMove(err) {
			log.Debug("move rejected", "reason", err)
			return game, entity.MoveResult{}, err
		}

		return nil, entity.MoveResult{}, fmt.Errorf("failed make move: %w", err)
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, entity.MoveResult{}, fmt.Errorf("failed update game: %w", err)
	}

	if game.IsFinished() {
		log.Info("game finished", "outcome", game.Outcome())
	}

	return game, result, nil
}

// RestartGame - discards the stored state and starts over under the same ID.
func (that *GameManager) RestartGame(ctx context.Context, id string) (*entity.Game, error) {
	unlock := that.lock(id)
	defer unlock()

	if _, err := that.getGameByID(ctx, id); err != nil {
		return nil, err
	}

	game := connectfour.CreateGame()
	game.ID = id

	if err := that.updateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed restart game: %w", err)
	}

	that.logger.Info("game restarted", "gameID", id)

	return game, nil
}

func (that *GameManager) DeleteGame(ctx context.Context, id string) error {
	unlock := that.lock(id)
	defer unlock()

	err := that.gameRepo.DeleteByID(ctx, id)
	if errors.Is(err, repository.ErrGameNotFound) {
		return fmt.Errorf("%w: game %s", apperror.ErrNotFound, id)
	}

	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Info("game deleted", "gameID", id)

	return nil
}

// lock - takes the per-game mutex and returns its release func.
func (that *GameManager) lock(id string) func() {
	that.locksMutex.Lock()
	gl, ok := that.locks[id]
	if !ok {
		gl = &gameLock{}
		that.locks[id] = gl
	}
	gl.refs++
	that.locksMutex.Unlock()

	gl.mu.Lock()

	return func() {
		gl.mu.Unlock()

		that.locksMutex.Lock()
		gl.refs--
		if gl.refs == 0 {
			delete(that.locks, id)
		}
		that.locksMutex.Unlock()
	}
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	existingGame, err := that.gameRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrGameNotFound) {
		return nil, fmt.Errorf("%w: game %s", apperror.ErrNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return existingGame, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}
