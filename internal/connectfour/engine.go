package connectfour

import (
	"fmt"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

// shapes are the four line directions checked from every origin, as (row, column) steps.
var shapes = [4][2]int{
	{0, 1},  // horizontal
	{1, 0},  // vertical
	{1, 1},  // diagonal down-right
	{1, -1}, // diagonal down-left
}

// CreateGame - returns a fresh game without an ID.
func CreateGame() *entity.Game {
	return entity.NewGame("")
}

// FindLandingRow - returns the lowest empty row of column, false when the column is full
// or outside the grid.
func FindLandingRow(grid *entity.Grid, column int) (int, bool) {
	if column < 0 || column >= entity.Width {
		return 0, false
	}

	for row := entity.Height - 1; row >= 0; row-- {
		if grid[row][column].IsEmpty() {
			return row, true
		}
	}

	return 0, false
}

// ApplyMove - drops the current player's piece into column and advances the game.
// A rejected move leaves the game untouched.
func ApplyMove(game *entity.Game, column int) (entity.MoveResult, error) {
	if err := validateMove(game, column); err != nil {
		return entity.MoveResult{}, err
	}

	row, ok := FindLandingRow(&game.Grid, column)
	if !ok {
		return entity.MoveResult{}, fmt.Errorf("%w: column %d", apperror.ErrColumnFull, column)
	}

	player := game.CurrentPlayer
	game.Grid[row][column] = entity.Mark(player)
	game.Moves++

	result := entity.MoveResult{
		Row:    row,
		Column: column,
		Player: player,
		Result: updateGameStatus(game, player),
	}

	return result, nil
}

// validateMove - checks that the game accepts moves and the column exists.
func validateMove(game *entity.Game, column int) error {
	if !game.IsInProgress() {
		return apperror.ErrGameOver
	}

	if column < 0 || column >= entity.Width {
		return fmt.Errorf("%w: %d", apperror.ErrInvalidColumn, column)
	}

	return nil
}

// updateGameStatus - settles the outcome after player's piece has been placed.
func updateGameStatus(game *entity.Game, player entity.Player) string {
	switch {
	case CheckWin(&game.Grid, player):
		game.Status = entity.StatusWin
		game.Winner = player
		return entity.ResultWin
	case CheckTie(&game.Grid):
		game.Status = entity.StatusTie
		return entity.ResultTie
	default:
		game.CurrentPlayer = player.Opponent()
		return entity.ResultContinue
	}
}

// CheckWin - reports whether player owns four aligned cells anywhere on the grid.
func CheckWin(grid *entity.Grid, player entity.Player) bool {
	if player != entity.Player1 && player != entity.Player2 {
		return false
	}

	for row := 0; row < entity.Height; row++ {
		for column := 0; column < entity.Width; column++ {
			for _, shape := range shapes {
				if isLine(grid, player, row, column, shape[0], shape[1]) {
					return true
				}
			}
		}
	}

	return false
}

// isLine - checks the WinLength cells starting at (row, column) and stepping by (dRow, dColumn).
func isLine(grid *entity.Grid, player entity.Player, row, column, dRow, dColumn int) bool {
	mark := entity.Mark(player)

	for i := 0; i < entity.WinLength; i++ {
		r, c := row+i*dRow, column+i*dColumn
		if !entity.InBounds(r, c) || grid[r][c] != mark {
			return false
		}
	}

	return true
}

// CheckTie - reports whether every cell is occupied. Only meaningful once CheckWin has failed.
func CheckTie(grid *entity.Grid) bool {
	for _, row := range grid {
		for _, cell := range row {
			if cell.IsEmpty() {
				return false
			}
		}
	}

	return true
}
