package entity

import "fmt"

const (
	Width  = 7
	Height = 6

	// WinLength is the number of aligned pieces that wins the game.
	WinLength = 4
)

const (
	StatusInProgress = "in_progress"
	StatusWin        = "win"
	StatusTie        = "tie"
)

type Player uint8

const (
	NoPlayer Player = 0
	Player1  Player = 1
	Player2  Player = 2
)

// Opponent returns the other player.
func (that Player) Opponent() Player {
	if that == Player1 {
		return Player2
	}
	return Player1
}

func (that Player) String() string {
	switch that {
	case Player1, Player2:
		return fmt.Sprintf("player %d", uint8(that))
	default:
		return "nobody"
	}
}

// Cell is either Empty or holds the mark of the player that occupies it.
type Cell uint8

const Empty Cell = 0

// Mark returns the cell value a player leaves on the grid.
func Mark(player Player) Cell {
	return Cell(player)
}

func (that Cell) IsEmpty() bool {
	return that == Empty
}

// Owner returns the player occupying the cell, NoPlayer for an empty one.
func (that Cell) Owner() Player {
	return Player(that)
}

// Grid is indexed [row][column]; row 0 is the top, column 0 the left.
type Grid [Height][Width]Cell

// InBounds reports whether (row, column) lies on the grid.
func InBounds(row, column int) bool {
	return row >= 0 && row < Height && column >= 0 && column < Width
}

type Game struct {
	ID            string `json:"id"`
	Grid          Grid   `json:"grid"`
	CurrentPlayer Player `json:"current_player"`
	Status        string `json:"status"`
	Winner        Player `json:"winner,omitempty"`
	Moves         int    `json:"moves"`
}

// NewGame returns an empty grid with player 1 to move.
func NewGame(id string) *Game {
	return &Game{
		ID:            id,
		Grid:          Grid{},
		CurrentPlayer: Player1,
		Status:        StatusInProgress,
		Winner:        NoPlayer,
	}
}

// Cell returns the content of (row, column). Out-of-bounds coordinates read as Empty.
func (that *Game) Cell(row, column int) Cell {
	if !InBounds(row, column) {
		return Empty
	}
	return that.Grid[row][column]
}

func (that *Game) IsInProgress() bool {
	return that.Status == StatusInProgress
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusWin || that.Status == StatusTie
}

// Outcome describes the game result in one line.
func (that *Game) Outcome() string {
	switch that.Status {
	case StatusWin:
		return fmt.Sprintf("%s wins", that.Winner)
	case StatusTie:
		return "tie"
	case StatusInProgress:
		return fmt.Sprintf("%s to move", that.CurrentPlayer)
	default:
		return fmt.Sprintf("unknown status %q", that.Status)
	}
}

// Clone returns a copy that shares no state with the original.
func (that *Game) Clone() *Game {
	clone := *that
	return &clone
}

const (
	ResultContinue = "continue"
	ResultWin      = "win"
	ResultTie      = "tie"
)

// MoveResult describes an accepted move: where the piece landed and what it did to the game.
type MoveResult struct {
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Player Player `json:"player"`
	Result string `json:"result"`
}
