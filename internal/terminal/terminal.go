package terminal

import (
	"context"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/connectfour"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

const (
	boardX = 1

	titleY    = 0
	selectorY = 1
	gridY     = 2
	legendY   = gridY + entity.Height
	statusY   = legendY + 2
	helpY     = statusY + 1
)

const helpText = "<-/-> select, enter/space or 1-7 drop, r restart, q quit"

var (
	styleDefault  = tcell.StyleDefault
	styleBorder   = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleSelector = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleBanner   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)

	playerStyles = map[entity.Player]tcell.Style{
		entity.Player1: tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
		entity.Player2: tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true),
	}

	playerRunes = map[entity.Player]rune{
		entity.Player1: 'X',
		entity.Player2: 'O',
	}
)

// UI plays a local two-player game on a terminal screen.
type UI struct {
	logger *slog.Logger
	screen tcell.Screen

	game     *entity.Game
	selected int
}

// New - expects an initialised screen. The caller owns it and calls Fini.
func New(logger *slog.Logger, screen tcell.Screen) *UI {
	return &UI{
		logger:   logger.With("component", "terminal"),
		screen:   screen,
		game:     connectfour.CreateGame(),
		selected: entity.Width / 2,
	}
}

// Game - returns the game being played.
func (that *UI) Game() *entity.Game {
	return that.game
}

// Selected - returns the column under the selector.
func (that *UI) Selected() int {
	return that.selected
}

// Run - draws the board and handles keys until the player quits or ctx is done.
func (that *UI) Run(ctx context.Context) {
	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		select {
		case <-ctx.Done():
			_ = that.screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-stopped:
		}
	}()

	for {
		that.Draw()

		switch ev := that.screen.PollEvent().(type) {
		case nil, *tcell.EventInterrupt:
			return
		case *tcell.EventResize:
			that.screen.Sync()
		case *tcell.EventKey:
			if that.HandleKey(ev) {
				return
			}
		}
	}
}

// HandleKey - applies a key press and reports whether the player asked to quit.
func (that *UI) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyLeft:
		if that.selected > 0 {
			that.selected--
		}
	case tcell.KeyRight:
		if that.selected < entity.Width-1 {
			that.selected++
		}
	case tcell.KeyEnter:
		that.drop(that.selected)
	case tcell.KeyRune:
		return that.handleRune(ev.Rune())
	default:
	}

	return false
}

func (that *UI) handleRune(r rune) bool {
	switch {
	case r == 'q' || r == 'Q':
		return true
	case r == 'r' || r == 'R':
		that.restart()
	case r == ' ':
		that.drop(that.selected)
	case r >= '1' && r < '1'+entity.Width:
		that.selected = int(r - '1')
		that.drop(that.selected)
	}

	return false
}

// drop - plays column; a full column or a finished game leaves everything as it was.
func (that *UI) drop(column int) {
	result, err := connectfour.ApplyMove(that.game, column)
	if err != nil {
		if !apperror.IsRejectedMove(err) {
			that.logger.Error("failed to apply move", "column", column, "error", err)
		}
		return
	}

	if result.Result != entity.ResultContinue {
		that.logger.Info("game finished", "outcome", that.game.Outcome())
	}
}

func (that *UI) restart() {
	that.game = connectfour.CreateGame()
	that.selected = entity.Width / 2
}

// Draw - renders the whole board to the screen.
func (that *UI) Draw() {
	that.screen.Clear()

	drawText(that.screen, boardX, titleY, styleDefault, "Connect Four")

	if that.game.IsInProgress() {
		that.screen.SetContent(cellX(that.selected), selectorY, 'v', nil, playerStyles[that.game.CurrentPlayer])
	}

	for row := 0; row < entity.Height; row++ {
		y := gridY + row
		for col := 0; col <= entity.Width; col++ {
			that.screen.SetContent(cellX(col)-1, y, '|', nil, styleBorder)
		}

		for col := 0; col < entity.Width; col++ {
			r, style := '.', styleDefault
			if owner := that.game.Grid[row][col].Owner(); owner != entity.NoPlayer {
				r, style = playerRunes[owner], playerStyles[owner]
			}
			that.screen.SetContent(cellX(col), y, r, nil, style)
		}
	}

	for col := 0; col < entity.Width; col++ {
		style := styleDefault
		if col == that.selected {
			style = styleSelector
		}
		that.screen.SetContent(cellX(col), legendY, rune('1'+col), nil, style)
	}

	that.drawStatus()
	drawText(that.screen, boardX, helpY, styleDefault, helpText)

	that.screen.Show()
}

func (that *UI) drawStatus() {
	switch that.game.Status {
	case entity.StatusWin:
		drawText(that.screen, boardX, statusY, styleBanner, that.game.Outcome()+"! press r to play again")
	case entity.StatusTie:
		drawText(that.screen, boardX, statusY, styleBanner, "it's a tie! press r to play again")
	default:
		player := that.game.CurrentPlayer
		x := drawText(that.screen, boardX, statusY, styleDefault, "to move: ")
		that.screen.SetContent(x, statusY, playerRunes[player], nil, playerStyles[player])
		drawText(that.screen, x+2, statusY, styleDefault, "("+player.String()+")")
	}
}

// cellX - returns the screen column of a board column.
func cellX(col int) int {
	return boardX + 1 + col*2
}

// drawText - writes s starting at (x, y) and returns the column after it.
func drawText(screen tcell.Screen, x, y int, style tcell.Style, s string) int {
	for _, r := range s {
		screen.SetContent(x, y, r, nil, style)
		x++
	}

	return x
}
