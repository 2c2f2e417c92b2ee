package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

const (
	actionNewGame  = "game:new"
	actionState    = "game:state"
	actionMove     = "game:move"
	actionRestart  = "game:restart"
	actionDelete   = "game:delete"
	actionDeleted  = "game:deleted"
	actionRejected = "game:rejected"
	actionUpdate   = "game:update"
	actionError    = "error"
)

const writeWait = 10 * time.Second

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RequestPayload is what clients send with game actions.
type RequestPayload struct {
	GameID string `json:"game_id,omitempty"`
	Column *int   `json:"column,omitempty"`
}

// ResponsePayload is what the server sends back.
type ResponsePayload struct {
	GameID string             `json:"game_id,omitempty"`
	Game  *entity.Game       `json:"game,omitempty"`
	Move  *entity.MoveResult `json:"move,omitempty"`
	Error string             `json:"error,omitempty"`
}

// connection guards writes to a socket; gorilla connections allow one concurrent writer.
type connection struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (that *connection) send(action string, payload ResponsePayload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = that.conn.WriteJSON(Message{Action: action, Payload: payloadJSON}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// close - sends a close frame and closes the socket, which ends the read loop.
func (that *connection) close(code int, reason string) {
	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	_ = that.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
	_ = that.conn.Close()
}
