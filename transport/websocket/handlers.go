package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
)

func (that *Server) handleNewGame(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleNewGame")

	game, err := that.uGame.CreateGame(ctx)
	if err != nil {
		that.sendError(conn, msg.Action, "failed to create a new game")
		return fmt.Errorf("failed to create game: %w", err)
	}

	that.watch(game.ID, conn)

	log.Info("new game", "gameID", game.ID)

	return conn.send(msg.Action, ResponsePayload{Game: game})
}

// handleGameState - returns the current game and subscribes the connection to its updates.
func (that *Server) handleGameState(ctx context.Context, msg *Message, conn *connection) error {
	req, ok := that.parseRequest(msg, conn)
	if !ok {
		return nil
	}

	game, err := that.uGame.GetGame(ctx, req.GameID)
	if err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	that.watch(game.ID, conn)

	return conn.send(msg.Action, ResponsePayload{Game: game})
}

func (that *Server) handleMove(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleMove")

	req, ok := that.parseRequest(msg, conn)
	if !ok {
		return nil
	}

	if req.Column == nil {
		that.sendError(conn, msg.Action, "column is required")
		return nil
	}

	game, move, err := that.uGame.MakeMove(ctx, req.GameID, *req.Column)
	if apperror.IsRejectedMove(err) {
		log.Debug("move rejected", "gameID", req.GameID, "reason", err)
		return conn.send(actionRejected, ResponsePayload{Game: game, Error: err.Error()})
	}

	if err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	that.watch(game.ID, conn)

	payload := ResponsePayload{Game: game, Move: &move}
	that.broadcast(conn, payload)

	return conn.send(msg.Action, payload)
}

// handleRestart - answers the restart signal with a brand new game under the same ID.
func (that *Server) handleRestart(ctx context.Context, msg *Message, conn *connection) error {
	req, ok := that.parseRequest(msg, conn)
	if !ok {
		return nil
	}

	game, err := that.uGame.RestartGame(ctx, req.GameID)
	if err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	that.watch(game.ID, conn)

	payload := ResponsePayload{Game: game}
	that.broadcast(conn, payload)

	return conn.send(msg.Action, payload)
}

// handleDelete - removes the game and tells its other watchers it is gone.
func (that *Server) handleDelete(ctx context.Context, msg *Message, conn *connection) error {
	req, ok := that.parseRequest(msg, conn)
	if !ok {
		return nil
	}

	if err := that.uGame.DeleteGame(ctx, req.GameID); err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	payload := ResponsePayload{GameID: req.GameID}
	that.notify(conn, that.forget(req.GameID), actionDeleted, payload)

	return conn.send(msg.Action, payload)
}

func (that *Server) parseRequest(msg *Message, conn *connection) (RequestPayload, bool) {
	var req RequestPayload

	if len(msg.Payload) == 0 || json.Unmarshal(msg.Payload, &req) != nil {
		that.sendError(conn, msg.Action, "invalid payload")
		return req, false
	}

	if req.GameID == "" {
		that.sendError(conn, msg.Action, "game_id is required")
		return req, false
	}

	return req, true
}

// replyError - reports err to the client; unexpected errors are returned for logging.
func (that *Server) replyError(conn *connection, action string, err error) error {
	if errors.Is(err, apperror.ErrNotFound) {
		that.sendError(conn, action, "game not found")
		return nil
	}

	that.sendError(conn, action, "internal error")

	return err
}

func (that *Server) sendError(conn *connection, action, reason string) {
	payload := ResponsePayload{Error: reason}
	if err := conn.send(action, payload); err != nil {
		that.logger.Error("failed to send error response", "action", action, "error", err)
	}
}
