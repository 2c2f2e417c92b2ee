package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

type moveRequest struct {
	Column *int `json:"column"`
}

type gameResponse struct {
	Game  *entity.Game       `json:"game,omitempty"`
	Move  *entity.MoveResult `json:"move,omitempty"`
	Error string             `json:"error,omitempty"`
}

func (that *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.games.CreateGame(r.Context())
	if err != nil {
		that.writeError(w, "handleCreateGame", nil, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, gameResponse{Game: game})
}

func (that *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.games.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		that.writeError(w, "handleGetGame", nil, err)
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse{Game: game})
}

func (that *Server) handleMakeMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Column == nil {
		that.writeJSON(w, http.StatusBadRequest, gameResponse{Error: "column is required"})
		return
	}

	game, move, err := that.games.MakeMove(r.Context(), r.PathValue("id"), *req.Column)
	if err != nil {
		that.writeError(w, "handleMakeMove", game, err)
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse{Game: game, Move: &move})
}

func (that *Server) handleRestartGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.games.RestartGame(r.Context(), r.PathValue("id"))
	if err != nil {
		that.writeError(w, "handleRestartGame", nil, err)
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse{Game: game})
}

func (that *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := that.games.DeleteGame(r.Context(), r.PathValue("id")); err != nil {
		that.writeError(w, "handleDeleteGame", nil, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeError - maps use case errors to status codes. Rejected moves carry the unchanged game.
func (that *Server) writeError(w http.ResponseWriter, method string, game *entity.Game, err error) {
	switch {
	case errors.Is(err, apperror.ErrInvalidColumn):
		that.writeJSON(w, http.StatusBadRequest, gameResponse{Game: game, Error: err.Error()})
	case errors.Is(err, apperror.ErrColumnFull), errors.Is(err, apperror.ErrGameOver):
		that.writeJSON(w, http.StatusConflict, gameResponse{Game: game, Error: err.Error()})
	case errors.Is(err, apperror.ErrNotFound):
		that.writeJSON(w, http.StatusNotFound, gameResponse{Error: err.Error()})
	default:
		that.logger.Error("request failed", "method", method, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, gameResponse{Error: "Internal Server Error"})
	}
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body gameResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
