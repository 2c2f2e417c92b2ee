package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

const (
	readLimit       = 4096
	pongWait        = 60 * time.Second
	pingPeriod      = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

type uGame interface {
	CreateGame(ctx context.Context) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	MakeMove(ctx context.Context, id string, column int) (*entity.Game, entity.MoveResult, error)
	RestartGame(ctx context.Context, id string) (*entity.Game, error)
	DeleteGame(ctx context.Context, id string) error
}

type handlerFunc func(ctx context.Context, message *Message, conn *connection) error

type Server struct {
	logger   *slog.Logger
	uGame    uGame
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc

	// watchers holds the connections following each game.
	watchersMutex sync.RWMutex
	watchers      map[string]map[*connection]struct{}
}

func New(logger *slog.Logger, uGame uGame) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		uGame:  uGame,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},

		handlers: make(map[string]handlerFunc),
		watchers: make(map[string]map[*connection]struct{}),
	}

	server.handlers[actionNewGame] = server.handleNewGame
	server.handlers[actionState] = server.handleGameState
	server.handlers[actionMove] = server.handleMove
	server.handlers[actionRestart] = server.handleRestart
	server.handlers[actionDelete] = server.handleDelete

	return server
}

// Handler - returns the HTTP handler serving /ws.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(ctx),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down WebSocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	wsConn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := &connection{conn: wsConn}

	defer func() {
		that.unwatchAll(conn)
		wsConn.Close()
	}()

	log.Info("WebSocket connection established", "remote", req.RemoteAddr)

	if err = that.handleMessages(ctx, conn); err != nil {
		log.Info("WebSocket connection closed", "reason", err)
	}
}

// handleMessages - processes messages from the client until it disconnects.
func (that *Server) handleMessages(ctx context.Context, conn *connection) error {
	log := that.logger.With("method", "handleMessages")

	conn.conn.SetReadLimit(readLimit)
	_ = conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.conn.SetPongHandler(func(string) error {
		return conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go that.keepAlive(ctx, conn, done)

	for {
		var message Message
		if err := conn.conn.ReadJSON(&message); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				log.Debug("failed to unmarshal message", "error", err)
				that.sendError(conn, actionError, "malformed message")
				continue
			}
			return err
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Debug("unknown action", "action", message.Action)
			that.sendError(conn, actionError, "unknown action: "+message.Action)
			continue
		}

		if err := handler(ctx, &message, conn); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// keepAlive - pings the client until the connection ends. Canceling ctx closes the connection;
// http.Server.Shutdown does not touch hijacked ones.
func (that *Server) keepAlive(ctx context.Context, conn *connection, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			conn.close(websocket.CloseGoingAway, "server shutting down")
			return
		case <-ticker.C:
			conn.writeMu.Lock()
			err := conn.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			conn.writeMu.Unlock()

			if err != nil {
				return
			}
		}
	}
}

func (that *Server) watch(gameID string, conn *connection) {
	that.watchersMutex.Lock()
	defer that.watchersMutex.Unlock()

	conns, ok := that.watchers[gameID]
	if !ok {
		conns = make(map[*connection]struct{})
		that.watchers[gameID] = conns
	}
	conns[conn] = struct{}{}
}

func (that *Server) unwatchAll(conn *connection) {
	that.watchersMutex.Lock()
	defer that.watchersMutex.Unlock()

	for gameID, conns := range that.watchers {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(that.watchers, gameID)
		}
	}
}

// forget - drops every watcher of a game and returns them.
func (that *Server) forget(gameID string) []*connection {
	that.watchersMutex.Lock()
	defer that.watchersMutex.Unlock()

	conns := make([]*connection, 0, len(that.watchers[gameID]))
	for conn := range that.watchers[gameID] {
		conns = append(conns, conn)
	}
	delete(that.watchers, gameID)

	return conns
}

// broadcast - sends a game update to every watcher except the sender.
func (that *Server) broadcast(sender *connection, payload ResponsePayload) {
	that.watchersMutex.RLock()
	conns := make([]*connection, 0, len(that.watchers[payload.Game.ID]))
	for conn := range that.watchers[payload.Game.ID] {
		conns = append(conns, conn)
	}
	that.watchersMutex.RUnlock()

	that.notify(sender, conns, actionUpdate, payload)
}

func (that *Server) notify(sender *connection, conns []*connection, action string, payload ResponsePayload) {
	for _, conn := range conns {
		if conn == sender {
			continue
		}

		if err := conn.send(action, payload); err != nil {
			that.logger.Warn("failed to notify watcher", "action", action, "error", err)
		}
	}
}
