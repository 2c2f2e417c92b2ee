package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

type mockGameUseCase struct {
	mock.Mock
}

func (that *mockGameUseCase) CreateGame(ctx context.Context) (*entity.Game, error) {
	args := that.Called(ctx)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameUseCase) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameUseCase) MakeMove(ctx context.Context, id string, column int) (*entity.Game, entity.MoveResult, error) {
	args := that.Called(ctx, id, column)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Get(1).(entity.MoveResult), args.Error(2)
}

func (that *mockGameUseCase) RestartGame(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameUseCase) DeleteGame(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

func newTestServer(t *testing.T, games *mockGameUseCase) *httptest.Server {
	t.Helper()

	server := New(slog.New(slog.NewJSONHandler(io.Discard, nil)), games)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return ts
}

func decodeResponse(t *testing.T, resp *http.Response) gameResponse {
	t.Helper()
	defer resp.Body.Close()

	var body gameResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	return body
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body)) //nolint: noctx // test helper
	require.NoError(t, err)

	return resp
}

func TestServer_Ping(t *testing.T) {
	ts := newTestServer(t, &mockGameUseCase{})

	resp, err := http.Get(ts.URL + "/ping") //nolint: noctx // test
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(data))
}

func TestServer_CreateGame(t *testing.T) {
	// Given: a use case that creates game g1
	games := &mockGameUseCase{}
	games.On("CreateGame", mock.Anything).Return(entity.NewGame("g1"), nil).Once()
	ts := newTestServer(t, games)

	// When: POST /games
	resp := post(t, ts.URL+"/games", "")

	// Then: 201 with the new game
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeResponse(t, resp)
	require.NotNil(t, body.Game)
	assert.Equal(t, "g1", body.Game.ID)
	assert.Equal(t, entity.StatusInProgress, body.Game.Status)
}

func TestServer_GetGame(t *testing.T) {
	t.Run("Existing game", func(t *testing.T) {
		games := &mockGameUseCase{}
		games.On("GetGame", mock.Anything, "g1").Return(entity.NewGame("g1"), nil).Once()
		ts := newTestServer(t, games)

		resp, err := http.Get(ts.URL + "/games/g1") //nolint: noctx // test
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "g1", decodeResponse(t, resp).Game.ID)
	})

	t.Run("Unknown game", func(t *testing.T) {
		games := &mockGameUseCase{}
		games.On("GetGame", mock.Anything, "nope").
			Return(nil, fmt.Errorf("%w: game nope", apperror.ErrNotFound)).Once()
		ts := newTestServer(t, games)

		resp, err := http.Get(ts.URL + "/games/nope") //nolint: noctx // test
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, decodeResponse(t, resp).Error, "not found")
	})
}

func TestServer_MakeMove(t *testing.T) {
	t.Run("Accepted move", func(t *testing.T) {
		// Given: a move into column 2 that lands on the bottom row
		game := entity.NewGame("g1")
		game.Grid[entity.Height-1][2] = entity.Mark(entity.Player1)
		game.CurrentPlayer = entity.Player2
		move := entity.MoveResult{Row: entity.Height - 1, Column: 2, Player: entity.Player1, Result: entity.ResultContinue}

		games := &mockGameUseCase{}
		games.On("MakeMove", mock.Anything, "g1", 2).Return(game, move, nil).Once()
		ts := newTestServer(t, games)

		// When: POST /games/g1/moves
		resp := post(t, ts.URL+"/games/g1/moves", `{"column": 2}`)

		// Then: 200 with the updated game and the move
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeResponse(t, resp)
		require.NotNil(t, body.Move)
		assert.Equal(t, move, *body.Move)
		assert.Equal(t, entity.Player2, body.Game.CurrentPlayer)
	})

	t.Run("Column zero is a valid column", func(t *testing.T) {
		games := &mockGameUseCase{}
		games.On("MakeMove", mock.Anything, "g1", 0).Return(entity.NewGame("g1"), entity.MoveResult{}, nil).Once()
		ts := newTestServer(t, games)

		resp := post(t, ts.URL+"/games/g1/moves", `{"column": 0}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		games.AssertExpectations(t)
	})

	t.Run("Missing column", func(t *testing.T) {
		ts := newTestServer(t, &mockGameUseCase{})

		resp := post(t, ts.URL+"/games/g1/moves", `{}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	rejections := []struct {
		name   string
		err    error
		status int
	}{
		{"Full column", fmt.Errorf("%w: column 0", apperror.ErrColumnFull), http.StatusConflict},
		{"Game over", apperror.ErrGameOver, http.StatusConflict},
		{"Invalid column", fmt.Errorf("%w: 9", apperror.ErrInvalidColumn), http.StatusBadRequest},
	}

	for _, tc := range rejections {
		t.Run(tc.name, func(t *testing.T) {
			// Given: a use case rejecting the move with the unchanged game
			game := entity.NewGame("g1")
			games := &mockGameUseCase{}
			games.On("MakeMove", mock.Anything, "g1", 0).Return(game, entity.MoveResult{}, tc.err).Once()
			ts := newTestServer(t, games)

			// When: the move is posted
			resp := post(t, ts.URL+"/games/g1/moves", `{"column": 0}`)

			// Then: the rejection status is returned along with the game
			assert.Equal(t, tc.status, resp.StatusCode)
			body := decodeResponse(t, resp)
			assert.Equal(t, game, body.Game)
			assert.NotEmpty(t, body.Error)
		})
	}

	t.Run("Internal error", func(t *testing.T) {
		games := &mockGameUseCase{}
		games.On("MakeMove", mock.Anything, "g1", 1).Return(nil, entity.MoveResult{}, errors.New("redis down")).Once()
		ts := newTestServer(t, games)

		resp := post(t, ts.URL+"/games/g1/moves", `{"column": 1}`)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "Internal Server Error", decodeResponse(t, resp).Error)
	})
}

func TestServer_RestartGame(t *testing.T) {
	games := &mockGameUseCase{}
	games.On("RestartGame", mock.Anything, "g1").Return(entity.NewGame("g1"), nil).Once()
	ts := newTestServer(t, games)

	resp := post(t, ts.URL+"/games/g1/restart", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeResponse(t, resp)
	assert.Equal(t, entity.NewGame("g1"), body.Game)
}

func TestServer_DeleteGame(t *testing.T) {
	deleteGame := func(t *testing.T, url string) *http.Response {
		t.Helper()

		req, err := http.NewRequest(http.MethodDelete, url, nil) //nolint: noctx // test
		require.NoError(t, err)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)

		return resp
	}

	t.Run("Existing game", func(t *testing.T) {
		// Given: a use case that deletes g1
		games := &mockGameUseCase{}
		games.On("DeleteGame", mock.Anything, "g1").Return(nil).Once()
		ts := newTestServer(t, games)

		// When: DELETE /games/g1
		resp := deleteGame(t, ts.URL+"/games/g1")
		defer resp.Body.Close()

		// Then: 204 and the use case was called
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		games.AssertExpectations(t)
	})

	t.Run("Unknown game", func(t *testing.T) {
		games := &mockGameUseCase{}
		games.On("DeleteGame", mock.Anything, "nope").
			Return(fmt.Errorf("%w: game nope", apperror.ErrNotFound)).Once()
		ts := newTestServer(t, games)

		resp := deleteGame(t, ts.URL+"/games/nope")

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, decodeResponse(t, resp).Error, "not found")
	})
}
