package http

import (
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chessrules/internal/core"
	"chessrules/internal/server/processor"
	"chessrules/internal/server/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/go-cmp/cmp"
)

var testSecret = []byte("test-secret-minimum-32-characters-long")

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	svc := service.New(nil, testSecret)
	t.Cleanup(func() { _ = svc.Shutdown(0) })
	return NewFiberApp(processor.New(svc), svc, true)
}

func do(t *testing.T, app *fiber.App, method, target, token, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func createGame(t *testing.T, app *fiber.App, body string) core.CreateGameResponse {
	t.Helper()
	status, data := do(t, app, nethttp.MethodPost, "/api/v1/games", "", body)
	if status != fiber.StatusCreated {
		t.Fatalf("create status = %d: %s", status, data)
	}
	return decode[core.CreateGameResponse](t, data)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	status, data := do(t, app, nethttp.MethodGet, "/health", "", "")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if got := decode[map[string]any](t, data)["storage"]; got != "disabled" {
		t.Errorf("storage = %v", got)
	}
}

func TestSeatTokens(t *testing.T) {
	app := newTestApp(t)
	g := createGame(t, app, `{}`)
	other := createGame(t, app, `{}`)
	target := "/api/v1/games/" + g.GameID + "/moves"
	move := `{"from":"e2","to":"e4"}`

	tests := []struct {
		name   string
		token  string
		status int
		code   string
	}{
		{"missing", "", fiber.StatusUnauthorized, core.ErrUnauthorized},
		{"garbage", "not-a-token", fiber.StatusUnauthorized, core.ErrUnauthorized},
		{"other game", other.Tokens.White, fiber.StatusForbidden, core.ErrUnauthorized},
		{"wrong seat", g.Tokens.Black, fiber.StatusForbidden, core.ErrNotYourTurn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, data := do(t, app, nethttp.MethodPost, target, tt.token, move)
			if status != tt.status {
				t.Errorf("status = %d, want %d: %s", status, tt.status, data)
			}
			if got := decode[core.ErrorResponse](t, data).Code; got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
		})
	}

	status, data := do(t, app, nethttp.MethodPost, target, g.Tokens.White, move)
	if status != fiber.StatusOK {
		t.Fatalf("white move status = %d: %s", status, data)
	}
	state := decode[core.GameResponse](t, data)
	if diff := cmp.Diff([]string{"e2e4"}, state.Moves); diff != "" {
		t.Errorf("moves mismatch (-want +got):\n%s", diff)
	}
	if state.Turn != "b" || state.Version != 1 {
		t.Errorf("turn=%s version=%d", state.Turn, state.Version)
	}
}

func TestValidation(t *testing.T) {
	app := newTestApp(t)
	g := createGame(t, app, `{}`)
	base := "/api/v1/games/" + g.GameID

	status, _ := do(t, app, nethttp.MethodPost, base+"/moves", g.Tokens.White, `{"from":"e9","to":"e4"}`)
	if status != fiber.StatusBadRequest {
		t.Errorf("bad square status = %d", status)
	}
	status, _ = do(t, app, nethttp.MethodPost, base+"/promotion", g.Tokens.White, `{"piece":"king"}`)
	if status != fiber.StatusBadRequest {
		t.Errorf("bad promotion status = %d", status)
	}
	status, _ = do(t, app, nethttp.MethodPost, "/api/v1/games", "", `{"timeControl":{"minutes":500}}`)
	if status != fiber.StatusBadRequest {
		t.Errorf("oversized time control status = %d", status)
	}
	status, data := do(t, app, nethttp.MethodPost, "/api/v1/games", "", `{"fen":"8/8/8/8/8/8/8/8 w - - 0 1"}`)
	if status != fiber.StatusBadRequest || decode[core.ErrorResponse](t, data).Code != core.ErrInvalidFEN {
		t.Errorf("kingless FEN = %d %s", status, data)
	}
	status, _ = do(t, app, nethttp.MethodGet, "/api/v1/games/not-a-uuid", "", "")
	if status != fiber.StatusBadRequest {
		t.Errorf("bad game ID status = %d", status)
	}

	req := httptest.NewRequest(nethttp.MethodPost, "/api/v1/games", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "text/plain")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusUnsupportedMediaType {
		t.Errorf("text/plain status = %d", resp.StatusCode)
	}
}

func TestPromotionOverHTTP(t *testing.T) {
	app := newTestApp(t)
	g := createGame(t, app, `{"fen":"4k3/1P6/8/8/8/8/8/4K3 w - - 0 1"}`)
	base := "/api/v1/games/" + g.GameID

	status, data := do(t, app, nethttp.MethodGet, base+"/moves/b7", "", "")
	if status != fiber.StatusOK {
		t.Fatalf("allowed moves status = %d", status)
	}
	allowed := decode[core.AllowedMovesResponse](t, data)
	if diff := cmp.Diff([]string{"b8"}, allowed.Moves); diff != "" {
		t.Errorf("allowed mismatch (-want +got):\n%s", diff)
	}

	status, data = do(t, app, nethttp.MethodPost, base+"/moves", g.Tokens.White, `{"from":"b7","to":"b8"}`)
	if status != fiber.StatusOK || decode[core.GameResponse](t, data).Promotion != "b8" {
		t.Fatalf("push = %d %s", status, data)
	}
	status, _ = do(t, app, nethttp.MethodPost, base+"/moves", g.Tokens.White, `{"from":"e1","to":"d1"}`)
	if status != fiber.StatusConflict {
		t.Errorf("move during promotion status = %d", status)
	}

	status, data = do(t, app, nethttp.MethodPost, base+"/promotion", g.Tokens.White, `{"piece":"knight"}`)
	if status != fiber.StatusOK {
		t.Fatalf("promote = %d %s", status, data)
	}
	state := decode[core.GameResponse](t, data)
	if state.Turn != "b" || state.LastMove == nil || state.LastMove.Move != "b7b8n" {
		t.Errorf("after promotion %+v", state)
	}

	status, data = do(t, app, nethttp.MethodGet, base+"/board", "", "")
	if status != fiber.StatusOK {
		t.Fatalf("board status = %d", status)
	}
	if got := decode[core.BoardResponse](t, data).FEN; got != "1N2k3/8/8/8/8/8/8/4K3 b - - 0 1" {
		t.Errorf("FEN = %q", got)
	}
}

func TestPauseAndLongPoll(t *testing.T) {
	app := newTestApp(t)
	g := createGame(t, app, `{"timeControl":{"minutes":5}}`)
	base := "/api/v1/games/" + g.GameID

	status, data := do(t, app, nethttp.MethodPost, base+"/pause", g.Tokens.Black, "")
	if status != fiber.StatusOK || !decode[core.GameResponse](t, data).Paused {
		t.Fatalf("pause = %d %s", status, data)
	}
	status, _ = do(t, app, nethttp.MethodPost, base+"/moves", g.Tokens.White, `{"from":"e2","to":"e4"}`)
	if status != fiber.StatusConflict {
		t.Errorf("paused move status = %d", status)
	}
	status, _ = do(t, app, nethttp.MethodPost, base+"/resume", g.Tokens.White, "")
	if status != fiber.StatusOK {
		t.Fatalf("resume status = %d", status)
	}

	// A client behind the current version gets an immediate answer
	status, data = do(t, app, nethttp.MethodGet, base+"?wait=true&version=0", "", "")
	if status != fiber.StatusOK {
		t.Fatalf("poll status = %d", status)
	}
	state := decode[core.GameResponse](t, data)
	if state.Version != 2 || state.Clocks == nil || state.Clocks.White != 5*60*1000 {
		t.Errorf("polled state %+v", state)
	}

	status, _ = do(t, app, nethttp.MethodDelete, base, "", "")
	if status != fiber.StatusNoContent {
		t.Errorf("delete status = %d", status)
	}
	status, _ = do(t, app, nethttp.MethodGet, base+"?wait=true&version=2", "", "")
	if status != fiber.StatusNotFound {
		t.Errorf("poll after delete status = %d", status)
	}
}

func TestStreamRequiresUpgrade(t *testing.T) {
	app := newTestApp(t)
	g := createGame(t, app, `{}`)
	status, _ := do(t, app, nethttp.MethodGet, "/ws/games/"+g.GameID, "", "")
	if status != fiber.StatusUpgradeRequired {
		t.Errorf("plain GET status = %d", status)
	}
}
