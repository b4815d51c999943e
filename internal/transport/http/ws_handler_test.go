package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"trivia-race-service/internal/app"
	"trivia-race-service/internal/domain"
	"trivia-race-service/internal/infra/memory"
)

func newTestService() *app.RaceService {
	bank := memory.DefaultBank()
	return app.NewRaceService(memory.NewStateStore(), memory.NewAnswerLog(), bank, domain.DefaultRules(bank.Len()), app.Options{})
}

func TestWebSocketAnswerFlow(t *testing.T) {
	service := newTestService()
	wsHandler := NewWSHandler(service, app.NewPoller(50*time.Millisecond))

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?name=Alice"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect joined event first.
	_, payload := readNext(conn, t, "joined")
	if payload["connectionId"] == "" {
		t.Fatalf("expected connection id in joined payload, got %v", payload)
	}

	// Before the start the poll loop renders the waiting screen.
	view := readUntil(conn, t, "view")
	if view["screen"] != string(domain.ScreenWaiting) {
		t.Fatalf("expected waiting screen, got %v", view["screen"])
	}

	if _, err := service.StartRace(context.Background(), "Prof"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := conn.WriteJSON(map[string]any{"type": "poll"}); err != nil {
		t.Fatalf("write poll: %v", err)
	}
	waitForScreen(conn, t, domain.ScreenAnswering)

	answer := map[string]any{
		"type": "answer",
		"payload": map[string]any{
			"questionIndex": 0,
			"selected":      service.Bank().Questions[0].CorrectOption,
		},
	}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}

	result := readUntil(conn, t, "answerResult")
	if result["correct"] != true || result["awarded"] != float64(10) {
		t.Fatalf("expected correct answer worth 10, got %v", result)
	}
	waitForScreen(conn, t, domain.ScreenFeedback)

	if err := conn.WriteJSON(map[string]any{"type": "continue", "payload": map[string]any{"questionIndex": 1}}); err != nil {
		t.Fatalf("write continue: %v", err)
	}
	view = waitForScreen(conn, t, domain.ScreenAnswering)
	if view["questionIndex"] != float64(1) || view["score"] != float64(10) {
		t.Fatalf("expected question 2 with 10 points, got %v", view)
	}
}

func TestWebSocketJoinMessageAndUnknownType(t *testing.T) {
	service := newTestService()
	wsHandler := NewWSHandler(service, app.NewPoller(time.Hour))

	server := httptest.NewServer(http.HandlerFunc(wsHandler.ServeWS))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):], nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	view := readUntil(conn, t, "view")
	if view["screen"] != string(domain.ScreenNotJoined) {
		t.Fatalf("expected not-joined screen, got %v", view["screen"])
	}

	if err := conn.WriteJSON(map[string]any{"type": "dance"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	readNext(conn, t, "error")

	if err := conn.WriteJSON(map[string]any{"type": "join", "payload": map[string]any{"name": "  Bob "}}); err != nil {
		t.Fatalf("write join: %v", err)
	}
	readUntil(conn, t, "joined")
	if _, ok := service.GetState(context.Background()).Players["Bob"]; !ok {
		t.Fatalf("expected Bob to be registered")
	}
}

func TestWebSocketSendsRetryWhenStoreIsDown(t *testing.T) {
	bank := memory.DefaultBank()
	service := app.NewRaceService(brokenStore{}, memory.NewAnswerLog(), bank, domain.DefaultRules(bank.Len()), app.Options{})
	wsHandler := NewWSHandler(service, app.NewPoller(20*time.Millisecond))

	server := httptest.NewServer(http.HandlerFunc(wsHandler.ServeWS))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):], nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readUntil(conn, t, "retry")
	// The loop keeps going after a failed cycle.
	readUntil(conn, t, "retry")
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

// readUntil skips interleaved poll output until a message of the given type arrives.
func readUntil(conn *websocket.Conn, t *testing.T, expect string) map[string]any {
	t.Helper()
	for i := 0; i < 200; i++ {
		typ, payload := readNext(conn, t, "")
		if typ == expect {
			return payload
		}
	}
	t.Fatalf("no %s message received", expect)
	return nil
}

func waitForScreen(conn *websocket.Conn, t *testing.T, screen domain.Screen) map[string]any {
	t.Helper()
	for i := 0; i < 200; i++ {
		view := readUntil(conn, t, "view")
		if view["screen"] == string(screen) {
			return view
		}
	}
	t.Fatalf("screen %s never shown", screen)
	return nil
}
