package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"trivia-race-service/internal/app"
	"trivia-race-service/internal/domain"
)

type WSHandler struct {
	service  *app.RaceService
	poller   *app.Poller
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.RaceService, poller *app.Poller) *WSHandler {
	return &WSHandler{
		service: service,
		poller:  poller,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type joinedPayload struct {
	ConnectionID string                `json:"connectionId"`
	Progress     domain.PlayerProgress `json:"progress"`
}

type retryPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and runs one participant's poll loop over the socket.
// The player may be named on the query string or later with a join message.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})
	pollDone := make(chan struct{})
	kick := make(chan struct{}, 1)

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws %s write error: %v", connID, err)
				return
			}
		}
	}()

	emit := func(msgType string, payload any) {
		select {
		case send <- outboundMessage[any]{Type: msgType, Payload: payload}:
		case <-writerDone:
		}
	}
	poke := func() {
		select {
		case kick <- struct{}{}:
		default:
		}
	}

	var mu sync.Mutex
	name := ""
	player := func() string {
		mu.Lock()
		defer mu.Unlock()
		return name
	}
	join := func(requested string) {
		progress, err := h.service.Join(ctx, requested)
		if errors.Is(err, domain.ErrInvalidJoin) {
			return
		}
		if err != nil {
			emit("retry", retryPayload{Message: err.Error()})
			return
		}
		mu.Lock()
		name = domain.NormalizeName(requested)
		mu.Unlock()
		log.Printf("ws %s joined as %q", connID, domain.NormalizeName(requested))
		emit("joined", joinedPayload{ConnectionID: connID, Progress: progress})
		poke()
	}

	if requested := r.URL.Query().Get("name"); requested != "" {
		join(requested)
	}

	go func() {
		defer close(pollDone)
		_ = h.poller.Run(ctx, kick, func(ctx context.Context) error {
			view, err := h.service.View(ctx, player())
			if err != nil {
				emit("retry", retryPayload{Message: "race state unavailable, retrying"})
				return err
			}
			emit("view", view)
			return nil
		})
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "join":
			var payload joinRequest
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit("error", errorPayload{Message: "invalid join payload"})
				continue
			}
			join(payload.Name)
		case "answer":
			var payload answerRequest
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit("error", errorPayload{Message: "invalid answer payload"})
				continue
			}
			res, err := h.service.SubmitAnswer(ctx, player(), payload.QuestionIndex, payload.Selected)
			switch {
			case err == nil:
				emit("answerResult", res)
			case errors.Is(err, domain.ErrStoreUnavailable) && res.Record.Player != "":
				emit("answerResult", res)
				emit("retry", retryPayload{Message: "answer could not be fully saved"})
			case errors.Is(err, domain.ErrStoreUnavailable), errors.Is(err, domain.ErrVersionConflict):
				emit("retry", retryPayload{Message: err.Error()})
			default:
				emit("error", errorPayload{Message: err.Error()})
			}
			poke()
		case "continue":
			var payload continueRequest
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit("error", errorPayload{Message: "invalid continue payload"})
				continue
			}
			if _, err := h.service.Continue(ctx, player(), payload.QuestionIndex); err != nil {
				emit("error", errorPayload{Message: err.Error()})
			}
			poke()
		case "poll":
			poke()
		default:
			emit("error", errorPayload{Message: "unsupported message type"})
		}
	}

	cancel()
	<-pollDone
	close(send)
	<-writerDone
}
