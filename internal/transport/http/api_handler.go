package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"trivia-race-service/internal/app"
	"trivia-race-service/internal/domain"
)

const adminSecretHeader = "X-Admin-Secret"

// APIHandler exposes the race operations as JSON over HTTP.
type APIHandler struct {
	service     *app.RaceService
	adminSecret string
}

func NewAPIHandler(service *app.RaceService, adminSecret string) *APIHandler {
	return &APIHandler{service: service, adminSecret: adminSecret}
}

// Routes registers every endpoint on a fresh router.
func (h *APIHandler) Routes() http.Handler {
	r := httprouter.New()
	r.POST("/players", h.join)
	r.GET("/players/:name/view", h.view)
	r.POST("/players/:name/answers", h.submitAnswer)
	r.POST("/players/:name/continue", h.continueRace)
	r.GET("/state", h.state)
	r.GET("/ranking", h.ranking)
	r.GET("/answers", h.answers)
	r.GET("/players", h.roster)
	r.GET("/audit", h.admin(h.audit))

	r.POST("/admin/start", h.admin(h.startRace))
	r.POST("/admin/reset", h.admin(h.reset))
	return r
}

type joinRequest struct {
	Name string `json:"name"`
}

type answerRequest struct {
	QuestionIndex int    `json:"questionIndex"`
	Selected      string `json:"selected"`
}

type continueRequest struct {
	QuestionIndex int `json:"questionIndex"`
}

type startRequest struct {
	Organizer string `json:"organizer"`
}

type answerResponse struct {
	Result  domain.SubmitResult `json:"result"`
	Warning string              `json:"warning,omitempty"`
}

type viewResponse struct {
	View    domain.PlayerView `json:"view"`
	Warning string            `json:"warning,omitempty"`
}

type auditResponse struct {
	Players []string          `json:"players"`
	Rows    []domain.AuditRow `json:"rows"`
}

func (h *APIHandler) join(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid join payload")
		return
	}
	progress, err := h.service.Join(r.Context(), req.Name)
	if errors.Is(err, domain.ErrInvalidJoin) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (h *APIHandler) view(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	view, err := h.service.View(r.Context(), ps.ByName("name"))
	resp := viewResponse{View: view}
	if err != nil {
		resp.Warning = "race state unavailable, please retry"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) submitAnswer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid answer payload")
		return
	}
	res, err := h.service.SubmitAnswer(r.Context(), ps.ByName("name"), req.QuestionIndex, req.Selected)
	if err != nil && !errors.Is(err, domain.ErrStoreUnavailable) {
		writeDomainError(w, err)
		return
	}
	resp := answerResponse{Result: res}
	if err != nil {
		if res.Record.Player == "" {
			writeDomainError(w, err)
			return
		}
		resp.Warning = "answer recorded locally but could not be fully saved"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) continueRace(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req continueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid continue payload")
		return
	}
	progress, err := h.service.Continue(r.Context(), ps.ByName("name"), req.QuestionIndex)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (h *APIHandler) state(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, h.service.GetState(r.Context()))
}

func (h *APIHandler) ranking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, h.service.GetRanking(r.Context(), limit))
}

func (h *APIHandler) answers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, h.service.GetAnswerLog(r.Context(), r.URL.Query().Get("player")))
}

func (h *APIHandler) roster(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, h.service.GetRoster(r.Context()))
}

func (h *APIHandler) audit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	records := h.service.GetAnswerLog(r.Context(), "")
	writeJSON(w, http.StatusOK, auditResponse{
		Players: domain.AuditPlayers(records),
		Rows:    domain.AuditRows(records, r.URL.Query().Get("player")),
	})
}

func (h *APIHandler) startRace(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid start payload")
		return
	}
	state, err := h.service.StartRace(r.Context(), req.Organizer)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *APIHandler) reset(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.service.Reset(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// admin guards organizer endpoints with the shared secret when one is configured.
func (h *APIHandler) admin(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if h.adminSecret != "" && r.Header.Get(adminSecretHeader) != h.adminSecret {
			writeError(w, http.StatusUnauthorized, "invalid admin credentials")
			return
		}
		next(w, r, ps)
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingOrganizerName), errors.Is(err, domain.ErrOptionNotFound):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrParticipantNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrStaleSubmission),
		errors.Is(err, domain.ErrQuestionAhead),
		errors.Is(err, domain.ErrAlreadyFinished),
		errors.Is(err, domain.ErrNoMoreQuestions),
		errors.Is(err, domain.ErrRaceNotStarted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStoreUnavailable), errors.Is(err, domain.ErrVersionConflict):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type errorPayload struct {
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorPayload{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
