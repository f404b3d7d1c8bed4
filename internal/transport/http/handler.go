package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"ai-quiz-room/internal/app"
	"ai-quiz-room/internal/domain"
	"github.com/gorilla/mux"
)

// Handler wires the REST surface to the room service.
type Handler struct {
	service *app.RoomService
	tokens  *TokenManager
}

func NewHandler(service *app.RoomService, tokens *TokenManager) *Handler {
	return &Handler{service: service, tokens: tokens}
}

// RegisterRoutes mounts the API under /api and the live feed at /ws/room.
func (h *Handler) RegisterRoutes(r *mux.Router, ws *WSHandler) {
	r.Use(corsMiddleware)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.HandleFunc("/ws/room", ws.ServeWS)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/room", h.getRoom).Methods(http.MethodGet)
	api.HandleFunc("/room/register", h.register).Methods(http.MethodPost)
	api.HandleFunc("/room/start", h.start).Methods(http.MethodPost)
	api.HandleFunc("/room/restart", h.restart).Methods(http.MethodPost)
	api.HandleFunc("/room/question", h.question).Methods(http.MethodGet)
	api.HandleFunc("/room/answer", h.answer).Methods(http.MethodPost)
	api.HandleFunc("/room/leaderboard", h.leaderboard).Methods(http.MethodGet)
	api.HandleFunc("/room/me", h.me).Methods(http.MethodGet)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")

		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type registerRequest struct {
	Name string `json:"name"`
}

type answerRequest struct {
	Answer int `json:"answer"`
}

func (h *Handler) getRoom(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Snapshot())
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidName)
		return
	}
	name, err := h.service.Register(req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := h.tokens.Issue(name)
	if err != nil {
		log.Printf("issue token for %q: %v", name, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "token": token, "user": name})
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	h.service.StartRegistration()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) restart(w http.ResponseWriter, r *http.Request) {
	h.service.StartNewCycle()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) question(w http.ResponseWriter, r *http.Request) {
	question, ok := h.service.ActiveQuestion()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"question": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"question": question})
}

func (h *Handler) answer(w http.ResponseWriter, r *http.Request) {
	name, err := h.tokens.bearerName(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.service.SubmitAnswer(name, req.Answer); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Leaderboard())
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	name, err := h.tokens.bearerName(r)
	if err != nil {
		writeError(w, err)
		return
	}
	user, err := h.service.UserInfo(name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

// writeError maps domain errors onto HTTP statuses:
// stage closed -> 403, conflicts -> 409, bad input -> 400,
// bad token -> 401, missing user -> 404.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrRegistrationClosed), errors.Is(err, domain.ErrQuestionClosed):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNameTaken), errors.Is(err, domain.ErrRoomFull), errors.Is(err, domain.ErrAlreadyAnswered):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidName):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrUserNotFound):
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}
