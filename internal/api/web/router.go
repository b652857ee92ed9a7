package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/oshokin/tempwatch/internal/domain/chat"
	"github.com/oshokin/tempwatch/internal/domain/profile"
	"github.com/oshokin/tempwatch/internal/domain/temperature"
	"github.com/oshokin/tempwatch/internal/logger"
)

// maxProfileBody bounds the PUT /api/profile request body.
const maxProfileBody = 4 << 10

// Monitor provides the latest reading.
type Monitor interface {
	Latest() temperature.Reading
}

// Preferences reads and updates the profile.
type Preferences interface {
	Profile() profile.UserProfile
	Set(ctx context.Context, field profile.Field, value string) error
}

// ProfileDTO is the JSON shape of the profile.
type ProfileDTO struct {
	Username       string `json:"username"`
	ProfileImage   string `json:"profile_image_uri_or_path"`
	HasCustomImage bool   `json:"has_custom_image"`
}

// MessageDTO is the JSON shape of a chat message.
type MessageDTO struct {
	Author string `json:"author"`
	Body   string `json:"body"`
	Avatar string `json:"avatar,omitempty"`
}

// SummaryDTO is what the main surface shows.
type SummaryDTO struct {
	Profile  ProfileDTO   `json:"profile"`
	Reading  ReadingDTO   `json:"reading"`
	Messages []MessageDTO `json:"messages"`
}

// UpdateProfileRequest is the PUT /api/profile body.
type UpdateProfileRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the HTTP surface.
type Handler struct {
	monitor     Monitor
	preferences Preferences
	hub         *Hub
	upgrader    websocket.Upgrader
}

// NewHandler builds the router. hub may be nil, which disables /ws.
func NewHandler(monitor Monitor, preferences Preferences, hub *Hub) http.Handler {
	h := &Handler{
		monitor:     monitor,
		preferences: preferences,
		hub:         hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	r := mux.NewRouter()
	r.Use(logRequests)

	r.HandleFunc("/", h.summary).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/temperature", h.temperature).Methods(http.MethodGet)
	api.HandleFunc("/profile", h.getProfile).Methods(http.MethodGet)
	api.HandleFunc("/profile", h.updateProfile).Methods(http.MethodPut)
	api.HandleFunc("/messages", h.messages).Methods(http.MethodGet)

	if hub != nil {
		r.HandleFunc("/ws", h.serveWS).Methods(http.MethodGet)
	}

	return r
}

func (h *Handler) summary(w http.ResponseWriter, _ *http.Request) {
	p := h.preferences.Profile()

	writeJSON(w, http.StatusOK, SummaryDTO{
		Profile:  newProfileDTO(p),
		Reading:  newReadingDTO(h.monitor.Latest()),
		Messages: newMessageDTOs(chat.Personalize(chat.Sample(), p)),
	})
}

func (h *Handler) temperature(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newReadingDTO(h.monitor.Latest()))
}

func (h *Handler) getProfile(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newProfileDTO(h.preferences.Profile()))
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxProfileBody))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")

		return
	}

	field, err := profile.ParseField(req.Field)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	if err = h.preferences.Set(r.Context(), field, req.Value); err != nil {
		if errors.Is(err, profile.ErrEmptyUsername) || errors.Is(err, profile.ErrUnknownField) {
			writeError(w, http.StatusBadRequest, err.Error())

			return
		}

		logger.ErrorKV(r.Context(), "Failed to update profile", "field", field, "error", err)
		writeError(w, http.StatusInternalServerError, "unable to persist preferences")

		return
	}

	writeJSON(w, http.StatusOK, newProfileDTO(h.preferences.Profile()))
}

func (h *Handler) messages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newMessageDTOs(chat.Personalize(chat.Sample(), h.preferences.Profile())))
}

func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		logger.WarnKV(r.Context(), "WebSocket upgrade failed", "remote", r.RemoteAddr, "error", err)

		return
	}

	newClient(h.hub, conn).Serve(r.Context())
}

// logRequests logs every request at debug level.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()

		next.ServeHTTP(w, r)

		logger.DebugKV(r.Context(), "HTTP request served",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(started))
	})
}

func newProfileDTO(p profile.UserProfile) ProfileDTO {
	return ProfileDTO{
		Username:       p.Username,
		ProfileImage:   p.ProfileImageLocation,
		HasCustomImage: p.HasCustomImage(),
	}
}

func newMessageDTOs(messages []chat.Message) []MessageDTO {
	result := make([]MessageDTO, 0, len(messages))
	for _, m := range messages {
		result = append(result, MessageDTO{Author: m.Author, Body: m.Body, Avatar: m.Avatar})
	}

	return result
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorResponse{Error: message})
}
