// Package api exposes HTTP handlers for the exercise tracker.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"example.com/exercisetracker/internal/domain"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
	logger  logrus.FieldLogger
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes wires endpoints to the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", index)
	r.Get("/healthz", healthz)
	r.Route("/api/users", func(r chi.Router) {
		r.Get("/", h.listUsers)
		r.Post("/", h.createUser)
		r.Get("/{_id}/exercises", h.listExercises)
		r.Post("/{_id}/exercises", h.logExercise)
		r.Get("/{_id}/logs", h.queryLogs)
	})
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "exercise-tracker",
		"endpoints": []string{
			"GET /api/users",
			"POST /api/users",
			"GET /api/users/{_id}/exercises",
			"POST /api/users/{_id}/exercises",
			"GET /api/users/{_id}/logs?[from][&to][&limit]",
		},
	})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusForbidden, "validation_failed", err.Error())
		return
	}

	user, err := h.service.CreateOrGetUser(r.Context(), string(req.Username))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(*user))
}

func (h *Handler) listExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := h.service.ListExercises(r.Context(), chi.URLParam(r, "_id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	views := make([]ExerciseView, 0, len(exercises))
	for _, e := range exercises {
		views = append(views, ExerciseView{
			ID:          e.ID,
			UserID:      e.UserID,
			Description: e.Description,
			Duration:    e.Duration,
			Date:        domain.DisplayDate(e.Date),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) logExercise(w http.ResponseWriter, r *http.Request) {
	var req LogExerciseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	duration, err := req.Validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	logged, err := h.service.LogExercise(r.Context(), domain.LogExerciseInput{
		UserID:      chi.URLParam(r, "_id"),
		Description: req.Description,
		Duration:    duration,
		Date:        string(req.Date),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LoggedExerciseView{
		Username:    logged.User.Username,
		ID:          logged.User.ID,
		Date:        domain.DisplayDate(logged.Exercise.Date),
		Description: logged.Exercise.Description,
		Duration:    logged.Exercise.Duration,
	})
}

func (h *Handler) queryLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := domain.NewLogQuery(chi.URLParam(r, "_id"), q.Get("from"), q.Get("to"), q.Get("limit"), h.service.Now())

	result, err := h.service.QueryLogs(r.Context(), query)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := LogView{
		Count: result.Count,
		Log:   make([]LogEntryView, 0, len(result.Log)),
	}
	if result.User != nil {
		resp.ID = result.User.ID
		resp.Username = result.User.Username
	}
	for _, entry := range result.Log {
		resp.Log = append(resp.Log, LogEntryView{
			Description: entry.Description,
			Duration:    entry.Duration,
			Date:        domain.DisplayDate(entry.Date),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// UserView is the public shape of a user.
type UserView struct {
	Username string `json:"username"`
	ID       string `json:"_id"`
}

// ExerciseView is one element of the exercises list.
type ExerciseView struct {
	ID          string  `json:"_id"`
	UserID      string  `json:"userId"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	Date        string  `json:"date"`
}

// LoggedExerciseView answers POST /api/users/{_id}/exercises. ID is the owner's id.
type LoggedExerciseView struct {
	Username    string  `json:"username"`
	ID          string  `json:"_id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
}

// LogEntryView is one projected log record.
type LogEntryView struct {
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	Date        string  `json:"date"`
}

// LogView answers GET /api/users/{_id}/logs. ID and Username are omitted for unknown users.
type LogView struct {
	ID       string         `json:"_id,omitempty"`
	Username string         `json:"username,omitempty"`
	Count    int            `json:"count"`
	Log      []LogEntryView `json:"log"`
}

func toUserView(u domain.User) UserView {
	return UserView{Username: u.Username, ID: u.ID}
}

// writeServiceError maps a service error onto a status code. Store failures are logged and
// answered with a generic detail.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := h.logger.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"kind":   domain.KindOf(err).String(),
	}).WithError(err)

	switch domain.KindOf(err) {
	case domain.KindValidation:
		log.Info("request rejected")
		writeError(w, http.StatusBadRequest, "validation_failed", publicMessage(err))
	case domain.KindNotFound:
		log.Info("entity not found")
		writeError(w, http.StatusNotFound, "not_found", publicMessage(err))
	default:
		log.Error("request failed")
		writeError(w, http.StatusInternalServerError, "server_error", "internal server error")
	}
}

func publicMessage(err error) string {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return http.StatusText(http.StatusBadRequest)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
