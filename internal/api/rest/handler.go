// Package rest is the thin operational surface over the content core: content
// resolution, language popularity, and scheduler administration. Routing stays
// deliberately small; the core logic lives in the service layer.
package rest

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lessonforge/lessonforge-backend/internal/models"
	"github.com/lessonforge/lessonforge-backend/internal/repository"
	"github.com/lessonforge/lessonforge-backend/internal/scheduler"
	"github.com/lessonforge/lessonforge-backend/internal/service"
)

// Handler holds the collaborators the admin API exposes.
type Handler struct {
	resolver  *service.Resolver
	tracker   repository.LanguageUsageTracker
	scheduler *scheduler.Scheduler
}

// NewHandler creates the admin API handler.
func NewHandler(resolver *service.Resolver, tracker repository.LanguageUsageTracker, sched *scheduler.Scheduler) *Handler {
	return &Handler{resolver: resolver, tracker: tracker, scheduler: sched}
}

// SetupRoutes registers all admin API routes on the router.
func SetupRoutes(router *mux.Router, h *Handler) {
	router.HandleFunc("/lessons/{id}/content", h.ResolveContent).Methods("GET")
	router.HandleFunc("/languages/popular", h.PopularLanguages).Methods("GET")
	router.HandleFunc("/scheduler/status", h.SchedulerStatus).Methods("GET")
	router.HandleFunc("/scheduler/jobs/{name}/trigger", h.TriggerJob).Methods("POST")
}

// ResolveContent handles GET /lessons/{id}/content?language=fr&type=text
func (h *Handler) ResolveContent(w http.ResponseWriter, r *http.Request) {
	lessonID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid lesson id")
		return
	}
	language := r.URL.Query().Get("language")
	if language == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "language is required")
		return
	}
	contentType := r.URL.Query().Get("type")
	if contentType == "" {
		contentType = models.ContentTypeText
	}

	result, err := h.resolver.Resolve(r.Context(), lessonID, language, contentType)
	if err != nil {
		respondError(w, http.StatusBadGateway, ErrCodeInternalError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// PopularLanguages handles GET /languages/popular?limit=10
func (h *Handler) PopularLanguages(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid limit")
			return
		}
		limit = n
	}
	languages, err := h.tracker.GetPopularLanguages(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, languages)
}

// SchedulerStatus handles GET /scheduler/status
func (h *Handler) SchedulerStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.scheduler.Status())
}

// TriggerJob handles POST /scheduler/jobs/{name}/trigger
func (h *Handler) TriggerJob(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	report, err := h.scheduler.Trigger(r.Context(), name)
	if err != nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, report)
}
