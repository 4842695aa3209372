// Package handler exposes the recommendation API over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"bokji/internal/platform/middleware"
	"bokji/internal/recommend/models"
	"bokji/internal/recommend/service"
	dErrors "bokji/pkg/domain-errors"
	"bokji/pkg/platform/httputil"
)

// Service defines the recommendation operations the handler exposes.
type Service interface {
	GetRecommendations(ctx context.Context, userID uuid.UUID, q models.ListQuery) (*models.RecommendationList, error)
	RefreshRecommendations(ctx context.Context, userID uuid.UUID) (*models.RefreshResult, error)
	RecordView(ctx context.Context, userID, recommendationID uuid.UUID) (*models.ViewResult, error)
	ToggleBookmark(ctx context.Context, userID, programID uuid.UUID) (bool, error)
}

// Handler handles recommendation endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a recommendation Handler.
func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: svc}
}

// Register mounts the recommendation routes on the given router.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Get("/recommendations", h.handleList)
	router.Post("/recommendations/refresh", h.handleRefresh)
	router.Post("/recommendations/{id}/view", h.handleView)
	router.Post("/recommendations/bookmark", h.handleBookmark)

	r.Mount("/", router)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "user_id must be a valid uuid"))
		return
	}

	q := models.ListQuery{
		Category: r.URL.Query().Get("category"),
		SortBy:   models.SortBy(r.URL.Query().Get("sort_by")),
		Page:     intQuery(r, "page"),
		Limit:    intQuery(r, "limit"),
	}

	list, err := h.service.GetRecommendations(ctx, userID, q)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list recommendations",
			"request_id", middleware.GetRequestID(ctx),
			"user_id", userID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

type refreshRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

type refreshResponse struct {
	Success      bool   `json:"success"`
	UpdatedCount int    `json:"updated_count"`
	Message      string `json:"message"`
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == uuid.Nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	res, err := h.service.RefreshRecommendations(ctx, req.UserID)
	if err != nil {
		var throttled *service.ThrottledError
		if errors.As(err, &throttled) {
			httputil.WriteRateLimited(w, throttled.RemainingSeconds)
			return
		}
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to refresh recommendations",
			"request_id", middleware.GetRequestID(ctx),
			"user_id", req.UserID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, refreshResponse{
		Success:      true,
		UpdatedCount: res.UpdatedCount,
		Message:      res.Message,
	})
}

type viewRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

type viewResponse struct {
	Success  bool      `json:"success"`
	ViewedAt time.Time `json:"viewed_at"`
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "recommendation id must be a valid uuid"))
		return
	}

	var req viewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == uuid.Nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	res, err := h.service.RecordView(ctx, req.UserID, recID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to record view",
				"request_id", middleware.GetRequestID(ctx),
				"recommendation_id", recID,
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, viewResponse{Success: true, ViewedAt: res.ViewedAt})
}

type bookmarkRequest struct {
	UserID    uuid.UUID `json:"user_id"`
	ProgramID uuid.UUID `json:"program_id"`
}

type bookmarkResponse struct {
	IsBookmarked bool `json:"is_bookmarked"`
}

func (h *Handler) handleBookmark(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req bookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == uuid.Nil || req.ProgramID == uuid.Nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	state, err := h.service.ToggleBookmark(ctx, req.UserID, req.ProgramID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to toggle bookmark",
			"request_id", middleware.GetRequestID(ctx),
			"user_id", req.UserID,
			"program_id", req.ProgramID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, bookmarkResponse{IsBookmarked: state})
}

func intQuery(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
