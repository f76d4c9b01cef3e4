// Package handler provides the HTTP handlers for the recommendation service.
package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/coursewise/course-recommender/internal/model"
	"github.com/coursewise/course-recommender/internal/pkg/httputils"
	"github.com/coursewise/course-recommender/internal/recommender/biz"
	"github.com/coursewise/course-recommender/internal/recommender/metrics"
	"github.com/coursewise/course-recommender/pkg/utils/errors"
)

// RecommendHandler handles recommendation HTTP requests.
type RecommendHandler struct {
	service biz.Service
}

// NewRecommendHandler creates a new RecommendHandler.
func NewRecommendHandler(service biz.Service) *RecommendHandler {
	return &RecommendHandler{service: service}
}

// RecommendRequest is the recommendation request body.
type RecommendRequest struct {
	Query    string `json:"query"`
	Category string `json:"category"`
}

// RecommendResponse is the recommendation response body.
type RecommendResponse struct {
	Recommendations []model.Recommendation `json:"recommendations"`
}

// SuccessResponse is the envelope for management endpoints. The recommend
// endpoint itself keeps its flat legacy shape.
type SuccessResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Recommend answers a recommendation query. A missing or blank query is a
// 400; the category defaults to the match-all sentinel.
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteError(c, errors.ErrQueryRequired)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		httputils.WriteError(c, errors.ErrQueryRequired)
		return
	}
	if req.Category == "" {
		req.Category = model.CategoryAll
	}

	recs, err := h.service.Recommend(c.Request.Context(), req.Query, req.Category)
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	if recs == nil {
		// The wire contract promises a list, never null.
		recs = []model.Recommendation{}
	}
	httputils.WriteJSON(c, RecommendResponse{Recommendations: recs})
}

// Stats returns service counters.
func (h *RecommendHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteJSON(c, SuccessResponse{Code: 0, Message: "Success", Data: stats})
}

// Metrics exposes the counters in Prometheus text format.
func (h *RecommendHandler) Metrics(c *gin.Context) {
	c.String(http.StatusOK, metrics.Get().Export("course", "recommender"))
}

// Healthz reports process liveness.
func (h *RecommendHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz reports whether the catalog and index are loaded.
func (h *RecommendHandler) Readyz(c *gin.Context) {
	if err := h.service.Ready(); err != nil {
		httputils.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
