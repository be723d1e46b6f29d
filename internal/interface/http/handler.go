package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/ootd-recommender/internal/domain/outfit"
	apperrors "github.com/yanqian/ootd-recommender/pkg/errors"
)

// Handler wires the HTTP transport to the outfit service.
type Handler struct {
	outfitSvc outfit.Service
	logger    *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(outfitSvc outfit.Service, logger *slog.Logger) *Handler {
	return &Handler{
		outfitSvc: outfitSvc,
		logger:    logger.With("component", "http.handler"),
	}
}

// Recommend composes an outfit for the user and region.
func (h *Handler) Recommend(c *gin.Context) {
	var req outfit.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.outfitSvc.Recommend(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, "recommend_failed"))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SaveWeather stores the latest resolved snapshot for a region.
func (h *Handler) SaveWeather(c *gin.Context) {
	var weather outfit.Weather
	if err := c.ShouldBindJSON(&weather); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	if err := h.outfitSvc.SaveWeather(c.Request.Context(), c.Param("region"), weather); err != nil {
		abortWithError(c, domainError(err, "weather_save_failed"))
		return
	}

	c.Status(http.StatusNoContent)
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func domainError(err error, fallbackCode string) *HTTPError {
	switch code := apperrors.CodeOf(err); code {
	case "invalid_input":
		return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	case "weather_unavailable":
		return NewHTTPError(http.StatusNotFound, code, errMessage(err), err)
	case "repository_error":
		return NewHTTPError(http.StatusBadGateway, code, "upstream storage failed", err)
	default:
		return NewHTTPError(http.StatusInternalServerError, fallbackCode, "something went wrong", err)
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
