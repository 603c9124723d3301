package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"agent-hub/infrastructure/logger"
	"agent-hub/usecase"
)

// respondError maps usecase errors onto HTTP statuses. Unknown errors
// become a 500 with the detail kept out of the response body.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrAgentNotFound),
		errors.Is(err, usecase.ErrLeadNotFound),
		errors.Is(err, usecase.ErrVideoJobNotFound),
		errors.Is(err, usecase.ErrStoreNotConfigured):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrAgentAlreadyRunning),
		errors.Is(err, usecase.ErrAgentNotRunning),
		errors.Is(err, usecase.ErrAgentInactive),
		errors.Is(err, usecase.ErrInvalidPlatform),
		errors.Is(err, usecase.ErrDraftNotApprovable),
		errors.Is(err, usecase.ErrVideoNotReady):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrStoreHasNumber),
		errors.Is(err, usecase.ErrNumberInUse):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.GetLogger().WithField("error", err).Error("Request failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
