package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"agent-hub/domain/dto"
	"agent-hub/infrastructure/logger"
	"agent-hub/usecase"
)

type IInstagramHandler interface {
	Webhook(ctx *gin.Context)
	Connect(ctx *gin.Context)
	Status(ctx *gin.Context)
	UpdateConfig(ctx *gin.Context)
	Disconnect(ctx *gin.Context)
	Stats(ctx *gin.Context)
	ProcessQueue(ctx *gin.Context)
}

type InstagramHandler struct {
	instagramUsecase usecase.IInstagramUsecase
}

func NewInstagramHandler(uc usecase.IInstagramUsecase) IInstagramHandler {
	return &InstagramHandler{instagramUsecase: uc}
}

// Webhook receives Unipile deliveries. Like the Twilio endpoint it
// always acks with 200 so the provider doesn't retry indefinitely.
func (h *InstagramHandler) Webhook(ctx *gin.Context) {
	var payload dto.UnipilePayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Unreadable Unipile webhook body")
		ctx.JSON(http.StatusOK, gin.H{"ok": true, "outcome": "unreadable"})
		return
	}

	outcome, err := h.instagramUsecase.HandleWebhook(ctx.Request.Context(), &payload)
	if err != nil {
		// A connection event we cannot register is the one case worth a
		// retry from the provider's side; message events stay 200.
		if errors.Is(err, usecase.ErrMissingAccountID) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.GetLogger().WithField("error", err).WithField("event", payload.EventType()).Warn("Unipile webhook processing failed")
	}
	ctx.JSON(http.StatusOK, gin.H{"ok": true, "outcome": outcome})
}

func (h *InstagramHandler) Connect(ctx *gin.Context) {
	var req dto.StoreScopedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	url, expiresAt, err := h.instagramUsecase.Connect(ctx.Request.Context(), req.StoreName)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"auth_url": url, "expires_at": expiresAt})
}

func (h *InstagramHandler) Status(ctx *gin.Context) {
	storeName := ctx.Query("store_name")
	if storeName == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "store_name is required"})
		return
	}
	config, err := h.instagramUsecase.Status(ctx.Request.Context(), storeName)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if config == nil {
		ctx.JSON(http.StatusOK, gin.H{"connected": false})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"connected":          config.UnipileAccountID != "" && config.IsActive,
		"instagram_username": config.InstagramUsername,
		"ai_active":          config.AiActive,
		"ai_system_prompt":   config.AiSystemPrompt,
	})
}

func (h *InstagramHandler) UpdateConfig(ctx *gin.Context) {
	var req dto.ChannelConfigUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	config, err := h.instagramUsecase.UpdateConfig(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, config)
}

func (h *InstagramHandler) Disconnect(ctx *gin.Context) {
	var req dto.StoreScopedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.instagramUsecase.Disconnect(ctx.Request.Context(), req.StoreName); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"disconnected": true})
}

func (h *InstagramHandler) Stats(ctx *gin.Context) {
	storeName := ctx.Query("store_name")
	if storeName == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "store_name is required"})
		return
	}
	stats, err := h.instagramUsecase.Stats(ctx.Request.Context(), storeName)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// ProcessQueue drains the forward queue once, for cron callers and
// manual retries.
func (h *InstagramHandler) ProcessQueue(ctx *gin.Context) {
	claimed, err := h.instagramUsecase.ProcessForwardJobs(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"claimed": claimed})
}
