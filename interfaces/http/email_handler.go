package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"agent-hub/domain/dto"
	"agent-hub/usecase"
)

type IEmailHandler interface {
	Connect(ctx *gin.Context)
	Status(ctx *gin.Context)
	UpdateConfig(ctx *gin.Context)
	Disconnect(ctx *gin.Context)
	Test(ctx *gin.Context)
	Poll(ctx *gin.Context)
	ApproveDraft(ctx *gin.Context)
	RejectDraft(ctx *gin.Context)
	Conversations(ctx *gin.Context)
	Thread(ctx *gin.Context)
	Stats(ctx *gin.Context)
}

type EmailHandler struct {
	emailUsecase usecase.IEmailUsecase
}

func NewEmailHandler(uc usecase.IEmailUsecase) IEmailHandler {
	return &EmailHandler{emailUsecase: uc}
}

func (h *EmailHandler) Connect(ctx *gin.Context) {
	var req dto.EmailConnectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The dashboard's bearer token doubles as the store's platform API
	// token so later catalog lookups work without a second handshake.
	apiToken := strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer ")

	config, err := h.emailUsecase.Connect(ctx.Request.Context(), &req, apiToken)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"connected": true, "email_address": config.EmailAddress, "provider": config.Provider})
}

func (h *EmailHandler) Status(ctx *gin.Context) {
	storeName := ctx.Query("store_name")
	if storeName == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "store_name is required"})
		return
	}
	config, err := h.emailUsecase.Status(ctx.Request.Context(), storeName)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if config == nil {
		ctx.JSON(http.StatusOK, gin.H{"connected": false})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"connected":       config.IsActive,
		"email_address":   config.EmailAddress,
		"provider":        config.Provider,
		"ai_active":       config.AiActive,
		"manual_approval": config.ManualApproval,
		"last_polled_at":  config.LastPolledAt,
		"last_error":      config.LastError,
	})
}

func (h *EmailHandler) UpdateConfig(ctx *gin.Context) {
	var req dto.ChannelConfigUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	config, err := h.emailUsecase.UpdateConfig(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, config)
}

func (h *EmailHandler) Disconnect(ctx *gin.Context) {
	var req dto.StoreScopedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.emailUsecase.Disconnect(ctx.Request.Context(), req.StoreName); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"disconnected": true})
}

func (h *EmailHandler) Test(ctx *gin.Context) {
	var req dto.StoreScopedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.emailUsecase.TestConnection(ctx.Request.Context(), req.StoreName); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"connection_ok": true})
}

// Poll runs one inbox sweep. Exposed for the cron scheduler.
func (h *EmailHandler) Poll(ctx *gin.Context) {
	result, err := h.emailUsecase.PollInboxes(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func (h *EmailHandler) ApproveDraft(ctx *gin.Context) {
	h.resolveDraft(ctx, h.emailUsecase.ApproveDraft)
}

func (h *EmailHandler) RejectDraft(ctx *gin.Context) {
	h.resolveDraft(ctx, h.emailUsecase.RejectDraft)
}

func (h *EmailHandler) resolveDraft(ctx *gin.Context, apply func(ctx context.Context, storeName string, turnID int64) error) {
	turnID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid turn id"})
		return
	}
	var req dto.StoreScopedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := apply(ctx.Request.Context(), req.StoreName, turnID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"resolved": true})
}

func (h *EmailHandler) Conversations(ctx *gin.Context) {
	storeName := ctx.Query("store_name")
	if storeName == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "store_name is required"})
		return
	}
	summaries, err := h.emailUsecase.Conversations(ctx.Request.Context(), storeName)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

func (h *EmailHandler) Thread(ctx *gin.Context) {
	conversationID := ctx.Param("conversationId")
	turns, err := h.emailUsecase.Thread(ctx.Request.Context(), conversationID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"conversation_id": conversationID, "turns": turns})
}

func (h *EmailHandler) Stats(ctx *gin.Context) {
	storeName := ctx.Query("store_name")
	if storeName == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "store_name is required"})
		return
	}
	stats, err := h.emailUsecase.Stats(ctx.Request.Context(), storeName)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}
