package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agent-hub/domain/dto"
	"agent-hub/infrastructure/logger"
	"agent-hub/usecase"
)

type IWhatsAppHandler interface {
	Inbound(ctx *gin.Context)
	LogTurn(ctx *gin.Context)
	Context(ctx *gin.Context)
	Stats(ctx *gin.Context)
	Conversation(ctx *gin.Context)
	Test(ctx *gin.Context)
}

type WhatsAppHandler struct {
	whatsAppUsecase usecase.IWhatsAppUsecase
}

func NewWhatsAppHandler(uc usecase.IWhatsAppUsecase) IWhatsAppHandler {
	return &WhatsAppHandler{whatsAppUsecase: uc}
}

// Inbound receives Twilio's webhook. Twilio retries on anything but a
// 200, and a retry storm helps nobody, so the response is always 200
// with an empty body regardless of processing outcome.
func (h *WhatsAppHandler) Inbound(ctx *gin.Context) {
	var form dto.TwilioInboundForm
	if err := ctx.ShouldBind(&form); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Unreadable Twilio webhook body")
		ctx.String(http.StatusOK, "")
		return
	}
	h.whatsAppUsecase.HandleInbound(ctx.Request.Context(), &form)
	ctx.String(http.StatusOK, "")
}

func (h *WhatsAppHandler) LogTurn(ctx *gin.Context) {
	var req dto.AgentLogRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	turn, err := h.whatsAppUsecase.LogTurn(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"logged": true, "turn_id": turn.ID, "cost": turn.CostEstimateUSD})
}

func (h *WhatsAppHandler) Context(ctx *gin.Context) {
	var req dto.AgentContextRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := h.whatsAppUsecase.BuildContext(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

func (h *WhatsAppHandler) Stats(ctx *gin.Context) {
	storeName := ctx.Query("store_name")
	if storeName == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "store_name is required"})
		return
	}
	stats, err := h.whatsAppUsecase.Stats(ctx.Request.Context(), storeName)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

func (h *WhatsAppHandler) Conversation(ctx *gin.Context) {
	conversationID := ctx.Param("conversationId")
	turns, err := h.whatsAppUsecase.Conversation(ctx.Request.Context(), conversationID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"conversation_id": conversationID, "turns": turns})
}

func (h *WhatsAppHandler) Test(ctx *gin.Context) {
	var req dto.AgentTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.whatsAppUsecase.Test(ctx.Request.Context(), &req); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"sent": true})
}
