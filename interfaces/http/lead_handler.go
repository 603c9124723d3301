package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"agent-hub/domain/dto"
	"agent-hub/domain/repository"
	"agent-hub/usecase"
)

type ILeadHandler interface {
	Ingest(ctx *gin.Context)
	IngestBatch(ctx *gin.Context)
	Pending(ctx *gin.Context)
	MarkSent(ctx *gin.Context)
	Reject(ctx *gin.Context)
	Stats(ctx *gin.Context)
	ActiveConfigs(ctx *gin.Context)
	ConfigStatus(ctx *gin.Context)
	SaveConfig(ctx *gin.Context)
}

type LeadHandler struct {
	leadUsecase usecase.ILeadUsecase
}

func NewLeadHandler(uc usecase.ILeadUsecase) ILeadHandler {
	return &LeadHandler{leadUsecase: uc}
}

func (h *LeadHandler) Ingest(ctx *gin.Context) {
	var req dto.LeadIngestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lead, created, err := h.leadUsecase.Ingest(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"lead_id": lead.ID, "created": created})
}

func (h *LeadHandler) IngestBatch(ctx *gin.Context) {
	var req dto.LeadBatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.leadUsecase.IngestBatch(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func (h *LeadHandler) Pending(ctx *gin.Context) {
	storeName := ctx.Query("store_name")
	if storeName == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "store_name is required"})
		return
	}
	filter := repository.LeadFilter{
		StoreName: storeName,
		Platform:  ctx.Query("platform"),
	}
	if v := ctx.Query("min_score"); v != "" {
		if score, err := strconv.Atoi(v); err == nil {
			filter.MinScore = score
		}
	}
	if v := ctx.Query("agent_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.AgentID = &id
		}
	}
	leads, err := h.leadUsecase.Pending(ctx.Request.Context(), filter)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"leads": leads})
}

func (h *LeadHandler) MarkSent(ctx *gin.Context) {
	h.setStatus(ctx, h.leadUsecase.MarkSent)
}

func (h *LeadHandler) Reject(ctx *gin.Context) {
	h.setStatus(ctx, h.leadUsecase.Reject)
}

func (h *LeadHandler) setStatus(ctx *gin.Context, apply func(ctx context.Context, storeName string, id int64) error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid lead id"})
		return
	}
	var req dto.StoreScopedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := apply(ctx.Request.Context(), req.StoreName, id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *LeadHandler) Stats(ctx *gin.Context) {
	storeName := ctx.Query("store_name")
	if storeName == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "store_name is required"})
		return
	}
	stats, err := h.leadUsecase.Stats(ctx.Request.Context(), storeName)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// ActiveConfigs feeds the engine's scraping scheduler.
func (h *LeadHandler) ActiveConfigs(ctx *gin.Context) {
	configs, err := h.leadUsecase.ActiveConfigs(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"configs": configs})
}

func (h *LeadHandler) ConfigStatus(ctx *gin.Context) {
	storeName := ctx.Query("store_name")
	if storeName == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "store_name is required"})
		return
	}
	config, err := h.leadUsecase.ConfigStatus(ctx.Request.Context(), storeName)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if config == nil {
		ctx.JSON(http.StatusOK, gin.H{"configured": false})
		return
	}
	ctx.JSON(http.StatusOK, config)
}

func (h *LeadHandler) SaveConfig(ctx *gin.Context) {
	var req dto.LeadConfigSaveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	config, err := h.leadUsecase.SaveConfig(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, config)
}
