package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"agent-hub/domain/dto"
	"agent-hub/usecase"
)

type IAgentHandler interface {
	Create(ctx *gin.Context)
	List(ctx *gin.Context)
	Get(ctx *gin.Context)
	Update(ctx *gin.Context)
	Delete(ctx *gin.Context)
	ToggleActive(ctx *gin.Context)
	Run(ctx *gin.Context)
	Stop(ctx *gin.Context)
	Complete(ctx *gin.Context)
}

type AgentHandler struct {
	agentUsecase usecase.IAgentUsecase
}

func NewAgentHandler(uc usecase.IAgentUsecase) IAgentHandler {
	return &AgentHandler{agentUsecase: uc}
}

func agentID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid agent id"})
		return 0, false
	}
	return id, true
}

func (h *AgentHandler) Create(ctx *gin.Context) {
	var req dto.AgentCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	agent, err := h.agentUsecase.Create(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, agent)
}

func (h *AgentHandler) List(ctx *gin.Context) {
	storeName := ctx.Query("store_name")
	if storeName == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "store_name is required"})
		return
	}
	agents, err := h.agentUsecase.List(ctx.Request.Context(), storeName)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"agents": agents})
}

func (h *AgentHandler) Get(ctx *gin.Context) {
	id, ok := agentID(ctx)
	if !ok {
		return
	}
	agent, err := h.agentUsecase.Get(ctx.Request.Context(), ctx.Query("store_name"), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, agent)
}

func (h *AgentHandler) Update(ctx *gin.Context) {
	id, ok := agentID(ctx)
	if !ok {
		return
	}
	var req dto.AgentUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	agent, err := h.agentUsecase.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, agent)
}

func (h *AgentHandler) Delete(ctx *gin.Context) {
	id, ok := agentID(ctx)
	if !ok {
		return
	}
	var req dto.StoreScopedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.agentUsecase.Delete(ctx.Request.Context(), req.StoreName, id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *AgentHandler) ToggleActive(ctx *gin.Context) {
	id, ok := agentID(ctx)
	if !ok {
		return
	}
	var req dto.StoreScopedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	active, err := h.agentUsecase.ToggleActive(ctx.Request.Context(), req.StoreName, id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"is_active": active})
}

func (h *AgentHandler) Run(ctx *gin.Context) {
	id, ok := agentID(ctx)
	if !ok {
		return
	}
	var req dto.StoreScopedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	agent, err := h.agentUsecase.Run(ctx.Request.Context(), req.StoreName, id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"started": true, "agent": agent})
}

func (h *AgentHandler) Stop(ctx *gin.Context) {
	id, ok := agentID(ctx)
	if !ok {
		return
	}
	var req dto.StoreScopedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.agentUsecase.Stop(ctx.Request.Context(), req.StoreName, id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"stopped": true})
}

// Complete is the workflow engine's end-of-run callback.
func (h *AgentHandler) Complete(ctx *gin.Context) {
	var req dto.AgentCompletionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.agentUsecase.Complete(ctx.Request.Context(), &req); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"acknowledged": true})
}
