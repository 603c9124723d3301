package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"agent-hub/domain/dto"
	"agent-hub/usecase"
)

type IProvisioningHandler interface {
	Countries(ctx *gin.Context)
	Search(ctx *gin.Context)
	Buy(ctx *gin.Context)
	Configure(ctx *gin.Context)
	Status(ctx *gin.Context)
	Deactivate(ctx *gin.Context)
}

type ProvisioningHandler struct {
	provisioningUsecase usecase.IProvisioningUsecase
}

func NewProvisioningHandler(uc usecase.IProvisioningUsecase) IProvisioningHandler {
	return &ProvisioningHandler{provisioningUsecase: uc}
}

func (h *ProvisioningHandler) Countries(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"countries": h.provisioningUsecase.Countries()})
}

func (h *ProvisioningHandler) Search(ctx *gin.Context) {
	country := ctx.Query("country")
	if country == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "country is required"})
		return
	}
	limit := 10
	if v := ctx.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	numbers, numberType, err := h.provisioningUsecase.Search(ctx.Request.Context(), country, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"numbers": numbers, "number_type": numberType})
}

func (h *ProvisioningHandler) Buy(ctx *gin.Context) {
	var req dto.ProvisionBuyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	config, err := h.provisioningUsecase.Buy(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"purchased": true, "phone_number": config.TwilioPhoneNumber, "store_name": config.StoreName})
}

func (h *ProvisioningHandler) Configure(ctx *gin.Context) {
	var req dto.ProvisionConfigRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.provisioningUsecase.Configure(ctx.Request.Context(), &req); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"configured": true})
}

func (h *ProvisioningHandler) Status(ctx *gin.Context) {
	storeName := ctx.Query("store_name")
	if storeName == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "store_name is required"})
		return
	}
	config, err := h.provisioningUsecase.Status(ctx.Request.Context(), storeName)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if config == nil {
		ctx.JSON(http.StatusOK, gin.H{"provisioned": false})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"provisioned":  config.IsActive && config.TwilioPhoneNumber != "",
		"phone_number": config.TwilioPhoneNumber,
		"has_token":    config.ApiToken != "",
	})
}

func (h *ProvisioningHandler) Deactivate(ctx *gin.Context) {
	var req dto.StoreScopedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.provisioningUsecase.Deactivate(ctx.Request.Context(), req.StoreName); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"deactivated": true})
}
