package http

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"agent-hub/domain/dto"
	"agent-hub/usecase"
)

type IVideoHandler interface {
	Generate(ctx *gin.Context)
	Callback(ctx *gin.Context)
	Status(ctx *gin.Context)
	History(ctx *gin.Context)
	Delete(ctx *gin.Context)
	Proxy(ctx *gin.Context)
}

type VideoHandler struct {
	videoUsecase usecase.IVideoUsecase
}

func NewVideoHandler(uc usecase.IVideoUsecase) IVideoHandler {
	return &VideoHandler{videoUsecase: uc}
}

func (h *VideoHandler) Generate(ctx *gin.Context) {
	var req dto.VideoGenerateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	job, err := h.videoUsecase.Generate(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusAccepted, gin.H{"job_id": job.JobID, "status": job.Status})
}

// Callback is the engine's render-complete notification.
func (h *VideoHandler) Callback(ctx *gin.Context) {
	var req dto.VideoCallbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.videoUsecase.HandleCallback(ctx.Request.Context(), &req); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"acknowledged": true})
}

func (h *VideoHandler) Status(ctx *gin.Context) {
	job, err := h.videoUsecase.Status(ctx.Request.Context(), ctx.Param("jobId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, job)
}

func (h *VideoHandler) History(ctx *gin.Context) {
	storeID := ctx.Query("store_id")
	if storeID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "store_id is required"})
		return
	}
	limit := 50
	if v := ctx.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	jobs, err := h.videoUsecase.History(ctx.Request.Context(), storeID, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (h *VideoHandler) Delete(ctx *gin.Context) {
	if err := h.videoUsecase.Delete(ctx.Request.Context(), ctx.Param("jobId")); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Proxy streams the stored file so the dashboard never touches the
// provider URL (which may be keyed or expired).
func (h *VideoHandler) Proxy(ctx *gin.Context) {
	jobID := ctx.Param("jobId")
	file, size, err := h.videoUsecase.Open(ctx.Request.Context(), jobID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	defer file.Close()

	ctx.Header("Content-Type", "video/mp4")
	ctx.Header("Accept-Ranges", "bytes")
	ctx.Header("Content-Length", fmt.Sprintf("%d", size))
	if _, err := io.Copy(ctx.Writer, file); err != nil {
		// Client likely closed the stream mid-download; nothing to send.
		return
	}
}
