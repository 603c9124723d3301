package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"agent-hub/domain/dto"
	"agent-hub/domain/model"
	"agent-hub/domain/repository"
	"agent-hub/infrastructure/logger"
	"agent-hub/infrastructure/utils"
)

var (
	ErrVideoJobNotFound = errors.New("video job not found")
	ErrVideoNotReady    = errors.New("video is not ready")
)

const videoDownloadTimeout = 120 * time.Second

type IVideoUsecase interface {
	// Generate creates a job and hands it to the workflow engine.
	Generate(ctx context.Context, req *dto.VideoGenerateRequest) (*model.VideoJob, error)

	// HandleCallback resolves a job from the engine's render callback,
	// downloading the finished file into local storage.
	HandleCallback(ctx context.Context, req *dto.VideoCallbackRequest) error

	Status(ctx context.Context, jobID string) (*model.VideoJob, error)
	History(ctx context.Context, storeID string, limit int) ([]model.VideoJob, error)

	// Open returns the stored video file for streaming.
	Open(ctx context.Context, jobID string) (io.ReadSeekCloser, int64, error)

	// Delete removes a job and its stored file.
	Delete(ctx context.Context, jobID string) error
}

type videoUsecase struct {
	jobRepo      repository.IVideoJob
	engine       repository.IEngine
	blobs        repository.IBlobStore
	httpClient   *http.Client
	googleAPIKey string
}

func NewVideoUsecase(jobRepo repository.IVideoJob, engine repository.IEngine, blobs repository.IBlobStore, googleAPIKey string) IVideoUsecase {
	return &videoUsecase{
		jobRepo:      jobRepo,
		engine:       engine,
		blobs:        blobs,
		httpClient:   &http.Client{Timeout: videoDownloadTimeout},
		googleAPIKey: googleAPIKey,
	}
}

func (u *videoUsecase) Generate(ctx context.Context, req *dto.VideoGenerateRequest) (*model.VideoJob, error) {
	job := &model.VideoJob{
		JobID:              utils.NewVideoJobID(),
		StoreID:            req.StoreID,
		ProductName:        req.ProductName,
		ProductDescription: req.ProductDescription,
		ProductImageURL:    req.ProductImageURL,
		Status:             model.VideoJobPending,
	}
	created, err := u.jobRepo.Create(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("failed to create video job: %w", err)
	}

	payload := &dto.VideoGeneratePayload{
		JobID:              created.JobID,
		StoreID:            req.StoreID,
		ProductName:        req.ProductName,
		ProductDescription: req.ProductDescription,
		ProductImageURL:    req.ProductImageURL,
		UgcStyle:           req.UgcStyle,
	}
	if err := u.engine.TriggerVideoGeneration(ctx, payload); err != nil {
		u.markFailed(ctx, created, err.Error())
		return nil, fmt.Errorf("failed to trigger video generation: %w", err)
	}

	logger.GetLogger().WithField("job_id", created.JobID).Info("Video generation started")
	return created, nil
}

func (u *videoUsecase) HandleCallback(ctx context.Context, req *dto.VideoCallbackRequest) error {
	job, err := u.jobRepo.GetByJobID(ctx, req.JobID)
	if err != nil {
		return err
	}
	if job == nil {
		return ErrVideoJobNotFound
	}
	if job.IsTerminal() {
		// Engines retry callbacks; a settled job stays settled.
		return nil
	}

	if req.Status != model.VideoJobCompleted || req.VideoURL == "" {
		message := req.ErrorMessage
		if message == "" {
			message = "video generation failed"
		}
		u.markFailed(ctx, job, message)
		return nil
	}

	data, downloadErr := u.download(ctx, req.VideoURL)
	if downloadErr != nil {
		u.markFailed(ctx, job, downloadErr.Error())
		return nil
	}

	storagePath := "videos/" + job.JobID + ".mp4"
	if err := u.blobs.Put(storagePath, data); err != nil {
		u.markFailed(ctx, job, err.Error())
		return nil
	}
	if !u.blobs.Exists(storagePath) {
		u.markFailed(ctx, job, "stored video file missing after write")
		return nil
	}

	job.Status = model.VideoJobCompleted
	job.VideoURL = storagePath
	job.ExternalVideoURL = req.VideoURL
	job.MotionPrompt = req.MotionPrompt
	job.ErrorMessage = nil
	if err := u.jobRepo.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to finalize video job: %w", err)
	}

	logger.GetLogger().WithField("job_id", job.JobID).WithField("bytes", len(data)).Info("Video stored")
	return nil
}

// download fetches the rendered file. Responses that come back as JSON
// are provider error envelopes, not video data.
func (u *videoUsecase) download(ctx context.Context, videoURL string) ([]byte, error) {
	url := u.signURL(videoURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("video download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("video download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read video body: %w", err)
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("video provider error: %s", apiErr.Error.Message)
		}
		return nil, errors.New("video provider returned JSON instead of video data")
	}
	return data, nil
}

// signURL appends the API key for Google-hosted render outputs, which
// are unauthenticated otherwise.
func (u *videoUsecase) signURL(videoURL string) string {
	if u.googleAPIKey == "" || !strings.Contains(videoURL, "googleapis.com") {
		return videoURL
	}
	sep := "?"
	if strings.Contains(videoURL, "?") {
		sep = "&"
	}
	return videoURL + sep + "key=" + u.googleAPIKey
}

func (u *videoUsecase) markFailed(ctx context.Context, job *model.VideoJob, message string) {
	job.Status = model.VideoJobFailed
	job.ErrorMessage = &message
	if err := u.jobRepo.Update(ctx, job); err != nil {
		logger.GetLogger().WithField("error", err).WithField("job_id", job.JobID).Error("Failed to mark video job failed")
	}
}

func (u *videoUsecase) Status(ctx context.Context, jobID string) (*model.VideoJob, error) {
	job, err := u.jobRepo.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrVideoJobNotFound
	}
	return job, nil
}

func (u *videoUsecase) History(ctx context.Context, storeID string, limit int) ([]model.VideoJob, error) {
	return u.jobRepo.History(ctx, storeID, limit)
}

func (u *videoUsecase) Open(ctx context.Context, jobID string) (io.ReadSeekCloser, int64, error) {
	job, err := u.Status(ctx, jobID)
	if err != nil {
		return nil, 0, err
	}
	if job.Status != model.VideoJobCompleted || job.VideoURL == "" {
		return nil, 0, ErrVideoNotReady
	}
	return u.blobs.Open(job.VideoURL)
}

func (u *videoUsecase) Delete(ctx context.Context, jobID string) error {
	job, err := u.Status(ctx, jobID)
	if err != nil {
		return err
	}
	if job.VideoURL != "" {
		if err := u.blobs.Delete(job.VideoURL); err != nil {
			logger.GetLogger().WithField("error", err).WithField("job_id", jobID).Warn("Failed to remove stored video file")
		}
	}
	return u.jobRepo.Delete(ctx, jobID)
}
