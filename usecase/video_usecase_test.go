package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"agent-hub/domain/dto"
	"agent-hub/domain/model"
	"agent-hub/usecase"
)

func TestVideoUsecase_GenerateCreatesAndTriggers(t *testing.T) {
	jobRepo := new(MockVideoJobRepo)
	engine := new(MockEngine)
	uc := usecase.NewVideoUsecase(jobRepo, engine, new(MockBlobStore), "")

	jobRepo.On("Create", mock.Anything, mock.MatchedBy(func(j *model.VideoJob) bool {
		// Job ids are "ugc_" plus a canonical 36-char UUID.
		return strings.HasPrefix(j.JobID, "ugc_") && len(j.JobID) == len("ugc_")+36 && j.Status == model.VideoJobPending
	})).Return(&model.VideoJob{JobID: "ugc_abcdefghij", Status: model.VideoJobPending}, nil)
	engine.On("TriggerVideoGeneration", mock.Anything, mock.MatchedBy(func(p *dto.VideoGeneratePayload) bool {
		return p.JobID == "ugc_abcdefghij" && p.UgcStyle == "casual"
	})).Return(nil)

	job, err := uc.Generate(context.Background(), &dto.VideoGenerateRequest{
		StoreID:         "store_1",
		ProductName:     "Espresso kit",
		ProductImageURL: "https://cdn.example/p.jpg",
		UgcStyle:        "casual",
	})
	require.NoError(t, err)
	assert.Equal(t, model.VideoJobPending, job.Status)
	engine.AssertExpectations(t)
}

func TestVideoUsecase_GenerateMarksFailedOnTriggerError(t *testing.T) {
	jobRepo := new(MockVideoJobRepo)
	engine := new(MockEngine)
	uc := usecase.NewVideoUsecase(jobRepo, engine, new(MockBlobStore), "")

	jobRepo.On("Create", mock.Anything, mock.Anything).Return(&model.VideoJob{JobID: "ugc_abcdefghij"}, nil)
	engine.On("TriggerVideoGeneration", mock.Anything, mock.Anything).Return(errors.New("engine unreachable"))
	jobRepo.On("Update", mock.Anything, mock.MatchedBy(func(j *model.VideoJob) bool {
		return j.Status == model.VideoJobFailed && j.ErrorMessage != nil
	})).Return(nil)

	_, err := uc.Generate(context.Background(), &dto.VideoGenerateRequest{
		StoreID:         "store_1",
		ProductName:     "Espresso kit",
		ProductImageURL: "https://cdn.example/p.jpg",
		UgcStyle:        "casual",
	})
	assert.Error(t, err)
	jobRepo.AssertExpectations(t)
}

func TestVideoUsecase_CallbackStoresVideo(t *testing.T) {
	payload := []byte("fake mp4 bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	jobRepo := new(MockVideoJobRepo)
	blobs := new(MockBlobStore)
	uc := usecase.NewVideoUsecase(jobRepo, new(MockEngine), blobs, "")

	job := &model.VideoJob{JobID: "ugc_abcdefghij", Status: model.VideoJobPending}
	jobRepo.On("GetByJobID", mock.Anything, "ugc_abcdefghij").Return(job, nil)
	blobs.On("Put", "videos/ugc_abcdefghij.mp4", payload).Return(nil)
	blobs.On("Exists", "videos/ugc_abcdefghij.mp4").Return(true)
	jobRepo.On("Update", mock.Anything, mock.MatchedBy(func(j *model.VideoJob) bool {
		return j.Status == model.VideoJobCompleted &&
			j.VideoURL == "videos/ugc_abcdefghij.mp4" &&
			j.ExternalVideoURL == srv.URL
	})).Return(nil)

	err := uc.HandleCallback(context.Background(), &dto.VideoCallbackRequest{
		JobID:    "ugc_abcdefghij",
		Status:   model.VideoJobCompleted,
		VideoURL: srv.URL,
	})
	require.NoError(t, err)
	jobRepo.AssertExpectations(t)
	blobs.AssertExpectations(t)
}

func TestVideoUsecase_CallbackJSONBodyIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	jobRepo := new(MockVideoJobRepo)
	uc := usecase.NewVideoUsecase(jobRepo, new(MockEngine), new(MockBlobStore), "")

	job := &model.VideoJob{JobID: "ugc_abcdefghij", Status: model.VideoJobPending}
	jobRepo.On("GetByJobID", mock.Anything, "ugc_abcdefghij").Return(job, nil)
	jobRepo.On("Update", mock.Anything, mock.MatchedBy(func(j *model.VideoJob) bool {
		return j.Status == model.VideoJobFailed && j.ErrorMessage != nil && strings.Contains(*j.ErrorMessage, "quota exceeded")
	})).Return(nil)

	err := uc.HandleCallback(context.Background(), &dto.VideoCallbackRequest{
		JobID:    "ugc_abcdefghij",
		Status:   model.VideoJobCompleted,
		VideoURL: srv.URL,
	})
	require.NoError(t, err)
	jobRepo.AssertExpectations(t)
}

func TestVideoUsecase_CallbackFailureStatus(t *testing.T) {
	jobRepo := new(MockVideoJobRepo)
	uc := usecase.NewVideoUsecase(jobRepo, new(MockEngine), new(MockBlobStore), "")

	job := &model.VideoJob{JobID: "ugc_abcdefghij", Status: model.VideoJobPending}
	jobRepo.On("GetByJobID", mock.Anything, "ugc_abcdefghij").Return(job, nil)
	jobRepo.On("Update", mock.Anything, mock.MatchedBy(func(j *model.VideoJob) bool {
		return j.Status == model.VideoJobFailed && j.ErrorMessage != nil && *j.ErrorMessage == "render crashed"
	})).Return(nil)

	err := uc.HandleCallback(context.Background(), &dto.VideoCallbackRequest{
		JobID:        "ugc_abcdefghij",
		Status:       "failed",
		ErrorMessage: "render crashed",
	})
	require.NoError(t, err)
	jobRepo.AssertExpectations(t)
}

func TestVideoUsecase_CallbackIdempotentOnTerminalJob(t *testing.T) {
	jobRepo := new(MockVideoJobRepo)
	uc := usecase.NewVideoUsecase(jobRepo, new(MockEngine), new(MockBlobStore), "")

	done := &model.VideoJob{JobID: "ugc_abcdefghij", Status: model.VideoJobCompleted}
	jobRepo.On("GetByJobID", mock.Anything, "ugc_abcdefghij").Return(done, nil)

	err := uc.HandleCallback(context.Background(), &dto.VideoCallbackRequest{
		JobID:  "ugc_abcdefghij",
		Status: model.VideoJobCompleted,
	})
	require.NoError(t, err)
	jobRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestVideoUsecase_CallbackUnknownJob(t *testing.T) {
	jobRepo := new(MockVideoJobRepo)
	uc := usecase.NewVideoUsecase(jobRepo, new(MockEngine), new(MockBlobStore), "")

	jobRepo.On("GetByJobID", mock.Anything, "ugc_missing").Return(nil, nil)

	err := uc.HandleCallback(context.Background(), &dto.VideoCallbackRequest{JobID: "ugc_missing", Status: "completed"})
	assert.ErrorIs(t, err, usecase.ErrVideoJobNotFound)
}

func TestVideoUsecase_OpenRequiresCompletedJob(t *testing.T) {
	jobRepo := new(MockVideoJobRepo)
	uc := usecase.NewVideoUsecase(jobRepo, new(MockEngine), new(MockBlobStore), "")

	pending := &model.VideoJob{JobID: "ugc_abcdefghij", Status: model.VideoJobPending}
	jobRepo.On("GetByJobID", mock.Anything, "ugc_abcdefghij").Return(pending, nil)

	_, _, err := uc.Open(context.Background(), "ugc_abcdefghij")
	assert.ErrorIs(t, err, usecase.ErrVideoNotReady)
}

func TestVideoUsecase_DeleteRemovesRowAndBlob(t *testing.T) {
	jobRepo := new(MockVideoJobRepo)
	blobs := new(MockBlobStore)
	uc := usecase.NewVideoUsecase(jobRepo, new(MockEngine), blobs, "")

	done := &model.VideoJob{JobID: "ugc_abcdefghij", Status: model.VideoJobCompleted, VideoURL: "videos/ugc_abcdefghij.mp4"}
	jobRepo.On("GetByJobID", mock.Anything, "ugc_abcdefghij").Return(done, nil)
	blobs.On("Delete", "videos/ugc_abcdefghij.mp4").Return(nil)
	jobRepo.On("Delete", mock.Anything, "ugc_abcdefghij").Return(nil)

	err := uc.Delete(context.Background(), "ugc_abcdefghij")
	assert.NoError(t, err)
	blobs.AssertExpectations(t)
	jobRepo.AssertExpectations(t)
}

func TestVideoUsecase_DeleteUnknownJob(t *testing.T) {
	jobRepo := new(MockVideoJobRepo)
	uc := usecase.NewVideoUsecase(jobRepo, new(MockEngine), new(MockBlobStore), "")

	jobRepo.On("GetByJobID", mock.Anything, "ugc_missing000").Return(nil, nil)

	err := uc.Delete(context.Background(), "ugc_missing000")
	assert.ErrorIs(t, err, usecase.ErrVideoJobNotFound)
}
