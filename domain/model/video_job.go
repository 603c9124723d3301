package model

import "time"

// VideoJob states. pending -> completed|failed.
const (
	VideoJobPending   = "pending"
	VideoJobCompleted = "completed"
	VideoJobFailed    = "failed"
)

// VideoJob tracks a video generation request forwarded to the workflow
// engine and resolved later by its callback. VideoURL holds the local
// storage path once the rendered file has been downloaded;
// ExternalVideoURL keeps the engine-reported source URL.
type VideoJob struct {
	ID                 int64     `json:"id"`
	JobID              string    `json:"job_id"`
	StoreID            string    `json:"store_id"`
	ProductID          string    `json:"product_id,omitempty"`
	ProductName        string    `json:"product_name"`
	ProductDescription string    `json:"product_description,omitempty"`
	ProductImageURL    string    `json:"product_image_url"`
	Status             string    `json:"status"`
	VideoURL           string    `json:"video_url,omitempty"`
	ExternalVideoURL   string    `json:"external_video_url,omitempty"`
	MotionPrompt       string    `json:"motion_prompt,omitempty"`
	ErrorMessage       *string   `json:"error_message,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IsTerminal reports whether the job has reached a final state.
func (j *VideoJob) IsTerminal() bool {
	return j.Status == VideoJobCompleted || j.Status == VideoJobFailed
}
