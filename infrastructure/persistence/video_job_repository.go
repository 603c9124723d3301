package persistence

import (
	"context"
	"database/sql"
	"time"

	"agent-hub/domain/model"
	"agent-hub/domain/repository"
)

type VideoJobRepository struct {
	db *sql.DB
}

func NewVideoJobRepository(db *sql.DB) repository.IVideoJob {
	return &VideoJobRepository{db: db}
}

const videoJobCols = `id, job_id, store_id, product_id, product_name, product_description, product_image_url,
	status, video_url, external_video_url, motion_prompt, error_message, created_at, updated_at`

func scanVideoJob(row interface{ Scan(...interface{}) error }) (*model.VideoJob, error) {
	j := &model.VideoJob{}
	var productID, videoURL, externalURL, motionPrompt, errorMessage sql.NullString
	err := row.Scan(&j.ID, &j.JobID, &j.StoreID, &productID, &j.ProductName, &j.ProductDescription, &j.ProductImageURL,
		&j.Status, &videoURL, &externalURL, &motionPrompt, &errorMessage, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.ProductID = productID.String
	j.VideoURL = videoURL.String
	j.ExternalVideoURL = externalURL.String
	j.MotionPrompt = motionPrompt.String
	if errorMessage.Valid {
		j.ErrorMessage = &errorMessage.String
	}
	return j, nil
}

func (r *VideoJobRepository) Create(ctx context.Context, job *model.VideoJob) (*model.VideoJob, error) {
	if job.Status == "" {
		job.Status = model.VideoJobPending
	}
	now := time.Now().UTC()
	q := `INSERT INTO video_jobs (job_id, store_id, product_id, product_name, product_description, product_image_url, status, created_at, updated_at)
	      VALUES ($1,$2,NULLIF($3,''),$4,$5,$6,$7,$8,$8)
	      RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, q,
		job.JobID, job.StoreID, job.ProductID, job.ProductName, job.ProductDescription,
		job.ProductImageURL, job.Status, now,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (r *VideoJobRepository) GetByJobID(ctx context.Context, jobID string) (*model.VideoJob, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+videoJobCols+` FROM video_jobs WHERE job_id=$1`, jobID)
	j, err := scanVideoJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return j, err
}

func (r *VideoJobRepository) Update(ctx context.Context, job *model.VideoJob) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE video_jobs SET status=$1, video_url=NULLIF($2,''), external_video_url=NULLIF($3,''),
		   motion_prompt=NULLIF($4,''), error_message=$5, updated_at=$6
		 WHERE id=$7`,
		job.Status, job.VideoURL, job.ExternalVideoURL, job.MotionPrompt, job.ErrorMessage,
		time.Now().UTC(), job.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *VideoJobRepository) Delete(ctx context.Context, jobID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM video_jobs WHERE job_id=$1`, jobID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *VideoJobRepository) History(ctx context.Context, storeID string, limit int) ([]model.VideoJob, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+videoJobCols+` FROM video_jobs WHERE store_id=$1 ORDER BY created_at DESC LIMIT $2`,
		storeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.VideoJob
	for rows.Next() {
		j, err := scanVideoJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}
