package videojob

// Job statuses the client reacts to. The status field is server-defined;
// anything other than completed/failed keeps the polling loop going.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Job is the latest fetched snapshot of a remote video-analysis job.
// The server owns the record; optional fields may be absent or null.
type Job struct {
	ID                    int      `json:"id"`
	JobID                 string   `json:"job_id"`
	VideoFilename         string   `json:"video_filename"`
	VideoPath             string   `json:"video_path"`
	VideoSizeMB           *float64 `json:"video_size_mb"`
	DurationSeconds       *int     `json:"duration_seconds"`
	FPS                   *float64 `json:"fps"`
	Resolution            *string  `json:"resolution"`
	Status                string   `json:"status"`
	ProgressPercent       int      `json:"progress_percent"`
	ResultPath            *string  `json:"result_path"`
	ErrorMessage          *string  `json:"error_message"`
	ProcessingTimeSeconds *int     `json:"processing_time_seconds"`
	TripID                *int     `json:"trip_id"`
	CreatedAt             string   `json:"created_at"`
	UpdatedAt             string   `json:"updated_at"`
	StartedAt             *string  `json:"started_at"`
	CompletedAt           *string  `json:"completed_at"`
}

// Done reports whether the job reached a terminal state.
func (j *Job) Done() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}
