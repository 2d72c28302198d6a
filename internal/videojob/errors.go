package videojob

import (
	"errors"
	"fmt"
)

// Sentinel errors for the client. Callers distinguish them with errors.Is;
// they map to different retry strategies in a real deployment.
var (
	// ErrInvalidEndpoint means the configured base URL is malformed.
	ErrInvalidEndpoint = errors.New("invalid endpoint URL")
	// ErrInvalidResponse means the transport failed or the body was not the
	// expected shape.
	ErrInvalidResponse = errors.New("invalid response from server")
	// ErrJobNotFound is returned on HTTP 404 for a job id.
	ErrJobNotFound = errors.New("job not found")
	// ErrDecodingFailed means a 2xx upload response did not parse as a job.
	ErrDecodingFailed = errors.New("failed to decode response")
	// ErrUploadTimeout means the transport reported a timeout during upload.
	ErrUploadTimeout = errors.New("upload timed out")
	// ErrPollTimedOut means polling exhausted its attempt budget without the
	// job reaching a terminal state.
	ErrPollTimedOut = errors.New("polling timed out")
	// ErrLocalWrite means a downloaded result could not be written locally.
	ErrLocalWrite = errors.New("writing result file failed")
)

// ServerError is any non-2xx response that is not a job-id miss.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %d", e.StatusCode)
}

// JobFailedError reports that the remote job reached the failed state.
type JobFailedError struct {
	JobID   string
	Message string
}

func (e *JobFailedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("job %s failed", e.JobID)
	}
	return fmt.Sprintf("job %s failed: %s", e.JobID, e.Message)
}
