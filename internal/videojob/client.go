// Package videojob is the HTTP client for the remote video-analysis service:
// multipart upload, status polling and result download.
package videojob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const (
	defaultRequestTimeout  = 300 * time.Second
	defaultResourceTimeout = 600 * time.Second
	defaultPollInterval    = time.Second
	defaultMaxPollAttempts = 180
)

// Option configures a Client.
type Option func(*Client)

// WithRequestTimeout overrides the per-request timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) { c.requestTimeout = d }
}

// WithResourceTimeout overrides the total upload budget.
func WithResourceTimeout(d time.Duration) Option {
	return func(c *Client) { c.resourceTimeout = d }
}

// WithPollInterval overrides the delay between status polls.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// WithMaxPollAttempts overrides the polling attempt budget.
func WithMaxPollAttempts(n int) Option {
	return func(c *Client) { c.maxPollAttempts = n }
}

// Client talks to the video-analysis API. The underlying transport is safe
// for concurrent job operations; each polling loop is self-contained.
type Client struct {
	http *resty.Client
	log  zerolog.Logger

	requestTimeout  time.Duration
	resourceTimeout time.Duration
	pollInterval    time.Duration
	maxPollAttempts int
}

// New creates a client for the given base URL.
func New(baseURL string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, baseURL)
	}

	c := &Client{
		log:             logger,
		requestTimeout:  defaultRequestTimeout,
		resourceTimeout: defaultResourceTimeout,
		pollInterval:    defaultPollInterval,
		maxPollAttempts: defaultMaxPollAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http = resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(c.requestTimeout)

	return c, nil
}

// Upload sends a video through a multipart POST and returns the created job.
// Empty videoType and device fall back to "dashcam" and "cuda".
func (c *Client) Upload(
	ctx context.Context,
	video io.Reader,
	filename, videoType, device string,
) (*Job, error) {
	if videoType == "" {
		videoType = "dashcam"
	}
	if device == "" {
		device = "cuda"
	}

	ctx, cancel := context.WithTimeout(ctx, c.resourceTimeout)
	defer cancel()

	c.log.Info().Str("filename", filename).Str("videoType", videoType).
		Str("device", device).Msg("Uploading video")

	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartField("file", filename, "video/mp4", video).
		SetMultipartFormData(map[string]string{
			"video_type": videoType,
			"device":     device,
		}).
		Post("/api/video/upload")
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrUploadTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if resp.IsError() {
		return nil, &ServerError{StatusCode: resp.StatusCode()}
	}

	var job Job
	if err := json.Unmarshal(resp.Body(), &job); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodingFailed, err)
	}

	c.log.Info().Str("jobId", job.JobID).Str("status", job.Status).
		Msg("Video uploaded")
	return &job, nil
}

// JobStatus fetches the current snapshot of a job.
func (c *Client) JobStatus(ctx context.Context, jobID string) (*Job, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("jobId", jobID).
		Get("/api/video/result/{jobId}")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if resp.IsError() {
		return nil, &ServerError{StatusCode: resp.StatusCode()}
	}

	var job Job
	if err := json.Unmarshal(resp.Body(), &job); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &job, nil
}

// AwaitCompletion polls the job until it completes, fails, the attempt budget
// runs out, or ctx is cancelled. onProgress, if non-nil, receives the progress
// percentage after every poll. A poll error aborts the loop immediately;
// transient errors are not retried here.
func (c *Client) AwaitCompletion(
	ctx context.Context,
	jobID string,
	onProgress func(percent int),
) (*Job, error) {
	for attempt := 0; attempt < c.maxPollAttempts; attempt++ {
		job, err := c.JobStatus(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if onProgress != nil {
			onProgress(job.ProgressPercent)
		}

		switch job.Status {
		case StatusCompleted:
			c.log.Info().Str("jobId", jobID).Int("attempts", attempt+1).
				Msg("Job completed")
			return job, nil
		case StatusFailed:
			ferr := &JobFailedError{JobID: jobID}
			if job.ErrorMessage != nil {
				ferr.Message = *job.ErrorMessage
			}
			return job, ferr
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
	return nil, fmt.Errorf("%w after %d attempts", ErrPollTimedOut, c.maxPollAttempts)
}

// DownloadResult streams the processed video to destDir and returns the local
// path. The payload lands in a temp file first and is renamed over
// result_<jobID>.mp4, replacing any prior file at that path.
func (c *Client) DownloadResult(
	ctx context.Context,
	jobID, filename, destDir string,
) (string, error) {
	if filename == "" {
		filename = "result.mp4"
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetPathParams(map[string]string{
			"jobId":    jobID,
			"filename": filename,
		}).
		Get("/api/video/download/{jobId}/{filename}")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if resp.IsError() {
		return "", &ServerError{StatusCode: resp.StatusCode()}
	}

	tmp, err := os.CreateTemp(destDir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLocalWrite, err)
	}
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: %v", ErrLocalWrite, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: %v", ErrLocalWrite, err)
	}

	dest := filepath.Join(destDir, fmt.Sprintf("result_%s.mp4", jobID))
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: %v", ErrLocalWrite, err)
	}

	c.log.Info().Str("jobId", jobID).Str("path", dest).Msg("Result downloaded")
	return dest, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
