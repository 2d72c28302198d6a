package videojob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	c, err := New(baseURL, zerolog.Nop(), opts...)
	require.NoError(t, err)
	return c
}

func writeJob(t *testing.T, w http.ResponseWriter, job Job) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(job))
}

func TestNew_RejectsInvalidEndpoint(t *testing.T) {
	for _, baseURL := range []string{"", "not a url", "/relative/path", "host.only"} {
		_, err := New(baseURL, zerolog.Nop())
		assert.ErrorIs(t, err, ErrInvalidEndpoint, baseURL)
	}
}

func TestUpload_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/video/upload", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "dashcam", r.FormValue("video_type"))
		assert.Equal(t, "cpu", r.FormValue("device"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "trip.mp4", header.Filename)
		assert.Equal(t, "video/mp4", header.Header.Get("Content-Type"))

		writeJob(t, w, Job{JobID: "job-1", Status: StatusQueued})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	job, err := c.Upload(context.Background(),
		strings.NewReader("fake video bytes"), "trip.mp4", "", "cpu")

	require.NoError(t, err)
	assert.Equal(t, "job-1", job.JobID)
	assert.Equal(t, StatusQueued, job.Status)
	assert.False(t, job.Done())
}

func TestUpload_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Upload(context.Background(), strings.NewReader("x"), "v.mp4", "", "")

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusInternalServerError, serverErr.StatusCode)
}

func TestUpload_DecodingFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Upload(context.Background(), strings.NewReader("x"), "v.mp4", "", "")

	assert.ErrorIs(t, err, ErrDecodingFailed)
}

func TestUpload_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv.URL,
		WithRequestTimeout(50*time.Millisecond),
		WithResourceTimeout(50*time.Millisecond),
	)
	_, err := c.Upload(context.Background(), strings.NewReader("x"), "v.mp4", "", "")

	assert.ErrorIs(t, err, ErrUploadTimeout)
}

func TestJobStatus_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/video/result/missing", r.URL.Path)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.JobStatus(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestAwaitCompletion_CompletesAfterPolls(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch polls.Add(1) {
		case 1:
			writeJob(t, w, Job{JobID: "job-2", Status: StatusQueued, ProgressPercent: 40})
		case 2:
			writeJob(t, w, Job{JobID: "job-2", Status: StatusProcessing, ProgressPercent: 70})
		default:
			writeJob(t, w, Job{JobID: "job-2", Status: StatusCompleted, ProgressPercent: 100})
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, WithPollInterval(time.Millisecond))

	var progress []int
	job, err := c.AwaitCompletion(context.Background(), "job-2", func(percent int) {
		progress = append(progress, percent)
	})

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, job.Status)
	assert.True(t, job.Done())
	assert.Equal(t, []int{40, 70, 100}, progress)
	assert.Equal(t, int32(3), polls.Load())
}

func TestAwaitCompletion_JobFailed(t *testing.T) {
	msg := "decode error at frame 812"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJob(t, w, Job{JobID: "job-3", Status: StatusFailed, ErrorMessage: &msg})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, WithPollInterval(time.Millisecond))
	job, err := c.AwaitCompletion(context.Background(), "job-3", nil)

	var failed *JobFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "job-3", failed.JobID)
	assert.Equal(t, msg, failed.Message)
	require.NotNil(t, job)
	assert.Equal(t, StatusFailed, job.Status)
}

func TestAwaitCompletion_AbortsOnPollError(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, WithPollInterval(time.Millisecond))
	_, err := c.AwaitCompletion(context.Background(), "job-4", nil)

	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.Equal(t, int32(1), polls.Load())
}

func TestAwaitCompletion_PollBudgetExhausted(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
		writeJob(t, w, Job{JobID: "job-5", Status: StatusProcessing, ProgressPercent: 10})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL,
		WithPollInterval(time.Millisecond),
		WithMaxPollAttempts(3),
	)
	_, err := c.AwaitCompletion(context.Background(), "job-5", nil)

	assert.ErrorIs(t, err, ErrPollTimedOut)
	assert.Equal(t, int32(3), polls.Load())
}

func TestAwaitCompletion_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJob(t, w, Job{JobID: "job-6", Status: StatusProcessing})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := newTestClient(t, srv.URL, WithPollInterval(time.Hour))

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := c.AwaitCompletion(ctx, "job-6", nil)

	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDownloadResult_WritesAndOverwrites(t *testing.T) {
	payload := "processed video payload"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/video/download/job-7/annotated.mp4", r.URL.Path)
		w.Header().Set("Content-Type", "video/mp4")
		fmt.Fprint(w, payload)
	}))
	defer srv.Close()

	destDir := t.TempDir()
	stale := filepath.Join(destDir, "result_job-7.mp4")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0644))

	c := newTestClient(t, srv.URL)
	local, err := c.DownloadResult(context.Background(), "job-7", "annotated.mp4", destDir)

	require.NoError(t, err)
	assert.Equal(t, stale, local)

	got, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))

	// no temp files left behind
	entries, err := os.ReadDir(destDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDownloadResult_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.DownloadResult(context.Background(), "job-8", "out.mp4", t.TempDir())

	assert.ErrorIs(t, err, ErrJobNotFound)
}
