package status_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/canvion/canvion/pkg/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStatusRoutesByType(t *testing.T) {
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"processing","progress":0.4}`))
	}))
	defer server.Close()

	client := status.NewHTTPClient(server.URL)

	tests := []struct {
		taskType string
		wantPath string
	}{
		{"image", "/api/images/task/t1"},
		{"video", "/api/videos/task/t1"},
		{"video-hd", "/api/videos/task/t1"},
		{"video-hd-upscale", "/api/videos/hd-upscale/task/t1"},
	}

	for _, tc := range tests {
		result, err := client.TaskStatus(t.Context(), tc.taskType, "t1")
		require.NoError(t, err)
		assert.Equal(t, tc.wantPath, gotPath)
		assert.Equal(t, "processing", result.Status)
		require.NotNil(t, result.Progress)
		assert.InDelta(t, 0.4, *result.Progress, 0.001)
	}
}

func TestTaskStatusDecodesSnakeCaseEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"processing","video_url":"https://cdn.example.com/v.mp4","fail_reason":"quota"}`))
	}))
	defer server.Close()

	client := status.NewHTTPClient(server.URL)

	result, err := client.TaskStatus(t.Context(), "video", "t6")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/v.mp4", result.VideoURL)
	assert.Equal(t, "quota", result.FailReason)
	assert.Nil(t, result.Progress)
}

func TestTaskStatusCompleted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"completed","progress":1,"url":"https://cdn.example.com/img.png"}`))
	}))
	defer server.Close()

	client := status.NewHTTPClient(server.URL)

	result, err := client.TaskStatus(t.Context(), "image", "t2")
	require.NoError(t, err)
	assert.Equal(t, "completed", result.Status)
	assert.Equal(t, "https://cdn.example.com/img.png", result.URL)
}

func TestTaskStatusNotFoundFrom404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such task", http.StatusNotFound)
	}))
	defer server.Close()

	client := status.NewHTTPClient(server.URL)

	_, err := client.TaskStatus(t.Context(), "image", "t3")
	assert.ErrorIs(t, err, status.ErrTaskNotFound)
}

func TestTaskStatusNotFoundFromBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"failed","error":"Task not found"}`))
	}))
	defer server.Close()

	client := status.NewHTTPClient(server.URL)

	_, err := client.TaskStatus(t.Context(), "video", "t4")
	assert.ErrorIs(t, err, status.ErrTaskNotFound)
}

func TestTaskStatusServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := status.NewHTTPClient(server.URL)

	_, err := client.TaskStatus(t.Context(), "image", "t5")
	require.Error(t, err)
	assert.NotErrorIs(t, err, status.ErrTaskNotFound)
}
