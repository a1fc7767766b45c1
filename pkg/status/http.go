package status

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/canvion/canvion/pkg/models"
)

const defaultRequestTimeout = 30 * time.Second

// HTTPClient talks to the generation backend's REST API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client for the backend at baseURL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultRequestTimeout},
	}
}

// taskPath maps a task type onto its status endpoint. Image tasks and the
// three video variants live under different API prefixes.
func taskPath(taskType, taskID string) string {
	switch models.TaskType(taskType) {
	case models.TaskTypeVideoHDUpscale:
		return "/api/videos/hd-upscale/task/" + taskID
	case models.TaskTypeVideo, models.TaskTypeVideoHD:
		return "/api/videos/task/" + taskID
	default:
		return "/api/images/task/" + taskID
	}
}

func (c *HTTPClient) TaskStatus(ctx context.Context, taskType, taskID string) (*Result, error) {
	url := c.baseURL + taskPath(taskType, taskID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query task %s: %w", taskID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read status response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("task %s: %w", taskID, ErrTaskNotFound)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("task %s: backend returned %d", taskID, resp.StatusCode)
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}

	// Some backends report missing tasks as a 200 with an error message.
	if strings.Contains(strings.ToLower(result.Error), "not found") {
		return nil, fmt.Errorf("task %s: %w", taskID, ErrTaskNotFound)
	}

	return &result, nil
}
