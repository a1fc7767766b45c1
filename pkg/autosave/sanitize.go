package autosave

import (
	"encoding/json"
	"strings"

	"github.com/canvion/canvion/pkg/models"
)

const (
	// maxResultBytes caps a node's output payload before it is dropped
	// from the snapshot.
	maxResultBytes = 50 * 1024

	// maxFieldBytes caps any single string field. Longer strings are cut
	// and marked rather than dropped, so a restored snapshot shows what
	// was lost.
	maxFieldBytes = 10 * 1024

	truncatedSuffix = "...[TRUNCATED]"
)

// sanitizeWorkflow strips bulky inline media from a snapshot so autosaves
// stay small. Base64 data URIs are replaced with a short marker, blob URLs
// are dropped entirely and oversized payloads are truncated. The input is
// mutated, so callers pass a clone.
func sanitizeWorkflow(wf *models.Workflow) {
	for _, node := range wf.Nodes {
		if node.Data == nil {
			continue
		}

		if oversized(node.Data[models.DataKeyOutput]) {
			node.Data[models.DataKeyOutput] = map[string]any{"truncated": true}
		}

		node.Data = sanitizeMap(node.Data)
	}
}

func sanitizeMap(data map[string]any) map[string]any {
	for key, value := range data {
		clean, keep := sanitizeValue(value)
		if !keep {
			delete(data, key)

			continue
		}

		data[key] = clean
	}

	return data
}

// sanitizeValue returns the cleaned value and whether it should be kept.
func sanitizeValue(value any) (any, bool) {
	switch v := value.(type) {
	case string:
		return sanitizeString(v)
	case map[string]any:
		return sanitizeMap(v), true
	case []any:
		out := make([]any, 0, len(v))

		for _, item := range v {
			clean, keep := sanitizeValue(item)
			if keep {
				out = append(out, clean)
			}
		}

		return out, true
	default:
		return value, true
	}
}

func sanitizeString(s string) (any, bool) {
	if strings.HasPrefix(s, "data:") {
		return "[BASE64:" + dataURIMime(s) + "]", true
	}

	if strings.HasPrefix(s, "blob:") {
		return nil, false
	}

	if len(s) > maxFieldBytes {
		return s[:maxFieldBytes] + truncatedSuffix, true
	}

	return s, true
}

// dataURIMime extracts the mime type from a data URI, e.g.
// "data:image/png;base64,..." yields "image/png".
func dataURIMime(uri string) string {
	rest := strings.TrimPrefix(uri, "data:")

	end := strings.IndexAny(rest, ";,")
	if end < 0 {
		return "unknown"
	}

	if end == 0 {
		return "unknown"
	}

	return rest[:end]
}

func oversized(value any) bool {
	if value == nil {
		return false
	}

	data, err := json.Marshal(value)
	if err != nil {
		return true
	}

	return len(data) > maxResultBytes
}
