package cmd

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/canvion/canvion/pkg/storage"
)

// NewStorage selects a key-value backend from a URL:
//
//	memory://            in-memory, session-scoped
//	file:///var/canvion  per-key files under the path
//	redis://host:6379/0  shared Redis instance
func NewStorage(ctx context.Context, storageURL string) (storage.KV, error) {
	switch {
	case storageURL == "" || strings.HasPrefix(storageURL, "memory://"):
		return storage.NewMemoryStore(0), nil
	case strings.HasPrefix(storageURL, "redis://"):
		parsed, err := url.Parse(storageURL)
		if err != nil {
			return nil, fmt.Errorf("invalid storage url: %w", err)
		}

		db := 0
		if path := strings.TrimPrefix(parsed.Path, "/"); path != "" {
			if db, err = strconv.Atoi(path); err != nil {
				return nil, fmt.Errorf("invalid redis db in storage url: %w", err)
			}
		}

		password, _ := parsed.User.Password()

		return storage.NewRedisStore(ctx, parsed.Host, password, db, "canvion")
	default:
		return storage.NewFileStore(storageURL)
	}
}
