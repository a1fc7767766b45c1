package cmd

import (
	"strings"

	"github.com/canvion/canvion/pkg/persistence"
	"github.com/canvion/canvion/pkg/persistence/file"
)

// NewPersistence selects a persistence backend from a URL. Anything that is
// not a recognized scheme is treated as a file path.
func NewPersistence(databaseURL string) persistence.Persistence {
	return file.NewPersistence(strings.TrimPrefix(databaseURL, "file://"))
}
