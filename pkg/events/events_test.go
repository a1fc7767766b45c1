package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Hosts outside this module key on the broadcast names; they are wire
// contract, not internal identifiers.
func TestEventNamesAreStable(t *testing.T) {
	assert.Equal(t, EventType("background-task-progress"), TaskProgress{}.GetType())
	assert.Equal(t, EventType("background-task-complete"), TaskCompleted{}.GetType())
	assert.Equal(t, EventType("background-task-failed"), TaskFailed{}.GetType())
}
