package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSampleBufferDropsWhenLockHeld(t *testing.T) {
	buf := NewSampleBuffer(time.Hour, nil)

	buf.mu.Lock()
	kept := buf.Append([]byte{1})
	buf.mu.Unlock()

	assert.False(t, kept)
	assert.Equal(t, 1, buf.Dropped())
	assert.Zero(t, buf.Len())
}
