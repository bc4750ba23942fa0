package audio

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// lockAttempts bounds how long the audio thread tries for the buffer lock
// before giving up on a block.
const lockAttempts = 64

// SampleBuffer accumulates raw sample bytes from a single producer (the
// stream callback) for a fixed recording window.
//
// Appends never block indefinitely: if the lock cannot be taken within
// lockAttempts tries the block is dropped and counted. Appends made once
// the window has elapsed, or after Take, are no-ops.
type SampleBuffer struct {
	mu     sync.Mutex
	data   []byte
	sealed bool

	start  time.Time
	window time.Duration
	now    func() time.Time

	dropped atomic.Int64
}

// NewSampleBuffer starts a recording window of length window at now().
func NewSampleBuffer(window time.Duration, now func() time.Time) *SampleBuffer {
	if now == nil {
		now = time.Now
	}
	return &SampleBuffer{
		start:  now(),
		window: window,
		now:    now,
	}
}

// Append copies p into the buffer and reports whether it was kept.
func (b *SampleBuffer) Append(p []byte) bool {
	if len(p) == 0 {
		return false
	}
	if b.now().Sub(b.start) >= b.window {
		return false
	}

	locked := false
	for i := 0; i < lockAttempts; i++ {
		if b.mu.TryLock() {
			locked = true
			break
		}
		runtime.Gosched()
	}
	if !locked {
		b.dropped.Add(1)
		return false
	}
	defer b.mu.Unlock()

	if b.sealed {
		return false
	}
	b.data = append(b.data, p...)
	return true
}

// Take seals the buffer and returns its contents. Later appends are
// ignored, so the returned slice is never written again.
func (b *SampleBuffer) Take() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sealed = true
	data := b.data
	b.data = nil
	return data
}

// Len returns the number of bytes buffered so far.
func (b *SampleBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Dropped returns the number of blocks discarded because the lock could
// not be taken in time.
func (b *SampleBuffer) Dropped() int {
	return int(b.dropped.Load())
}
