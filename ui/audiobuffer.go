package ui

import (
	"io"
	"sync"
)

// AudioRingBuffer is a byte ring buffer read by oto and written by the
// player loop. Read blocks while the buffer is empty. Write never blocks:
// on overflow the oldest audio is dropped in whole frames, so the channel
// order of interleaved samples survives.
type AudioRingBuffer struct {
	mu   sync.Mutex
	cond *sync.Cond

	buf       []byte
	frameSize int
	readPos   int
	writePos  int
	count     int
	closed    bool
}

// NewAudioRingBuffer creates a buffer holding capacity bytes, rounded down
// to a whole number of frameSize-byte frames.
func NewAudioRingBuffer(capacity, frameSize int) *AudioRingBuffer {
	if frameSize < 1 {
		frameSize = 1
	}
	capacity -= capacity % frameSize
	rb := &AudioRingBuffer{
		buf:       make([]byte, capacity),
		frameSize: frameSize,
	}
	rb.cond = sync.NewCond(&rb.mu)
	return rb
}

// Write appends p, dropping the oldest frames if it does not fit. A
// trailing partial frame in p is ignored.
func (rb *AudioRingBuffer) Write(p []byte) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.closed {
		return
	}
	p = p[:len(p)-len(p)%rb.frameSize]
	size := len(rb.buf)
	if len(p) == 0 || size == 0 {
		return
	}
	if len(p) > size {
		p = p[len(p)-size:]
	}
	n := len(p)

	if over := rb.count + n - size; over > 0 {
		over += (rb.frameSize - over%rb.frameSize) % rb.frameSize
		if over > rb.count {
			over = rb.count
		}
		rb.readPos = (rb.readPos + over) % size
		rb.count -= over
	}

	first := copy(rb.buf[rb.writePos:], p)
	copy(rb.buf, p[first:])
	rb.writePos = (rb.writePos + n) % size
	rb.count += n

	rb.cond.Signal()
}

// Read implements io.Reader. It blocks until data is available and returns
// io.EOF once the buffer is closed and drained.
func (rb *AudioRingBuffer) Read(p []byte) (int, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	for rb.count == 0 {
		if rb.closed {
			return 0, io.EOF
		}
		rb.cond.Wait()
	}

	n := len(p)
	if n > rb.count {
		n = rb.count
	}
	size := len(rb.buf)
	first := copy(p[:n], rb.buf[rb.readPos:])
	copy(p[first:n], rb.buf)
	rb.readPos = (rb.readPos + n) % size
	rb.count -= n

	return n, nil
}

// Buffered returns the number of bytes waiting to be read.
func (rb *AudioRingBuffer) Buffered() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}

// Clear discards everything buffered.
func (rb *AudioRingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.readPos = 0
	rb.writePos = 0
	rb.count = 0
}

// Close makes Read return io.EOF once drained and wakes blocked readers.
func (rb *AudioRingBuffer) Close() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.closed = true
	rb.cond.Broadcast()
}
