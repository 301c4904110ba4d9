package ui

import (
	"bytes"
	"io"
	"testing"
	"time"
)

func TestAudioRingBuffer_RoundTrip(t *testing.T) {
	rb := NewAudioRingBuffer(16, 4)
	rb.Write([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	if rb.Buffered() != 8 {
		t.Fatalf("Buffered: got %d, want 8", rb.Buffered())
	}
	p := make([]byte, 6)
	n, err := rb.Read(p)
	if err != nil || n != 6 || !bytes.Equal(p, []byte{1, 2, 3, 4, 5, 6}) {
		t.Errorf("Read: got %d %v % x", n, err, p[:n])
	}
	if rb.Buffered() != 2 {
		t.Errorf("Buffered after read: got %d, want 2", rb.Buffered())
	}
}

func TestAudioRingBuffer_OverflowDropsWholeFrames(t *testing.T) {
	rb := NewAudioRingBuffer(8, 4)
	rb.Write([]byte{1, 1, 1, 1, 2, 2, 2, 2})
	rb.Write([]byte{3, 3, 3, 3})

	p := make([]byte, 16)
	n, _ := rb.Read(p)
	want := []byte{2, 2, 2, 2, 3, 3, 3, 3}
	if !bytes.Equal(p[:n], want) {
		t.Errorf("got % x, want % x", p[:n], want)
	}
}

func TestAudioRingBuffer_Wraps(t *testing.T) {
	rb := NewAudioRingBuffer(8, 4)
	p := make([]byte, 8)
	rb.Write([]byte{1, 1, 1, 1})
	rb.Read(p)
	rb.Write([]byte{2, 2, 2, 2, 3, 3, 3, 3})

	n, _ := rb.Read(p)
	want := []byte{2, 2, 2, 2, 3, 3, 3, 3}
	if !bytes.Equal(p[:n], want) {
		t.Errorf("got % x, want % x", p[:n], want)
	}
}

func TestAudioRingBuffer_PartialFrameIgnored(t *testing.T) {
	rb := NewAudioRingBuffer(16, 4)
	rb.Write([]byte{1, 2, 3, 4, 5, 6})
	if rb.Buffered() != 4 {
		t.Errorf("Buffered: got %d, want 4", rb.Buffered())
	}
}

func TestAudioRingBuffer_ReadBlocksUntilWrite(t *testing.T) {
	rb := NewAudioRingBuffer(16, 4)
	got := make(chan int)
	go func() {
		n, _ := rb.Read(make([]byte, 4))
		got <- n
	}()

	select {
	case n := <-got:
		t.Fatalf("Read returned %d bytes from an empty buffer", n)
	case <-time.After(20 * time.Millisecond):
	}
	rb.Write([]byte{9, 9, 9, 9})
	if n := <-got; n != 4 {
		t.Errorf("Read: got %d bytes, want 4", n)
	}
}

func TestAudioRingBuffer_Close(t *testing.T) {
	rb := NewAudioRingBuffer(16, 4)
	rb.Write([]byte{1, 2, 3, 4})
	rb.Close()
	rb.Write([]byte{5, 6, 7, 8})

	p := make([]byte, 8)
	if n, err := rb.Read(p); n != 4 || err != nil {
		t.Errorf("first Read: got %d %v, want 4 nil", n, err)
	}
	if _, err := rb.Read(p); err != io.EOF {
		t.Errorf("Read after drain: got %v, want io.EOF", err)
	}
}

func TestAudioRingBuffer_Clear(t *testing.T) {
	rb := NewAudioRingBuffer(16, 4)
	rb.Write([]byte{1, 2, 3, 4})
	rb.Clear()
	if rb.Buffered() != 0 {
		t.Errorf("Buffered after Clear: got %d", rb.Buffered())
	}
}
