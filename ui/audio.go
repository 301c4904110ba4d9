package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// bytesPerFrame is one stereo frame of two 16-bit samples.
const bytesPerFrame = 4

// ringBufferCapacity is ~170ms at 48kHz stereo 16-bit.
const ringBufferCapacity = 8192 * bytesPerFrame

// AudioPlayer plays mono score audio through oto. Samples are duplicated
// to both channels and written to a ring buffer that oto's player pulls
// from.
type AudioPlayer struct {
	player     *oto.Player
	ringBuffer *AudioRingBuffer
	sampleRate int
	audioBytes []byte // reused for the int16-to-byte conversion
}

// oto allows one context per process.
var (
	otoCtx      *oto.Context
	otoCtxRate  int
	otoInitOnce sync.Once
	otoInitErr  error
)

func ensureOtoContext(sampleRate int) (*oto.Context, error) {
	otoInitOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   50 * time.Millisecond,
		}
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr != nil {
			return
		}
		otoCtxRate = sampleRate
		<-ready
	})
	if otoInitErr == nil && otoCtxRate != sampleRate {
		return nil, fmt.Errorf("audio context already running at %d Hz", otoCtxRate)
	}
	return otoCtx, otoInitErr
}

// NewAudioPlayer starts playback at sampleRate with the given volume.
func NewAudioPlayer(sampleRate int, volume float64) (*AudioPlayer, error) {
	ctx, err := ensureOtoContext(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("oto audio not available: %w", err)
	}

	rb := NewAudioRingBuffer(ringBufferCapacity, bytesPerFrame)
	player := ctx.NewPlayer(rb)
	player.SetBufferSize(sampleRate / 10 * bytesPerFrame)
	player.SetVolume(volume)
	player.Play()

	return &AudioPlayer{
		player:     player,
		ringBuffer: rb,
		sampleRate: sampleRate,
		audioBytes: make([]byte, 0, 4096),
	}, nil
}

// QueueMono writes mono samples to both output channels.
func (a *AudioPlayer) QueueMono(samples []int16) {
	if len(samples) == 0 {
		return
	}

	needed := len(samples) * bytesPerFrame
	if cap(a.audioBytes) < needed {
		a.audioBytes = make([]byte, 0, needed)
	}
	a.audioBytes = a.audioBytes[:0]
	for _, s := range samples {
		lo, hi := byte(s), byte(s>>8)
		a.audioBytes = append(a.audioBytes, lo, hi, lo, hi)
	}

	a.ringBuffer.Write(a.audioBytes)
}

// Buffered returns how much audio is queued, counting both the ring buffer
// and oto's own buffer. The player loop paces itself on this.
func (a *AudioPlayer) Buffered() time.Duration {
	frames := (a.ringBuffer.Buffered() + a.player.BufferedSize()) / bytesPerFrame
	return time.Duration(frames) * time.Second / time.Duration(a.sampleRate)
}

// Flush discards queued audio so a track change is heard at once.
func (a *AudioPlayer) Flush() {
	a.ringBuffer.Clear()
}

// SetVolume sets the playback volume (0.0 = silent, 1.0 = full).
func (a *AudioPlayer) SetVolume(vol float64) {
	a.player.SetVolume(vol)
}

// Close stops playback.
func (a *AudioPlayer) Close() {
	if a.ringBuffer != nil {
		a.ringBuffer.Close()
	}
	if a.player != nil {
		a.player.Close()
	}
}
