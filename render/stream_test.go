package render

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/user-none/playtune/board"
)

var quiet = log.New(io.Discard, "", 0)

// Middle C for 500 ms, then stop.
var shortScore = []byte{0x90, 0x3c, 0x01, 0xf4, 0x80, 0xf0}

// hashInt16 returns the SHA-256 of samples as little-endian bytes.
func hashInt16(samples []int16) string {
	b := make([]byte, len(samples)*2)
	for i, v := range samples {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(v))
	}
	return fmt.Sprintf("%x", sha256.Sum256(b))
}

func peak(samples []int16) int {
	p := 0
	for _, v := range samples {
		a := int(v)
		if a < 0 {
			a = -a
		}
		if a > p {
			p = a
		}
	}
	return p
}

func TestNewStream_NoChannels(t *testing.T) {
	_, err := NewStream(Config{Board: board.Board{Name: "bare"}})
	if !errors.Is(err, ErrNoChannels) {
		t.Errorf("got %v, want ErrNoChannels", err)
	}
}

func TestNewStream_ChannelsCapped(t *testing.T) {
	s, err := NewStream(Config{Board: board.ATmega328, Channels: 8, Logger: quiet})
	if err != nil {
		t.Fatal(err)
	}
	if s.Channels() != 3 || s.Engine().NumChannels() != 3 {
		t.Errorf("channels: got %d (engine %d), want 3", s.Channels(), s.Engine().NumChannels())
	}
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in   string
		want Backend
		ok   bool
	}{
		{"square", BackendSquare, true},
		{"", BackendSquare, true},
		{"PSG", BackendPSG, true},
		{"fm", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseBackend(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseBackend(%q): got %v, %v", tt.in, got, err)
		}
	}
}

func TestStream_RunFrame(t *testing.T) {
	s, err := NewStream(Config{Board: board.ATmega328, Logger: quiet})
	if err != nil {
		t.Fatal(err)
	}
	s.Engine().Play(shortScore)

	total := 0
	for i := 0; i < FPS; i++ {
		total += len(s.RunFrame())
	}
	if total != DefaultSampleRate {
		t.Errorf("one second of frames: got %d samples, want %d", total, DefaultSampleRate)
	}
	if s.Engine().Playing() {
		t.Error("score still playing after one second")
	}
	if got := s.Machine().Elapsed(); got != time.Second {
		t.Errorf("machine time: got %v, want 1s", got)
	}
}

func TestRender(t *testing.T) {
	for _, backend := range []Backend{BackendSquare, BackendPSG} {
		t.Run(backend.String(), func(t *testing.T) {
			res, err := Render(shortScore, Config{Board: board.ATmega328, Backend: backend, Logger: quiet}, 10*time.Second)
			if err != nil {
				t.Fatal(err)
			}
			if !res.Ended {
				t.Error("score did not end")
			}
			frame := time.Second / FPS
			if res.Duration < 500*time.Millisecond || res.Duration > 500*time.Millisecond+frame {
				t.Errorf("duration: got %v, want 500ms to the next frame", res.Duration)
			}
			want := int((res.Duration + tail) * DefaultSampleRate / time.Second)
			if d := len(res.Samples) - want; d < -DefaultSampleRate/FPS || d > DefaultSampleRate/FPS {
				t.Errorf("samples: got %d, want about %d", len(res.Samples), want)
			}
			if p := peak(res.Samples); p < 1000 {
				t.Errorf("peak level %d, rendering is silent", p)
			}
		})
	}
}

func TestRender_LoopStopsAtLimit(t *testing.T) {
	loop := []byte{0x90, 0x45, 0x00, 0x64, 0x80, 0x00, 0x64, 0xe0}
	res, err := Render(loop, Config{Board: board.ATmega2560, Logger: quiet}, 2*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if res.Ended {
		t.Error("looping score reported as ended")
	}
	if res.Duration < 2*time.Second {
		t.Errorf("duration: got %v, want at least the 2s limit", res.Duration)
	}
}

func TestRender_Deterministic(t *testing.T) {
	score := []byte{
		'P', 't', 6, 0x80, 0, 2,
		0x90, 0x3c, 0x7f, 0x91, 0x43, 0x7f, 0x00, 0xfa,
		0x80, 0x90, 0x40, 0x7f, 0x00, 0xfa,
		0xf0,
	}
	cfg := Config{Board: board.ATmega328, Logger: quiet}
	a, err := Render(score, cfg, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Render(score, cfg, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if hashInt16(a.Samples) != hashInt16(b.Samples) {
		t.Error("two renders of the same score differ")
	}
}

func TestWriteWAV(t *testing.T) {
	res, err := Render(shortScore, Config{Board: board.ATmega328, Logger: quiet}, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.wav")
	if err := SaveWAV(path, res); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("not a valid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if dec.SampleRate != DefaultSampleRate || dec.NumChans != 1 || dec.BitDepth != 16 {
		t.Errorf("format: %d Hz, %d channels, %d bits", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	if len(buf.Data) != len(res.Samples) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(res.Samples))
	}
	for i, v := range res.Samples {
		if buf.Data[i] != int(v) {
			t.Fatalf("sample %d: got %d, want %d", i, buf.Data[i], v)
		}
	}
}
