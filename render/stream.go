// Package render plays scores on a simulated board and turns the result
// into 16-bit PCM, either live a frame at a time or offline into a WAV file.
package render

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/user-none/playtune/board"
	"github.com/user-none/playtune/sim"
	"github.com/user-none/playtune/tune"
)

const (
	// DefaultSampleRate matches the audio player's output rate.
	DefaultSampleRate = 48000

	// FPS is how many frames a second a Stream is advanced in.
	FPS = 60

	defaultGain = 12000.0

	// FirstPin is the output pin of channel 0; later channels follow on.
	FirstPin tune.Pin = 10
)

// ErrNoChannels is returned when a configuration leaves nothing to play on.
var ErrNoChannels = errors.New("no channels to play on")

// Backend selects how channel output becomes sound.
type Backend int

const (
	// BackendSquare renders the pins' square waves directly.
	BackendSquare Backend = iota
	// BackendPSG mirrors the first three channels onto an SN76489.
	BackendPSG
)

// String returns the backend's flag name.
func (b Backend) String() string {
	switch b {
	case BackendSquare:
		return "square"
	case BackendPSG:
		return "psg"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// ParseBackend returns the backend with the given flag name.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(name) {
	case "square", "":
		return BackendSquare, nil
	case "psg":
		return BackendPSG, nil
	}
	return 0, fmt.Errorf("unknown backend %q (use square or psg)", name)
}

// Config describes a simulated board and how to hear it.
type Config struct {
	Board   board.Board
	ClockHz uint32 // zero uses the board's default

	// Channels is how many channels to bind. Zero binds every timer the
	// board has.
	Channels int

	SampleRate int // zero uses DefaultSampleRate
	Backend    Backend
	Gain       float64 // peak output; zero uses a default

	AssumeVolume bool
	Monitors     []tune.Monitor
	Logger       *log.Logger
	Debug        bool
}

func (c Config) withDefaults() (Config, error) {
	if c.Channels == 0 {
		c.Channels = c.Board.Channels()
	}
	if c.Channels > c.Board.Channels() {
		c.Channels = c.Board.Channels()
	}
	if c.Channels <= 0 {
		return c, fmt.Errorf("board %q: %w", c.Board.Name, ErrNoChannels)
	}
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.Gain == 0 {
		c.Gain = defaultGain
	}
	return c, nil
}

// sink collects the audio for a span of machine time.
type sink interface {
	Flush(cycle uint64, dst []int16) []int16
}

// Stream runs an engine on a simulated machine one frame at a time.
//
// RunFrame belongs to one goroutine. The engine's foreground calls may be
// made from another; the machine serializes them against its interrupts.
type Stream struct {
	cfg     Config
	machine *sim.Machine
	engine  *tune.Engine
	sink    sink

	frame uint64
	buf   []int16
}

// NewStream builds the machine and engine described by cfg and binds its
// channels to pins FirstPin onwards.
func NewStream(cfg Config) (*Stream, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	m := sim.New(cfg.Board, cfg.ClockHz)
	s := &Stream{
		cfg:     cfg,
		machine: m,
		buf:     make([]int16, 0, cfg.SampleRate/FPS+1),
	}

	monitors := cfg.Monitors
	switch cfg.Backend {
	case BackendPSG:
		psg := NewPSG(m.ClockHz(), cfg.SampleRate, cfg.Gain/PSGChannels, m.Now)
		monitors = append(append([]tune.Monitor{}, monitors...), psg)
		s.sink = psg
	default:
		sq := NewSquare(m.ClockHz(), cfg.SampleRate, cfg.Channels, cfg.Gain)
		m.Observe(sq)
		s.sink = sq
	}

	s.engine = tune.New(m, tune.Options{
		AssumeVolume: cfg.AssumeVolume,
		Monitors:     monitors,
		Logger:       cfg.Logger,
		Debug:        cfg.Debug,
	})
	m.SetHandler(s.engine.TimerCompare)
	for i := 0; i < cfg.Channels; i++ {
		s.engine.InitChannel(FirstPin + tune.Pin(i))
	}
	return s, nil
}

// Engine returns the stream's engine.
func (s *Stream) Engine() *tune.Engine {
	return s.engine
}

// Machine returns the simulated board.
func (s *Stream) Machine() *sim.Machine {
	return s.machine
}

// SampleRate returns the output rate in samples per second.
func (s *Stream) SampleRate() int {
	return s.cfg.SampleRate
}

// Channels returns how many channels are bound.
func (s *Stream) Channels() int {
	return s.cfg.Channels
}

// RunFrame advances the machine by one frame and returns that frame's mono
// samples. The slice is reused by the next call.
func (s *Stream) RunFrame() []int16 {
	s.frame++
	end := s.frame * uint64(s.machine.ClockHz()) / FPS
	s.machine.RunUntil(end)
	s.buf = s.sink.Flush(end, s.buf[:0])
	return s.buf
}
