package render

import (
	"flag"
	"fmt"
	"log"

	"github.com/user-none/playtune/board"
)

// Flags holds the command-line options shared by the players and the
// renderer.
type Flags struct {
	Board        string
	ClockHz      uint
	Channels     int
	SampleRate   int
	Backend      string
	AssumeVolume bool
	Debug        bool
}

// Register adds the options to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Board, "board", "atmega328", "board to simulate")
	fs.UintVar(&f.ClockHz, "clock", 0, "CPU clock in Hz (0 for the board's own)")
	fs.IntVar(&f.Channels, "channels", 0, "channels to bind (0 for every timer)")
	fs.IntVar(&f.SampleRate, "rate", DefaultSampleRate, "output sample rate")
	fs.StringVar(&f.Backend, "backend", "square", "sound backend: square or psg")
	fs.BoolVar(&f.AssumeVolume, "assume-volume", false, "treat headerless scores as carrying note volumes")
	fs.BoolVar(&f.Debug, "debug", false, "log every score command")
}

// Config builds a stream configuration from the parsed options.
func (f *Flags) Config(logger *log.Logger) (Config, error) {
	b, err := board.Lookup(f.Board)
	if err != nil {
		return Config{}, err
	}
	backend, err := ParseBackend(f.Backend)
	if err != nil {
		return Config{}, err
	}
	if f.ClockHz > 1<<32-1 {
		return Config{}, fmt.Errorf("clock %d Hz out of range", f.ClockHz)
	}
	if f.Channels < 0 {
		return Config{}, fmt.Errorf("channels must not be negative, got %d", f.Channels)
	}
	if f.SampleRate <= 0 {
		return Config{}, fmt.Errorf("sample rate must be positive, got %d", f.SampleRate)
	}
	return Config{
		Board:        b,
		ClockHz:      uint32(f.ClockHz),
		Channels:     f.Channels,
		SampleRate:   f.SampleRate,
		Backend:      backend,
		AssumeVolume: f.AssumeVolume,
		Logger:       logger,
		Debug:        f.Debug,
	}, nil
}
