package render

import (
	"errors"
	"flag"
	"io"
	"testing"

	"github.com/user-none/playtune/board"
)

func parseFlags(t *testing.T, args ...string) (*Flags, error) {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var f Flags
	f.Register(fs)
	return &f, fs.Parse(args)
}

func TestFlags_Defaults(t *testing.T) {
	f, err := parseFlags(t)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := f.Config(quiet)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Board.Name != board.ATmega328.Name {
		t.Errorf("board: got %q, want %q", cfg.Board.Name, board.ATmega328.Name)
	}
	if cfg.SampleRate != DefaultSampleRate || cfg.Backend != BackendSquare {
		t.Errorf("got rate %d backend %v", cfg.SampleRate, cfg.Backend)
	}
}

func TestFlags_Config(t *testing.T) {
	f, err := parseFlags(t, "-board", "mega", "-backend", "psg", "-channels", "2", "-clock", "8000000", "-assume-volume")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := f.Config(quiet)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Board.Name != board.ATmega2560.Name {
		t.Errorf("board: got %q, want %q", cfg.Board.Name, board.ATmega2560.Name)
	}
	if cfg.Backend != BackendPSG || cfg.Channels != 2 || cfg.ClockHz != 8000000 || !cfg.AssumeVolume {
		t.Errorf("got %+v", cfg)
	}
}

func TestFlags_Errors(t *testing.T) {
	tests := [][]string{
		{"-board", "z80"},
		{"-backend", "fm"},
		{"-channels", "-1"},
		{"-rate", "0"},
	}
	for _, args := range tests {
		f, err := parseFlags(t, args...)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Config(quiet); err == nil {
			t.Errorf("%v: got nil error", args)
		}
	}

	f, _ := parseFlags(t, "-board", "z80")
	if _, err := f.Config(quiet); !errors.Is(err, board.ErrUnknown) {
		t.Errorf("unknown board: got %v, want ErrUnknown", err)
	}
}
