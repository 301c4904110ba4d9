package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// KeyCommand maps a key read from the terminal to a player command.
func KeyCommand(b byte) (Command, bool) {
	switch b {
	case ' ':
		return CmdPause, true
	case 'n', 'N':
		return CmdNext, true
	case 'p', 'P':
		return CmdPrev, true
	case 'r', 'R':
		return CmdRestart, true
	case 'q', 'Q', 0x03, 0x1b: // Ctrl-C, Esc
		return CmdQuit, true
	}
	return 0, false
}

// Keyboard reads single keys from a terminal in raw mode and sends the
// matching commands to a player.
type Keyboard struct {
	in       *os.File
	send     func(Command)
	oldState *term.State
	stopped  sync.Once
}

// NewKeyboard reads keys from in and passes their commands to send.
func NewKeyboard(in *os.File, send func(Command)) *Keyboard {
	return &Keyboard{in: in, send: send}
}

// Start puts the terminal in raw mode and begins reading. Input that is
// not a terminal is left alone and not read.
func (k *Keyboard) Start() error {
	fd := int(k.in.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to set raw mode: %w", err)
	}
	k.oldState = oldState
	go k.read(k.in)
	return nil
}

func (k *Keyboard) read(r io.Reader) {
	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			if c, ok := KeyCommand(b); ok {
				k.send(c)
			}
		}
		if err != nil {
			return
		}
	}
}

// Stop restores the terminal. The reader goroutine stays blocked in Read
// until the process exits.
func (k *Keyboard) Stop() {
	k.stopped.Do(func() {
		if k.oldState != nil {
			_ = term.Restore(int(k.in.Fd()), k.oldState)
		}
	})
}
