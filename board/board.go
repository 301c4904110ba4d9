// Package board describes the processors the engine can drive: which
// timers each one lends to channels, in what order, and at what clock.
package board

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/user-none/playtune/tune"
)

// ErrUnknown is returned by Lookup for a board name it does not know.
var ErrUnknown = errors.New("unknown board")

// Board is a processor variant's timer layout.
type Board struct {
	Name    string
	ClockHz uint32 // default CPU clock

	// Timers in allocation order. The master timer comes first and the
	// timer behind millis() comes last so platform timekeeping survives as
	// long as possible.
	Timers []tune.TimerSpec
}

// Channels returns how many channels the board can play at once.
func (b Board) Channels() int {
	return len(b.Timers)
}

// ATmega8: timers 2 and 1. Timer 0 has no compare unit and is left alone.
var ATmega8 = Board{
	Name:    "atmega8",
	ClockHz: 16000000,
	Timers: []tune.TimerSpec{
		{ID: 2, Width: tune.Width8, ExtendedPrescaler: true},
		{ID: 1, Width: tune.Width16},
	},
}

// ATmega328 covers the ATmega168/328 boards (Uno, Nano, Pro Mini).
var ATmega328 = Board{
	Name:    "atmega328",
	ClockHz: 16000000,
	Timers: []tune.TimerSpec{
		{ID: 2, Width: tune.Width8, ExtendedPrescaler: true},
		{ID: 1, Width: tune.Width16},
		{ID: 0, Width: tune.Width8, Millis: true},
	},
}

// ATmega2560 covers the ATmega1280/2560 boards (Mega).
var ATmega2560 = Board{
	Name:    "atmega2560",
	ClockHz: 16000000,
	Timers: []tune.TimerSpec{
		{ID: 2, Width: tune.Width8, ExtendedPrescaler: true},
		{ID: 3, Width: tune.Width16},
		{ID: 4, Width: tune.Width16},
		{ID: 5, Width: tune.Width16},
		{ID: 1, Width: tune.Width16},
		{ID: 0, Width: tune.Width8, Millis: true},
	},
}

// ATmega32U4 (Leonardo, Micro) has a 10-bit high-speed timer 4, driven
// here as an 8-bit equivalent.
var ATmega32U4 = Board{
	Name:    "atmega32u4",
	ClockHz: 16000000,
	Timers: []tune.TimerSpec{
		{ID: 3, Width: tune.Width16},
		{ID: 4, Width: tune.Width10},
		{ID: 1, Width: tune.Width16},
		{ID: 0, Width: tune.Width8, Millis: true},
	},
}

var boards = map[string]Board{
	ATmega8.Name:    ATmega8,
	ATmega328.Name:  ATmega328,
	"atmega168":     ATmega328,
	"uno":           ATmega328,
	"nano":          ATmega328,
	ATmega2560.Name: ATmega2560,
	"atmega1280":    ATmega2560,
	"mega":          ATmega2560,
	ATmega32U4.Name: ATmega32U4,
	"leonardo":      ATmega32U4,
}

// Lookup returns the board with the given name or alias, ignoring case.
func Lookup(name string) (Board, error) {
	b, ok := boards[strings.ToLower(name)]
	if !ok {
		return Board{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknown, name, strings.Join(Names(), ", "))
	}
	return b, nil
}

// Names returns every accepted board name and alias, sorted.
func Names() []string {
	names := make([]string, 0, len(boards))
	for n := range boards {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
