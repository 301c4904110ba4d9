package tune

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Monitor observes note changes. Its methods run in interrupt context and
// must return quickly.
type Monitor interface {
	NoteOn(ch int, note uint8)
	NoteOff(ch int)
}

// Options configures an Engine.
type Options struct {
	// AssumeVolume is used for scores without a header: it says whether
	// note-on commands carry a volume byte.
	AssumeVolume bool

	// NoteFilter, if set, may rewrite each note before it is looked up.
	// Returning a note of NumNotes or more drops the note-on.
	NoteFilter func(ch int, note uint8) uint8

	// RisingEdge, if set, is called from interrupt context each time a
	// channel's pin is toggled high. Tesla coil drivers fire a pulse here.
	RisingEdge func(t TimerID)

	// Monitors are told about every note change.
	Monitors []Monitor

	// Logger receives warnings and, with Debug, a command trace.
	// Defaults to the standard logger.
	Logger *log.Logger
	Debug  bool
}

// Engine plays one score at a time on the channels of one platform. The
// host owns it and routes every compare interrupt to TimerCompare.
//
// InitChannel, Play, Stop, Delay and StopChannels are foreground calls and
// must not run concurrently with each other. Playing may be called at any
// time.
type Engine struct {
	hw   Platform
	opts Options
	log  *log.Logger

	chans     [MaxChannels]channel
	numChans  int
	timerChan [256]int // channel index + 1 by timer, 0 when unbound

	clock   masterClock
	cursor  cursor
	playing atomic.Bool

	unplayable rate.Sometimes
}

// New creates an engine on hw with no channels bound.
func New(hw Platform, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		hw:         hw,
		opts:       opts,
		log:        logger,
		unplayable: rate.Sometimes{First: 1, Interval: time.Second},
	}
}

// InitChannel binds the next free timer to pin. The first call claims the
// master timer. Calls beyond the platform's timer count do nothing.
func (e *Engine) InitChannel(pin Pin) {
	defer e.hw.DisableInterrupts()()
	e.bind(pin)
}

// NumChannels returns how many channels are bound.
func (e *Engine) NumChannels() int {
	defer e.hw.DisableInterrupts()()
	return e.numChans
}

// Play starts score from its first command, stopping any score already
// playing. Commands up to the first wait run before Play returns.
func (e *Engine) Play(score []byte) {
	defer e.hw.DisableInterrupts()()
	if e.playing.Load() {
		e.stopScore()
	}

	c := cursor{score: score, volume: e.opts.AssumeVolume}
	if h, ok := ParseHeader(score); ok {
		c.start = h.Length
		c.volume = h.Volume()
	}
	c.pos = c.start
	e.cursor = c

	e.playing.Store(true)
	e.step()
}

// Playing reports whether a score is still playing.
func (e *Engine) Playing() bool {
	return e.playing.Load()
}

// Stop ends the current score and silences every channel at once.
func (e *Engine) Stop() {
	defer e.hw.DisableInterrupts()()
	e.stopScore()
}

func (e *Engine) stopScore() {
	for i := 0; i < e.numChans; i++ {
		e.noteOff(i)
	}
	e.endScore()
}

// Delay blocks for ms milliseconds, counted on the master timer. It works
// while a score plays and when the platform's own delay is gone because its
// timer was bound. It returns at once if no channel is bound.
func (e *Engine) Delay(ms uint16) {
	restore := e.hw.DisableInterrupts()
	e.clock.armDelay(ms)
	restore()

	for e.delaying() {
		e.hw.Yield()
	}
}

func (e *Engine) delaying() bool {
	defer e.hw.DisableInterrupts()()
	return e.clock.delayActive
}

// StopChannels disables every timer, leaves every pin low and unbinds all
// channels. Any playing score ends.
func (e *Engine) StopChannels() {
	defer e.hw.DisableInterrupts()()
	e.unbindAll()
	e.endScore()
}

// ChannelNote reports the note channel ch is sounding.
func (e *Engine) ChannelNote(ch int) (uint8, bool) {
	defer e.hw.DisableInterrupts()()
	if ch < 0 || ch >= e.numChans || !e.chans[ch].sounding {
		return 0, false
	}
	return e.chans[ch].note, true
}

// TimerCompare is the compare-match handler for every bound timer. The
// platform calls it with interrupts masked.
func (e *Engine) TimerCompare(t TimerID) {
	idx := e.timerChan[t] - 1
	switch {
	case idx < 0:
		return
	case idx == 0:
		e.masterCompare()
	default:
		e.toggle(idx)
	}
}

func (e *Engine) toggle(idx int) {
	ch := &e.chans[idx]
	if e.hw.TogglePin(ch.pin) && e.opts.RisingEdge != nil {
		e.opts.RisingEdge(ch.timer.ID)
	}
}

// masterCompare runs on every master compare match: it sounds channel 0,
// counts down the score wait and resumes the score when it expires, and
// counts down any delay.
func (e *Engine) masterCompare() {
	c := &e.clock
	if c.sounding {
		e.toggle(0)
	}

	if e.playing.Load() && c.waitTicks > 0 {
		c.waitTicks--
		if c.waitTicks == 0 {
			c.prevFreq2 = c.freq2
			e.step()
			c.rescaleDelay()
		}
	}

	c.tickDelay()
}

func (e *Engine) logf(format string, v ...any) {
	e.log.Output(2, fmt.Sprintf(format, v...))
}

func (e *Engine) warnUnplayable(ch int, note uint8) {
	e.unplayable.Do(func() {
		e.log.Printf("Warning: note %d on channel %d is below the %s timer's range", note, ch, e.chans[ch].timer.Width)
	})
}
