package tune

import (
	"bytes"
	"log"
	"testing"
)

// fakeHW records what the engine asks of the hardware. Interrupts are
// delivered by the test calling TimerCompare directly.
type fakeHW struct {
	clock  uint32
	timers []TimerSpec

	settings map[TimerID]Setting
	resets   map[TimerID]int
	enabled  map[TimerID]bool
	bound    map[TimerID]Pin
	pins     map[Pin]bool
	toggles  map[Pin]int

	masked   bool
	critical int // critical sections entered
	yields   int
	onYield  func()
}

// newFakeHW returns an ATmega328-like platform at 16 MHz.
func newFakeHW() *fakeHW {
	return &fakeHW{
		clock: 16000000,
		timers: []TimerSpec{
			{ID: 2, Width: Width8, ExtendedPrescaler: true},
			{ID: 1, Width: Width16},
			{ID: 0, Width: Width8, Millis: true},
		},
		settings: map[TimerID]Setting{},
		resets:   map[TimerID]int{},
		enabled:  map[TimerID]bool{},
		bound:    map[TimerID]Pin{},
		pins:     map[Pin]bool{},
		toggles:  map[Pin]int{},
	}
}

func (f *fakeHW) ClockHz() uint32      { return f.clock }
func (f *fakeHW) Timers() []TimerSpec { return f.timers }

func (f *fakeHW) BindTimer(t TimerID, p Pin) {
	f.bound[t] = p
	f.pins[p] = false
}

func (f *fakeHW) ConfigureTimer(t TimerID, s Setting, reset bool) {
	f.settings[t] = s
	if reset {
		f.resets[t]++
	}
}

func (f *fakeHW) EnableInterrupt(t TimerID, on bool) { f.enabled[t] = on }
func (f *fakeHW) SetPin(p Pin, high bool)          { f.pins[p] = high }

func (f *fakeHW) TogglePin(p Pin) bool {
	f.pins[p] = !f.pins[p]
	f.toggles[p]++
	return f.pins[p]
}

func (f *fakeHW) DisableInterrupts() func() {
	if f.masked {
		panic("nested critical section")
	}
	f.masked = true
	f.critical++
	return func() { f.masked = false }
}

func (f *fakeHW) Yield() {
	f.yields++
	if f.onYield != nil {
		f.onYield()
	}
}

// interrupt delivers one compare match on t the way an ISR would.
func (f *fakeHW) interrupt(e *Engine, t TimerID) {
	if f.masked {
		panic("interrupt delivered inside critical section")
	}
	f.masked = true
	e.TimerCompare(t)
	f.masked = false
}

// ticks delivers n master compare matches.
func (f *fakeHW) ticks(e *Engine, n int) {
	for i := 0; i < n; i++ {
		f.interrupt(e, f.timers[0].ID)
	}
}

// newTestEngine binds n channels on pins 10, 11, 12, ... and discards log
// output.
func newTestEngine(t *testing.T, n int, opts Options) (*Engine, *fakeHW) {
	t.Helper()
	hw := newFakeHW()
	if opts.Logger == nil {
		opts.Logger = log.New(&bytes.Buffer{}, "", 0)
	}
	e := New(hw, opts)
	for i := 0; i < n; i++ {
		e.InitChannel(Pin(10 + i))
	}
	return e, hw
}

// recorder is a Monitor that keeps every event.
type recorder struct {
	events []string
}

func (r *recorder) NoteOn(ch int, note uint8) {
	r.events = append(r.events, "on", string(rune('0'+ch)), string(rune(note)))
}

func (r *recorder) NoteOff(ch int) {
	r.events = append(r.events, "off", string(rune('0'+ch)))
}
