// Package sim provides a cycle-counting simulation of a microcontroller's
// compare-mode timers and output pins. It implements tune.Platform so an
// engine can play scores without hardware, and reports every pin edge at
// the exact cycle it happens.
package sim

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/user-none/playtune/board"
	"github.com/user-none/playtune/tune"
)

// EdgeObserver is told about every pin level change. It runs with the
// machine's register lock held and must not call back into the machine.
type EdgeObserver interface {
	PinChanged(cycle uint64, pin tune.Pin, high bool)
}

// yieldQuantum is how far Yield advances an unpaced machine.
const yieldQuantum = 100 * time.Microsecond

type timer struct {
	spec    tune.TimerSpec
	bound   bool
	pin     tune.Pin
	setting tune.Setting
	enabled bool

	ratio  uint64
	ticks  uint64 // counter ticks from zero to the compare match
	period uint64 // ratio * ticks, in cycles
	zero   uint64 // cycle at which the counter last read zero
	next   uint64 // cycle of the next compare match
}

// Machine is a simulated board. Time only moves when Step, RunUntil or
// Yield is called.
type Machine struct {
	clockHz uint32
	specs   []tune.TimerSpec

	// irq is held while a compare handler runs and by DisableInterrupts.
	irq sync.Mutex

	// mu guards registers, pins and the cycle counter.
	mu        sync.Mutex
	cycle     uint64
	timers    [256]*timer
	pins      [256]bool
	observers []EdgeObserver
	wraps     int

	handler func(tune.TimerID)
	paced   atomic.Bool
}

// New creates a machine with b's timers running at clockHz. A zero clockHz
// uses the board's default.
func New(b board.Board, clockHz uint32) *Machine {
	if clockHz == 0 {
		clockHz = b.ClockHz
	}
	m := &Machine{
		clockHz: clockHz,
		specs:   b.Timers,
	}
	for _, spec := range b.Timers {
		m.timers[spec.ID] = &timer{spec: spec}
	}
	return m
}

// SetHandler installs the compare-match handler, normally an engine's
// TimerCompare.
func (m *Machine) SetHandler(h func(tune.TimerID)) {
	m.irq.Lock()
	m.handler = h
	m.irq.Unlock()
}

// Observe registers o for pin edges.
func (m *Machine) Observe(o EdgeObserver) {
	m.mu.Lock()
	m.observers = append(m.observers, o)
	m.mu.Unlock()
}

// SetPaced tells Yield whether another goroutine is advancing time. A paced
// machine sleeps in Yield; an unpaced one advances itself.
func (m *Machine) SetPaced(on bool) {
	m.paced.Store(on)
}

// Now returns the current cycle.
func (m *Machine) Now() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cycle
}

// Elapsed returns the simulated time since the machine was created.
func (m *Machine) Elapsed() time.Duration {
	return m.CyclesToDuration(m.Now())
}

// CyclesToDuration converts a cycle count at the machine's clock to time.
func (m *Machine) CyclesToDuration(cycles uint64) time.Duration {
	sec := cycles / uint64(m.clockHz)
	rem := cycles % uint64(m.clockHz)
	return time.Duration(sec)*time.Second + time.Duration(rem*uint64(time.Second)/uint64(m.clockHz))
}

// DurationToCycles converts time to a cycle count at the machine's clock.
func (m *Machine) DurationToCycles(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	sec := uint64(d / time.Second)
	rem := uint64(d % time.Second)
	return sec*uint64(m.clockHz) + rem*uint64(m.clockHz)/uint64(time.Second)
}

// Pin returns p's current level.
func (m *Machine) Pin(p tune.Pin) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pins[p]
}

// TimerState returns t's programmed setting and whether its interrupt is
// enabled.
func (m *Machine) TimerState(t tune.TimerID) (tune.Setting, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tm := m.timers[t]
	if tm == nil {
		return tune.Setting{}, false
	}
	return tm.setting, tm.enabled
}

// Wraps returns how many compare writes landed below the running counter,
// making it count through its full range before the next match.
func (m *Machine) Wraps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wraps
}

// Step advances the machine by cycles, dispatching every compare match on
// the way.
func (m *Machine) Step(cycles uint64) {
	m.RunUntil(m.Now() + cycles)
}

// RunUntil advances the machine to cycle target, dispatching compare
// matches in time order. Matches on the same cycle fire in timer
// allocation order.
func (m *Machine) RunUntil(target uint64) {
	for {
		m.irq.Lock()
		m.mu.Lock()
		t := m.nextMatch(target)
		if t == nil {
			if target > m.cycle {
				m.cycle = target
			}
			m.mu.Unlock()
			m.irq.Unlock()
			return
		}
		m.cycle = t.next
		t.zero = t.next
		t.next += t.period
		id := t.spec.ID
		m.mu.Unlock()

		if m.handler != nil {
			m.handler(id)
		}
		m.irq.Unlock()
	}
}

func (m *Machine) nextMatch(target uint64) *timer {
	var best *timer
	for _, spec := range m.specs {
		t := m.timers[spec.ID]
		if !t.enabled || t.period == 0 || t.next > target {
			continue
		}
		if best == nil || t.next < best.next {
			best = t
		}
	}
	return best
}

// ClockHz implements tune.Platform.
func (m *Machine) ClockHz() uint32 {
	return m.clockHz
}

// Timers implements tune.Platform.
func (m *Machine) Timers() []tune.TimerSpec {
	return m.specs
}

// BindTimer implements tune.Platform.
func (m *Machine) BindTimer(id tune.TimerID, p tune.Pin) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.timers[id]
	if t == nil {
		return
	}
	t.bound = true
	t.pin = p
	t.enabled = false
	m.program(t, tune.Setting{Prescaler: 1}, true)
	m.setPin(p, false)
}

// ConfigureTimer implements tune.Platform.
func (m *Machine) ConfigureTimer(id tune.TimerID, s tune.Setting, reset bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t := m.timers[id]; t != nil {
		m.program(t, s, reset)
	}
}

// program loads a new setting. Without reset the counter keeps its value,
// and if it is already past the new compare value it runs up to the top of
// its range and wraps before matching.
func (m *Machine) program(t *timer, s tune.Setting, reset bool) {
	count := uint64(0)
	if !reset && t.ratio != 0 {
		count = m.counter(t)
	}

	t.setting = s
	t.ratio = uint64(s.Prescaler)
	if t.ratio == 0 {
		t.ratio = 1
	}
	t.ticks = matchTicks(t.spec.Width, s.Compare)
	t.period = t.ratio * t.ticks

	if count < t.ticks {
		t.zero = m.cycle - count*t.ratio
	} else {
		m.wraps++
		top := counterTop(t.spec.Width)
		if count > top {
			count = top
		}
		t.zero = m.cycle + (top+1-count)*t.ratio
	}
	t.next = t.zero + t.period
}

// counter returns the timer's current count.
func (m *Machine) counter(t *timer) uint64 {
	if m.cycle < t.zero {
		// Still climbing towards the wrap.
		return counterTop(t.spec.Width) - (t.zero-m.cycle-1)/t.ratio
	}
	return (m.cycle - t.zero) / t.ratio % t.ticks
}

// matchTicks is the number of counter ticks between compare matches.
// 10-bit timers run at roughly twice the programmed top.
func matchTicks(w tune.Width, compare uint16) uint64 {
	if w == tune.Width10 {
		if compare == 0 {
			return 1
		}
		return 2*(uint64(compare)-1) + 1
	}
	return uint64(compare) + 1
}

func counterTop(w tune.Width) uint64 {
	switch w {
	case tune.Width16:
		return 0xffff
	case tune.Width10:
		return 0x3ff
	default:
		return 0xff
	}
}

// EnableInterrupt implements tune.Platform. The counter keeps running while
// the interrupt is off, so re-enabling resumes the existing phase.
func (m *Machine) EnableInterrupt(id tune.TimerID, on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.timers[id]
	if t == nil || t.enabled == on {
		return
	}
	t.enabled = on
	if on && t.period != 0 && t.next <= m.cycle {
		k := (m.cycle-t.next)/t.period + 1
		t.next += k * t.period
		t.zero = t.next - t.period
	}
}

// SetPin implements tune.Platform.
func (m *Machine) SetPin(p tune.Pin, high bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setPin(p, high)
}

// TogglePin implements tune.Platform.
func (m *Machine) TogglePin(p tune.Pin) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	high := !m.pins[p]
	m.setPin(p, high)
	return high
}

func (m *Machine) setPin(p tune.Pin, high bool) {
	if m.pins[p] == high {
		return
	}
	m.pins[p] = high
	for _, o := range m.observers {
		o.PinChanged(m.cycle, p, high)
	}
}

// DisableInterrupts implements tune.Platform. No compare handler runs until
// the returned function is called.
func (m *Machine) DisableInterrupts() func() {
	m.irq.Lock()
	return m.irq.Unlock
}

// Yield implements tune.Platform.
func (m *Machine) Yield() {
	if m.paced.Load() {
		time.Sleep(time.Millisecond)
		return
	}
	m.Step(m.DurationToCycles(yieldQuantum))
}
