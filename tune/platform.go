package tune

// TimerID names a hardware timer (the number in its register names).
type TimerID uint8

// Pin is a digital output line.
type Pin uint8

// Width is the counter class of a timer. It selects the prescaler ratio
// table and the largest compare value the fitter may return.
type Width uint8

const (
	Width8  Width = iota // 8-bit counter
	Width10              // 10-bit counter run as an 8-bit equivalent
	Width16              // 16-bit counter
)

// String returns a short label for the width class.
func (w Width) String() string {
	switch w {
	case Width8:
		return "8-bit"
	case Width10:
		return "10-bit"
	case Width16:
		return "16-bit"
	default:
		return "unknown"
	}
}

// TimerSpec describes one timer a platform can lend to a channel.
type TimerSpec struct {
	ID    TimerID
	Width Width

	// ExtendedPrescaler is set on 8-bit timers that also offer ck/32 and
	// ck/128.
	ExtendedPrescaler bool

	// Millis is set on the timer the platform's millisecond clock runs on.
	// Binding it stops millis() and delay() working.
	Millis bool
}

// Setting is a prescaler ratio and the compare value to program.
type Setting struct {
	Prescaler uint16
	Compare   uint16
}

// Platform is the hardware capability set the engine needs. Each target
// supplies an adapter; the engine never touches registers itself.
//
// All timers run in clear-on-compare mode. The adapter's compare-match
// handler for every bound timer must call Engine.TimerCompare.
type Platform interface {
	// ClockHz is the frequency of the clock feeding the prescalers.
	ClockHz() uint32

	// Timers lists the timers available for channels in allocation order.
	// The first entry becomes the master timer.
	Timers() []TimerSpec

	// BindTimer puts t in compare mode at ck/1 and configures p as an
	// output driven low.
	BindTimer(t TimerID, p Pin)

	// ConfigureTimer programs t with s. When reset is true the counter is
	// cleared in the same step, atomically with respect to t's interrupt.
	ConfigureTimer(t TimerID, s Setting, reset bool)

	// EnableInterrupt turns t's compare-match interrupt on or off.
	EnableInterrupt(t TimerID, on bool)

	// SetPin drives p to the given level.
	SetPin(p Pin, high bool)

	// TogglePin inverts p and returns the new level.
	TogglePin(p Pin) bool

	// DisableInterrupts masks the compare handlers and returns the function
	// that unmasks them. Critical sections do not nest.
	DisableInterrupts() (restore func())

	// Yield is called between polls of a blocking delay. Hardware adapters
	// leave it empty; simulators use it to advance time.
	Yield()
}
