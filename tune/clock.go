package tune

import "math"

// masterClock is the state of the timer that is always running. Its compare
// interrupt fires freq2 times per second whether or not it is sounding, so
// tick counts are derived from freq2.
type masterClock struct {
	freq2     uint16 // last doubled frequency programmed, sounding or not
	prevFreq2 uint16 // freq2 before the interpreter last resumed
	sounding  bool

	waitTicks   uint32 // 0 when no score wait is outstanding
	delayTicks  uint32 // valid only while delayActive
	delayActive bool
}

// ticksFor converts a millisecond duration into compare interrupts at freq2,
// rounded to the nearest tick.
func ticksFor(freq2 uint16, ms uint16) uint32 {
	return (uint32(freq2)*uint32(ms) + 500) / 1000
}

// armWait starts a score wait. A zero count would never expire, so the
// minimum is one tick.
func (c *masterClock) armWait(ms uint16) {
	c.waitTicks = ticksFor(c.freq2, ms)
	if c.waitTicks == 0 {
		c.waitTicks = 1
	}
}

// armDelay starts a blocking delay. A delay that rounds to zero ticks is
// already over.
func (c *masterClock) armDelay(ms uint16) {
	c.delayTicks = ticksFor(c.freq2, ms)
	c.delayActive = c.delayTicks != 0
}

// rescale converts a remaining tick count measured at prev into the same
// duration measured at cur, truncated. The product is formed in 64 bits,
// where the largest count times the largest freq2 cannot overflow.
func rescale(count uint32, cur, prev uint16) uint32 {
	if prev == 0 || cur == 0 {
		return count
	}
	r := uint64(count) * uint64(cur) / uint64(prev)
	if r > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(r)
}

// rescaleDelay adjusts an active delay after freq2 changed.
func (c *masterClock) rescaleDelay() {
	if c.delayActive && c.prevFreq2 != c.freq2 {
		c.delayTicks = rescale(c.delayTicks, c.freq2, c.prevFreq2)
	}
}

// tickDelay counts one interrupt off an active delay.
func (c *masterClock) tickDelay() {
	if !c.delayActive {
		return
	}
	if c.delayTicks > 0 {
		c.delayTicks--
	}
	if c.delayTicks == 0 {
		c.delayActive = false
	}
}
