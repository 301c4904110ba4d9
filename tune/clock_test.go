package tune

import (
	"math/big"
	"testing"
)

func TestTicksFor(t *testing.T) {
	tests := []struct {
		freq2 uint16
		ms    uint16
		want  uint32
	}{
		{523, 2000, 1046},
		{523, 240, 126},
		{880, 1000, 880},
		{880, 1, 1},
		{16, 1, 0},
		{25088, 32767, 822058},
	}
	for _, tt := range tests {
		if got := ticksFor(tt.freq2, tt.ms); got != tt.want {
			t.Errorf("ticksFor(%d, %d): got %d, want %d", tt.freq2, tt.ms, got, tt.want)
		}
	}
}

func TestArmWait_ZeroClampsToOne(t *testing.T) {
	c := masterClock{freq2: 523}
	c.armWait(0)
	if c.waitTicks != 1 {
		t.Errorf("waitTicks: got %d, want 1", c.waitTicks)
	}

	// Rounds to zero at a low frequency too.
	c = masterClock{freq2: 16}
	c.armWait(1)
	if c.waitTicks != 1 {
		t.Errorf("waitTicks at freq2 16: got %d, want 1", c.waitTicks)
	}
}

func TestArmDelay_ZeroIsDone(t *testing.T) {
	c := masterClock{freq2: 523}
	c.armDelay(0)
	if c.delayActive {
		t.Error("a zero delay should not be active")
	}
	c.armDelay(10)
	if !c.delayActive || c.delayTicks != 5 {
		t.Errorf("armDelay(10): active=%v ticks=%d, want true 5", c.delayActive, c.delayTicks)
	}
}

func TestTickDelay(t *testing.T) {
	c := masterClock{freq2: 1000}
	c.armDelay(3)
	for i := 0; i < 2; i++ {
		c.tickDelay()
		if !c.delayActive {
			t.Fatalf("delay finished after %d ticks, want 3", i+1)
		}
	}
	c.tickDelay()
	if c.delayActive {
		t.Error("delay still active after 3 ticks")
	}
	// Ticks with no delay armed are ignored.
	c.tickDelay()
	if c.delayActive || c.delayTicks != 0 {
		t.Error("tickDelay changed an idle clock")
	}
}

// exactRescale is count*cur/prev in unbounded precision.
func exactRescale(count uint32, cur, prev uint16) *big.Rat {
	return new(big.Rat).SetFrac(
		new(big.Int).Mul(big.NewInt(int64(count)), big.NewInt(int64(cur))),
		big.NewInt(int64(prev)),
	)
}

func TestRescale_WithinOneTick(t *testing.T) {
	freqs := []uint16{16, 33, 262, 523, 880, 2093, 8372, 12544, 16384, 20000, 21096, 23680, 25088}
	counts := []uint32{1, 7, 100, 1046, 5000, 65535, 131071, 250000, 822058}
	for _, count := range counts {
		for _, prev := range freqs {
			for _, cur := range freqs {
				checkRescale(t, count, cur, prev)
			}
		}
	}
}

func TestRescale_LargeOperands(t *testing.T) {
	tests := []struct {
		count     uint32
		cur, prev uint16
		want      uint32
	}{
		// Longest possible delay at the top note.
		{822058, 20000, 25088, 655339},
		{250000, 23680, 21096, 280621},
		{822058, 25088, 16, 1288986944},
	}
	for _, tt := range tests {
		if got := rescale(tt.count, tt.cur, tt.prev); got != tt.want {
			t.Errorf("rescale(%d, %d, %d): got %d, want %d", tt.count, tt.cur, tt.prev, got, tt.want)
		}
		checkRescale(t, tt.count, tt.cur, tt.prev)
	}
}

// checkRescale fails unless rescale is below the exact quotient by less
// than one tick.
func checkRescale(t *testing.T, count uint32, cur, prev uint16) {
	t.Helper()
	exact := exactRescale(count, cur, prev)
	got := new(big.Rat).SetInt64(int64(rescale(count, cur, prev)))
	diff := new(big.Rat).Sub(exact, got)
	if diff.Sign() < 0 || diff.Cmp(big.NewRat(1, 1)) >= 0 {
		t.Errorf("rescale(%d, %d, %d) = %s, exact %s", count, cur, prev,
			got.FloatString(0), exact.FloatString(3))
	}
}

func TestRescale_SameFrequency(t *testing.T) {
	if got := rescale(1234, 523, 523); got != 1234 {
		t.Errorf("got %d, want 1234", got)
	}
	if got := rescale(1234, 523, 0); got != 1234 {
		t.Errorf("zero previous frequency: got %d, want 1234", got)
	}
}
