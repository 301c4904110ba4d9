package render

import (
	"math"
	"sync"

	"github.com/user-none/playtune/tune"
)

const (
	lpfCutoffHz = 7000.0
	dcPole      = 0.995
)

// Square turns pin edges into PCM. Each output sample is the summed pin
// level averaged over the machine cycles it covers, so edges between
// sample instants still land in the right sample. The result goes through
// a DC blocker, since the pins idle low, and a first-order RC low-pass like
// a speaker's rolloff.
type Square struct {
	mu sync.Mutex

	clockHz uint64
	rate    uint64
	amp     float64 // output per high pin

	pins  map[tune.Pin]bool
	high  int
	last  uint64  // cycle integrated up to
	index uint64  // sample being accumulated
	acc   float64 // pin-high cycles in the current sample

	out []int16

	raw      bool // skip filtering, for tests
	lpfAlpha float64
	lpf      float64
	dcIn     float64
	dcOut    float64
}

// NewSquare creates a renderer for a machine running at clockHz that
// produces sampleRate samples per second. gain is the peak output with
// every one of channels pins high.
func NewSquare(clockHz uint32, sampleRate int, channels int, gain float64) *Square {
	if channels < 1 {
		channels = 1
	}
	return &Square{
		clockHz:  uint64(clockHz),
		rate:     uint64(sampleRate),
		amp:      gain / float64(channels),
		pins:     make(map[tune.Pin]bool),
		lpfAlpha: 1.0 / (float64(sampleRate)/(2*math.Pi*lpfCutoffHz) + 1),
	}
}

// PinChanged implements sim.EdgeObserver.
func (s *Square) PinChanged(cycle uint64, pin tune.Pin, high bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advance(cycle)
	if s.pins[pin] == high {
		return
	}
	s.pins[pin] = high
	if high {
		s.high++
	} else {
		s.high--
	}
}

// Flush completes every sample that ends at or before cycle and appends
// them to dst.
func (s *Square) Flush(cycle uint64, dst []int16) []int16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advance(cycle)
	dst = append(dst, s.out...)
	s.out = s.out[:0]
	return dst
}

// sampleEnd is the first cycle after sample i.
func (s *Square) sampleEnd(i uint64) uint64 {
	return (i + 1) * s.clockHz / s.rate
}

func (s *Square) advance(to uint64) {
	for s.last < to {
		end := s.sampleEnd(s.index)
		if end > to {
			s.acc += float64(s.high) * float64(to-s.last)
			s.last = to
			return
		}
		s.acc += float64(s.high) * float64(end-s.last)
		s.last = end

		start := s.index * s.clockHz / s.rate
		s.emit(s.acc / float64(end-start) * s.amp)
		s.acc = 0
		s.index++
	}
}

func (s *Square) emit(v float64) {
	if !s.raw {
		dc := v - s.dcIn + dcPole*s.dcOut
		s.dcIn = v
		s.dcOut = dc
		s.lpf = s.lpfAlpha*dc + (1-s.lpfAlpha)*s.lpf
		v = s.lpf
	}
	s.out = append(s.out, clamp16(v))
}

// clamp16 rounds v to the nearest int16, saturating at the range limits.
func clamp16(v float64) int16 {
	v = math.Round(v)
	if v < math.MinInt16 {
		return math.MinInt16
	}
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	return int16(v)
}
