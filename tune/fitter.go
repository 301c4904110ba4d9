package tune

// Prescaler ratio tables, smallest first. A smaller ratio gives finer
// timing, so the first one that fits wins.
var (
	ratios8         = []uint16{1, 8, 64, 256, 1024}
	ratios8Extended = []uint16{1, 8, 32, 64, 128, 256, 1024}
	ratios10        = []uint16{1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024, 2048, 4096, 8192, 16384}
	ratios16        = []uint16{1, 64}
)

// Largest programmable compare value per width class.
const (
	maxCompare8  = 0xff
	maxCompare16 = 0xffff
)

// Ratios returns the prescaler ratios spec's timer can use, smallest first.
func Ratios(spec TimerSpec) []uint16 {
	switch spec.Width {
	case Width16:
		return ratios16
	case Width10:
		return ratios10
	default:
		if spec.ExtendedPrescaler {
			return ratios8Extended
		}
		return ratios8
	}
}

// MaxCompare returns the largest compare value Fit returns for w.
func MaxCompare(w Width) uint16 {
	if w == Width16 {
		return maxCompare16
	}
	return maxCompare8
}

// MinNote returns the lowest note an 8-bit timer can reach at clockHz even
// at ck/1024. Other widths reach every note.
func MinNote(w Width, clockHz uint32) uint8 {
	if w != Width8 {
		return 0
	}
	if clockHz <= 8000000 {
		return 12
	}
	return 24
}

// Fit finds the prescaler and compare value that make spec's timer fire
// freq2 times per second at clockHz. It reports false when freq2 is below
// the timer's playable floor.
//
// A count that overflows even the largest ratio saturates at the class
// maximum instead of failing.
func Fit(freq2 uint16, spec TimerSpec, clockHz uint32) (Setting, bool) {
	if freq2 == 0 {
		return Setting{}, false
	}
	if floor := MinNote(spec.Width, clockHz); freq2 < doubledFrequencies[floor] {
		return Setting{}, false
	}

	ticks := clockHz / uint32(freq2)
	limit := uint32(MaxCompare(spec.Width))
	table := Ratios(spec)

	var ratio uint16
	var compare uint32
	for _, ratio = range table {
		compare = 0
		if q := ticks / uint32(ratio); q > 0 {
			compare = q - 1
		}
		if spec.Width == Width10 {
			compare = halfTop(compare)
		}
		if compare <= limit {
			break
		}
	}
	if compare > limit {
		compare = limit
	}
	return Setting{Prescaler: ratio, Compare: uint16(compare)}, true
}

// halfTop converts a compare count into the top value a 10-bit timer needs.
// These counters fire at roughly twice the programmed top, so the value
// written is half the count plus one. The offset is a per-silicon
// calibration, not a derived constant.
func halfTop(count uint32) uint32 {
	return count/2 + 1
}
