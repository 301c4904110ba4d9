package render

import (
	"sync"

	"github.com/user-none/go-chip-sn76489"
	"github.com/user-none/playtune/tune"
)

const (
	// PSGClockHz is the SN76489 input clock used for the mirror.
	PSGClockHz = 3579545

	// PSGChannels is the number of tone generators the chip has.
	PSGChannels = 3

	psgBufferSize = 4096
	psgGain       = 4096.0
	maxToneReg    = 0x3ff
	volumeOff     = 0x0f
)

// PSG mirrors the first three engine channels onto an SN76489's tone
// generators. It is a tune.Monitor: note changes are written to the chip
// when they happen, and the chip is run up to the current machine cycle
// first so every change lands at the right sample.
type PSG struct {
	mu sync.Mutex

	chip    *sn76489.SN76489
	scale   float64
	clockHz uint64 // machine clock
	now     func() uint64
	last    uint64 // machine cycle the chip has run to
}

// NewPSG creates a mirror for a machine running at clockHz. now reports the
// machine's current cycle. gain is the peak output of one tone generator.
func NewPSG(clockHz uint32, sampleRate int, gain float64, now func() uint64) *PSG {
	chip := sn76489.New(PSGClockHz, sampleRate, psgBufferSize, sn76489.Sega)
	chip.SetGain(psgGain)
	for ch := 0; ch < 4; ch++ {
		chip.Write(0x90 | byte(ch)<<5 | volumeOff)
	}
	return &PSG{
		chip:    chip,
		scale:   gain / psgGain,
		clockHz: uint64(clockHz),
		now:     now,
	}
}

// NoteOn implements tune.Monitor.
func (p *PSG) NoteOn(ch int, note uint8) {
	if ch >= PSGChannels {
		return
	}
	n := ToneReg(tune.DoubledFrequency(note))
	p.mu.Lock()
	defer p.mu.Unlock()
	p.catchUp(p.now())
	p.chip.Write(0x80 | byte(ch)<<5 | byte(n&0x0f))
	p.chip.Write(byte(n>>4) & 0x3f)
	p.chip.Write(0x90 | byte(ch)<<5)
}

// NoteOff implements tune.Monitor.
func (p *PSG) NoteOff(ch int) {
	if ch >= PSGChannels {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.catchUp(p.now())
	p.chip.Write(0x90 | byte(ch)<<5 | volumeOff)
}

// Flush runs the chip up to machine cycle and appends its output to dst.
func (p *PSG) Flush(cycle uint64, dst []int16) []int16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.catchUp(cycle)
	buf, n := p.chip.GetBuffer()
	for i := 0; i < n; i++ {
		dst = append(dst, clamp16(float64(buf[i])*p.scale))
	}
	p.chip.ResetBuffer()
	return dst
}

// Volume returns the attenuation of tone generator ch, 15 being silent.
func (p *PSG) Volume(ch int) uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return uint8(p.chip.GetVolume(ch))
}

func (p *PSG) catchUp(cycle uint64) {
	if cycle <= p.last {
		return
	}
	from := p.last * PSGClockHz / p.clockHz
	to := cycle * PSGClockHz / p.clockHz
	p.last = cycle
	if to > from {
		p.chip.Run(int(to - from))
	}
}

// ToneReg returns the 10-bit SN76489 period register value that produces a
// square wave of freq2/2 Hz, saturating for notes below the chip's range.
func ToneReg(freq2 uint16) uint16 {
	if freq2 == 0 {
		return maxToneReg
	}
	f := uint32(freq2)
	n := (PSGClockHz + 8*f) / (16 * f)
	switch {
	case n < 1:
		return 1
	case n > maxToneReg:
		return maxToneReg
	}
	return uint16(n)
}
