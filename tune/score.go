package tune

// Score command opcodes. A byte below 0x80 starts a two-byte wait.
const (
	cmdStopNote   = 0x80 // 8t: stop the note on channel t
	cmdPlayNote   = 0x90 // 9t nn [vv]: play note nn on channel t
	cmdInstrument = 0xc0 // Ct ii: instrument change, skipped
	cmdRestart    = 0xe0 // restart from the first command
	cmdStop       = 0xf0 // end of score
)

// Header flag bits in byte 3 of a score header.
const (
	FlagVolume     = 0x80 // a volume byte follows every note number
	FlagInstrument = 0x40 // instrument change commands are present
	FlagPercussion = 0x20 // percussion notes (128 and up) are present
)

// HeaderSize is the length of the header layout this package reads.
const HeaderSize = 6

// Header is the optional block at the start of a score.
type Header struct {
	Length   int // bytes to skip before the first command
	Flags1   uint8
	Flags2   uint8
	Channels int // channels the score was compiled for
}

// Volume reports whether note-on commands carry a volume byte.
func (h Header) Volume() bool { return h.Flags1&FlagVolume != 0 }

// Instruments reports whether the score contains instrument changes.
func (h Header) Instruments() bool { return h.Flags1&FlagInstrument != 0 }

// Percussion reports whether the score contains percussion notes.
func (h Header) Percussion() bool { return h.Flags1&FlagPercussion != 0 }

// ParseHeader reads the optional score header. It reports false, and the
// score is treated as headerless, when the magic is missing or the declared
// length does not fit.
func ParseHeader(score []byte) (Header, bool) {
	if len(score) < HeaderSize || score[0] != 'P' || score[1] != 't' {
		return Header{}, false
	}
	length := int(score[2])
	if length < HeaderSize || length > len(score) {
		return Header{}, false
	}
	return Header{
		Length:   length,
		Flags1:   score[3],
		Flags2:   score[4],
		Channels: int(score[5]),
	}, true
}

// cursor is the interpreter's position in the current score.
type cursor struct {
	score  []byte
	start  int // first command, after any header
	pos    int
	volume bool // note-on commands carry a volume byte
}

func (c *cursor) next() (byte, bool) {
	if c.pos >= len(c.score) {
		return 0, false
	}
	b := c.score[c.pos]
	c.pos++
	return b, true
}

// step runs score commands until a wait or the end of the score. It is
// called once from Play and then from the master interrupt each time a
// wait expires. The caller holds the critical section.
func (e *Engine) step() {
	c := &e.cursor
	restarted := false
	for {
		cmd, ok := c.next()
		if !ok {
			e.endScore()
			return
		}

		if cmd < 0x80 {
			lo, ok := c.next()
			if !ok {
				e.endScore()
				return
			}
			ms := uint16(cmd)<<8 | uint16(lo)
			e.clock.armWait(ms)
			if e.opts.Debug {
				e.logf("wait %d, cnt %d", ms, e.clock.waitTicks)
			}
			return
		}

		opcode := cmd & 0xf0
		ch := int(cmd & 0x0f)
		switch opcode {
		case cmdStopNote:
			e.noteOff(ch)
		case cmdPlayNote:
			note, ok := c.next()
			if !ok {
				e.endScore()
				return
			}
			if c.volume {
				if _, ok := c.next(); !ok {
					e.endScore()
					return
				}
			}
			e.noteOn(ch, note)
		case cmdInstrument:
			if _, ok := c.next(); !ok {
				e.endScore()
				return
			}
		case cmdRestart:
			// A loop with no wait in it would never hand control back.
			if restarted {
				e.endScore()
				return
			}
			restarted = true
			c.pos = c.start
		case cmdStop:
			e.endScore()
			return
		default:
			// 0xA_, 0xB_ and 0xD_ have no meaning; skip the byte.
			if e.opts.Debug {
				e.logf("skip opcode %#02x at %d", cmd, c.pos-1)
			}
		}
	}
}

// endScore marks the score finished. Notes still sounding are left to the
// score's own note-off commands.
func (e *Engine) endScore() {
	e.clock.waitTicks = 0
	e.playing.Store(false)
}
