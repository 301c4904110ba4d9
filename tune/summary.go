package tune

import "time"

// Summary describes a score without playing it.
type Summary struct {
	Header    Header
	HasHeader bool
	Volume    bool // note-on commands carry a volume byte

	Notes      int           // note-on commands
	Channels   int           // highest channel used, plus one
	Percussion int           // note-ons for notes 128 and up
	LowNote    uint8         // lowest pitched note played
	HighNote   uint8         // highest pitched note played
	Duration   time.Duration // sum of waits up to the end or the restart
	Loops      bool          // ends in a restart
	Truncated  bool          // input ended inside a command or without a stop
}

// Analyze walks score once from its first command to a stop, a restart or
// the end of the data. assumeVolume is used when the score has no header.
func Analyze(score []byte, assumeVolume bool) Summary {
	s := Summary{Volume: assumeVolume, LowNote: NumNotes - 1}
	c := cursor{score: score, volume: assumeVolume}
	if h, ok := ParseHeader(score); ok {
		s.Header, s.HasHeader = h, true
		s.Volume = h.Volume()
		c.start = h.Length
		c.volume = s.Volume
	}
	c.pos = c.start

	var ms int64
	for {
		cmd, ok := c.next()
		if !ok {
			s.Truncated = true
			break
		}
		if cmd < 0x80 {
			lo, ok := c.next()
			if !ok {
				s.Truncated = true
				break
			}
			ms += int64(cmd)<<8 | int64(lo)
			continue
		}

		ch := int(cmd&0x0f) + 1
		op := cmd & 0xf0
		if op == cmdStop || op == cmdRestart {
			s.Loops = op == cmdRestart
			break
		}
		if op == cmdPlayNote || op == cmdStopNote {
			if ch > s.Channels {
				s.Channels = ch
			}
		}
		switch op {
		case cmdPlayNote:
			note, ok := c.next()
			if ok && c.volume {
				_, ok = c.next()
			}
			if !ok {
				s.Truncated = true
				break
			}
			s.Notes++
			if note >= NumNotes {
				s.Percussion++
				continue
			}
			if note < s.LowNote {
				s.LowNote = note
			}
			if note > s.HighNote {
				s.HighNote = note
			}
		case cmdInstrument:
			if _, ok := c.next(); !ok {
				s.Truncated = true
			}
		}
		if s.Truncated {
			break
		}
	}

	if s.Notes == s.Percussion {
		s.LowNote, s.HighNote = 0, 0
	}
	s.Duration = time.Duration(ms) * time.Millisecond
	return s
}
