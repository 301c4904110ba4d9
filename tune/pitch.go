// Package tune is a polyphonic square-wave score player driven by hardware
// compare-match timers. One timer, the master, also paces score waits and
// blocking delays.
package tune

import "strconv"

// NumNotes is the size of the pitch table. Score note numbers are MIDI note
// numbers; anything at or above NumNotes is a percussion tag.
const NumNotes = 128

// MiddleC is the note used to prime the master timer at bind time.
const MiddleC = 60

// doubledFrequencies holds each note's frequency times two, rounded.
// Generated by round(2*440/32 * 2^((n-9)/12)).
var doubledFrequencies = [NumNotes]uint16{
	16, 17, 18, 19, 21, 22, 23, 24, 26, 28, 29, 31, 33, 35, 37, 39, 41,
	44, 46, 49, 52, 55, 58, 62, 65, 69, 73, 78, 82, 87, 92, 98, 104, 110,
	117, 123, 131, 139, 147, 156, 165, 175, 185, 196, 208, 220, 233,
	247, 262, 277, 294, 311, 330, 349, 370, 392, 415, 440, 466, 494,
	523, 554, 587, 622, 659, 698, 740, 784, 831, 880, 932, 988, 1047,
	1109, 1175, 1245, 1319, 1397, 1480, 1568, 1661, 1760, 1865, 1976,
	2093, 2217, 2349, 2489, 2637, 2794, 2960, 3136, 3322, 3520, 3729,
	3951, 4186, 4435, 4699, 4978, 5274, 5588, 5920, 6272, 6645, 7040,
	7459, 7902, 8372, 8870, 9397, 9956, 10548, 11175, 11840, 12544,
	13290, 14080, 14917, 15804, 16744, 17740, 18795, 19912, 21096,
	22351, 23680, 25088,
}

// DoubledFrequency returns twice the frequency in Hz of note. A square wave
// needs two pin transitions per cycle, so this is the toggle rate.
// note must be below NumNotes.
func DoubledFrequency(note uint8) uint16 {
	return doubledFrequencies[note]
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName returns the scientific pitch name of a note, such as "C4" for
// MiddleC. Percussion tags are named "P" and their number.
func NoteName(note uint8) string {
	if note >= NumNotes {
		return "P" + strconv.Itoa(int(note))
	}
	return noteNames[note%12] + strconv.Itoa(int(note)/12-1)
}
