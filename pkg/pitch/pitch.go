// Package pitch converts between MIDI note numbers and YM2151 Key Code / Key Fraction
package pitch

import (
	"gitlab.com/gomidi/midi/v2"
)

// noteCodes holds the YM2151 note-within-octave codes starting at C#.
// Codes 3, 7, 11 and 15 are never produced.
var noteCodes = [12]uint8{0x0, 0x1, 0x2, 0x4, 0x5, 0x6, 0x8, 0x9, 0xA, 0xC, 0xD, 0xE}

const (
	// calibration between MIDI numbering and the chip's C# based octave
	noteOffset = 1
	maxOctave  = 7

	// KF is a 6-bit fraction stored in bits 7-2, 64 steps per semitone
	kfSteps = 64
	kfShift = 2
)

// Lossless roundtrip range for MIDIToKCKF followed by KCToMIDINote.
// Outside it the octave clamps to 0 or 7.
const (
	MinExactNote = 13
	MaxExactNote = 108
)

// MIDIToKCKF converts a MIDI note number to Key Code and Key Fraction.
// KF is always 0 for integer notes. Out-of-range notes clamp.
func MIDIToKCKF(note uint8) (kc, kf uint8) {
	adjusted := int(note) - noteOffset
	if adjusted < 0 {
		adjusted = 0
	}
	if adjusted > 127 {
		adjusted = 127
	}

	octave := adjusted/12 - 1
	if octave < 0 {
		octave = 0
	}
	if octave > maxOctave {
		octave = maxOctave
	}

	kc = uint8(octave)<<4 | noteCodes[adjusted%12]
	return kc, 0
}

// MIDIToKCKFCents converts a note plus a cent offset. Offsets outside
// 0..99 borrow from or carry into neighbouring semitones first.
func MIDIToKCKFCents(note uint8, cents int) (kc, kf uint8) {
	n := int(note)
	for cents < 0 {
		cents += 100
		n--
	}
	n += cents / 100
	cents %= 100

	if n < 0 {
		n, cents = 0, 0
	}
	if n > 127 {
		n, cents = 127, 0
	}

	kc, _ = MIDIToKCKF(uint8(n))
	kf = uint8(cents*kfSteps/100) << kfShift
	return kc, kf
}

// KCToMIDINote approximates the MIDI note for a Key Code. It is not a true
// inverse: notes below MinExactNote or above MaxExactNote share a clamped
// octave with other notes, and the unused note codes 3/7/11/15 resolve to the
// nearest lower code.
func KCToMIDINote(kc uint8) uint8 {
	octave := int(kc>>4) & 0x07
	code := kc & 0x0F

	index := 0
	for i, c := range noteCodes {
		if c <= code {
			index = i
		}
	}

	n := (octave+1)*12 + index + noteOffset
	if n > 127 {
		n = 127
	}
	return uint8(n)
}

// IsExact reports whether a note survives MIDIToKCKF -> KCToMIDINote unchanged
func IsExact(note uint8) bool {
	return note >= MinExactNote && note <= MaxExactNote
}

// NoteName renders a MIDI note number, e.g. "C5" for 60
func NoteName(note uint8) string {
	return midi.Note(note & 0x7F).String()
}
