// Package theory maps frequencies to the nearest 12-TET note name with a
// cent offset, so just-intonation ratios can be read against familiar names.
package theory

import (
	"fmt"
	"math"
)

// C4Frequency anchors note naming in equal temperament.
const C4Frequency = 261.63556

var noteNames = [12]string{
	"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B",
}

// Note is the nearest 12-TET note to some frequency.
type Note struct {
	Name       string
	Octave     int
	CentOffset float64
}

// NoteFromFrequency returns the nearest equal-tempered note to hz and the
// signed cent offset from it.
func NoteFromFrequency(hz float64) Note {
	ratioLog2 := math.Log2(hz / C4Frequency)
	centsFromC4 := ratioLog2 * 1200
	halfSteps := math.Round(ratioLog2 * 12)

	index := int(halfSteps) % 12
	if index < 0 {
		index += 12
	}

	return Note{
		Name:       noteNames[index],
		Octave:     4 + int(math.Floor(halfSteps/12)),
		CentOffset: centsFromC4 - halfSteps*100,
	}
}

// String formats the note as e.g. "A4 (+2c)" or "C4" when the offset rounds
// to zero.
func (n Note) String() string {
	cents := math.Round(n.CentOffset)
	if cents == 0 {
		return fmt.Sprintf("%s%d", n.Name, n.Octave)
	}
	sign := "+"
	if cents < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%d (%s%.0fc)", n.Name, n.Octave, sign, math.Abs(cents))
}
