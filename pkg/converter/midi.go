package converter

import (
	"bytes"
	"fmt"
	"os"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/james-see/ym2151tone/pkg/tone"
)

// MIDI preview defaults
const (
	ticksPerQuarter = 480
	previewTempo    = 120.0
	previewVelocity = 100
)

// GenerateMIDI creates a one-note preview file for a tone: a text meta event
// carrying the register string, then the tone's Note held for one beat.
// Register state cannot travel in standard MIDI, so the text event lets tools
// that know this format recover the tone.
func GenerateMIDI(g tone.Grid) ([]byte, error) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var track smf.Track

	track.Add(0, smf.MetaText(GridToHex(g)))
	track.Add(0, smf.MetaTempo(previewTempo))

	note := g.Ch(tone.ChNote)
	track.Add(0, midi.NoteOn(Channel, note, previewVelocity))
	track.Add(ticksPerQuarter, midi.NoteOff(Channel, note))
	track.Close(0)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteMIDIFile writes the preview file for a tone
func WriteMIDIFile(g tone.Grid, filename string) error {
	data, err := GenerateMIDI(g)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
