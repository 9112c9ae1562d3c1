package converter

import (
	"github.com/goccy/go-json"

	"github.com/james-see/ym2151tone/pkg/tone"
)

// ToneFile is the tone template interchange format: a named tone with one or
// more note variations, each carrying its register string.
type ToneFile struct {
	Description string      `json:"description"`
	Variations  []Variation `json:"variations"`
}

// Variation is one entry of ToneFile
type Variation struct {
	Description string `json:"description"`
	NoteNumber  uint8  `json:"note_number"`
	Registers   string `json:"registers"`
}

type toneFileIn struct {
	Description *string        `json:"description"`
	Variations  *[]variationIn `json:"variations"`
}

type variationIn struct {
	Description *string `json:"description"`
	NoteNumber  *int    `json:"note_number"`
	Registers   *string `json:"registers"`
}

// NewToneFile wraps a grid in a single-variation tone file
func NewToneFile(description string, g tone.Grid) *ToneFile {
	return &ToneFile{
		Description: description,
		Variations: []Variation{{
			Description: description,
			NoteNumber:  g.Ch(tone.ChNote),
			Registers:   GridToHex(g),
		}},
	}
}

// ParseToneFile decodes and validates a tone file. Every failure is
// ErrMalformed; a bad register string also keeps its hex error kind.
func ParseToneFile(data []byte) (*ToneFile, error) {
	var in toneFileIn
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, codecErrorf(ErrMalformed, err, "invalid tone file JSON")
	}
	if in.Description == nil {
		return nil, codecErrorf(ErrMalformed, nil, "missing description")
	}
	if in.Variations == nil || len(*in.Variations) == 0 {
		return nil, codecErrorf(ErrMalformed, nil, "no variations")
	}

	tf := &ToneFile{
		Description: *in.Description,
		Variations:  make([]Variation, 0, len(*in.Variations)),
	}
	for i, v := range *in.Variations {
		if v.Registers == nil {
			return nil, codecErrorf(ErrMalformed, nil, "variation %d: missing registers", i)
		}
		if v.NoteNumber == nil || *v.NoteNumber < 0 || *v.NoteNumber > 127 {
			return nil, codecErrorf(ErrMalformed, nil, "variation %d: note_number must be 0..127", i)
		}
		if _, err := HexToEvents(*v.Registers); err != nil {
			return nil, codecErrorf(ErrMalformed, err, "variation %d: registers", i)
		}

		variation := Variation{
			NoteNumber: uint8(*v.NoteNumber),
			Registers:  *v.Registers,
		}
		if v.Description != nil {
			variation.Description = *v.Description
		}
		tf.Variations = append(tf.Variations, variation)
	}
	return tf, nil
}

// Marshal encodes the tone file as indented JSON
func (tf *ToneFile) Marshal() ([]byte, error) {
	return json.MarshalIndent(tf, "", "  ")
}

// Grid decodes variation i; the variation's note_number sets the Note column
func (tf *ToneFile) Grid(i int) (tone.Grid, error) {
	if i < 0 || i >= len(tf.Variations) {
		return tone.Grid{}, codecErrorf(ErrMalformed, nil, "variation %d of %d", i, len(tf.Variations))
	}
	return tf.Variations[i].Grid()
}

// Grid decodes the variation's registers and applies its note number
func (v Variation) Grid() (tone.Grid, error) {
	g, err := HexToGrid(v.Registers)
	if err != nil {
		return tone.Grid{}, err
	}
	g.SetCh(tone.ChNote, v.NoteNumber)
	return g, nil
}
