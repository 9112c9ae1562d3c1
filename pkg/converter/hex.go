package converter

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/james-see/ym2151tone/pkg/tone"
)

// hexUnit is the width of one "AADD" event in the register string
const hexUnit = 4

// EventsToHex concatenates one upper-case "AADD" unit per event
func EventsToHex(log Log) string {
	var s strings.Builder
	s.Grow(len(log) * hexUnit)
	for _, ev := range log {
		fmt.Fprintf(&s, "%02X%02X", ev.Addr, ev.Data)
	}
	return s.String()
}

// HexToEvents parses a register string. Input is case-insensitive; any
// character outside the "AADD" units, whitespace included, is an error.
func HexToEvents(s string) (Log, error) {
	if len(s)%hexUnit != 0 {
		return nil, codecErrorf(ErrInvalidLength, nil, "length %d is not a multiple of %d", len(s), hexUnit)
	}

	log := make(Log, 0, len(s)/hexUnit)
	for i := 0; i < len(s); i += hexUnit {
		addr, err := parseHexByte(s, i)
		if err != nil {
			return nil, err
		}
		data, err := parseHexByte(s, i+2)
		if err != nil {
			return nil, err
		}
		log = append(log, Event{Addr: addr, Data: data})
	}
	return log, nil
}

func parseHexByte(s string, offset int) (uint8, error) {
	chunk := s[offset : offset+2]
	v, err := strconv.ParseUint(chunk, 16, 8)
	if err != nil {
		return 0, codecErrorf(ErrInvalidHex, nil, "%q at offset %d", chunk, offset)
	}
	return uint8(v), nil
}

// GridToHex encodes a grid straight to its register string
func GridToHex(g tone.Grid) string {
	return EventsToHex(ToRegisterEvents(g))
}

// HexToGrid decodes a register string into a grid
func HexToGrid(s string) (tone.Grid, error) {
	log, err := HexToEvents(s)
	if err != nil {
		return tone.Grid{}, err
	}
	return EventsToGrid(log), nil
}

// ParseHexFile reads a register string file
func ParseHexFile(filename string) (Log, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read hex file: %w", err)
	}
	return HexToEvents(strings.TrimSpace(string(data)))
}

// WriteHexFile writes a register string followed by a newline
func WriteHexFile(log Log, filename string) error {
	return os.WriteFile(filename, []byte(EventsToHex(log)+"\n"), 0644)
}
