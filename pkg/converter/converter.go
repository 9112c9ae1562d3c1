package converter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/james-see/ym2151tone/pkg/tone"
)

// Format represents a tone file format
type Format string

const (
	FormatHex     Format = "hex"
	FormatJSON    Format = "json" // register log
	FormatTone    Format = "tone" // tone template file
	FormatMIDI    Format = "midi" // preview, output only
	FormatUnknown Format = "unknown"
)

// DefaultDescription names tones written without a description
const DefaultDescription = "YM2151 tone"

// DetectFormat detects the format of a file based on extension.
// Plain ".json" may hold either a register log or a tone file; Decode
// sorts that out from content.
func DetectFormat(filename string) Format {
	lower := strings.ToLower(filename)
	if strings.HasSuffix(lower, ".tone.json") {
		return FormatTone
	}
	switch filepath.Ext(lower) {
	case ".hex", ".reg", ".txt":
		return FormatHex
	case ".json":
		return FormatJSON
	case ".mid", ".midi":
		return FormatMIDI
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) < 4 {
		return FormatUnknown
	}

	if string(trimmed[:4]) == "MThd" {
		return FormatMIDI
	}

	if trimmed[0] == '{' {
		switch {
		case bytes.Contains(trimmed, []byte(`"variations"`)):
			return FormatTone
		case bytes.Contains(trimmed, []byte(`"events"`)):
			return FormatJSON
		default:
			return FormatUnknown
		}
	}

	for _, c := range trimmed {
		if !isHexDigit(c) {
			return FormatUnknown
		}
	}
	return FormatHex
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// Decode reads any input format into a grid. Tone files yield their first
// variation.
func Decode(data []byte, format Format) (tone.Grid, error) {
	if format == FormatJSON || format == FormatUnknown {
		if detected := DetectFormatFromContent(data); detected != FormatUnknown {
			format = detected
		}
	}

	switch format {
	case FormatHex:
		return HexToGrid(string(bytes.TrimSpace(data)))
	case FormatJSON:
		return JSONToGrid(data)
	case FormatTone:
		tf, err := ParseToneFile(data)
		if err != nil {
			return tone.Grid{}, err
		}
		return tf.Grid(0)
	case FormatMIDI:
		return tone.Grid{}, errors.New("MIDI is an output-only format")
	default:
		return tone.Grid{}, errors.New("cannot determine input format")
	}
}

// Encode writes a grid in the given output format
func Encode(g tone.Grid, format Format, description string) ([]byte, error) {
	switch format {
	case FormatHex:
		return []byte(GridToHex(g) + "\n"), nil
	case FormatJSON:
		return GridToJSON(g)
	case FormatTone:
		if description == "" {
			description = DefaultDescription
		}
		return NewToneFile(description, g).Marshal()
	case FormatMIDI:
		return GenerateMIDI(g)
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// ConvertFile converts a file from one format to another
func ConvertFile(inputPath, outputPath string) error {
	outputFormat := DetectFormat(outputPath)
	if outputFormat == FormatUnknown {
		return errors.New("cannot determine output format from filename")
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	g, err := Decode(data, DetectFormat(inputPath))
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	description := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputData, err := Encode(g, outputFormat, description)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	return nil
}

// GetSupportedConversions returns a list of supported conversion paths
func GetSupportedConversions() []string {
	return []string{
		"hex -> json",
		"hex -> tone",
		"hex -> midi",
		"json -> hex",
		"json -> tone",
		"json -> midi",
		"tone -> hex",
		"tone -> json",
		"tone -> midi",
	}
}
