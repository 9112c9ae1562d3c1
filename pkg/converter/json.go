package converter

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/james-see/ym2151tone/pkg/tone"
)

// LogJSON is the JSON register log: {"event_count": n, "events": [...]}
type LogJSON struct {
	EventCount int         `json:"event_count"`
	Events     []EventJSON `json:"events"`
}

// EventJSON is one entry of LogJSON; addr and data are "0xHH"
type EventJSON struct {
	Time uint32 `json:"time"`
	Addr string `json:"addr"`
	Data string `json:"data"`
}

// pointer fields tell a missing key apart from a zero value
type logJSONIn struct {
	EventCount *int           `json:"event_count"`
	Events     *[]eventJSONIn `json:"events"`
}

type eventJSONIn struct {
	Time *uint32 `json:"time"`
	Addr *string `json:"addr"`
	Data *string `json:"data"`
}

// ToLogJSON builds the JSON structure for a log
func ToLogJSON(log Log) LogJSON {
	out := LogJSON{
		EventCount: len(log),
		Events:     make([]EventJSON, len(log)),
	}
	for i, ev := range log {
		out.Events[i] = EventJSON{
			Time: ev.Time,
			Addr: fmt.Sprintf("0x%02X", ev.Addr),
			Data: fmt.Sprintf("0x%02X", ev.Data),
		}
	}
	return out
}

// EventsToJSON encodes a log as indented JSON
func EventsToJSON(log Log) ([]byte, error) {
	return json.MarshalIndent(ToLogJSON(log), "", "  ")
}

// JSONToEvents decodes the JSON register log. Any schema mismatch is
// reported as ErrMalformed. "time" may be omitted and reads as 0.
func JSONToEvents(data []byte) (Log, error) {
	var in logJSONIn
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, codecErrorf(ErrMalformed, err, "invalid register log JSON")
	}
	if in.EventCount == nil {
		return nil, codecErrorf(ErrMalformed, nil, "missing event_count")
	}
	if in.Events == nil {
		return nil, codecErrorf(ErrMalformed, nil, "missing events")
	}

	events := *in.Events
	if *in.EventCount != len(events) {
		return nil, codecErrorf(ErrMalformed, nil, "event_count %d does not match %d events", *in.EventCount, len(events))
	}

	log := make(Log, 0, len(events))
	for i, ev := range events {
		if ev.Addr == nil || ev.Data == nil {
			return nil, codecErrorf(ErrMalformed, nil, "event %d: missing addr or data", i)
		}
		addr, err := parsePrefixedHex(*ev.Addr)
		if err != nil {
			return nil, codecErrorf(ErrMalformed, err, "event %d: addr", i)
		}
		value, err := parsePrefixedHex(*ev.Data)
		if err != nil {
			return nil, codecErrorf(ErrMalformed, err, "event %d: data", i)
		}
		var t uint32
		if ev.Time != nil {
			t = *ev.Time
		}
		log = append(log, Event{Time: t, Addr: addr, Data: value})
	}
	return log, nil
}

// parsePrefixedHex accepts exactly "0xHH" (either case)
func parsePrefixedHex(s string) (uint8, error) {
	if len(s) != 4 || !strings.HasPrefix(strings.ToLower(s), "0x") {
		return 0, fmt.Errorf("%q is not 0xHH", s)
	}
	v, err := strconv.ParseUint(s[2:], 16, 8)
	if err != nil {
		return 0, fmt.Errorf("%q is not 0xHH", s)
	}
	return uint8(v), nil
}

// GridToJSON encodes a grid straight to the JSON register log
func GridToJSON(g tone.Grid) ([]byte, error) {
	return EventsToJSON(ToRegisterEvents(g))
}

// JSONToGrid decodes a JSON register log into a grid
func JSONToGrid(data []byte) (tone.Grid, error) {
	log, err := JSONToEvents(data)
	if err != nil {
		return tone.Grid{}, err
	}
	return EventsToGrid(log), nil
}

// ParseJSONFile reads a JSON register log file
func ParseJSONFile(filename string) (Log, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read json file: %w", err)
	}
	return JSONToEvents(data)
}

// WriteJSONFile writes a JSON register log file
func WriteJSONFile(log Log, filename string) error {
	data, err := EventsToJSON(log)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
