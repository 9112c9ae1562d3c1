// Package converter provides conversion between YM2151 tone grids, register
// write logs and their hex, JSON and MIDI preview encodings
package converter

import (
	"errors"
	"fmt"
)

// Event is a single register write. Time is informational only.
type Event struct {
	Time uint32
	Addr uint8
	Data uint8
}

// Log is an ordered sequence of register writes
type Log []Event

// String renders the event as "AADD"
func (e Event) String() string {
	return fmt.Sprintf("%02X%02X", e.Addr, e.Data)
}

// Addrs returns the addresses of the log in order
func (l Log) Addrs() []uint8 {
	addrs := make([]uint8, len(l))
	for i, ev := range l {
		addrs[i] = ev.Addr
	}
	return addrs
}

// Lookup returns the data of the last write to addr
func (l Log) Lookup(addr uint8) (uint8, bool) {
	for i := len(l) - 1; i >= 0; i-- {
		if l[i].Addr == addr {
			return l[i].Data, true
		}
	}
	return 0, false
}

// Codec error kinds, matched with errors.Is
var (
	ErrInvalidLength = errors.New("invalid length")
	ErrInvalidHex    = errors.New("invalid hex")
	ErrMalformed     = errors.New("malformed")
)

// CodecError is returned by every parsing function of this package
type CodecError struct {
	Kind   error  // one of ErrInvalidLength, ErrInvalidHex, ErrMalformed
	Detail string // what was wrong and where
	Err    error  // underlying cause, may be nil
}

func (e *CodecError) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the error kind
func (e *CodecError) Is(target error) bool {
	return target == e.Kind
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

func codecErrorf(kind error, cause error, format string, args ...any) *CodecError {
	return &CodecError{Kind: kind, Detail: fmt.Sprintf(format, args...), Err: cause}
}

// KindName returns "InvalidLength", "InvalidHex", "Malformed" or "" for
// errors that did not come from the codec
func KindName(err error) string {
	var ce *CodecError
	if !errors.As(err, &ce) {
		return ""
	}
	switch ce.Kind {
	case ErrInvalidLength:
		return "InvalidLength"
	case ErrInvalidHex:
		return "InvalidHex"
	case ErrMalformed:
		return "Malformed"
	default:
		return ""
	}
}
