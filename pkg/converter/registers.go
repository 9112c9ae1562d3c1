package converter

import (
	"github.com/james-see/ym2151tone/pkg/pitch"
	"github.com/james-see/ym2151tone/pkg/tone"
)

// Channel is the only YM2151 channel this editor drives
const Channel = 0

// YM2151 register addresses (channel and slot offsets are added on top)
const (
	RegKeyOn       = 0x08
	RegConnect     = 0x20 // RL, FB, CON
	RegKeyCode     = 0x28
	RegKeyFraction = 0x30
	RegDTMUL       = 0x40
	RegTL          = 0x60
	RegKSAR        = 0x80
	RegAMSD1R      = 0xA0
	RegDT2D2R      = 0xC0
	RegD1LRR       = 0xE0
)

// Operator register blocks are 32 bytes: slot*8 + channel
const (
	slotStride   = 8
	operatorMask = 0xE0
)

// EventsPerTone is the length of every log produced by ToRegisterEvents
const EventsPerTone = tone.NumOperators*len(operatorBases) + 4

var operatorBases = [...]uint8{RegDTMUL, RegTL, RegKSAR, RegAMSD1R, RegDT2D2R, RegD1LRR}

// The key-on register enables operators in hardware order M1, C1, M2, C2
// (bits 3..6), which differs from the data row order M1, M2, C1, C2.
var keyOnBitForRow = [tone.NumOperators]uint8{
	tone.RowM1: 3,
	tone.RowM2: 5,
	tone.RowC1: 4,
	tone.RowC2: 6,
}

var rowForKeyOnBit = [tone.NumOperators]int{
	0: tone.RowM1, // bit 3
	1: tone.RowC1, // bit 4
	2: tone.RowM2, // bit 5
	3: tone.RowC2, // bit 6
}

const (
	keyOnFirstBit    = 3
	keyOnChannelMask = 0x07
	connectOutputs   = 0xC0 // both stereo outputs on
)

// KeyOnValue packs the per-row enable flags (data order) for the key-on register
func KeyOnValue(enabled [tone.NumOperators]bool, ch uint8) uint8 {
	v := ch & keyOnChannelMask
	for row, on := range enabled {
		if on {
			v |= 1 << keyOnBitForRow[row]
		}
	}
	return v
}

// DecodeKeyOn unpacks a key-on register value into per-row flags (data order)
// and the channel
func DecodeKeyOn(v uint8) (enabled [tone.NumOperators]bool, ch uint8) {
	for i, row := range rowForKeyOnBit {
		enabled[row] = v&(1<<(keyOnFirstBit+i)) != 0
	}
	return enabled, v & keyOnChannelMask
}

// operatorAddr returns the register for a data row; slot == data row.
func operatorAddr(base uint8, row int) uint8 {
	return base + uint8(row)*slotStride + Channel
}

// ToRegisterEvents encodes a grid as exactly EventsPerTone register writes:
// six per operator (slot 0..3), then connect, key code, key fraction and key on.
func ToRegisterEvents(g tone.Grid) Log {
	log := make(Log, 0, EventsPerTone)

	for row := 0; row < tone.NumOperators; row++ {
		for _, base := range operatorBases {
			log = append(log, Event{
				Addr: operatorAddr(base, row),
				Data: packOperator(g, row, base),
			})
		}
	}

	alg := g.Ch(tone.ChALG) & 0x07
	fb := g.Ch(tone.ChFB) & 0x07
	log = append(log, Event{Addr: RegConnect + Channel, Data: connectOutputs | fb<<3 | alg})

	kc, kf := pitch.MIDIToKCKF(g.Ch(tone.ChNote))
	log = append(log, Event{Addr: RegKeyCode + Channel, Data: kc})
	log = append(log, Event{Addr: RegKeyFraction + Channel, Data: kf})

	var enabled [tone.NumOperators]bool
	for row := range enabled {
		enabled[row] = g.Enabled(row)
	}
	log = append(log, Event{Addr: RegKeyOn, Data: KeyOnValue(enabled, Channel)})

	return log
}

func packOperator(g tone.Grid, row int, base uint8) uint8 {
	op := func(p tone.OpParam) uint8 { return g.Op(row, p) }

	switch base {
	case RegDTMUL:
		return (op(tone.OpDT)&0x07)<<4 | op(tone.OpMUL)&0x0F
	case RegTL:
		return op(tone.OpTL) & 0x7F
	case RegKSAR:
		return (op(tone.OpKS)&0x03)<<6 | op(tone.OpAR)&0x1F
	case RegAMSD1R:
		return (op(tone.OpAMS)&0x03)<<6 | op(tone.OpD1R)&0x1F
	case RegDT2D2R:
		return (op(tone.OpDT2)&0x03)<<6 | op(tone.OpD2R)&0x0F
	case RegD1LRR:
		return (op(tone.OpD1L)&0x0F)<<4 | op(tone.OpRR)&0x0F
	default:
		return 0
	}
}

// EventsToGrid decodes a register log into a grid, starting from the zero
// grid. Later writes to an address win. Writes to unknown registers or to
// other channels are ignored. The key code goes through the approximate
// pitch.KCToMIDINote; key fraction is not representable on the grid.
func EventsToGrid(log Log) tone.Grid {
	var g tone.Grid
	for _, ev := range log {
		applyEvent(&g, ev)
	}
	return g
}

func applyEvent(g *tone.Grid, ev Event) {
	addr, data := ev.Addr, ev.Data

	switch {
	case addr == RegKeyOn:
		enabled, ch := DecodeKeyOn(data)
		if ch != Channel {
			return
		}
		for row, on := range enabled {
			g.SetOp(row, tone.OpSM, boolValue(on))
		}
	case addr == RegConnect+Channel:
		g.SetCh(tone.ChFB, data>>3&0x07)
		g.SetCh(tone.ChALG, data&0x07)
	case addr == RegKeyCode+Channel:
		g.SetCh(tone.ChNote, pitch.KCToMIDINote(data))
	case addr >= RegDTMUL:
		base := addr & operatorMask
		offset := addr - base
		if offset%slotStride != Channel {
			return
		}
		unpackOperator(g, int(offset/slotStride), base, data)
	}
}

func unpackOperator(g *tone.Grid, row int, base, data uint8) {
	switch base {
	case RegDTMUL:
		g.SetOp(row, tone.OpDT, data>>4&0x07)
		g.SetOp(row, tone.OpMUL, data&0x0F)
	case RegTL:
		// 7-bit field, the grid clamps to its display maximum
		g.SetOp(row, tone.OpTL, data&0x7F)
	case RegKSAR:
		g.SetOp(row, tone.OpKS, data>>6)
		g.SetOp(row, tone.OpAR, data&0x1F)
	case RegAMSD1R:
		g.SetOp(row, tone.OpAMS, data>>6)
		g.SetOp(row, tone.OpD1R, data&0x1F)
	case RegDT2D2R:
		g.SetOp(row, tone.OpDT2, data>>6)
		g.SetOp(row, tone.OpD2R, data&0x0F)
	case RegD1LRR:
		g.SetOp(row, tone.OpD1L, data>>4)
		g.SetOp(row, tone.OpRR, data&0x0F)
	}
}

func boolValue(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
