// Package tone provides the editable parameter grid for a single YM2151 voice
package tone

import (
	"fmt"
	"strings"
)

// Grid dimensions
const (
	NumOperators = 4
	GridRows     = NumOperators + 1
	GridCols     = 12 // 11 display columns plus SM on operator rows
	ChRow        = 4
)

// Operator rows in data order
const (
	RowM1 = iota
	RowM2
	RowC1
	RowC2
)

// OpParam identifies an operator column
type OpParam int

const (
	OpDT OpParam = iota
	OpMUL
	OpTL
	OpKS
	OpAR
	OpD1R
	OpD1L
	OpD2R
	OpRR
	OpDT2
	OpAMS
	OpSM
	numOpParams
)

// ChParam identifies a channel (CH row) column
type ChParam int

const (
	ChALG ChParam = iota
	ChFB
	ChMaskM1
	ChMaskC1
	ChMaskM2
	ChMaskC2
	ChNote
	numChParams
)

var opMax = [numOpParams]uint8{
	OpDT:  7,
	OpMUL: 15,
	OpTL:  99,
	OpKS:  3,
	OpAR:  31,
	OpD1R: 31,
	OpD1L: 15,
	OpD2R: 15,
	OpRR:  15,
	OpDT2: 3,
	OpAMS: 3,
	OpSM:  1,
}

var opNames = [numOpParams]string{
	"DT", "MUL", "TL", "KS", "AR", "D1R", "D1L", "D2R", "RR", "DT2", "AMS", "SM",
}

var chMax = [numChParams]uint8{
	ChALG:    7,
	ChFB:     7,
	ChMaskM1: 1,
	ChMaskC1: 1,
	ChMaskM2: 1,
	ChMaskC2: 1,
	ChNote:   127,
}

var chNames = [numChParams]string{
	"ALG", "FB", "M1", "C1", "M2", "C2", "Note",
}

var rowNames = [GridRows]string{"M1", "M2", "C1", "C2", "CH"}

// maskForRow maps an operator row to its mirror column on the CH row
var maskForRow = [NumOperators]ChParam{
	RowM1: ChMaskM1,
	RowM2: ChMaskM2,
	RowC1: ChMaskC1,
	RowC2: ChMaskC2,
}

// Max returns the maximum value of an operator parameter
func (p OpParam) Max() uint8 {
	if p < 0 || p >= numOpParams {
		return 0
	}
	return opMax[p]
}

// String returns the column label
func (p OpParam) String() string {
	if p < 0 || p >= numOpParams {
		return fmt.Sprintf("OpParam(%d)", int(p))
	}
	return opNames[p]
}

// Max returns the maximum value of a channel parameter
func (p ChParam) Max() uint8 {
	if p < 0 || p >= numChParams {
		return 0
	}
	return chMax[p]
}

// String returns the column label
func (p ChParam) String() string {
	if p < 0 || p >= numChParams {
		return fmt.Sprintf("ChParam(%d)", int(p))
	}
	return chNames[p]
}

// OpParams lists every operator column in grid order
func OpParams() []OpParam {
	params := make([]OpParam, numOpParams)
	for i := range params {
		params[i] = OpParam(i)
	}
	return params
}

// ChParams lists every CH column in grid order
func ChParams() []ChParam {
	params := make([]ChParam, numChParams)
	for i := range params {
		params[i] = ChParam(i)
	}
	return params
}

// ParseOpParam looks up an operator column by label (case-insensitive)
func ParseOpParam(name string) (OpParam, bool) {
	for i, n := range opNames {
		if strings.EqualFold(n, name) {
			return OpParam(i), true
		}
	}
	return 0, false
}

// ParseChParam looks up a CH column by label (case-insensitive)
func ParseChParam(name string) (ChParam, bool) {
	for i, n := range chNames {
		if strings.EqualFold(n, name) {
			return ChParam(i), true
		}
	}
	return 0, false
}

// RowName returns "M1", "M2", "C1", "C2" or "CH"
func RowName(row int) string {
	if row < 0 || row >= GridRows {
		return "?"
	}
	return rowNames[row]
}

// Grid is one tone: four operator rows in data order and the CH row.
// The zero value is a valid, silent tone.
type Grid struct {
	cells [GridRows][GridCols]uint8
}

// New returns an all-zero grid
func New() Grid {
	return Grid{}
}

// Default returns the editor's starting tone: ALG 4 with every operator enabled.
func Default() Grid {
	var g Grid
	g.SetCh(ChALG, 4)
	g.SetCh(ChFB, 0)
	g.SetCh(ChNote, 60)
	for row := 0; row < NumOperators; row++ {
		g.SetOp(row, OpMUL, 1)
		g.SetOp(row, OpAR, 31)
		g.SetOp(row, OpD1R, 5)
		g.SetOp(row, OpD1L, 2)
		g.SetOp(row, OpD2R, 0)
		g.SetOp(row, OpRR, 7)
		g.SetOp(row, OpSM, 1)
	}
	// modulators quieter than carriers
	g.SetOp(RowM1, OpTL, 30)
	g.SetOp(RowC1, OpTL, 30)
	return g
}

// ColMax returns the maximum for a raw (row, col) cell, or 0 for unused cells.
func ColMax(row, col int) uint8 {
	switch {
	case row >= 0 && row < NumOperators && col >= 0 && col < int(numOpParams):
		return opMax[col]
	case row == ChRow && col >= 0 && col < int(numChParams):
		return chMax[col]
	default:
		return 0
	}
}

// Cols returns the number of used columns on a row
func Cols(row int) int {
	switch {
	case row >= 0 && row < NumOperators:
		return int(numOpParams)
	case row == ChRow:
		return int(numChParams)
	default:
		return 0
	}
}

// ColName returns the label of a raw (row, col) cell
func ColName(row, col int) string {
	switch {
	case row >= 0 && row < NumOperators && col >= 0 && col < int(numOpParams):
		return opNames[col]
	case row == ChRow && col >= 0 && col < int(numChParams):
		return chNames[col]
	default:
		return ""
	}
}

// Get returns a raw cell value; out-of-range cells read as 0
func (g Grid) Get(row, col int) uint8 {
	if row < 0 || row >= GridRows || col < 0 || col >= GridCols {
		return 0
	}
	return g.cells[row][col]
}

// Set stores a raw cell value clamped to the column maximum and keeps the SM/mask
// mirrors in sync. It reports whether the cell exists.
func (g *Grid) Set(row, col int, v uint8) bool {
	max := ColMax(row, col)
	if Cols(row) <= col || col < 0 {
		return false
	}
	if v > max {
		v = max
	}
	g.cells[row][col] = v

	switch {
	case row < NumOperators && OpParam(col) == OpSM:
		g.cells[ChRow][maskForRow[row]] = v
	case row == ChRow && col >= int(ChMaskM1) && col <= int(ChMaskC2):
		for r, mask := range maskForRow {
			if int(mask) == col {
				g.cells[r][OpSM] = v
			}
		}
	}
	return true
}

// Op returns an operator parameter for a data row
func (g Grid) Op(row int, p OpParam) uint8 {
	if row < 0 || row >= NumOperators {
		return 0
	}
	return g.Get(row, int(p))
}

// SetOp sets an operator parameter for a data row (clamped)
func (g *Grid) SetOp(row int, p OpParam, v uint8) {
	if row < 0 || row >= NumOperators {
		return
	}
	g.Set(row, int(p), v)
}

// Ch returns a CH row parameter
func (g Grid) Ch(p ChParam) uint8 {
	return g.Get(ChRow, int(p))
}

// SetCh sets a CH row parameter (clamped)
func (g *Grid) SetCh(p ChParam, v uint8) {
	g.Set(ChRow, int(p), v)
}

// Enabled reports the SM flag of a data row
func (g Grid) Enabled(row int) bool {
	return g.Op(row, OpSM) != 0
}

// Increment adds delta to a cell, saturating at zero and the column maximum
func (g *Grid) Increment(row, col, delta int) {
	g.step(row, col, delta)
}

// Decrement subtracts delta from a cell, saturating at zero and the column maximum
func (g *Grid) Decrement(row, col, delta int) {
	g.step(row, col, -delta)
}

func (g *Grid) step(row, col, delta int) {
	v := int(g.Get(row, col)) + delta
	if v < 0 {
		v = 0
	}
	if max := int(ColMax(row, col)); v > max {
		v = max
	}
	g.Set(row, col, uint8(v))
}

// SetMax sets a cell to its column maximum
func (g *Grid) SetMax(row, col int) {
	g.Set(row, col, ColMax(row, col))
}

// SetMin sets a cell to zero
func (g *Grid) SetMin(row, col int) {
	g.Set(row, col, 0)
}

// Validate checks every cell against its maximum and the SM/mask mirrors.
// Grids built through the setters always validate; this guards values assembled
// by other means (e.g. FromRows).
func (g Grid) Validate() error {
	for row := 0; row < GridRows; row++ {
		for col := 0; col < GridCols; col++ {
			v := g.cells[row][col]
			if col >= Cols(row) {
				if v != 0 {
					return fmt.Errorf("unused cell %s[%d] = %d, want 0", RowName(row), col, v)
				}
				continue
			}
			if max := ColMax(row, col); v > max {
				return fmt.Errorf("%s %s = %d exceeds max %d", RowName(row), ColName(row, col), v, max)
			}
		}
	}
	for row, mask := range maskForRow {
		if g.cells[row][OpSM] != g.cells[ChRow][mask] {
			return fmt.Errorf("%s SM = %d but CH %s mask = %d",
				RowName(row), g.cells[row][OpSM], mask, g.cells[ChRow][mask])
		}
	}
	return nil
}

// Rows returns a copy of the raw cells
func (g Grid) Rows() [GridRows][GridCols]uint8 {
	return g.cells
}

// FromRows builds a grid from raw cells through the setters, so out-of-range
// values are clamped. Operator SM values win over the CH mask columns.
func FromRows(rows [GridRows][GridCols]uint8) Grid {
	var g Grid
	for col := 0; col < Cols(ChRow); col++ {
		g.Set(ChRow, col, rows[ChRow][col])
	}
	for row := 0; row < NumOperators; row++ {
		for col := 0; col < Cols(row); col++ {
			g.Set(row, col, rows[row][col])
		}
	}
	return g
}

// String renders the grid as a plain table
func (g Grid) String() string {
	var s strings.Builder
	s.WriteString("    ")
	for _, n := range opNames {
		fmt.Fprintf(&s, "%4s", n)
	}
	s.WriteString("\n")
	for row := 0; row < NumOperators; row++ {
		fmt.Fprintf(&s, "%-4s", rowNames[row])
		for col := 0; col < int(numOpParams); col++ {
			fmt.Fprintf(&s, "%4d", g.cells[row][col])
		}
		s.WriteString("\n")
	}
	s.WriteString("    ")
	for _, n := range chNames {
		fmt.Fprintf(&s, "%5s", n)
	}
	s.WriteString("\nCH  ")
	for col := 0; col < int(numChParams); col++ {
		fmt.Fprintf(&s, "%5d", g.cells[ChRow][col])
	}
	s.WriteString("\n")
	return s.String()
}
