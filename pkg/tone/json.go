package tone

import (
	"fmt"

	"github.com/goccy/go-json"
)

// gridJSON is the wire form of a Grid: operators in data order keyed by column label
type gridJSON struct {
	Operators []map[string]int `json:"operators"`
	CH        map[string]int   `json:"ch"`
}

// MarshalJSON encodes the grid as {"operators":[{"DT":..},...],"ch":{"ALG":..}}
func (g Grid) MarshalJSON() ([]byte, error) {
	out := gridJSON{
		Operators: make([]map[string]int, NumOperators),
		CH:        make(map[string]int, numChParams),
	}
	for row := 0; row < NumOperators; row++ {
		op := make(map[string]int, numOpParams)
		for _, p := range OpParams() {
			op[p.String()] = int(g.Op(row, p))
		}
		out.Operators[row] = op
	}
	for _, p := range ChParams() {
		out.CH[p.String()] = int(g.Ch(p))
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the wire form. Unknown labels and out-of-range values are
// rejected; missing labels read as zero. Operator SM values win over CH masks.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var in gridJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if len(in.Operators) != NumOperators {
		return fmt.Errorf("operators: got %d rows, want %d", len(in.Operators), NumOperators)
	}

	var out Grid
	for name, v := range in.CH {
		p, ok := ParseChParam(name)
		if !ok {
			return fmt.Errorf("ch: unknown parameter %q", name)
		}
		if v < 0 || v > int(p.Max()) {
			return fmt.Errorf("ch %s = %d out of range 0..%d", p, v, p.Max())
		}
		out.SetCh(p, uint8(v))
	}
	for row, op := range in.Operators {
		for name, v := range op {
			p, ok := ParseOpParam(name)
			if !ok {
				return fmt.Errorf("operator %s: unknown parameter %q", RowName(row), name)
			}
			if v < 0 || v > int(p.Max()) {
				return fmt.Errorf("operator %s %s = %d out of range 0..%d", RowName(row), p, v, p.Max())
			}
			out.SetOp(row, p, uint8(v))
		}
		// a row without SM is disabled, whatever the CH masks said
		if _, ok := op[OpSM.String()]; !ok {
			out.SetOp(row, OpSM, 0)
		}
	}
	*g = out
	return nil
}
