package components

import "fmt"

// Location is a grid coordinate. It is a plain value: comparable with == and
// usable as a map key.
type Location struct {
	Row, Col int
}

// Loc is shorthand for Location{Row: row, Col: col}.
func Loc(row, col int) Location {
	return Location{Row: row, Col: col}
}

// Manhattan returns |dr| + |dc| between two locations.
func (l Location) Manhattan(o Location) int {
	return abs(l.Row-o.Row) + abs(l.Col-o.Col)
}

// String formats the location as "(row,col)".
func (l Location) String() string {
	return fmt.Sprintf("(%d,%d)", l.Row, l.Col)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
