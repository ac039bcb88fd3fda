package core

import "fmt"

// RowCol is a block-sized cell in a pit.
// Row 0 is the base line at the start of a round, negative rows extend
// upward. Column 0 is the leftmost column.
type RowCol struct {
	R, C int
}

// RC is shorthand for RowCol{r, c}.
func RC(r, c int) RowCol {
	return RowCol{R: r, C: c}
}

// Add returns the cell offset by dr rows and dc columns.
func (rc RowCol) Add(dr, dc int) RowCol {
	return RowCol{R: rc.R + dr, C: rc.C + dc}
}

// Step returns the neighboring cell in the given direction.
func (rc RowCol) Step(d Dir) RowCol {
	switch d {
	case DirLeft:
		return rc.Add(0, -1)
	case DirRight:
		return rc.Add(0, 1)
	case DirUp:
		return rc.Add(-1, 0)
	case DirDown:
		return rc.Add(1, 0)
	default:
		return rc
	}
}

func (rc RowCol) String() string {
	return fmt.Sprintf("(%d,%d)", rc.R, rc.C)
}

// Dir is a direction for cursor movement and neighbor scans.
type Dir int

const (
	DirNone Dir = iota
	DirLeft
	DirRight
	DirUp
	DirDown
)

// String returns the direction name.
func (d Dir) String() string {
	switch d {
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	default:
		return "none"
	}
}

// axisDirs are scanned in this order by neighbor searches. The order is
// part of the deterministic behavior.
var axisDirs = [4]Dir{DirLeft, DirRight, DirUp, DirDown}
