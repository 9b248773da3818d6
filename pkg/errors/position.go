package errors

// Position represents a location in script source. The core never parses
// source itself; positions are attached by the evaluator that drives it.
// Line and Column are 1-based, offsets are 0-based bytes.
type Position struct {
	Line     int
	Column   int
	StartPos int
	EndPos   int // exclusive
}

// IsValid reports whether the position points at a real line.
func (p Position) IsValid() bool {
	return p.Line > 0
}
