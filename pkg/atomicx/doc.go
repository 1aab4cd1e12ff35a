// Package atomicx provides atomic scalar cells: IntCell (int64), BoolCell and
// FloatCell (float64).
//
// Every operation on a cell is linearizable and sequentially consistent.
// Operations that have no single hardware instruction (multiply, divide,
// float add, flip) run a load/compute/compare-and-swap loop until the swap
// wins, so concurrent callers never lose updates. No operation blocks.
//
// Integer arithmetic wraps on overflow. Float arithmetic follows IEEE-754.
// The only arithmetic failure is ErrDivisionByZero, returned by Div and
// DivAssign when the divisor is zero; the cell is left unchanged.
//
// Example usage:
//
//	c := atomicx.NewInt(10)
//	c.Mul(3)           // returns 10, cell holds 30
//	_, err := c.Div(0) // err == atomicx.ErrDivisionByZero, cell still 30
//	c.Div(5)           // returns 30, cell holds 6
//
// The zero value of each cell is ready to use and holds the type's zero
// value. Cells must not be copied after first use.
package atomicx
