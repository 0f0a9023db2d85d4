package expr

import (
	"fmt"
	"strings"
)

// ============================================================
// Matrix — symbolic matrix
// ============================================================

// Matrix is a rectangular grid of expressions. Plot entry points accept
// column vectors (n×1) as vector-field components.
type Matrix struct {
	rows, cols int
	data       [][]Expr
}

func NewMatrix(rows, cols int) *Matrix {
	data := make([][]Expr, rows)
	for i := range data {
		data[i] = make([]Expr, cols)
		for j := range data[i] {
			data[i][j] = N(0)
		}
	}
	return &Matrix{rows: rows, cols: cols, data: data}
}

func MatrixFromSlice(rows, cols int, entries []Expr) *Matrix {
	if len(entries) != rows*cols {
		panic(fmt.Sprintf("expr: MatrixFromSlice needs %d entries, got %d", rows*cols, len(entries)))
	}
	m := NewMatrix(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.data[i][j] = entries[i*cols+j]
		}
	}
	return m
}

// Vector builds a column vector.
func Vector(entries ...Expr) *Matrix { return MatrixFromSlice(len(entries), 1, entries) }

func (m *Matrix) checkBounds(row, col int) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		panic(fmt.Sprintf("expr: matrix index out of range [%d,%d] for %dx%d", row, col, m.rows, m.cols))
	}
}

func (m *Matrix) Get(row, col int) Expr {
	m.checkBounds(row, col)
	return m.data[row][col]
}
func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

// Elements returns the entries in row-major order.
func (m *Matrix) Elements() []Expr {
	out := make([]Expr, 0, m.rows*m.cols)
	for _, row := range m.data {
		out = append(out, row...)
	}
	return out
}

func (m *Matrix) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("[")
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(m.data[i][j].String())
		}
		sb.WriteString("]")
	}
	sb.WriteString("]")
	return sb.String()
}

func (m *Matrix) LaTeX() string {
	var sb strings.Builder
	sb.WriteString("\\begin{pmatrix}")
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString(" \\\\ ")
		}
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteString(" & ")
			}
			sb.WriteString(m.data[i][j].LaTeX())
		}
	}
	sb.WriteString("\\end{pmatrix}")
	return sb.String()
}
