// Package geom holds planar geometric entities whose coordinates are
// symbolic expressions. The geometry series traces their boundaries.
package geom

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/njchilds90/gosymplot/expr"
)

// ErrDegenerate is returned when an entity resolves to an invalid shape,
// such as a circle with a negative radius.
var ErrDegenerate = errors.New("geom: degenerate entity")

// Entity is a 2D shape. Coords lists every coordinate expression so that
// callers can discover free parameters.
type Entity interface {
	Name() string
	String() string
	Coords() []expr.Expr
	// Trace resolves the entity with params and returns its boundary.
	// Curved boundaries are sampled at n points. closed reports whether
	// the boundary encloses a region.
	Trace(params map[string]float64, n int) (xs, ys []float64, closed bool, err error)
}

// FreeSymbols returns the sorted parameter names of e.
func FreeSymbols(e Entity) []string { return expr.SortedSymbols(e.Coords()...) }

// ============================================================
// Point
// ============================================================

type Point struct{ X, Y expr.Expr }

func Pt(x, y expr.Expr) Point { return Point{X: x, Y: y} }

// PtF builds a point from float coordinates.
func PtF(x, y float64) Point { return Point{X: expr.NFloat(x), Y: expr.NFloat(y)} }

func (p Point) Name() string        { return "Point" }
func (p Point) String() string      { return "Point(" + p.X.String() + ", " + p.Y.String() + ")" }
func (p Point) Coords() []expr.Expr { return []expr.Expr{p.X, p.Y} }

func (p Point) Trace(params map[string]float64, _ int) ([]float64, []float64, bool, error) {
	x, y, err := p.resolve(params)
	if err != nil {
		return nil, nil, false, err
	}
	return []float64{x}, []float64{y}, false, nil
}

func (p Point) resolve(params map[string]float64) (float64, float64, error) {
	x, err := eval(p.X, params)
	if err != nil {
		return 0, 0, err
	}
	y, err := eval(p.Y, params)
	return x, y, err
}

// ============================================================
// Segment
// ============================================================

type Segment struct{ P1, P2 Point }

func (s Segment) Name() string { return "Segment" }
func (s Segment) String() string {
	return "Segment(" + s.P1.String() + ", " + s.P2.String() + ")"
}
func (s Segment) Coords() []expr.Expr { return append(s.P1.Coords(), s.P2.Coords()...) }

func (s Segment) Trace(params map[string]float64, _ int) ([]float64, []float64, bool, error) {
	x1, y1, err := s.P1.resolve(params)
	if err != nil {
		return nil, nil, false, err
	}
	x2, y2, err := s.P2.resolve(params)
	if err != nil {
		return nil, nil, false, err
	}
	return []float64{x1, x2}, []float64{y1, y2}, false, nil
}

// ============================================================
// Polygon
// ============================================================

type Polygon struct{ Vertices []Point }

func NewPolygon(vertices ...Point) Polygon { return Polygon{Vertices: vertices} }

func (p Polygon) Name() string { return "Polygon" }
func (p Polygon) String() string {
	parts := make([]string, len(p.Vertices))
	for i, v := range p.Vertices {
		parts[i] = v.String()
	}
	return "Polygon(" + strings.Join(parts, ", ") + ")"
}

func (p Polygon) Coords() []expr.Expr {
	var out []expr.Expr
	for _, v := range p.Vertices {
		out = append(out, v.Coords()...)
	}
	return out
}

// Trace returns the vertices with the first repeated at the end.
func (p Polygon) Trace(params map[string]float64, _ int) ([]float64, []float64, bool, error) {
	if len(p.Vertices) < 3 {
		return nil, nil, false, fmt.Errorf("%w: polygon needs 3 vertices, got %d", ErrDegenerate, len(p.Vertices))
	}
	xs := make([]float64, 0, len(p.Vertices)+1)
	ys := make([]float64, 0, len(p.Vertices)+1)
	for _, v := range p.Vertices {
		x, y, err := v.resolve(params)
		if err != nil {
			return nil, nil, false, err
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	xs = append(xs, xs[0])
	ys = append(ys, ys[0])
	return xs, ys, true, nil
}

// RegularPolygon has Sides vertices on the circle of the given radius
// around Center, the first one at angle Rotation.
type RegularPolygon struct {
	Center   Point
	Radius   expr.Expr
	Sides    int
	Rotation expr.Expr
}

func (r RegularPolygon) Name() string { return "RegularPolygon" }
func (r RegularPolygon) String() string {
	return fmt.Sprintf("RegularPolygon(%s, %s, %d, %s)", r.Center, r.Radius, r.Sides, rotation(r.Rotation))
}

func (r RegularPolygon) Coords() []expr.Expr {
	return append(r.Center.Coords(), r.Radius, rotation(r.Rotation))
}

func (r RegularPolygon) Trace(params map[string]float64, _ int) ([]float64, []float64, bool, error) {
	if r.Sides < 3 {
		return nil, nil, false, fmt.Errorf("%w: regular polygon needs 3 sides, got %d", ErrDegenerate, r.Sides)
	}
	cx, cy, err := r.Center.resolve(params)
	if err != nil {
		return nil, nil, false, err
	}
	rad, err := radius(r.Radius, params)
	if err != nil {
		return nil, nil, false, err
	}
	rot, err := eval(rotation(r.Rotation), params)
	if err != nil {
		return nil, nil, false, err
	}
	xs := make([]float64, r.Sides+1)
	ys := make([]float64, r.Sides+1)
	for i := 0; i <= r.Sides; i++ {
		a := rot + 2*math.Pi*float64(i%r.Sides)/float64(r.Sides)
		xs[i] = cx + rad*math.Cos(a)
		ys[i] = cy + rad*math.Sin(a)
	}
	return xs, ys, true, nil
}

// ============================================================
// Circle / Ellipse
// ============================================================

type Circle struct {
	Center Point
	Radius expr.Expr
}

func (c Circle) Name() string        { return "Circle" }
func (c Circle) String() string      { return "Circle(" + c.Center.String() + ", " + c.Radius.String() + ")" }
func (c Circle) Coords() []expr.Expr { return append(c.Center.Coords(), c.Radius) }

func (c Circle) Trace(params map[string]float64, n int) ([]float64, []float64, bool, error) {
	return Ellipse{Center: c.Center, HRadius: c.Radius, VRadius: c.Radius}.Trace(params, n)
}

type Ellipse struct {
	Center           Point
	HRadius, VRadius expr.Expr
}

func (e Ellipse) Name() string { return "Ellipse" }
func (e Ellipse) String() string {
	return "Ellipse(" + e.Center.String() + ", " + e.HRadius.String() + ", " + e.VRadius.String() + ")"
}
func (e Ellipse) Coords() []expr.Expr { return append(e.Center.Coords(), e.HRadius, e.VRadius) }

// Trace samples n points; the last repeats the first.
func (e Ellipse) Trace(params map[string]float64, n int) ([]float64, []float64, bool, error) {
	if n < 3 {
		n = 3
	}
	cx, cy, err := e.Center.resolve(params)
	if err != nil {
		return nil, nil, false, err
	}
	hr, err := radius(e.HRadius, params)
	if err != nil {
		return nil, nil, false, err
	}
	vr, err := radius(e.VRadius, params)
	if err != nil {
		return nil, nil, false, err
	}
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		t := 2 * math.Pi * float64(i) / float64(n-1)
		if i == n-1 {
			t = 0
		}
		xs[i] = cx + hr*math.Cos(t)
		ys[i] = cy + vr*math.Sin(t)
	}
	return xs, ys, true, nil
}

// ============================================================
// helpers
// ============================================================

func rotation(e expr.Expr) expr.Expr {
	if e == nil {
		return expr.N(0)
	}
	return e
}

func radius(e expr.Expr, params map[string]float64) (float64, error) {
	r, err := eval(e, params)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(r) || r < 0 {
		return 0, fmt.Errorf("%w: radius %s resolves to %g", ErrDegenerate, e, r)
	}
	return r, nil
}

func eval(e expr.Expr, params map[string]float64) (float64, error) {
	return expr.EvalFloat(e, params)
}
