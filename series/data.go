package series

// Data is the numeric output of one evaluation. Exactly the payload
// matching Kind is set; callers treat it as read-only.
type Data struct {
	Kind  Kind
	Label string

	// Line2D, Parametric2D/3D, ComplexLine, ComplexPoints, Geometry.
	Curve *Curve
	// Surface, Contour, Implicit2D raster, domain coloring with threed.
	Grid *Grid
	// ParametricSurface.
	Mesh *Mesh
	// Implicit2D in adaptive mode.
	Rects []Rect
	// Vector2D without streamlines.
	Field2D *Field2D
	// Vector3D without streamlines.
	Field3D *Field3D
	// Vector2D/3D with streamlines.
	Streams []Curve
	// ComplexDomainColoring.
	Image *Image

	// Geometry outline flags.
	Closed bool
	Filled bool
}

// Curve is an ordered polyline. Z is nil for 2D curves. Param carries
// the sampling parameter of parametric curves, the argument in absarg
// mode and the speed along streamlines; it is nil otherwise.
type Curve struct {
	X, Y, Z []float64
	Param   []float64
}

// Len is the number of points.
func (c *Curve) Len() int { return len(c.X) }

// Grid is a scalar field over the ticks Xs and Ys. Z[i][j] is the value
// at (Xs[i], Ys[j]).
type Grid struct {
	Xs, Ys []float64
	Z      [][]float64
	// Equality marks an implicit equation: contour Z at level 0.
	Equality bool
}

// Shape returns (len(Xs), len(Ys)).
func (g *Grid) Shape() (int, int) { return len(g.Xs), len(g.Ys) }

// Mesh is a parametric surface; X[i][j] is the point at (U[i], V[j]).
type Mesh struct {
	U, V    []float64
	X, Y, Z [][]float64
}

// Rect is an axis-aligned cell of an implicit region.
type Rect struct {
	X0, X1, Y0, Y1 float64
}

// Field2D holds the components of a planar field over a grid. U[i][j]
// and V[i][j] are taken at (Xs[i], Ys[j]).
type Field2D struct {
	Xs, Ys    []float64
	U, V, Mag [][]float64
	Scale     float64
}

// Field3D holds a spatial field as flattened point lists.
type Field3D struct {
	X, Y, Z []float64
	U, V, W []float64
	Shape   [3]int
	Scale   float64
}

// Image is a domain coloring over the complex rectangle Xs x Ys (real
// and imaginary ticks). RGB[j][i] is the pixel at (Xs[i], Ys[j]) so rows
// run along the imaginary axis.
type Image struct {
	Xs, Ys   []float64
	Mag, Arg [][]float64
	RGB      [][][3]uint8
	PhaseRes int
}
