package series

// Kind tags the closed set of series variants.
type Kind int

const (
	Line2D Kind = iota
	Parametric2D
	Parametric3D
	Surface
	Contour
	ParametricSurface
	Implicit2D
	Vector2D
	Vector3D
	ComplexLine
	ComplexDomainColoring
	ComplexPoints
	Geometry
)

var kindNames = [...]string{
	Line2D:                "line2d",
	Parametric2D:          "parametric2d",
	Parametric3D:          "parametric3d",
	Surface:               "surface",
	Contour:               "contour",
	ParametricSurface:     "parametric_surface",
	Implicit2D:            "implicit2d",
	Vector2D:              "vector2d",
	Vector3D:              "vector3d",
	ComplexLine:           "complex_line",
	ComplexDomainColoring: "domain_coloring",
	ComplexPoints:         "complex_points",
	Geometry:              "geometry",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind is the inverse of String.
func ParseKind(s string) (Kind, bool) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// AllKinds lists every variant in declaration order.
func AllKinds() []Kind {
	out := make([]Kind, len(kindNames))
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Arity is the number of expressions and ranges a variant takes. nexpr is
// -1 when any positive count is allowed; geometry takes an entity instead
// of expressions.
func (k Kind) Arity() (nexpr, nranges int) {
	switch k {
	case Line2D:
		return 1, 1
	case Parametric2D:
		return 2, 1
	case Parametric3D:
		return 3, 1
	case Surface, Contour, Implicit2D:
		return 1, 2
	case ParametricSurface:
		return 3, 2
	case Vector2D:
		return 2, 2
	case Vector3D:
		return 3, 3
	case ComplexLine, ComplexDomainColoring:
		return 1, 1
	case ComplexPoints:
		return -1, 0
	case Geometry:
		return 0, 0
	}
	return 0, 0
}

// Is3D reports whether the variant needs a 3D canvas by itself.
// Domain coloring becomes 3D only with the threed flag (see Series.Is3D).
func (k Kind) Is3D() bool {
	switch k {
	case Parametric3D, Surface, ParametricSurface, Vector3D:
		return true
	}
	return false
}

func (k Kind) IsParametric() bool {
	switch k {
	case Parametric2D, Parametric3D, ParametricSurface:
		return true
	}
	return false
}

func (k Kind) IsComplex() bool {
	switch k {
	case ComplexLine, ComplexDomainColoring, ComplexPoints:
		return true
	}
	return false
}

func (k Kind) isLine() bool {
	switch k {
	case Line2D, Parametric2D, Parametric3D, ComplexLine:
		return true
	}
	return false
}

func (k Kind) isGrid() bool {
	switch k {
	case Surface, Contour, ParametricSurface, Implicit2D, Vector2D, Vector3D, ComplexDomainColoring:
		return true
	}
	return false
}

// commonKeys are understood by every variant.
var commonKeys = []string{"n", "n1", "n2", "n3", "label", "rendering_kw", "params"}

var kindKeys = map[Kind][]string{
	Line2D:                {"adaptive", "depth", "xscale", "is_point", "line_kw", "line_color"},
	Parametric2D:          {"adaptive", "depth", "use_cm", "is_point", "line_kw"},
	Parametric3D:          {"adaptive", "depth", "use_cm", "is_point", "line_kw"},
	Surface:               {"adaptive", "depth", "use_cm", "surface_kw", "surface_color"},
	Contour:               {"adaptive", "depth", "contour_kw"},
	ParametricSurface:     {"use_cm", "surface_kw", "surface_color"},
	Implicit2D:            {"adaptive", "depth", "contour_kw"},
	Vector2D:              {"streamlines", "scalar", "scale", "quiver_kw", "stream_kw", "contour_kw"},
	Vector3D:              {"streamlines", "scale", "quiver_kw", "stream_kw"},
	ComplexLine:           {"absarg", "line_kw", "is_point"},
	ComplexDomainColoring: {"phaseres", "threed", "contour_kw", "surface_kw", "coloring"},
	ComplexPoints:         {"is_point", "line_kw"},
	Geometry:              {"is_filled", "fill_kw", "line_kw"},
}

// KnownKeys lists the keyword names meaningful for k, used for
// misspelling suggestions.
func KnownKeys(k Kind) []string {
	return append(append([]string(nil), commonKeys...), kindKeys[k]...)
}
