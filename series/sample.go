package series

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/sgostarter/i/l"
)

// Adaptive refinement bisects every interval down to minDepth, then keeps
// bisecting while the two chords around the midpoint turn by more than
// angleThreshold degrees, or while exactly one end is NaN, up to the
// series depth.
const (
	minDepth       = 6
	defaultDepth   = 12
	angleThreshold = 10.0
)

var cosThreshold = math.Cos(angleThreshold * math.Pi / 180)

func linspace(a, b float64, n int) []float64 {
	if n < 2 {
		return []float64{a}
	}
	out := make([]float64, n)
	step := (b - a) / float64(n-1)
	for i := range out {
		out[i] = a + step*float64(i)
	}
	out[n-1] = b
	return out
}

// geomspace returns n values geometrically spaced from a to b; a and b
// must be positive.
func geomspace(a, b float64, n int) []float64 {
	out := linspace(math.Log10(a), math.Log10(b), n)
	for i, v := range out {
		out[i] = math.Pow(10, v)
	}
	out[0], out[len(out)-1] = a, b
	return out
}

func hasNaN(p []float64) bool {
	for _, v := range p {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// needsSplit decides whether the interval with endpoint images pa, pb
// and midpoint image pm is refined further.
func needsSplit(depth, lo, hi int, pa, pm, pb []float64) bool {
	if depth < lo {
		return true
	}
	if depth >= hi {
		return false
	}
	nanA, nanB := hasNaN(pa), hasNaN(pb)
	if nanA != nanB {
		return true
	}
	if nanA {
		return false
	}
	if hasNaN(pm) {
		return true
	}
	var dot, n1, n2 float64
	for i := range pa {
		u, v := pm[i]-pa[i], pb[i]-pm[i]
		dot += u * v
		n1 += u * u
		n2 += v * v
	}
	if n1 == 0 || n2 == 0 {
		return false
	}
	return dot/math.Sqrt(n1*n2) < cosThreshold
}

// adaptiveSample bisects [a, b] deterministically. It returns the sample
// positions in increasing order and the images of point at them.
func adaptiveSample(point func(float64) []float64, a, b float64, lo, hi int) ([]float64, [][]float64) {
	pa, pb := point(a), point(b)
	ts := []float64{a}
	pts := [][]float64{pa}

	var rec func(a, b float64, pa, pb []float64, depth int)
	rec = func(a, b float64, pa, pb []float64, depth int) {
		m := a + (b-a)/2
		pm := point(m)
		if needsSplit(depth, lo, hi, pa, pm, pb) {
			rec(a, m, pa, pm, depth+1)
			rec(m, b, pm, pb, depth+1)
			return
		}
		ts = append(ts, m, b)
		pts = append(pts, pm, pb)
	}
	rec(a, b, pa, pb, 0)
	return ts, pts
}

// depthFor is the bisection depth giving at least n-1 intervals.
func depthFor(n int) int {
	if n <= 2 {
		return 1
	}
	return bits.Len(uint(n - 2))
}

func (s *Series) evalLine(values map[string]float64) (*Data, error) {
	bounds, err := s.resolve(values)
	if err != nil {
		return nil, err
	}
	lo, hi := bounds[0][0], bounds[0][1]
	logx := s.xscale == "log"
	if logx && lo <= 0 {
		return nil, fmt.Errorf("%w: log scale needs a positive range, got %s", ErrInvalidRange, s.ranges[0])
	}

	args := s.argBuffer(values)
	fns := s.realFns
	point := func(t float64) []float64 {
		args[0] = t
		switch s.kind {
		case Line2D:
			return []float64{t, fns[0](args)}
		case Parametric2D:
			return []float64{fns[0](args), fns[1](args)}
		default:
			return []float64{fns[0](args), fns[1](args), fns[2](args)}
		}
	}

	var ts []float64
	var pts [][]float64
	switch {
	case s.adaptive && logx:
		// refine in log space so decades get equal attention
		us, ps := adaptiveSample(func(u float64) []float64 {
			p := point(math.Pow(10, u))
			if s.kind == Line2D {
				p[0] = u
			}
			return p
		}, math.Log10(lo), math.Log10(hi), min(minDepth, s.depth), s.depth)
		ts = make([]float64, len(us))
		for i, u := range us {
			ts[i] = math.Pow(10, u)
			if s.kind == Line2D {
				ps[i][0] = ts[i]
			}
		}
		pts = ps
	case s.adaptive:
		ts, pts = adaptiveSample(point, lo, hi, min(minDepth, s.depth), s.depth)
	default:
		if logx {
			ts = geomspace(lo, hi, s.n[0])
		} else {
			ts = linspace(lo, hi, s.n[0])
		}
		pts = make([][]float64, len(ts))
		for i, t := range ts {
			pts[i] = point(t)
		}
	}

	c := &Curve{X: make([]float64, len(pts)), Y: make([]float64, len(pts))}
	if s.kind == Parametric3D {
		c.Z = make([]float64, len(pts))
	}
	for i, p := range pts {
		c.X[i], c.Y[i] = p[0], p[1]
		if c.Z != nil {
			c.Z[i] = p[2]
		}
	}
	if s.kind != Line2D {
		c.Param = ts
	}
	s.logger.WithFields(l.IntField("points", len(ts))).Debug("sampled")
	return &Data{Curve: c}, nil
}
