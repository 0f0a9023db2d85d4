package series

import "math"

// axisTicks samples one axis of a grid. In adaptive mode the ticks come
// from 1D refinement of the section through the middle of the other axis.
func (s *Series) axisTicks(lo, hi float64, n int, section func(t float64) float64) []float64 {
	if !s.adaptive {
		return linspace(lo, hi, n)
	}
	// leaves emit their midpoint too, so depth d-1 already gives 2^d intervals
	d := depthFor(n) - 1
	ts, _ := adaptiveSample(func(t float64) []float64 {
		return []float64{t, section(t)}
	}, lo, hi, d, max(d, min(s.depth, d+2)))
	return ts
}

func (s *Series) evalSurface(values map[string]float64) (*Data, error) {
	bounds, err := s.resolve(values)
	if err != nil {
		return nil, err
	}
	args := s.argBuffer(values)
	f := s.realFns[0]
	at := func(x, y float64) float64 {
		args[0], args[1] = x, y
		return f(args)
	}
	xmid := (bounds[0][0] + bounds[0][1]) / 2
	ymid := (bounds[1][0] + bounds[1][1]) / 2
	xs := s.axisTicks(bounds[0][0], bounds[0][1], s.n[0], func(t float64) float64 { return at(t, ymid) })
	ys := s.axisTicks(bounds[1][0], bounds[1][1], s.n[1], func(t float64) float64 { return at(xmid, t) })

	z := make([][]float64, len(xs))
	for i, x := range xs {
		z[i] = make([]float64, len(ys))
		for j, y := range ys {
			z[i][j] = at(x, y)
		}
	}
	return &Data{Grid: &Grid{Xs: xs, Ys: ys, Z: z}}, nil
}

func (s *Series) evalMesh(values map[string]float64) (*Data, error) {
	bounds, err := s.resolve(values)
	if err != nil {
		return nil, err
	}
	args := s.argBuffer(values)
	us := linspace(bounds[0][0], bounds[0][1], s.n[0])
	vs := linspace(bounds[1][0], bounds[1][1], s.n[1])
	m := &Mesh{U: us, V: vs, X: grid(len(us), len(vs)), Y: grid(len(us), len(vs)), Z: grid(len(us), len(vs))}
	for i, u := range us {
		for j, v := range vs {
			args[0], args[1] = u, v
			m.X[i][j] = s.realFns[0](args)
			m.Y[i][j] = s.realFns[1](args)
			m.Z[i][j] = s.realFns[2](args)
		}
	}
	return &Data{Mesh: m}, nil
}

func grid(n1, n2 int) [][]float64 {
	out := make([][]float64, n1)
	for i := range out {
		out[i] = make([]float64, n2)
	}
	return out
}

// Finite returns the smallest and largest finite values of z, or NaNs
// when there are none.
func Finite(z [][]float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range z {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if lo > hi {
		return math.NaN(), math.NaN()
	}
	return lo, hi
}
