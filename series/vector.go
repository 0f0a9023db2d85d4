package series

import "math"

// Streamline integration constants. Seeds sit at the centres of a
// regular lattice; each line runs forward and backward from its seed.
const (
	seeds2D       = 10
	seeds3D       = 4
	streamSteps   = 400
	stepFraction  = 0.01
	stagnationEps = 1e-12
)

func (s *Series) evalVector2D(values map[string]float64) (*Data, error) {
	bounds, err := s.resolve(values)
	if err != nil {
		return nil, err
	}
	args := s.argBuffer(values)
	vel := func(p []float64) []float64 {
		args[0], args[1] = p[0], p[1]
		return []float64{s.realFns[0](args), s.realFns[1](args)}
	}
	if s.streamlines {
		return &Data{Streams: streamlines(vel, bounds, seeds2D)}, nil
	}

	xs := linspace(bounds[0][0], bounds[0][1], s.n[0])
	ys := linspace(bounds[1][0], bounds[1][1], s.n[1])
	f := &Field2D{Xs: xs, Ys: ys, U: grid(len(xs), len(ys)), V: grid(len(xs), len(ys)),
		Mag: grid(len(xs), len(ys)), Scale: s.scale}
	for i, x := range xs {
		for j, y := range ys {
			v := vel([]float64{x, y})
			f.U[i][j], f.V[i][j] = v[0], v[1]
			f.Mag[i][j] = math.Hypot(v[0], v[1])
		}
	}
	return &Data{Field2D: f}, nil
}

func (s *Series) evalVector3D(values map[string]float64) (*Data, error) {
	bounds, err := s.resolve(values)
	if err != nil {
		return nil, err
	}
	args := s.argBuffer(values)
	vel := func(p []float64) []float64 {
		args[0], args[1], args[2] = p[0], p[1], p[2]
		return []float64{s.realFns[0](args), s.realFns[1](args), s.realFns[2](args)}
	}
	if s.streamlines {
		return &Data{Streams: streamlines(vel, bounds, seeds3D)}, nil
	}

	xs := linspace(bounds[0][0], bounds[0][1], s.n[0])
	ys := linspace(bounds[1][0], bounds[1][1], s.n[1])
	zs := linspace(bounds[2][0], bounds[2][1], s.n[2])
	total := len(xs) * len(ys) * len(zs)
	f := &Field3D{
		X: make([]float64, 0, total), Y: make([]float64, 0, total), Z: make([]float64, 0, total),
		U: make([]float64, 0, total), V: make([]float64, 0, total), W: make([]float64, 0, total),
		Shape: [3]int{len(xs), len(ys), len(zs)}, Scale: s.scale,
	}
	for _, x := range xs {
		for _, y := range ys {
			for _, z := range zs {
				v := vel([]float64{x, y, z})
				f.X, f.Y, f.Z = append(f.X, x), append(f.Y, y), append(f.Z, z)
				f.U, f.V, f.W = append(f.U, v[0]), append(f.V, v[1]), append(f.W, v[2])
			}
		}
	}
	return &Data{Field3D: f}, nil
}

// streamlines integrates the normalized field from a seed lattice with
// per axis seeds. Lines shorter than two points are dropped.
func streamlines(vel func([]float64) []float64, bounds [][2]float64, perAxis int) []Curve {
	dim := len(bounds)
	h := math.Inf(1)
	for _, b := range bounds {
		h = math.Min(h, (b[1]-b[0])*stepFraction)
	}

	var out []Curve
	idx := make([]int, dim)
	for {
		seed := make([]float64, dim)
		for k := range seed {
			seed[k] = bounds[k][0] + (float64(idx[k])+0.5)*(bounds[k][1]-bounds[k][0])/float64(perAxis)
		}
		back := integrate(vel, seed, bounds, -h)
		fwd := integrate(vel, seed, bounds, h)
		if len(back)+len(fwd) > 0 {
			pts := make([][]float64, 0, len(back)+len(fwd)+1)
			for i := len(back) - 1; i >= 0; i-- {
				pts = append(pts, back[i])
			}
			pts = append(pts, seed)
			pts = append(pts, fwd...)
			out = append(out, toCurve(pts, vel, dim))
		}

		k := 0
		for ; k < dim; k++ {
			idx[k]++
			if idx[k] < perAxis {
				break
			}
			idx[k] = 0
		}
		if k == dim {
			break
		}
	}
	return out
}

func toCurve(pts [][]float64, vel func([]float64) []float64, dim int) Curve {
	c := Curve{X: make([]float64, len(pts)), Y: make([]float64, len(pts)), Param: make([]float64, len(pts))}
	if dim == 3 {
		c.Z = make([]float64, len(pts))
	}
	for i, p := range pts {
		c.X[i], c.Y[i] = p[0], p[1]
		if dim == 3 {
			c.Z[i] = p[2]
		}
		c.Param[i] = norm(vel(p))
	}
	return c
}

// integrate runs classic RK4 on the unit direction field from p with
// signed step h. It stops outside the domain, at a NaN or a stagnation
// point, or after streamSteps steps. The seed itself is not included.
func integrate(vel func([]float64) []float64, p []float64, bounds [][2]float64, h float64) [][]float64 {
	dir := func(q []float64) []float64 {
		v := vel(q)
		n := norm(v)
		if math.IsNaN(n) || n < stagnationEps {
			return nil
		}
		for i := range v {
			v[i] /= n
		}
		return v
	}
	shift := func(q, d []float64, f float64) []float64 {
		out := make([]float64, len(q))
		for i := range q {
			out[i] = q[i] + f*d[i]
		}
		return out
	}

	var out [][]float64
	cur := p
	for step := 0; step < streamSteps; step++ {
		k1 := dir(cur)
		if k1 == nil {
			break
		}
		k2 := dir(shift(cur, k1, h/2))
		if k2 == nil {
			break
		}
		k3 := dir(shift(cur, k2, h/2))
		if k3 == nil {
			break
		}
		k4 := dir(shift(cur, k3, h))
		if k4 == nil {
			break
		}
		next := make([]float64, len(cur))
		for i := range cur {
			next[i] = cur[i] + h/6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
		}
		if !inside(next, bounds) {
			break
		}
		out = append(out, next)
		cur = next
	}
	return out
}

func inside(p []float64, bounds [][2]float64) bool {
	for i, b := range bounds {
		if p[i] < b[0] || p[i] > b[1] {
			return false
		}
	}
	return true
}

func norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
