package series

import "math"

// coarseCells is the number of quadtree roots per axis in adaptive
// implicit mode.
const coarseCells = 16

func (s *Series) evalImplicit(values map[string]float64) (*Data, error) {
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
	x0, x1 := bounds[0][0], bounds[0][1]
	y0, y1 := bounds[1][0], bounds[1][1]

	if s.adaptive {
		var rects []Rect
		dx, dy := (x1-x0)/coarseCells, (y1-y0)/coarseCells
		for i := 0; i < coarseCells; i++ {
			for j := 0; j < coarseCells; j++ {
				cx0, cy0 := x0+dx*float64(i), y0+dy*float64(j)
				rects = s.refineCell(at, Rect{X0: cx0, X1: cx0 + dx, Y0: cy0, Y1: cy0 + dy}, 0, rects)
			}
		}
		return &Data{Rects: rects}, nil
	}

	xs := linspace(x0, x1, s.n[0])
	ys := linspace(y0, y1, s.n[1])
	z := grid(len(xs), len(ys))
	for i, x := range xs {
		for j, y := range ys {
			v := at(x, y)
			if !s.equality {
				v = boolValue(v)
			}
			z[i][j] = v
		}
	}
	return &Data{Grid: &Grid{Xs: xs, Ys: ys, Z: z, Equality: s.equality}}, nil
}

func boolValue(v float64) float64 {
	if v > 0.5 {
		return 1
	}
	return 0
}

// refineCell appends the parts of r that belong to the region. Predicates
// keep cells that are fully inside and bisect mixed ones; equations keep
// the cells the zero set crosses at the deepest level.
func (s *Series) refineCell(at func(x, y float64) float64, r Rect, depth int, out []Rect) []Rect {
	cx, cy := (r.X0+r.X1)/2, (r.Y0+r.Y1)/2
	samples := [5]float64{at(r.X0, r.Y0), at(r.X1, r.Y0), at(r.X0, r.Y1), at(r.X1, r.Y1), at(cx, cy)}

	var in, mixed bool
	if s.equality {
		var pos, neg bool
		for _, v := range samples {
			switch {
			case math.IsNaN(v):
			case v > 0:
				pos = true
			case v < 0:
				neg = true
			default:
				pos, neg = true, true
			}
		}
		if !(pos && neg) {
			return out
		}
		mixed = true
	} else {
		count := 0
		for _, v := range samples {
			if boolValue(v) == 1 {
				count++
			}
		}
		switch count {
		case 0:
			return out
		case len(samples):
			return append(out, r)
		}
		mixed, in = true, boolValue(samples[4]) == 1
	}

	if mixed && depth < s.depth {
		out = s.refineCell(at, Rect{X0: r.X0, X1: cx, Y0: r.Y0, Y1: cy}, depth+1, out)
		out = s.refineCell(at, Rect{X0: cx, X1: r.X1, Y0: r.Y0, Y1: cy}, depth+1, out)
		out = s.refineCell(at, Rect{X0: r.X0, X1: cx, Y0: cy, Y1: r.Y1}, depth+1, out)
		return s.refineCell(at, Rect{X0: cx, X1: r.X1, Y0: cy, Y1: r.Y1}, depth+1, out)
	}
	if s.equality || in {
		out = append(out, r)
	}
	return out
}
