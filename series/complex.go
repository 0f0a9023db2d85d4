package series

import (
	"math"
	"math/cmplx"
)

func (s *Series) complexArgs(values map[string]float64) []complex128 {
	args := make([]complex128, len(s.ranges)+len(s.params))
	for i, p := range s.params {
		args[len(s.ranges)+i] = complex(values[p], 0)
	}
	return args
}

func (s *Series) evalComplexLine(values map[string]float64) (*Data, error) {
	bounds, err := s.resolve(values)
	if err != nil {
		return nil, err
	}
	args := s.complexArgs(values)
	ts := linspace(bounds[0][0], bounds[0][1], s.n[0])
	c := &Curve{X: ts, Y: make([]float64, len(ts))}
	if s.part == PartAbsArg {
		c.Param = make([]float64, len(ts))
	}
	for i, t := range ts {
		args[0] = complex(t, 0)
		z := s.complexFns[0](args)
		switch s.part {
		case PartReal:
			c.Y[i] = real(z)
		case PartImag:
			c.Y[i] = imag(z)
		case PartAbsArg:
			c.Y[i], c.Param[i] = cmplx.Abs(z), cmplx.Phase(z)
		}
	}
	return &Data{Curve: c}, nil
}

func (s *Series) evalDomainColoring(values map[string]float64) (*Data, error) {
	lo, hi, err := s.ranges[0].ResolveComplex(values)
	if err != nil {
		return nil, err
	}
	args := s.complexArgs(values)
	xs := linspace(real(lo), real(hi), s.n[0])
	ys := linspace(imag(lo), imag(hi), s.n[1])
	img := &Image{Xs: xs, Ys: ys, Mag: grid(len(xs), len(ys)), Arg: grid(len(xs), len(ys)),
		RGB: make([][][3]uint8, len(ys)), PhaseRes: s.phaseres}
	for j := range img.RGB {
		img.RGB[j] = make([][3]uint8, len(xs))
	}
	for i, x := range xs {
		for j, y := range ys {
			args[0] = complex(x, y)
			z := s.complexFns[0](args)
			mag, arg := cmplx.Abs(z), cmplx.Phase(z)
			if cmplx.IsNaN(z) {
				mag, arg = math.NaN(), math.NaN()
			}
			img.Mag[i][j], img.Arg[i][j] = mag, arg
			img.RGB[j][i] = DomainColor(mag, arg, s.phaseres)
		}
	}
	d := &Data{Image: img}
	if s.threed {
		d.Grid = &Grid{Xs: xs, Ys: ys, Z: img.Mag}
	}
	return d, nil
}

func (s *Series) evalComplexPoints(values map[string]float64) (*Data, error) {
	args := s.complexArgs(values)
	c := &Curve{X: make([]float64, len(s.complexFns)), Y: make([]float64, len(s.complexFns))}
	for i, f := range s.complexFns {
		z := f(args)
		c.X[i], c.Y[i] = real(z), imag(z)
	}
	return &Data{Curve: c}, nil
}

// DomainColor maps a complex value to a colour. The hue follows the
// argument quantized to phaseres bands; brightness cycles with each
// doubling of the magnitude. NaN maps to black.
func DomainColor(mag, arg float64, phaseres int) [3]uint8 {
	if math.IsNaN(mag) || math.IsNaN(arg) || math.IsInf(mag, 0) {
		return [3]uint8{}
	}
	hue := (arg + math.Pi) / (2 * math.Pi)
	if phaseres > 0 {
		hue = math.Floor(hue*float64(phaseres)) / float64(phaseres)
	}
	hue = math.Mod(hue, 1)
	var value float64
	if mag > 0 {
		l2 := math.Log2(mag)
		value = 0.6 + 0.4*(l2-math.Floor(l2))
	}
	return hsvToRGB(hue, 0.9, value)
}

func hsvToRGB(h, s, v float64) [3]uint8 {
	i := math.Floor(h * 6)
	f := h*6 - i
	p, q, t := v*(1-s), v*(1-f*s), v*(1-(1-f)*s)
	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	to := func(c float64) uint8 { return uint8(math.Round(math.Max(0, math.Min(1, c)) * 255)) }
	return [3]uint8{to(r), to(g), to(b)}
}
