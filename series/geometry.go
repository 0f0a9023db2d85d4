package series

func (s *Series) evalGeometry(values map[string]float64) (*Data, error) {
	xs, ys, closed, err := s.entity.Trace(values, s.n[0])
	if err != nil {
		return nil, err
	}
	return &Data{
		Curve:  &Curve{X: xs, Y: ys},
		Closed: closed,
		Filled: closed && s.filled,
	}, nil
}
