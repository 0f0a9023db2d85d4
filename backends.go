package gosymplot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/njchilds90/gosymplot/backend"
	"github.com/njchilds90/gosymplot/backend/ascii"
	"github.com/njchilds90/gosymplot/backend/echarts"
	"github.com/njchilds90/gosymplot/backend/gonumplot"
	"github.com/njchilds90/gosymplot/backend/plotly"
	"github.com/njchilds90/gosymplot/backend/xlsx"
	"github.com/sgostarter/i/commerr"
)

// DefaultBackend draws plots that name no backend.
const DefaultBackend = plotly.Name

var ErrUnknownBackend = fmt.Errorf("gosymplot: unknown backend: %w", commerr.ErrInvalidArgument)

var backends = map[string]func(...backend.Option) backend.Backend{
	plotly.Name:    func(o ...backend.Option) backend.Backend { return plotly.New(o...) },
	gonumplot.Name: func(o ...backend.Option) backend.Backend { return gonumplot.New(o...) },
	echarts.Name:   func(o ...backend.Option) backend.Backend { return echarts.New(o...) },
	ascii.Name:     func(o ...backend.Option) backend.Backend { return ascii.New(o...) },
	xlsx.Name:      func(o ...backend.Option) backend.Backend { return xlsx.New(o...) },
}

// Backends lists the backend names in sorted order.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for n := range backends {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewBackend creates the backend called name. The empty name selects
// DefaultBackend.
func NewBackend(name string, opts ...backend.Option) (backend.Backend, error) {
	if name == "" {
		name = DefaultBackend
	}
	create, ok := backends[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q, have %s", ErrUnknownBackend, name, strings.Join(Backends(), ", "))
	}
	return create(opts...), nil
}
