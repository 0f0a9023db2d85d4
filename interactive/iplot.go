package interactive

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/njchilds90/gosymplot/plot"
	"github.com/njchilds90/gosymplot/series"
	"github.com/patrickmn/go-cache"
	"github.com/sgostarter/i/l"
)

// memoDuration bounds how long evaluated data is kept for revisited
// parameter values.
const memoDuration = 5 * time.Minute

// InteractivePlot ties a plot to parameter bindings. Each update
// re-evaluates only the series that reference a changed parameter.
type InteractivePlot struct {
	bindings *Bindings
	plot     *plot.Plot
	deps     map[string][]int
	memo     *cache.Cache
	logger   l.Wrapper

	mu sync.Mutex
}

// New binds p to bindings. Every parameter of every series must have a
// binding.
func New(bindings *Bindings, p *plot.Plot, opts ...Option) (*InteractivePlot, error) {
	o := options{logger: l.NewNopLoggerWrapper()}
	for _, opt := range opts {
		opt(&o)
	}
	deps := map[string][]int{}
	var missing []string
	for i, s := range p.Series() {
		for _, sym := range s.Params() {
			if !bindings.Has(sym) {
				missing = append(missing, sym)
				continue
			}
			deps[sym] = append(deps[sym], i)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s", ErrMissingParameter, strings.Join(dedup(missing), ", "))
	}

	ip := &InteractivePlot{
		bindings: bindings,
		plot:     p,
		deps:     deps,
		// No janitor: expired entries are dropped on update.
		memo:   cache.New(memoDuration, 0),
		logger: o.logger.WithFields(l.StringField(l.ClsKey, "interactivePlot")),
	}
	p.WithParams(bindings.Read).WithEvaluator(ip.evaluate)
	return ip, nil
}

func (ip *InteractivePlot) evaluate(i int, s *series.Series, params map[string]float64) (*series.Data, error) {
	key := fmt.Sprintf("%d|%p|%s", i, s, s.Snapshot(params))
	if v, ok := ip.memo.Get(key); ok {
		return v.(*series.Data), nil
	}
	d, err := s.Evaluate(params)
	if err != nil {
		return nil, err
	}
	ip.memo.Set(key, d, cache.DefaultExpiration)
	return d, nil
}

// Affected returns the sorted indices of the series referencing any of
// symbols.
func (ip *InteractivePlot) Affected(symbols []string) []int {
	seen := map[int]bool{}
	var out []int
	for _, sym := range symbols {
		for _, i := range ip.deps[sym] {
			if !seen[i] {
				seen[i] = true
				out = append(out, i)
			}
		}
	}
	sort.Ints(out)
	return out
}

// Update commits changes and redraws the affected series. It returns
// their indices. Updates never overlap.
func (ip *InteractivePlot) Update(changes map[string]float64) ([]int, error) {
	ip.mu.Lock()
	defer ip.mu.Unlock()

	changed, err := ip.bindings.Commit(changes)
	if err != nil {
		return nil, err
	}
	indices := ip.Affected(changed)
	ip.memo.DeleteExpired()
	if len(indices) == 0 {
		return nil, nil
	}
	if err = ip.plot.Update(indices); err != nil {
		ip.logger.WithFields(l.ErrorField(err)).Error("update failed")
		return nil, err
	}
	ip.logger.WithFields(l.StringField("params", strings.Join(changed, ",")), l.IntField("series", len(indices))).
		Debug("plot updated")
	return indices, nil
}

func (ip *InteractivePlot) Controls() []Control { return ip.bindings.Controls() }
func (ip *InteractivePlot) Bindings() *Bindings { return ip.bindings }
func (ip *InteractivePlot) Plot() *plot.Plot    { return ip.plot }

// Fig returns the backend figure for the current values.
func (ip *InteractivePlot) Fig() (interface{}, error) {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	return ip.plot.Fig()
}

func (ip *InteractivePlot) Show(w io.Writer) error {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	return ip.plot.Show(w)
}

func (ip *InteractivePlot) Save(path string) error {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	return ip.plot.Save(path)
}

func dedup(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}
