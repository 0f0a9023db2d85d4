package render

// Settings are the global options of one plot.
type Settings struct {
	Title  string `yaml:"title,omitempty" json:"title,omitempty"`
	XLabel string `yaml:"xlabel,omitempty" json:"xlabel,omitempty"`
	YLabel string `yaml:"ylabel,omitempty" json:"ylabel,omitempty"`
	ZLabel string `yaml:"zlabel,omitempty" json:"zlabel,omitempty"`

	XLim *[2]float64 `yaml:"xlim,omitempty" json:"xlim,omitempty"`
	YLim *[2]float64 `yaml:"ylim,omitempty" json:"ylim,omitempty"`
	ZLim *[2]float64 `yaml:"zlim,omitempty" json:"zlim,omitempty"`

	// linear or log
	XScale string `yaml:"xscale,omitempty" json:"xscale,omitempty"`
	YScale string `yaml:"yscale,omitempty" json:"yscale,omitempty"`
	ZScale string `yaml:"zscale,omitempty" json:"zscale,omitempty"`

	// auto or equal
	Aspect string      `yaml:"aspect,omitempty" json:"aspect,omitempty"`
	Legend *bool       `yaml:"legend,omitempty" json:"legend,omitempty"`
	Grid   *bool       `yaml:"grid,omitempty" json:"grid,omitempty"`
	Size   *[2]float64 `yaml:"size,omitempty" json:"size,omitempty"`

	// Show false keeps the plot headless.
	Show *bool `yaml:"show,omitempty" json:"show,omitempty"`
}

// Merge returns s overlaid by every field set in other.
func (s Settings) Merge(other Settings) Settings {
	str := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	str(&s.Title, other.Title)
	str(&s.XLabel, other.XLabel)
	str(&s.YLabel, other.YLabel)
	str(&s.ZLabel, other.ZLabel)
	str(&s.XScale, other.XScale)
	str(&s.YScale, other.YScale)
	str(&s.ZScale, other.ZScale)
	str(&s.Aspect, other.Aspect)
	if other.XLim != nil {
		s.XLim = other.XLim
	}
	if other.YLim != nil {
		s.YLim = other.YLim
	}
	if other.ZLim != nil {
		s.ZLim = other.ZLim
	}
	if other.Legend != nil {
		s.Legend = other.Legend
	}
	if other.Grid != nil {
		s.Grid = other.Grid
	}
	if other.Size != nil {
		s.Size = other.Size
	}
	if other.Show != nil {
		s.Show = other.Show
	}
	return s
}

// GridOn defaults to true.
func (s Settings) GridOn() bool { return s.Grid == nil || *s.Grid }

// ShowOn defaults to true.
func (s Settings) ShowOn() bool { return s.Show == nil || *s.Show }

func Bool(b bool) *bool { return &b }

func Lim(lo, hi float64) *[2]float64 { return &[2]float64{lo, hi} }

// PlotKeys are the keyword names understood at plot level.
var PlotKeys = []string{
	"title", "xlabel", "ylabel", "zlabel", "xlim", "ylim", "zlim",
	"xscale", "yscale", "zscale", "aspect", "legend", "grid", "size",
	"show", "backend",
}
