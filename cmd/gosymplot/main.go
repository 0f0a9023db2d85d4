// Package main provides the command line entry point for gosymplot.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/njchilds90/gosymplot"
	"github.com/njchilds90/gosymplot/config"
	"github.com/njchilds90/gosymplot/interactive"
	"github.com/njchilds90/gosymplot/plot"
	"github.com/sgostarter/i/l"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	outputPath  string
	backendName string
	format      string
	verbose     bool
	assignments map[string]string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gosymplot",
		Short: "Plot symbolic expressions described in YAML or JSON documents",
		Long: `gosymplot samples the expressions of a plot document and draws them
with one of the plotting backends. Interactive documents take parameter
values with --set.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")

	renderCmd := &cobra.Command{
		Use:   "render [document]",
		Short: "Render a plot document to stdout or a file",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}
	renderCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	renderCmd.Flags().StringVarP(&backendName, "backend", "b", "", "Backend overriding the document: "+strings.Join(gosymplot.Backends(), ", "))
	renderCmd.Flags().StringToStringVar(&assignments, "set", nil, "Parameter values, e.g. --set a=2,b=0.5")

	controlsCmd := &cobra.Command{
		Use:   "controls [document]",
		Short: "Print the control descriptors of an interactive document",
		Args:  cobra.ExactArgs(1),
		RunE:  runControls,
	}
	controlsCmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List entry points and backends",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "entries:  %s\nbackends: %s\n",
				strings.Join(config.Entries(), ", "), strings.Join(gosymplot.Backends(), ", "))
		},
	}

	rootCmd.AddCommand(renderCmd, controlsCmd, listCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func logger() l.Wrapper {
	if verbose {
		return l.NewConsoleLoggerWrapper()
	}
	return l.NewNopLoggerWrapper()
}

func runRender(cmd *cobra.Command, args []string) error {
	d, err := config.Load(args[0])
	if err != nil {
		return err
	}
	log := logger().WithFields(l.StringField(l.ClsKey, "render"), l.StringField("document", args[0]))

	extra := []interface{}{gosymplot.WithLogger(log)}
	if backendName != "" {
		extra = append(extra, gosymplot.WithBackendName(backendName))
	}

	var p *plot.Plot
	if d.Interactive() {
		changes, err := parseAssignments(assignments)
		if err != nil {
			return err
		}
		ip, err := d.BuildInteractive(extra...)
		if err != nil {
			return fmt.Errorf("build failed: %w", err)
		}
		indices, err := ip.Update(changes)
		if err != nil {
			return err
		}
		log.WithFields(l.IntField("updated", len(indices))).Debug("parameters applied")
		p = ip.Plot()
	} else {
		if len(assignments) > 0 {
			return fmt.Errorf("%s declares no parameters", args[0])
		}
		if p, err = d.Build(extra...); err != nil {
			return fmt.Errorf("build failed: %w", err)
		}
	}

	if outputPath == "" {
		return p.Show(cmd.OutOrStdout())
	}
	if err = p.Save(outputPath); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if st, err := os.Stat(outputPath); err == nil {
		log.WithFields(l.StringField("path", outputPath), l.StringField("size", humanize.Bytes(uint64(st.Size())))).
			Debug("plot saved")
	}
	return nil
}

func parseAssignments(raw map[string]string) (map[string]float64, error) {
	out := make(map[string]float64, len(raw))
	for _, k := range sortedKeys(raw) {
		v := raw[k]
		switch strings.ToLower(v) {
		case "true", "on":
			out[k] = 1
			continue
		case "false", "off":
			out[k] = 0
			continue
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %q", k, v)
		}
		out[k] = f
	}
	return out, nil
}

func runControls(cmd *cobra.Command, args []string) error {
	d, err := config.Load(args[0])
	if err != nil {
		return err
	}
	specs, err := d.ParamSpecs()
	if err != nil {
		return err
	}
	b, err := interactive.NewBindings(specs, layoutOptions(d)...)
	if err != nil {
		return err
	}
	doc := struct {
		Layout   string                `json:"layout" yaml:"layout"`
		Rows     [][]string            `json:"rows" yaml:"rows"`
		Controls []interactive.Control `json:"controls" yaml:"controls"`
	}{b.LayoutKind(), b.Layout(), b.Controls()}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(doc)
	}
	return fmt.Errorf("invalid format: %s (must be json or yaml)", format)
}

func layoutOptions(d *config.Document) []interactive.Option {
	var opts []interactive.Option
	if d.Layout.Kind != "" {
		opts = append(opts, interactive.WithLayout(d.Layout.Kind))
	}
	if d.Layout.NCols > 0 {
		opts = append(opts, interactive.WithNCols(d.Layout.NCols))
	}
	if d.Layout.UseLatex {
		opts = append(opts, interactive.WithUseLatex(true))
	}
	return opts
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
