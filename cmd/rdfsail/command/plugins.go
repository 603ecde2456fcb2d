package command

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cayleygraph/rdfsail/clog"
	"github.com/cayleygraph/rdfsail/inference/owl"
	"github.com/cayleygraph/rdfsail/internal/config"
	"github.com/cayleygraph/rdfsail/plugin"
	"github.com/cayleygraph/rdfsail/plugin/builtin"
	"github.com/cayleygraph/rdfsail/remote"
)

func getContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		select {
		case <-ch:
		case <-ctx.Done():
		}
		signal.Stop(ch)
		cancel()
	}()
	return ctx, cancel
}

// pluginOptions wires the configured services into the builtin plugins.
func pluginOptions(cfg *config.Config) builtin.Options {
	opts := builtin.Options{ReasonerFormat: cfg.Reasoner.Format}
	cli := &http.Client{Timeout: cfg.Remote.Timeout}
	if cfg.Remote.URL != "" {
		opts.Remote = remote.New(cfg.Remote.URL)
		opts.Remote.SetHTTPClient(cli)
	}
	if cfg.SPARQL != "" {
		opts.SPARQL = remote.NewSPARQL(cfg.SPARQL)
		opts.SPARQL.SetHTTPClient(cli)
	}
	switch {
	case cfg.Reasoner.Command != "":
		opts.Oracle = &owl.CommandOracle{Path: cfg.Reasoner.Command, Args: cfg.Reasoner.Args}
	case cfg.Reasoner.URL != "":
		opts.Oracle = &owl.HTTPOracle{URL: cfg.Reasoner.URL, Client: cli}
	}
	return opts
}

// defaultParams are passed to every plugin accepting them.
func defaultParams(cfg *config.Config) plugin.Values {
	v := make(plugin.Values)
	if cfg.LayerMask > 0 {
		v[builtin.LayerMaskParam] = strconv.Itoa(cfg.LayerMask)
	}
	return v
}

// parseParams reads key=value arguments.
func parseParams(args []string) (map[string]string, error) {
	params := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("parameter %q is not of the form key=value", a)
		}
		params[k] = v
	}
	return params, nil
}

func (in *instance) run(ctx context.Context, cmd *cobra.Command, name string, params map[string]string) (*plugin.Output, error) {
	p, err := in.plugins.Lookup(name)
	if err != nil {
		return nil, err
	}
	vals := make(plugin.Values)
	for k, v := range defaultParams(in.cfg) {
		if _, ok := p.Parameters().Lookup(k); ok {
			vals[k] = v
		}
	}
	for k, v := range params {
		vals[k] = v
	}
	out, err := plugin.Run(ctx, p, &plugin.Request{
		Graph:  in.graph,
		Store:  in.store,
		Params: vals,
	}, plugin.LogInteraction{Name: name})
	if err != nil {
		return nil, err
	}
	if out.Message != "" {
		fmt.Fprintln(cmd.OutOrStdout(), out.Message)
	}
	return out, nil
}

// runAndSave runs a plugin and writes the store back unless the plugin only
// reads it.
func (in *instance) runAndSave(ctx context.Context, cmd *cobra.Command, name string, params map[string]string) (*plugin.Output, error) {
	out, err := in.run(ctx, cmd, name, params)
	if err != nil {
		return nil, err
	}
	if p, _ := in.plugins.Lookup(name); p != nil && p.Kind() == plugin.Export {
		return out, nil
	}
	return out, in.save(ctx)
}

func newPluginCmd(use, short string, names map[string]string) *cobra.Command {
	var choices []string
	for k := range names {
		choices = append(choices, k)
	}
	sort.Strings(choices)
	cmd := &cobra.Command{
		Use:       use,
		Short:     short,
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: choices,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if names != nil {
				var ok bool
				if name, ok = names[args[0]]; !ok {
					return fmt.Errorf("unknown %s %q", cmd.Name(), args[0])
				}
			}
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			printBackendInfo(cfg)
			p := mustSetupProfile(cmd)
			defer mustFinishProfile(p)

			ctx, cancel := getContext()
			defer cancel()
			in, err := openInstance(ctx, cfg)
			if err != nil {
				return err
			}
			defer in.Close()
			if _, err := in.load(ctx, cmd, ""); err != nil {
				return err
			}
			out, err := in.runAndSave(ctx, cmd, name, params)
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Inferred int         `json:"inferred"`
					Approved int         `json:"approved"`
					Stats    interface{} `json:"stats"`
				}{out.Inferred, out.Approved, out.Stats})
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print the run statistics as JSON")
	registerLoadFlags(cmd)
	return cmd
}

func NewRunCmd() *cobra.Command {
	return newPluginCmd("run <plugin> [key=value...]", "Run a plugin over the store.", nil)
}

func NewInferCmd() *cobra.Command {
	return newPluginCmd("infer <rdfs|rules|owl> [key=value...]", "Materialize inferred statements.", map[string]string{
		"rdfs":  builtin.RDFS,
		"rules": builtin.Rules,
		"owl":   builtin.OWL,
	})
}

func NewQueryCmd() *cobra.Command {
	cmd := newPluginCmd("query <remote|describe> [key=value...]", "Enrich the graph from a remote service.", map[string]string{
		"remote":   builtin.RemoteQuery,
		"describe": builtin.Describe,
	})
	cmd.Aliases = []string{"qu"}
	return cmd
}

func NewPluginsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List the available plugins and their parameters.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			reg, err := builtin.NewRegistry(pluginOptions(cfg))
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, p := range reg.Plugins() {
				fmt.Fprintf(tw, "%v\t%s\t\n", p.Kind(), p.Name())
				for _, par := range p.Parameters() {
					fmt.Fprintf(tw, "\t  %s=%s\t%s\n", par.Name, par.Default, par.Description)
				}
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			clog.Infof("%d plugins", len(reg.Plugins()))
			return nil
		},
	}
}
