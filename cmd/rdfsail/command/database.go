package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"sort"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/rdfsail/bridge"
	"github.com/cayleygraph/rdfsail/clog"
	"github.com/cayleygraph/rdfsail/graph"
	"github.com/cayleygraph/rdfsail/internal"
	"github.com/cayleygraph/rdfsail/internal/config"
	"github.com/cayleygraph/rdfsail/materialize"
	"github.com/cayleygraph/rdfsail/plugin"
	"github.com/cayleygraph/rdfsail/plugin/builtin"
	"github.com/cayleygraph/rdfsail/sail"
	"github.com/cayleygraph/rdfsail/sail/kv"
)

const (
	flagLoad       = "load"
	flagLoadFormat = "load_format"
	flagDump       = "dump"
	flagDumpFormat = "dump_format"
	flagRDFMap     = "rdfmap"
)

// Snapshot names.
const (
	snapshotExplicit = "explicit"
	snapshotInferred = "inferred"
)

var ErrNotPersistent = errors.New("database backend is not persistent")

func registerLoadFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(flagLoad, "i", "", `RDF file to load before running (".gz" supported, "-" for stdin)`)
	var names []string
	for _, f := range quad.Formats() {
		if f.Reader != nil {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)
	cmd.Flags().String(flagLoadFormat, "", `RDF format to use for loading instead of auto-detection ("`+strings.Join(names, `", "`)+`")`)
}

func registerDumpFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(flagDump, "o", "", `RDF file to dump the statements to (".gz" supported, "-" for stdout)`)
	var names []string
	for _, f := range quad.Formats() {
		if f.Writer != nil {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)
	cmd.Flags().String(flagDumpFormat, "", `RDF format to use instead of auto-detection ("`+strings.Join(names, `", "`)+`")`)
}

func loadConfig() (*config.Config, error) {
	return config.FromViper(viper.GetViper())
}

func printBackendInfo(cfg *config.Config) {
	path := cfg.Store.Path
	if path != "" {
		path = " (" + path + ")"
	}
	clog.Infof("using backend %q%s", cfg.Store.Backend, path)
}

// instance is an opened snapshot database, the store restored from it and
// a graph mirroring the store.
type instance struct {
	cfg     *config.Config
	db      *kv.DB
	store   *sail.Store
	graph   *graph.Graph
	plugins *plugin.Registry
}

func openInstance(ctx context.Context, cfg *config.Config) (*instance, error) {
	plugins, err := builtin.NewRegistry(pluginOptions(cfg))
	if err != nil {
		return nil, err
	}
	db, err := kv.Open(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	explicit, err := loadSnapshot(ctx, db, snapshotExplicit)
	if err != nil {
		db.Close()
		return nil, err
	}
	inferred, err := loadSnapshot(ctx, db, snapshotInferred)
	if err != nil {
		db.Close()
		return nil, err
	}
	store := sail.NewStore(explicit)
	if _, err := store.Connection().AddInferred(inferred.Statements()); err != nil {
		db.Close()
		return nil, err
	}

	g := graph.New()
	tx := g.Write("open")
	bridge.WriteModel(tx, explicit, materialize.UtilLayer)
	bridge.WriteModel(tx, inferred, materialize.InferenceLayer)
	if err := tx.Commit(); err != nil {
		db.Close()
		return nil, err
	}
	clog.Infof("restored %d asserted and %d inferred statements", explicit.Len(), inferred.Len())
	return &instance{cfg: cfg, db: db, store: store, graph: g, plugins: plugins}, nil
}

func loadSnapshot(ctx context.Context, db *kv.DB, name string) (*sail.Model, error) {
	m, err := db.Load(ctx, name)
	if errors.Is(err, kv.ErrNotFound) {
		return sail.NewModel(), nil
	}
	return m, err
}

// save writes the store back to the database.
func (in *instance) save(ctx context.Context) error {
	if err := in.db.Save(ctx, snapshotExplicit, in.store.Explicit().Model()); err != nil {
		return err
	}
	return in.db.Save(ctx, snapshotInferred, in.store.Inferred().Model())
}

func (in *instance) Close() error {
	return in.db.Close()
}

// load imports a file named by the load flags, if any, and reports whether
// the store changed.
func (in *instance) load(ctx context.Context, cmd *cobra.Command, file string) (bool, error) {
	if file == "" {
		file, _ = cmd.Flags().GetString(flagLoad)
	}
	if file == "" {
		return false, nil
	}
	params := map[string]string{builtin.FileParam: file}
	if typ, _ := cmd.Flags().GetString(flagLoadFormat); typ != "" {
		params[builtin.FormatParam] = typ
	}
	if f := cmd.Flags().Lookup(flagRDFMap); f != nil && f.Value.String() != "" {
		params[builtin.RDFMapParam] = f.Value.String()
	}
	out, err := in.run(ctx, cmd, builtin.ImportRDF, params)
	if err != nil {
		return false, err
	}
	clog.Infof("%d statements approved", out.Approved)
	return true, nil
}

func NewInitDatabaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty snapshot database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			printBackendInfo(cfg)
			if !kv.IsPersistent(cfg.Store.Backend) {
				return ErrNotPersistent
			}
			ctx, cancel := getContext()
			defer cancel()
			db, err := kv.Open(cfg.Store.Backend, cfg.Store.Path)
			if err != nil {
				return err
			}
			defer db.Close()
			for _, name := range []string{snapshotExplicit, snapshotInferred} {
				if err := db.Save(ctx, name, sail.NewModel()); err != nil {
					return err
				}
			}
			return nil
		},
	}
	return cmd
}

func NewLoadDatabaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load [file]",
		Short: "Import an RDF file into the store.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			printBackendInfo(cfg)
			p := mustSetupProfile(cmd)
			defer mustFinishProfile(p)

			var file string
			if len(args) == 1 {
				file = args[0]
			}
			if load, _ := cmd.Flags().GetString(flagLoad); file == "" && load == "" {
				return errors.New("one RDF file must be specified")
			}
			ctx, cancel := getContext()
			defer cancel()
			in, err := openInstance(ctx, cfg)
			if err != nil {
				return err
			}
			defer in.Close()

			if _, err := in.load(ctx, cmd, file); err != nil {
				return err
			}
			if err := in.save(ctx); err != nil {
				return err
			}
			if dump, _ := cmd.Flags().GetString(flagDump); dump != "" {
				typ, _ := cmd.Flags().GetString(flagDumpFormat)
				return in.dump(cmd, dump, typ, false)
			}
			return nil
		},
	}
	cmd.Flags().String(flagRDFMap, "", "YAML file mapping predicates to graph attributes")
	registerLoadFlags(cmd)
	registerDumpFlags(cmd)
	return cmd
}

func NewDumpDatabaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [file]",
		Short: "Write the stored statements to an RDF file.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			printBackendInfo(cfg)
			dump, _ := cmd.Flags().GetString(flagDump)
			if dump == "" && len(args) == 1 {
				dump = args[0]
			}
			if dump == "" {
				dump = "-"
			}
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
			typ, _ := cmd.Flags().GetString(flagDumpFormat)
			withInferred, _ := cmd.Flags().GetBool("inferred")
			return in.dump(cmd, dump, typ, withInferred)
		},
	}
	cmd.Flags().Bool("inferred", false, "include inferred statements")
	registerLoadFlags(cmd)
	registerDumpFlags(cmd)
	return cmd
}

func (in *instance) dump(cmd *cobra.Command, file, typ string, withInferred bool) error {
	stmts := in.store.Connection().Statements(withInferred, nil, nil, nil)
	if file == "-" {
		if typ == "" {
			typ = "nquads"
		}
		_, err := internal.Write(cmd.OutOrStdout(), stmts, typ)
		return err
	}
	n, err := internal.Dump(stmts, file, typ)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d statements written to %s\n", n, file)
	return nil
}

type profileData struct {
	cpuProfile *os.File
	memPath    string
}

func mustSetupProfile(cmd *cobra.Command) profileData {
	p := profileData{}
	if mpp := cmd.Flag("memprofile"); mpp != nil {
		p.memPath = mpp.Value.String()
	}
	cpp := cmd.Flag("cpuprofile")
	if cpp == nil {
		return p
	}
	if v := cpp.Value.String(); v != "" {
		f, err := os.Create(v)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not open CPU profile file %s\n", v)
			os.Exit(1)
		}
		p.cpuProfile = f
		pprof.StartCPUProfile(f)
	}
	return p
}

func mustFinishProfile(p profileData) {
	if p.cpuProfile != nil {
		pprof.StopCPUProfile()
		p.cpuProfile.Close()
	}
	if p.memPath != "" {
		f, err := os.Create(p.memPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not open memory profile file %s\n", p.memPath)
			os.Exit(1)
		}
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not write memory profile file %s\n", p.memPath)
		}
		f.Close()
	}
}
