package command

import (
	"context"
	"net"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/rdfsail/clog"
	"github.com/cayleygraph/rdfsail/internal/config"
	sailhttp "github.com/cayleygraph/rdfsail/server/http"
)

func NewHttpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve the plugin and model API on the given host and port.",
		RunE: func(cmd *cobra.Command, args []string) error {
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
			if changed, err := in.load(ctx, cmd, ""); err != nil {
				return err
			} else if changed {
				if err := in.save(ctx); err != nil {
					return err
				}
			}

			api := newAPI(in)
			host := cfg.HTTP.Listen
			phost := host
			if h, port, err := net.SplitHostPort(host); err == nil && h == "" {
				phost = net.JoinHostPort("localhost", port)
			}
			clog.Infof("listening on %s, API at http://%s/api/v1", host, phost)
			return sailhttp.Serve(ctx, host, cfg.HTTP.ConnLimit, sailhttp.LogRequest(sailhttp.CORS(api)))
		},
	}
	cmd.Flags().String("host", config.DefaultListen, "host:port to listen on")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout, "elapsed time until an individual plugin run times out")
	cmd.Flags().Int("conn_limit", 0, "maximum number of simultaneous connections, 0 for no limit")
	cmd.Flags().Bool("read_only", false, "disable writing via HTTP")
	viper.BindPFlag(config.KeyListen, cmd.Flags().Lookup("host"))
	viper.BindPFlag(config.KeyHTTPTimeout, cmd.Flags().Lookup("timeout"))
	viper.BindPFlag(config.KeyConnLimit, cmd.Flags().Lookup("conn_limit"))
	viper.BindPFlag(config.KeyReadOnly, cmd.Flags().Lookup("read_only"))
	registerLoadFlags(cmd)
	return cmd
}

// newAPI serves in and saves the store after every change.
func newAPI(in *instance) *sailhttp.API {
	api := sailhttp.NewAPI(in.store, in.graph, in.plugins)
	api.SetReadOnly(in.cfg.Store.ReadOnly)
	api.SetBatchSize(in.cfg.LoadBatch)
	api.SetTimeout(in.cfg.HTTP.Timeout)
	api.SetDefaultParams(defaultParams(in.cfg))
	var mu sync.Mutex
	api.OnChange(func() {
		mu.Lock()
		defer mu.Unlock()
		if err := in.save(context.Background()); err != nil {
			clog.Errorf("cannot save snapshot: %v", err)
		}
	})
	return api
}
