package command

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cayleygraph/rdfsail/internal/repl"
)

func NewReplCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Drop into an interactive shell over the store.",
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
			if _, err := in.load(ctx, cmd, ""); err != nil {
				return err
			}

			s := repl.NewSession(in.store, in.graph, in.plugins, os.Stdout)
			s.Params = defaultParams(cfg)
			timeout, _ := cmd.Flags().GetDuration("timeout")
			if err := repl.Repl(ctx, s, timeout); err != nil {
				return err
			}
			return in.save(ctx)
		},
	}
	cmd.Flags().DurationP("timeout", "t", 30*time.Second, "elapsed time until an individual query or plugin run times out")
	registerLoadFlags(cmd)
	return cmd
}
