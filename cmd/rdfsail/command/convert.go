package command

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cayleygraph/rdfsail/clog"
	"github.com/cayleygraph/rdfsail/internal"
	"github.com/cayleygraph/rdfsail/sail"
)

func NewConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "convert [input...] [output]",
		Aliases: []string{"conv"},
		Short:   "Convert RDF files between supported formats, merging duplicates.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dump, _ := cmd.Flags().GetString(flagDump)
			dumpf, _ := cmd.Flags().GetString(flagDumpFormat)
			if dump == "" && len(args) > 0 {
				i := len(args) - 1
				dump, args = args[i], args[:i]
			}

			var files []string
			if load, _ := cmd.Flags().GetString(flagLoad); load != "" {
				files = append(files, load)
			}
			files = append(files, args...)
			if len(files) == 0 || dump == "" {
				return errors.New("both input and output files must be specified")
			}
			loadf, _ := cmd.Flags().GetString(flagLoadFormat)

			ctx, cancel := getContext()
			defer cancel()
			m := sail.NewModel()
			for _, path := range files {
				if dump == "-" {
					clog.Infof("reading %q", path)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "reading %q\n", path)
				}
				stmts, err := internal.Read(ctx, path, loadf)
				if err != nil {
					return err
				}
				m.AddAll(stmts)
			}
			if dump == "-" {
				if dumpf == "" {
					dumpf = "nquads"
				}
				_, err := internal.Write(cmd.OutOrStdout(), m.Statements(), dumpf)
				return err
			}
			n, err := internal.Dump(m.Statements(), dump, dumpf)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d statements written to %s\n", n, dump)
			return nil
		},
	}
	registerLoadFlags(cmd)
	registerDumpFlags(cmd)
	return cmd
}
