// Copyright 2014 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/rdfsail/clog"
	_ "github.com/cayleygraph/rdfsail/clog/glog"
	"github.com/cayleygraph/rdfsail/cmd/rdfsail/command"
	"github.com/cayleygraph/rdfsail/internal/config"
	"github.com/cayleygraph/rdfsail/sail/kv"
	"github.com/cayleygraph/rdfsail/version"
)

func init() {
	viper.SetConfigName("rdfsail")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.rdfsail/")
	viper.AddConfigPath("/etc/rdfsail/")
	config.SetDefaults(viper.GetViper())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the version of rdfsail.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// NewCmd returns the root command with every subcommand attached.
func NewCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rdfsail",
		Short:         "rdfsail is an RDF statement store with pluggable inference and enrichment.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("config")
			if file == "" {
				file = os.Getenv(config.EnvPrefix + "_CFG")
			}
			if file != "" {
				viper.SetConfigFile(file)
			}
			err := viper.ReadInConfig()
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && err != nil {
				return err
			}
			if conf := viper.ConfigFileUsed(); conf != "" {
				wd, _ := os.Getwd()
				if rel, _ := filepath.Rel(wd, conf); rel != "" && !strings.HasPrefix(rel, "..") {
					conf = rel
				}
				clog.Infof("using config file: %s", conf)
			}
			return nil
		},
	}
	pf := root.PersistentFlags()
	pf.StringP("config", "c", "", "path to an explicit configuration file")
	pf.StringP("backend", "d", config.DefaultBackend, `snapshot database backend ("`+strings.Join(kv.Backends(), `", "`)+`")`)
	pf.StringP("path", "a", "", "path to the snapshot database")
	pf.Int("batch", quad.DefaultBatch, "size of statement batches when loading over HTTP")
	pf.Int("layer_mask", 0, "layer mask of every created graph element, 0 for plugin defaults")
	pf.String("cpuprofile", "", "path to output cpu profile")
	pf.String("memprofile", "", "path to output memory profile")
	pf.AddGoFlagSet(flag.CommandLine)

	viper.BindPFlag(config.KeyBackend, pf.Lookup("backend"))
	viper.BindPFlag(config.KeyPath, pf.Lookup("path"))
	viper.BindPFlag(config.KeyLoadBatch, pf.Lookup("batch"))
	viper.BindPFlag(config.KeyLayerMask, pf.Lookup("layer_mask"))

	root.AddCommand(
		newVersionCmd(),
		command.NewInitDatabaseCmd(),
		command.NewLoadDatabaseCmd(),
		command.NewDumpDatabaseCmd(),
		command.NewInferCmd(),
		command.NewQueryCmd(),
		command.NewRunCmd(),
		command.NewConvertCmd(),
		command.NewPluginsCmd(),
		command.NewReplCmd(),
		command.NewHttpCmd(),
		command.NewHealthCmd(),
		command.NewPushCmd(),
		command.NewPullCmd(),
	)
	return root
}

func main() {
	if err := NewCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
