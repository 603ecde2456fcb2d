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

// Package config is the typed view of the rdfsail configuration held by
// viper: flags, config file and RDFSAIL_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding keys.
// Dots in keys become underscores, e.g. RDFSAIL_STORE_PATH.
const EnvPrefix = "RDFSAIL"

const (
	KeyBackend  = "store.backend"
	KeyPath     = "store.path"
	KeyOptions  = "store.options"
	KeyReadOnly = "store.read_only"

	KeyLoadBatch = "load.batch"

	KeyReasonerCommand = "reasoner.command"
	KeyReasonerArgs    = "reasoner.args"
	KeyReasonerURL     = "reasoner.url"
	KeyReasonerFormat  = "reasoner.format"

	KeyRemoteURL     = "remote.url"
	KeyRemoteTimeout = "remote.timeout"
	KeySPARQL        = "sparql.endpoint"

	KeyListen      = "http.listen"
	KeyHTTPTimeout = "http.timeout"
	KeyConnLimit   = "http.conn_limit"

	KeyLayerMask = "plugin.layer_mask"
)

// Defaults.
const (
	DefaultBackend = "memory"
	DefaultListen  = "127.0.0.1:64210"
	DefaultTimeout = 30 * time.Second
)

// Config defines the behavior of rdfsail commands.
type Config struct {
	Store     Store
	LoadBatch int
	Reasoner  Reasoner
	Remote    Remote
	SPARQL    string
	HTTP      HTTP
	// LayerMask overrides the layer mask of every plugin when non-zero.
	LayerMask int
}

// Store selects the snapshot database.
type Store struct {
	Backend string
	Path    string
	Options map[string]interface{}
	// ReadOnly rejects writes made over HTTP.
	ReadOnly bool
}

// Reasoner configures the external OWL reasoner. An empty command and URL
// select the built-in rule reasoner.
type Reasoner struct {
	Command string
	Args    []string
	URL     string
	Format  string
}

type Remote struct {
	URL     string
	Timeout time.Duration
}

type HTTP struct {
	Listen  string
	Timeout time.Duration
	// ConnLimit caps simultaneous connections; zero means no limit.
	ConnLimit int
}

// SetDefaults installs the default value of every key and binds the
// environment.
func SetDefaults(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyBackend, DefaultBackend)
	v.SetDefault(KeyLoadBatch, quad.DefaultBatch)
	v.SetDefault(KeyReasonerFormat, "nquads")
	v.SetDefault(KeyRemoteTimeout, DefaultTimeout)
	v.SetDefault(KeyListen, DefaultListen)
	v.SetDefault(KeyHTTPTimeout, DefaultTimeout)
}

// FromViper reads and validates the configuration.
func FromViper(v *viper.Viper) (*Config, error) {
	c := &Config{
		Store: Store{
			Backend:  v.GetString(KeyBackend),
			Path:     v.GetString(KeyPath),
			Options:  v.GetStringMap(KeyOptions),
			ReadOnly: v.GetBool(KeyReadOnly),
		},
		LoadBatch: v.GetInt(KeyLoadBatch),
		Reasoner: Reasoner{
			Command: v.GetString(KeyReasonerCommand),
			Args:    v.GetStringSlice(KeyReasonerArgs),
			URL:     v.GetString(KeyReasonerURL),
			Format:  v.GetString(KeyReasonerFormat),
		},
		Remote: Remote{
			URL:     v.GetString(KeyRemoteURL),
			Timeout: v.GetDuration(KeyRemoteTimeout),
		},
		SPARQL: v.GetString(KeySPARQL),
		HTTP: HTTP{
			Listen:    v.GetString(KeyListen),
			Timeout:   v.GetDuration(KeyHTTPTimeout),
			ConnLimit: v.GetInt(KeyConnLimit),
		},
		LayerMask: v.GetInt(KeyLayerMask),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.LoadBatch <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeyLoadBatch, c.LoadBatch)
	}
	switch c.Reasoner.Format {
	case "nquads", "jsonld":
	default:
		return fmt.Errorf("%s: unsupported format %q", KeyReasonerFormat, c.Reasoner.Format)
	}
	if c.Reasoner.Command != "" && c.Reasoner.URL != "" {
		return fmt.Errorf("only one of %s and %s can be set", KeyReasonerCommand, KeyReasonerURL)
	}
	if c.Remote.Timeout < 0 || c.HTTP.Timeout < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}
	if c.HTTP.ConnLimit < 0 {
		return fmt.Errorf("%s cannot be negative", KeyConnLimit)
	}
	if c.LayerMask < 0 {
		return fmt.Errorf("%s cannot be negative", KeyLayerMask)
	}
	return nil
}
