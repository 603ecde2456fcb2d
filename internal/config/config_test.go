package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	c, err := FromViper(v)
	require.NoError(t, err)
	require.Equal(t, DefaultBackend, c.Store.Backend)
	require.Equal(t, quad.DefaultBatch, c.LoadBatch)
	require.Equal(t, "nquads", c.Reasoner.Format)
	require.Equal(t, DefaultListen, c.HTTP.Listen)
	require.Equal(t, DefaultTimeout, c.Remote.Timeout)
	require.Equal(t, 0, c.LayerMask)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rdfsail.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  backend: bolt
  path: /var/lib/rdfsail/db
  options:
    nosync: true
reasoner:
  command: /usr/bin/reasoner
  args: ["-i", "{input}", "-o", "{output}"]
remote:
  url: http://gaffer:8080
  timeout: 5s
plugin:
  layer_mask: 7
`), 0644))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	t.Setenv("RDFSAIL_HTTP_LISTEN", ":8080")

	c, err := FromViper(v)
	require.NoError(t, err)
	require.Equal(t, "bolt", c.Store.Backend)
	require.Equal(t, "/var/lib/rdfsail/db", c.Store.Path)
	require.Equal(t, true, c.Store.Options["nosync"])
	require.Equal(t, []string{"-i", "{input}", "-o", "{output}"}, c.Reasoner.Args)
	require.Equal(t, 5*time.Second, c.Remote.Timeout)
	require.Equal(t, 7, c.LayerMask)
	require.Equal(t, ":8080", c.HTTP.Listen)
}

func TestValidate(t *testing.T) {
	for _, c := range []struct {
		name string
		key  string
		val  interface{}
	}{
		{"batch", KeyLoadBatch, 0},
		{"format", KeyReasonerFormat, "turtle"},
		{"timeout", KeyHTTPTimeout, "-1s"},
		{"mask", KeyLayerMask, -1},
		{"conns", KeyConnLimit, -2},
	} {
		t.Run(c.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(c.key, c.val)
			_, err := FromViper(v)
			require.Error(t, err)
		})
	}

	v := viper.New()
	SetDefaults(v)
	v.Set(KeyReasonerCommand, "r")
	v.Set(KeyReasonerURL, "http://r")
	_, err := FromViper(v)
	require.Error(t, err)
}
