package glog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/rdfsail/clog"
)

func TestVerbosity(t *testing.T) {
	clog.SetV(2)
	defer clog.SetV(0)
	require.True(t, clog.V(2))
	require.False(t, clog.V(3))

	clog.SetV(0)
	require.False(t, clog.V(1))
}
