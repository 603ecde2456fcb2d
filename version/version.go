// Package version holds the build information of rdfsail.
package version

import "fmt"

var (
	Version = "0.1.0"

	// git hash should be filled by:
	// 	go build -ldflags="-X github.com/cayleygraph/rdfsail/version.GitHash=xxxx"

	GitHash   = "dev snapshot"
	BuildDate string
)

// String formats the version, the git hash and the build date, if known.
func String() string {
	s := fmt.Sprintf("rdfsail %s (%s)", Version, GitHash)
	if BuildDate != "" {
		s += " built " + BuildDate
	}
	return s
}
