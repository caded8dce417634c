/*
flag Package set up cli flags shared across services

Usage:

	Flags listed in this package are shared across boundaries and service-agnostic
	For service dependent flags please define in their respective package
*/

package flag

import (
	"flag"
	"testing"
)

const (
	APIServer    = "api_server"
	ResyncRunner = "resync_runner"
)

var (
	IsDevelopment bool
	ByPassAuth    bool
	ServiceName   string
)

func init() {
	flag.BoolVar(&IsDevelopment, "dev", true, "set to true if the current run is for development. default value is true")
	flag.BoolVar(&ByPassAuth, "bypass_auth", false, "skip token verification, for local development only")
	flag.StringVar(&ServiceName, "service", APIServer, "'api_server' or 'resync_runner'")
	// In test binaries the -test.* flags are registered after package
	// init runs, so parsing here would reject them; the test framework
	// parses the command line itself later.
	if !testing.Testing() {
		flag.Parse()
	}
}
