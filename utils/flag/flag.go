/*
flag Package set up cli flags shared across services

Usage:

	Flags listed in this package are shared across boundaries and service-agnostic
	For service dependent flags please define in their respective package
*/

package flag

import (
	"flag"
)

const (
	APIServer = "api_server"
	Worker    = "worker"
)

var (
	IsDevelopment bool
	ServiceName   string
	ByPassAuth    bool
)

// The binary entry point is responsible for calling flag.Parse once
// its own flags are registered, otherwise service specific flags would
// be rejected as unknown.
func init() {
	flag.BoolVar(&IsDevelopment, "dev", true, "set to true if the current run is for development. default value is true")
	flag.StringVar(&ServiceName, "service", APIServer, "'api_server' or 'worker'")
	flag.BoolVar(&ByPassAuth, "no_auth", false, "set to true to skip session validation, local debugging only")
}
