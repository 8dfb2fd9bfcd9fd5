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
)

var (
	IsDevelopment  *bool
	ServiceName    *string
	AppSettingPath *string
	InMemoryStore  *bool
)

func init() {
	IsDevelopment = flag.Bool("dev", true, "set to true if the current run is for development. default value is true")
	ServiceName = flag.String("service", APIServer, "name reported to logs, traces and metrics")
	AppSettingPath = flag.String("app_setting_path", "cmd/server/config.yaml", "path to the yaml app setting of the api server")
	InMemoryStore = flag.Bool("in_memory_store", false, "keep all data in process instead of postgres, for local runs only")
}

// ParseFlags must be called once from main before any flag is read.
func ParseFlags() {
	if !flag.Parsed() {
		flag.Parse()
	}
}
