package utils

import (
	Flag "github.com/Luismorlan/conduit/utils/flag"
	Logger "github.com/Luismorlan/conduit/utils/log"
	"gopkg.in/DataDog/dd-trace-go.v1/profiler"
)

// StartProfiler starts the Datadog continuous profiler. Only production runs
// profile, it returns without doing anything elsewhere.
func StartProfiler() {
	if !IsProdEnv() {
		return
	}

	if err := profiler.Start(
		profiler.WithService(*Flag.ServiceName),
		profiler.WithEnv(ddEnv()),
		profiler.WithProfileTypes(
			profiler.CPUProfile,
			profiler.HeapProfile,
		),
	); err != nil {
		Logger.Log.Fatal(err)
	}
}

// Stop profiler, OK to be closed multiple times
func CloseProfiler() {
	profiler.Stop()
}
