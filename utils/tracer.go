package utils

import (
	Flag "github.com/Luismorlan/conduit/utils/flag"
	Logger "github.com/Luismorlan/conduit/utils/log"
	"github.com/sirupsen/logrus"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

func ddEnv() string {
	if IsProdEnv() {
		return "production"
	}
	return "development"
}

// StartTracer starts the Datadog tracer. The gin middleware reports spans
// through it.
func StartTracer() {
	tracer.Start(
		tracer.WithService(*Flag.ServiceName),
		tracer.WithEnv(ddEnv()),
	)

	Logger.Log.WithFields(
		logrus.Fields{"env": ddEnv()},
	).Info("tracer initialized")
}

// Stop tracer, OK to be closed multiple times
func CloseTracer() {
	tracer.Stop()
}
