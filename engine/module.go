package engine

import (
	"context"
	"time"

	Logger "github.com/Luismorlan/conduit/utils/log"
)

var (
	GracefulRetryDelay = 3 * time.Second
)

// RunModuleWithGracefulRestart keeps restarting a failing module until it
// returns cleanly or ctx is cancelled.
func RunModuleWithGracefulRestart(ctx context.Context, module Module) {
	for {
		err := module.RunModule(ctx)
		if err == nil {
			return
		}
		Logger.Log.Errorf(
			"Module %s exited with error %v, retry in %s",
			module.Name(),
			err,
			GracefulRetryDelay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(GracefulRetryDelay):
		}
	}
}

type Module interface {
	// RunModule contains the customized logic of the module. It takes in a
	// context object by which its lifecycle is managed. Return error if
	// encountered any error during execution.
	RunModule(ctx context.Context) error

	// Return name of the Module. Uniquely identifies the module instance.
	Name() string

	// Shutdown releases whatever the module holds beyond the context.
	Shutdown()
}
