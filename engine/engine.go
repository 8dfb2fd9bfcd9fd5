// Package engine runs the background modules of the API server next to the
// HTTP listener and owns the in-process event bus they share.
package engine

import (
	"context"
	"sync"

	Logger "github.com/Luismorlan/conduit/utils/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Engine manages shared resources and execution lifecycle of each module. It
// maintains a shared event bus
type Engine struct {
	// Module's lifetime is bound to Engine's lifetime. Each Module will be ran
	// in a separate routine.
	Modules []Module

	ctx    context.Context
	cancel context.CancelFunc

	// For now we use a golang channel implementation for the EventBus.
	EventBus *gochannel.GoChannel
}

// NewEventBus creates the in-process bus. Publishing never blocks on
// subscribers, a message published while nobody listens is dropped.
func NewEventBus(buffer int64) *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            buffer,
			BlockPublishUntilSubscriberAck: false,
		},
		watermill.NewStdLogger(false, false),
	)
}

func NewEngine(ms []Module, ctx context.Context, cancel context.CancelFunc, e *gochannel.GoChannel) *Engine {
	return &Engine{
		Modules:  ms,
		ctx:      ctx,
		cancel:   cancel,
		EventBus: e,
	}
}

// Execute all Engine modules and wait untils all modules to finish execution.
func (e *Engine) Run() {
	var wg sync.WaitGroup

	for idx := range e.Modules {
		wg.Add(1)
		go func(module Module) {
			defer wg.Done()
			Logger.Log.Infof("start engine module %s", module.Name())
			RunModuleWithGracefulRestart(e.ctx, module)
			Logger.Log.Infof("Module %s finished execution.", module.Name())
		}(e.Modules[idx])
	}

	wg.Wait()
}

// Shutdown cancels the root context, shuts every module down and closes the
// event bus.
func (e *Engine) Shutdown() {
	Logger.Log.Infoln("Starting graceful shutdown process. Goodbye!")
	e.cancel()

	var wg sync.WaitGroup
	for idx := range e.Modules {
		wg.Add(1)
		go func(module Module) {
			defer wg.Done()
			module.Shutdown()
			Logger.Log.Infof("Module %s shut down.", module.Name())
		}(e.Modules[idx])
	}
	wg.Wait()

	if err := e.EventBus.Close(); err != nil {
		Logger.Log.Errorf("fail to close event bus: %v", err)
	}
}
