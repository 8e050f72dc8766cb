// Package worker hosts the long running background modules: the story
// reaper, the trending scorer and the event notifier.
package worker

import (
	"context"
	"log"
	"sync"
	"time"

	Logger "github.com/plaza-social/plaza/utils/log"
)

const (
	GracefulRetryDelay = 3
)

// Module is one background unit of work managed by the Engine.
type Module interface {
	// RunModule contains the customized logic of the module. It takes in a
	// context object by which its lifecycle is managed. Return error if
	// encountered any error during execution.
	RunModule(ctx context.Context) error

	// Return name of the Module. Uniquely identifies the module instance. Note
	// that if there are multiple instances of the same module, each instance
	// should have a unique name instead of using the same name.
	Name() string
}

func RunModuleWithGracefulRestart(ctx context.Context, module *Module) {
	for {
		err := (*module).RunModule(ctx)
		if err == nil {
			break
		}
		log.Printf(
			"Module %s exited with error %v, retry in %d seconds",
			(*module).Name(),
			err,
			GracefulRetryDelay)

		// Wait for a small amount of time and restart.
		time.Sleep(GracefulRetryDelay * time.Second)
	}
}

// Engine manages execution lifecycle of each module. Each Module runs
// in a separate goroutine bound to the Engine's root context.
type Engine struct {
	// A list of modules that will be run in this Engine. Module's lifetime is
	// bound to Engine's lifetime.
	Modules []Module

	// Root context this engine is running on
	ctx context.Context

	// Cancel function for root context, used for graceful shutdown
	cancel context.CancelFunc
}

// Create a new Engine given the provided modules.
func NewEngine(ms []Module, ctx context.Context, cancel context.CancelFunc) *Engine {
	return &Engine{
		Modules: ms,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Execute all Engine modules and wait until all modules finish execution.
func (e *Engine) Run() {
	var wg sync.WaitGroup

	for idx := range e.Modules {
		wg.Add(1)
		go func(index int) {
			Logger.Log.Infof("start engine module %s", e.Modules[index].Name())
			defer wg.Done()
			RunModuleWithGracefulRestart(e.ctx, &e.Modules[index])
			Logger.Log.Infof("Module %s finished execution.", e.Modules[index].Name())
		}(idx)
	}

	// Block until all goroutine finished execution.
	wg.Wait()
}

func (e *Engine) Shutdown() {
	Logger.Log.Infoln("Starting graceful shutdown process. Goodbye!")
	e.cancel()
}
