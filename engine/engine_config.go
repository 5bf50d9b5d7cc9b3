package engine

import (
	"fmt"

	"jsctx/container"
	"jsctx/errors"
	"jsctx/jobmanager"
	"jsctx/logging"
	"jsctx/serialization"
)

const defaultWorkers = 4

// Engine analyzes source units. The engine itself only holds shared services;
// every call to Analyze builds its own disambiguation state, so an Engine may
// be used from several goroutines.
type Engine struct {
	container   container.Container
	serializers *serialization.SerializerRegistry
	jobManager  *jobmanager.JobManager
	logger      logging.Logger
}

// Config contains configuration for the engine. Nil fields get defaults.
type Config struct {
	Container   container.Container
	Serializers *serialization.SerializerRegistry
	JobManager  *jobmanager.JobManager
	Logger      logging.Logger
	Workers     int // used only when JobManager is nil
}

// NewEngine creates an engine with default dependencies
func NewEngine() (*Engine, error) {
	return NewEngineWithConfig(Config{})
}

// NewEngineWithConfig registers the missing services in the container and
// resolves them.
func NewEngineWithConfig(config Config) (*Engine, error) {
	c := config.Container
	if c == nil {
		c = container.NewDIContainer()
	}

	defaults := []struct {
		name    string
		factory container.Factory
	}{
		{container.ServiceLogger, func(container.Resolver) (interface{}, error) {
			if config.Logger != nil {
				return config.Logger, nil
			}
			return logging.NewNopLogger(), nil
		}},
		{container.ServiceSerializers, func(container.Resolver) (interface{}, error) {
			if config.Serializers != nil {
				return config.Serializers, nil
			}
			return serialization.NewDefaultSerializerRegistry(), nil
		}},
		{container.ServiceJobManager, func(container.Resolver) (interface{}, error) {
			if config.JobManager != nil {
				return config.JobManager, nil
			}
			workers := config.Workers
			if workers <= 0 {
				workers = defaultWorkers
			}
			return jobmanager.NewJobManager(workers), nil
		}},
	}
	for _, d := range defaults {
		if c.IsRegistered(d.name) {
			continue
		}
		if err := c.Register(d.name, d.factory, container.Singleton); err != nil {
			return nil, errors.NewSystemError("SERVICE_REGISTRATION_FAILED",
				fmt.Sprintf("failed to register %s", d.name)).Wrap(err)
		}
	}

	logger, err := resolve[logging.Logger](c, container.ServiceLogger)
	if err != nil {
		return nil, err
	}
	serializers, err := resolve[*serialization.SerializerRegistry](c, container.ServiceSerializers)
	if err != nil {
		return nil, err
	}
	jm, err := resolve[*jobmanager.JobManager](c, container.ServiceJobManager)
	if err != nil {
		return nil, err
	}

	return &Engine{
		container:   c,
		serializers: serializers,
		jobManager:  jm,
		logger:      logger.WithComponent("engine"),
	}, nil
}

func resolve[T any](c container.Container, name string) (T, error) {
	var zero T
	instance, err := c.Resolve(name)
	if err != nil {
		return zero, errors.NewSystemError("SERVICE_RESOLUTION_FAILED",
			fmt.Sprintf("failed to resolve %s", name)).Wrap(err)
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, errors.NewSystemError("INVALID_SERVICE_TYPE",
			fmt.Sprintf("resolved %s has type %T", name, instance))
	}
	return typed, nil
}

// Serializers returns the snapshot format registry
func (e *Engine) Serializers() *serialization.SerializerRegistry {
	return e.serializers
}

// JobManager returns the worker pool used by AnalyzeAll
func (e *Engine) JobManager() *jobmanager.JobManager {
	return e.jobManager
}

// Shutdown cancels outstanding batch jobs and waits for them
func (e *Engine) Shutdown() {
	e.jobManager.Shutdown()
}
