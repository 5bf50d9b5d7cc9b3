// Package container wires the long-lived services an analysis engine shares
// across units: the logger, the snapshot serializers and the worker pool.
package container

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"jsctx/errors"
)

// Well-known service names registered by the engine.
const (
	ServiceLogger      = "logger"
	ServiceSerializers = "serializers"
	ServiceJobManager  = "jobManager"
)

// DependencyLifetime defines the lifetime of a dependency
type DependencyLifetime int

const (
	// Transient means a new instance is created each time it's resolved
	Transient DependencyLifetime = iota
	// Singleton means the same instance is returned each time it's resolved
	Singleton
)

func (l DependencyLifetime) String() string {
	if l == Singleton {
		return "singleton"
	}
	return "transient"
}

// Resolver looks up other services from inside a factory. The resolver a
// factory receives remembers the chain of services being built, so a
// factory that asks for one of its own dependants gets CIRCULAR_DEPENDENCY.
type Resolver interface {
	Resolve(name string) (interface{}, error)
}

// Factory builds a service instance
type Factory func(r Resolver) (interface{}, error)

// Dependency represents a registered dependency
type Dependency struct {
	Factory  Factory
	Instance interface{}
	Lifetime DependencyLifetime
	built    bool
}

// Container defines the interface for dependency injection container
type Container interface {
	Register(name string, factory Factory, lifetime DependencyLifetime) error
	Resolve(name string) (interface{}, error)
	MustResolve(name string) interface{}
	IsRegistered(name string) bool
	GetLifetime(name string) (DependencyLifetime, error)
}

// build tracks a singleton under construction. waitingOn names the
// singleton its builder is currently blocked on, if any.
type build struct {
	done      chan struct{}
	waitingOn string
}

// DIContainer implements the Container interface
type DIContainer struct {
	dependencies map[string]*Dependency
	mutex        sync.RWMutex

	buildMu sync.Mutex
	builds  map[string]*build
}

// NewDIContainer creates a new dependency injection container
func NewDIContainer() *DIContainer {
	return &DIContainer{
		dependencies: make(map[string]*Dependency),
		builds:       make(map[string]*build),
	}
}

// Register adds a factory under name. Singletons are built lazily on the
// first Resolve.
func (c *DIContainer) Register(name string, factory Factory, lifetime DependencyLifetime) error {
	if name == "" {
		return errors.NewConfigError("EMPTY_DEPENDENCY_NAME", "dependency name cannot be empty")
	}
	if factory == nil {
		return errors.NewConfigError("NIL_FACTORY_FUNCTION", "factory function cannot be nil").
			WithContext("dependency", name)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.dependencies[name]; exists {
		return errors.NewSystemError("DEPENDENCY_ALREADY_REGISTERED",
			fmt.Sprintf("dependency '%s' is already registered", name))
	}

	c.dependencies[name] = &Dependency{Factory: factory, Lifetime: lifetime}
	return nil
}

// RegisterInstance registers an already built value as a singleton
func (c *DIContainer) RegisterInstance(name string, instance interface{}) error {
	if err := c.Register(name, func(Resolver) (interface{}, error) { return instance, nil }, Singleton); err != nil {
		return err
	}
	_, err := c.Resolve(name)
	return err
}

// Resolve resolves a dependency by name. Concurrent first resolutions of a
// singleton share one factory call.
func (c *DIContainer) Resolve(name string) (interface{}, error) {
	return c.resolve(name, nil)
}

// chain is the Resolver handed to factories
type chain struct {
	c    *DIContainer
	path []string
}

func (ch chain) Resolve(name string) (interface{}, error) {
	return ch.c.resolve(name, ch.path)
}

func (c *DIContainer) resolve(name string, path []string) (interface{}, error) {
	c.mutex.RLock()
	dependency, exists := c.dependencies[name]
	c.mutex.RUnlock()

	if !exists {
		return nil, errors.NewSystemError("DEPENDENCY_NOT_REGISTERED",
			fmt.Sprintf("dependency '%s' is not registered", name))
	}
	if slices.Contains(path, name) {
		return nil, circular(name, path)
	}
	if dependency.Lifetime == Transient {
		return c.create(name, dependency, path)
	}

	for {
		c.buildMu.Lock()
		if dependency.built {
			instance := dependency.Instance
			c.buildMu.Unlock()
			return instance, nil
		}
		b, inProgress := c.builds[name]
		if !inProgress {
			c.builds[name] = &build{done: make(chan struct{})}
			c.buildMu.Unlock()
			break
		}
		// Another goroutine is building name. Waiting is only safe when that
		// builder is not itself waiting, directly or not, on our chain.
		if c.waitCloses(name, path) {
			c.buildMu.Unlock()
			return nil, circular(name, path)
		}
		owner := c.ownBuild(path)
		if owner != nil {
			owner.waitingOn = name
		}
		c.buildMu.Unlock()

		<-b.done

		if owner != nil {
			c.buildMu.Lock()
			owner.waitingOn = ""
			c.buildMu.Unlock()
		}
		// built, or the builder failed and we try ourselves
	}

	instance, err := c.create(name, dependency, path)

	c.buildMu.Lock()
	if err == nil {
		dependency.Instance = instance
		dependency.built = true
	}
	b := c.builds[name]
	delete(c.builds, name)
	close(b.done)
	c.buildMu.Unlock()

	return instance, err
}

func (c *DIContainer) create(name string, dependency *Dependency, path []string) (interface{}, error) {
	next := append(slices.Clip(path), name)
	instance, err := dependency.Factory(chain{c: c, path: next})
	if err != nil {
		return nil, errors.NewSystemError("INSTANCE_CREATION_FAILED",
			fmt.Sprintf("failed to create instance for '%s'", name)).Wrap(err)
	}
	return instance, nil
}

// ownBuild returns the innermost singleton build on path. Must hold buildMu.
func (c *DIContainer) ownBuild(path []string) *build {
	for i := len(path) - 1; i >= 0; i-- {
		if b, ok := c.builds[path[i]]; ok {
			return b
		}
	}
	return nil
}

// waitCloses reports whether following the builders blocked behind name
// leads back into path. Must hold buildMu.
func (c *DIContainer) waitCloses(name string, path []string) bool {
	cur := name
	for range len(c.builds) + 1 {
		if slices.Contains(path, cur) {
			return true
		}
		b, ok := c.builds[cur]
		if !ok || b.waitingOn == "" {
			return false
		}
		cur = b.waitingOn
	}
	return false
}

func circular(name string, path []string) *errors.Error {
	return errors.NewSystemError("CIRCULAR_DEPENDENCY",
		fmt.Sprintf("circular dependency detected for '%s'", name)).
		WithContext("chain", strings.Join(append(slices.Clip(path), name), " -> "))
}

// MustResolve resolves a dependency by name or panics if it fails
func (c *DIContainer) MustResolve(name string) interface{} {
	instance, err := c.Resolve(name)
	if err != nil {
		panic(err.Error())
	}
	return instance
}

// IsRegistered checks if a dependency is registered
func (c *DIContainer) IsRegistered(name string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	_, exists := c.dependencies[name]
	return exists
}

// GetLifetime returns the lifetime of a registered dependency
func (c *DIContainer) GetLifetime(name string) (DependencyLifetime, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	dependency, exists := c.dependencies[name]
	if !exists {
		return Transient, errors.NewSystemError("DEPENDENCY_NOT_REGISTERED",
			fmt.Sprintf("dependency '%s' is not registered", name))
	}
	return dependency.Lifetime, nil
}

// ListDependencies returns the registered names in sorted order
func (c *DIContainer) ListDependencies() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	names := make([]string, 0, len(c.dependencies))
	for name := range c.dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
