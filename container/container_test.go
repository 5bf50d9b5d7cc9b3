package container

import (
	goerrors "errors"
	"sync"
	"sync/atomic"
	"testing"

	"jsctx/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDIContainer_Lifetimes(t *testing.T) {
	c := NewDIContainer()
	built := 0
	factory := func(Resolver) (interface{}, error) {
		built++
		return &built, nil
	}

	require.NoError(t, c.Register("single", factory, Singleton))
	require.NoError(t, c.Register("many", func(Resolver) (interface{}, error) {
		return new(int), nil
	}, Transient))

	assert.Equal(t, 0, built, "singletons are built on first resolve")

	a := c.MustResolve("single")
	b := c.MustResolve("single")
	assert.Same(t, a, b)
	assert.Equal(t, 1, built)

	x := c.MustResolve("many")
	y := c.MustResolve("many")
	assert.NotSame(t, x, y)

	lifetime, err := c.GetLifetime("single")
	require.NoError(t, err)
	assert.Equal(t, "singleton", lifetime.String())
	assert.Equal(t, []string{"many", "single"}, c.ListDependencies())
}

func TestDIContainer_Errors(t *testing.T) {
	c := NewDIContainer()

	err := c.Register("", func(Resolver) (interface{}, error) { return nil, nil }, Singleton)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	assert.Error(t, c.Register("x", nil, Singleton))

	require.NoError(t, c.RegisterInstance("x", 1))
	assert.Error(t, c.Register("x", func(Resolver) (interface{}, error) { return 2, nil }, Singleton))
	assert.Equal(t, 1, c.MustResolve("x"))

	_, err = c.Resolve("missing")
	assert.True(t, errors.IsType(err, errors.ErrorTypeSystem))
	_, err = c.GetLifetime("missing")
	assert.Error(t, err)
	assert.Panics(t, func() { c.MustResolve("missing") })

	cause := goerrors.New("no disk")
	require.NoError(t, c.Register("broken", func(Resolver) (interface{}, error) { return nil, cause }, Singleton))
	_, err = c.Resolve("broken")
	assert.ErrorIs(t, err, cause)
}

func TestDIContainer_CircularDependency(t *testing.T) {
	c := NewDIContainer()
	require.NoError(t, c.Register("loop", func(r Resolver) (interface{}, error) {
		return r.Resolve("loop")
	}, Singleton))

	_, err := c.Resolve("loop")
	require.Error(t, err)
	se, ok := errors.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "INSTANCE_CREATION_FAILED", se.Code)
	inner, ok := errors.AsError(se.Cause)
	require.True(t, ok)
	assert.Equal(t, "CIRCULAR_DEPENDENCY", inner.Code)
	assert.Equal(t, "loop -> loop", inner.Context["chain"])
}

func hasCode(err error, code string) bool {
	for e, ok := errors.AsError(err); ok; e, ok = errors.AsError(e.Cause) {
		if e.Code == code {
			return true
		}
	}
	return false
}

func TestDIContainer_IndirectCycle(t *testing.T) {
	c := NewDIContainer()
	require.NoError(t, c.Register("a", func(r Resolver) (interface{}, error) { return r.Resolve("b") }, Singleton))
	require.NoError(t, c.Register("b", func(r Resolver) (interface{}, error) { return r.Resolve("a") }, Transient))

	_, err := c.Resolve("a")
	assert.True(t, hasCode(err, "CIRCULAR_DEPENDENCY"))

	// a failed build leaves nothing behind
	_, err = c.Resolve("a")
	assert.True(t, hasCode(err, "CIRCULAR_DEPENDENCY"))
}

func TestDIContainer_ConcurrentSingletonResolution(t *testing.T) {
	c := NewDIContainer()
	var built atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, c.Register("slow", func(Resolver) (interface{}, error) {
		if built.Add(1) == 1 {
			close(started)
		}
		<-release
		return new(int), nil
	}, Singleton))

	const callers = 8
	results := make([]interface{}, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = c.Resolve("slow")
		}()
	}
	<-started
	close(release)
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
	assert.Equal(t, int32(1), built.Load())
}

func TestDIContainer_CrossGoroutineCycleFails(t *testing.T) {
	c := NewDIContainer()
	aStarted, bStarted := make(chan struct{}), make(chan struct{})
	var aOnce, bOnce sync.Once

	require.NoError(t, c.Register("a", func(r Resolver) (interface{}, error) {
		aOnce.Do(func() { close(aStarted) })
		<-bStarted
		return r.Resolve("b")
	}, Singleton))
	require.NoError(t, c.Register("b", func(r Resolver) (interface{}, error) {
		bOnce.Do(func() { close(bStarted) })
		<-aStarted
		return r.Resolve("a")
	}, Singleton))

	var errA, errB error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _, errA = c.Resolve("a") }()
	go func() { defer wg.Done(); _, errB = c.Resolve("b") }()
	wg.Wait()

	assert.True(t, hasCode(errA, "CIRCULAR_DEPENDENCY"))
	assert.True(t, hasCode(errB, "CIRCULAR_DEPENDENCY"))
}
