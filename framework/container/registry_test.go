package container_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-ioc/framework/container"
)

type service struct {
	id   string
	peer any
}

func TestGet_AbsentName(t *testing.T) {
	c := container.New()
	obj, ok := c.Get("never-registered")
	assert.False(t, ok)
	assert.Nil(t, obj)
	assert.False(t, c.Contains("never-registered"))
}

func TestGetOrCreate_CachesResult(t *testing.T) {
	c := container.New()
	calls := 0

	first, err := c.GetOrCreate("svc", func() (any, error) {
		calls++
		return &service{id: "svc"}, nil
	})
	require.NoError(t, err)

	second, err := c.GetOrCreate("svc", func() (any, error) {
		calls++
		return &service{id: "other"}, nil
	})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
	assert.True(t, c.Contains("svc"))
}

func TestGetOrCreate_FactoryErrorRollsBack(t *testing.T) {
	c := container.New()
	boom := errors.New("dial failed")

	_, err := c.GetOrCreate("svc", func() (any, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	assert.False(t, c.Contains("svc"))
	assert.False(t, c.IsCurrentlyInCreation("svc"))

	// A failed name is retryable.
	obj, err := c.GetOrCreate("svc", func() (any, error) { return &service{id: "svc"}, nil })
	require.NoError(t, err)
	assert.NotNil(t, obj)
}

func TestRegisterExisting_NeverOverwrites(t *testing.T) {
	c := container.New()
	first := &service{id: "one"}

	require.NoError(t, c.RegisterExisting("svc", first))
	err := c.RegisterExisting("svc", &service{id: "two"})
	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrDuplicateRegistration)

	var created *container.CreationError
	require.ErrorAs(t, err, &created)
	assert.Equal(t, "svc", created.Name)

	obj, ok := c.Get("svc")
	require.True(t, ok)
	assert.Same(t, first, obj)
}

func TestGetOrCreate_CircularWithEarlyReference(t *testing.T) {
	c := container.New()

	var factoryB container.Factory
	factoryB = func() (any, error) {
		b := &service{id: "b"}
		early, ok := c.Registry().Get("a", true)
		require.True(t, ok, "early reference for a should be available")
		b.peer = early
		return b, nil
	}

	a, err := c.GetOrCreate("a", func() (any, error) {
		instance := &service{id: "a"}
		c.RegisterEarlyFactory("a", func() any { return instance })
		b, err := c.GetOrCreate("b", factoryB)
		if err != nil {
			return nil, err
		}
		instance.peer = b
		return instance, nil
	})
	require.NoError(t, err)

	b, ok := c.Get("b")
	require.True(t, ok)
	assert.Same(t, a, b.(*service).peer, "b holds the early reference to a")
	assert.Same(t, b, a.(*service).peer)

	// The finished entry won the early reference.
	direct, ok := c.Get("a")
	require.True(t, ok)
	assert.Same(t, a, direct)
}

func TestGetOrCreate_CircularWithoutEarlyFactoryFails(t *testing.T) {
	c := container.New()

	_, err := c.GetOrCreate("a", func() (any, error) {
		return c.GetOrCreate("b", func() (any, error) {
			// b needs a fully built a: no early factory was registered
			return c.GetOrCreate("a", func() (any, error) { return &service{}, nil })
		})
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrCurrentlyInCreation)

	// Both names rolled back and retryable.
	assert.False(t, c.Contains("a"))
	assert.False(t, c.Contains("b"))
}

func TestGet_EarlyReferenceRequiresOptIn(t *testing.T) {
	c := container.New()

	_, err := c.GetOrCreate("a", func() (any, error) {
		instance := &service{id: "a"}
		c.RegisterEarlyFactory("a", func() any { return instance })

		_, ok := c.Registry().Get("a", false)
		assert.False(t, ok, "without allowEarly the name is absent")

		early, ok := c.Registry().Get("a", true)
		require.True(t, ok)
		assert.Same(t, instance, early)

		// Materialized once: a second lookup returns the cached early ref.
		again, ok := c.Registry().Get("a", false)
		require.True(t, ok)
		assert.Same(t, early, again)
		return instance, nil
	})
	require.NoError(t, err)
}

func TestInCreationTracking(t *testing.T) {
	c := container.New()
	assert.False(t, c.IsCurrentlyInCreation("svc"))

	_, err := c.GetOrCreate("svc", func() (any, error) {
		assert.True(t, c.IsCurrentlyInCreation("svc"))
		return &service{}, nil
	})
	require.NoError(t, err)
	assert.False(t, c.IsCurrentlyInCreation("svc"))
}

func TestSetCurrentlyInCreation_ExclusionList(t *testing.T) {
	c := container.New()
	c.SetCurrentlyInCreation("tolerant", false)

	_, err := c.GetOrCreate("tolerant", func() (any, error) {
		assert.False(t, c.IsCurrentlyInCreation("tolerant"))
		return &service{}, nil
	})
	require.NoError(t, err)

	// Toggling back restores tracking.
	c.SetCurrentlyInCreation("tolerant2", false)
	c.SetCurrentlyInCreation("tolerant2", true)
	_, err = c.GetOrCreate("tolerant2", func() (any, error) {
		assert.True(t, c.IsCurrentlyInCreation("tolerant2"))
		return &service{}, nil
	})
	require.NoError(t, err)
}

func TestRecordSuppressed_OnlyDuringCreation(t *testing.T) {
	c := container.New()

	// Outside any creation this is a no-op.
	c.Registry().RecordSuppressed(errors.New("nobody is creating"))

	boom := errors.New("build failed")
	_, err := c.GetOrCreate("svc", func() (any, error) {
		c.Registry().RecordSuppressed(errors.New("tolerated collaborator failure"))
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, c.Contains("svc"))
}

func TestGetOrCreate_ConcurrentCallersSingleInvocation(t *testing.T) {
	c := container.New()
	var invocations atomic.Int32
	results := make([]any, 16)

	var wg sync.WaitGroup
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			obj, err := c.GetOrCreate("shared", func() (any, error) {
				invocations.Add(1)
				time.Sleep(20 * time.Millisecond) // widen the race window
				return &service{id: "shared"}, nil
			})
			assert.NoError(t, err)
			results[i] = obj
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), invocations.Load())
	for _, obj := range results[1:] {
		assert.Same(t, results[0], obj)
	}
}

func TestNames_RegistrationOrder(t *testing.T) {
	c := container.New()
	require.NoError(t, c.RegisterExisting("x", 1))
	require.NoError(t, c.RegisterExisting("y", 2))
	require.NoError(t, c.RegisterExisting("z", 3))

	// "container" self-registers at construction.
	assert.Equal(t, []string{"container", "x", "y", "z"}, c.Names())
	assert.Equal(t, 4, c.Count())
}

func TestContainer_SelfRegistration(t *testing.T) {
	c := container.New()
	self, ok := c.Get("container")
	require.True(t, ok)
	assert.Same(t, c, self)
}
