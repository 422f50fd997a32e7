package container_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-container/container"
)

// recorder collects finalizer invocations across goroutines.
type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	r.order = append(r.order, name)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

func registerWithFinalizer(t *testing.T, c *container.Container, name string, rec *recorder) *container.Tag[string] {
	t.Helper()
	tag := container.NewTag[string](name)
	err := container.Register(c, tag, container.Spec[string]{
		Create:  func(*container.Context) (string, error) { return name, nil },
		Cleanup: func(string) error { rec.add(name); return nil },
	})
	require.NoError(t, err)
	return tag
}

// ── Idempotence & lockout ─────────────────────────────────────────────────────

func TestDestroy_IsIdempotent(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Destroy())
	require.NoError(t, c.Destroy(), "second destroy must be a no-op success")
}

func TestDestroy_LocksOutEveryOperation(t *testing.T) {
	c := container.New()
	tag := container.NewTag[string]("svc")
	require.NoError(t, container.RegisterValue(c, tag, "v"))
	require.NoError(t, c.Destroy())

	_, err := container.Resolve(c, tag)
	assert.ErrorIs(t, err, container.ErrContainerDestroyed, "resolve")

	_, err = container.ResolveAll(c, tag)
	assert.ErrorIs(t, err, container.ErrContainerDestroyed, "resolveAll")

	err = container.RegisterValue(c, tag, "again")
	assert.ErrorIs(t, err, container.ErrContainerDestroyed, "register")

	_, err = c.Child("late")
	assert.ErrorIs(t, err, container.ErrContainerDestroyed, "child")
}

// ── Selective finalization ────────────────────────────────────────────────────

func TestDestroy_SkipsNeverInstantiatedEntries(t *testing.T) {
	c := container.New()
	rec := &recorder{}

	used := registerWithFinalizer(t, c, "used", rec)
	registerWithFinalizer(t, c, "unused", rec)

	_, err := container.Resolve(c, used)
	require.NoError(t, err)
	require.NoError(t, c.Destroy())

	assert.Equal(t, []string{"used"}, rec.snapshot(),
		"a finalizer must never run for a dependency that was never created")
}

func TestDestroy_AwaitsInFlightCreation(t *testing.T) {
	c := container.New()
	rec := &recorder{}
	tag := container.NewTag[string]("slow")

	started := make(chan struct{})
	require.NoError(t, container.Register(c, tag, container.Spec[string]{
		Create: func(*container.Context) (string, error) {
			close(started)
			time.Sleep(20 * time.Millisecond)
			return "slow", nil
		},
		Cleanup: func(string) error { rec.add("slow"); return nil },
	}))

	go func() { _, _ = container.Resolve(c, tag) }()
	<-started

	require.NoError(t, c.Destroy())
	assert.Equal(t, []string{"slow"}, rec.snapshot(),
		"destroy should wait for the in-flight creation and finalize it")
}

// ── Failure aggregation ───────────────────────────────────────────────────────

func TestDestroy_AggregatesAllFinalizerFailures(t *testing.T) {
	c := container.New()
	rec := &recorder{}

	bad1 := container.NewTag[string]("bad1")
	bad2 := container.NewTag[string]("bad2")
	good := registerWithFinalizer(t, c, "good", rec)

	for _, tc := range []struct {
		tag *container.Tag[string]
		err error
	}{
		{bad1, errors.New("bad1 exploded")},
		{bad2, errors.New("bad2 exploded")},
	} {
		failure := tc.err
		require.NoError(t, container.Register(c, tc.tag, container.Spec[string]{
			Create:  func(*container.Context) (string, error) { return "v", nil },
			Cleanup: func(string) error { return failure },
		}))
	}

	_, err := container.ResolveAll(c, bad1, bad2, good)
	require.NoError(t, err)

	err = c.Destroy()
	require.Error(t, err)

	var final *container.FinalizationError
	require.ErrorAs(t, err, &final)
	assert.Len(t, final.AllErrors(), 2, "both failures must be surfaced, not just the first")
	assert.Equal(t, []string{"good"}, rec.snapshot(),
		"a failing finalizer must not prevent the others from running")
}

// ── Cascade ordering ──────────────────────────────────────────────────────────

func TestDestroy_ChildrenBeforeParent(t *testing.T) {
	parent := container.New()
	rec := &recorder{}

	parentTag := registerWithFinalizer(t, parent, "parent-db", rec)
	_, err := container.Resolve(parent, parentTag)
	require.NoError(t, err)

	child, err := parent.Child("request")
	require.NoError(t, err)
	childTag := registerWithFinalizer(t, child, "child-session", rec)
	_, err = container.Resolve(child, childTag)
	require.NoError(t, err)

	require.NoError(t, parent.Destroy())

	order := rec.snapshot()
	require.Equal(t, []string{"child-session", "parent-db"}, order,
		"children must be finalized strictly before the parent")
}

func TestDestroy_CascadeCollectsChildFailures(t *testing.T) {
	parent := container.New()

	child, err := parent.Child("request")
	require.NoError(t, err)

	tag := container.NewTag[string]("leaky")
	require.NoError(t, container.Register(child, tag, container.Spec[string]{
		Create:  func(*container.Context) (string, error) { return "v", nil },
		Cleanup: func(string) error { return errors.New("leak") },
	}))
	_, err = container.Resolve(child, tag)
	require.NoError(t, err)

	err = parent.Destroy()
	require.Error(t, err)

	var final *container.FinalizationError
	assert.ErrorAs(t, err, &final)
	assert.True(t, child.Parent() == nil, "cascade must destroy the child")
}

func TestDestroy_AlreadyDestroyedChildIsTolerated(t *testing.T) {
	parent := container.New()
	child, err := parent.Child("request")
	require.NoError(t, err)

	require.NoError(t, child.Destroy())
	require.NoError(t, parent.Destroy(), "a pre-destroyed child must not fail the cascade")
}

// ── Use ───────────────────────────────────────────────────────────────────────

func TestUse_DestroysAfterCallback(t *testing.T) {
	c := container.New()
	rec := &recorder{}
	tag := registerWithFinalizer(t, c, "db", rec)

	err := container.Use(c, tag, func(v string) error {
		assert.Equal(t, "db", v)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"db"}, rec.snapshot())

	_, err = container.Resolve(c, tag)
	assert.ErrorIs(t, err, container.ErrContainerDestroyed)
}

func TestUse_DestroysEvenWhenCallbackFails(t *testing.T) {
	c := container.New()
	rec := &recorder{}
	tag := registerWithFinalizer(t, c, "db", rec)
	boom := errors.New("handler failed")

	err := container.Use(c, tag, func(string) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"db"}, rec.snapshot())
}

func TestUse_SurfacesBothCallbackAndTeardownErrors(t *testing.T) {
	c := container.New()
	tag := container.NewTag[string]("db")
	boom := errors.New("handler failed")
	leak := errors.New("close failed")

	require.NoError(t, container.Register(c, tag, container.Spec[string]{
		Create:  func(*container.Context) (string, error) { return "v", nil },
		Cleanup: func(string) error { return leak },
	}))

	err := container.Use(c, tag, func(string) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, leak)
}

func TestUse_ResolveFailureStillDestroys(t *testing.T) {
	c := container.New()
	tag := container.NewTag[string]("missing")

	err := container.Use(c, tag, func(string) error {
		t.Fatal("callback must not run when resolution fails")
		return nil
	})
	assert.ErrorIs(t, err, container.ErrUnknownDependency)

	_, err = container.Resolve(c, tag)
	assert.ErrorIs(t, err, container.ErrContainerDestroyed)
}
