package poller

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInflightRegistry_Counts(t *testing.T) {
	r := newInflightRegistry()
	assert.Equal(t, 0, r.Total())

	r.Add(1)
	r.Add(1)
	r.Add(2)
	assert.Equal(t, 3, r.Total())

	r.Done(1)
	assert.Equal(t, 2, r.Total())

	r.Done(1)
	r.Done(2)
	assert.Equal(t, 0, r.Total())
}

func TestInflightRegistry_AtCapacity(t *testing.T) {
	r := newInflightRegistry()
	r.Add(10)
	r.Add(20)
	r.Add(20)

	excluded := r.AtCapacity(1)
	assert.ElementsMatch(t, []int64{10, 20}, excluded)

	excluded = r.AtCapacity(2)
	assert.ElementsMatch(t, []int64{20}, excluded)

	r.Done(20)
	excluded = r.AtCapacity(2)
	assert.Empty(t, excluded)
}

func TestInflightRegistry_ExclusionClearsAfterDone(t *testing.T) {
	r := newInflightRegistry()
	r.Add(7)
	require.Len(t, r.AtCapacity(1), 1)

	r.Done(7)
	assert.Empty(t, r.AtCapacity(1))
	assert.Equal(t, 0, r.Total())
}

func TestInflightRegistry_WaitBlocksUntilDrained(t *testing.T) {
	r := newInflightRegistry()
	r.Add(1)
	r.Add(2)

	done := make(chan struct{})
	go func() {
		r.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned while jobs were in flight")
	case <-time.After(20 * time.Millisecond):
	}

	r.Done(1)
	select {
	case <-done:
		t.Fatal("Wait returned with one job still in flight")
	case <-time.After(20 * time.Millisecond):
	}

	r.Done(2)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after drain")
	}
}

func TestInflightRegistry_WaitReturnsImmediatelyWhenEmpty(t *testing.T) {
	r := newInflightRegistry()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.Wait()
	}()

	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked on an empty registry")
	}
}
