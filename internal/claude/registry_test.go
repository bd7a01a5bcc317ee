// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package claude

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcess struct {
	pid        int
	terminated atomic.Int32
	err        error
}

func (p *fakeProcess) PID() int { return p.pid }

func (p *fakeProcess) Terminate() error {
	p.terminated.Add(1)
	return p.err
}

func TestRegistry_Rekey(t *testing.T) {
	r := NewRegistry()
	p := &fakeProcess{pid: 1}

	r.SetProcess("placeholder", p)
	require.NoError(t, r.Rekey("placeholder", "real-id"))

	assert.Nil(t, r.GetProcess("placeholder"))
	assert.Same(t, p, r.GetProcess("real-id"))
	assert.Equal(t, []string{"real-id"}, r.ActiveSessions())
}

func TestRegistry_Rekey_SameKey(t *testing.T) {
	r := NewRegistry()
	p := &fakeProcess{pid: 1}
	r.SetProcess("abc", p)

	require.NoError(t, r.Rekey("abc", "abc"))
	assert.Same(t, p, r.GetProcess("abc"))
}

func TestRegistry_Rekey_TargetOccupied(t *testing.T) {
	r := NewRegistry()
	p1 := &fakeProcess{pid: 1}
	p2 := &fakeProcess{pid: 2}
	r.SetProcess("pending-1", p1)
	r.SetProcess("abc", p2)

	err := r.Rekey("pending-1", "abc")
	assert.ErrorIs(t, err, ErrKeyInUse)
	assert.Same(t, p1, r.GetProcess("pending-1"))
	assert.Same(t, p2, r.GetProcess("abc"))
}

func TestRegistry_Rekey_Missing(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Rekey("nope", "abc"))
}

func TestRegistry_RekeyConcurrentLookups(t *testing.T) {
	r := NewRegistry()
	p := &fakeProcess{pid: 1}
	r.SetProcess("placeholder", p)

	var wg sync.WaitGroup
	var both atomic.Int32
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			r.mu.Lock()
			_, a := r.processes["placeholder"]
			_, b := r.processes["real-id"]
			r.mu.Unlock()
			if a && b {
				both.Add(1)
			}
		}
	}()

	require.NoError(t, r.Rekey("placeholder", "real-id"))
	close(stop)
	wg.Wait()
	assert.Equal(t, int32(0), both.Load())
}

func TestRegistry_SetProcessIfAbsent(t *testing.T) {
	r := NewRegistry()
	p1 := &fakeProcess{pid: 1}
	p2 := &fakeProcess{pid: 2}

	assert.True(t, r.SetProcessIfAbsent("abc", p1))
	assert.False(t, r.SetProcessIfAbsent("abc", p2))
	assert.Same(t, p1, r.GetProcess("abc"))
}

func TestRegistry_DeleteProcessIf(t *testing.T) {
	r := NewRegistry()
	p1 := &fakeProcess{pid: 1}
	p2 := &fakeProcess{pid: 2}
	r.SetProcess("abc", p1)

	assert.False(t, r.DeleteProcessIf("abc", p2))
	assert.Same(t, p1, r.GetProcess("abc"))
	assert.True(t, r.DeleteProcessIf("abc", p1))
	assert.Nil(t, r.GetProcess("abc"))
}

func TestRegistry_MessageCounts(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, 0, r.GetMessageCount("abc"))
	assert.Equal(t, 1, r.IncrementMessageCount("abc"))
	assert.Equal(t, 2, r.IncrementMessageCount("abc"))
	assert.Equal(t, 2, r.GetMessageCount("abc"))

	r.DeleteMessageCount("abc")
	assert.Equal(t, 0, r.GetMessageCount("abc"))
}

func TestRegistry_ManualEditFlag(t *testing.T) {
	r := NewRegistry()

	assert.False(t, r.IsManuallyEdited("abc"))
	r.MarkAsManuallyEdited("abc")
	assert.True(t, r.IsManuallyEdited("abc"))
	r.ClearManualEditFlag("abc")
	assert.False(t, r.IsManuallyEdited("abc"))
	r.MarkAsManuallyEdited("abc")
	r.DeleteManualEditFlag("abc")
	assert.False(t, r.IsManuallyEdited("abc"))
}

func TestRegistry_Forget(t *testing.T) {
	r := NewRegistry()
	r.SetProcess("abc", &fakeProcess{})
	r.IncrementMessageCount("abc")
	r.MarkAsManuallyEdited("abc")

	r.Forget("abc")

	assert.Nil(t, r.GetProcess("abc"))
	assert.Equal(t, 0, r.GetMessageCount("abc"))
	assert.False(t, r.IsManuallyEdited("abc"))
}

func TestRegistry_Abort(t *testing.T) {
	r := NewRegistry()
	p := &fakeProcess{pid: 42}
	r.SetProcess("abc123", p)

	assert.True(t, r.Abort("abc123"))
	assert.Equal(t, int32(1), p.terminated.Load())
	// Abort leaves cleanup to the exit path.
	assert.Same(t, p, r.GetProcess("abc123"))

	assert.False(t, r.Abort("other"))
}

func TestRegistry_Abort_TerminateError(t *testing.T) {
	r := NewRegistry()
	r.SetProcess("abc", &fakeProcess{err: errors.New("permission denied")})
	assert.True(t, r.Abort("abc"))
}
