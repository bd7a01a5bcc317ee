// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package watcher

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_Basic(t *testing.T) {
	var callCount atomic.Int32

	d := NewDebouncer(50 * time.Millisecond)
	d.Debounce("key1", func() {
		callCount.Add(1)
	})
	assert.Equal(t, 1, d.Pending())

	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, int32(1), callCount.Load())
	assert.Equal(t, 0, d.Pending())
}

func TestDebouncer_BurstRunsLastFunction(t *testing.T) {
	var last atomic.Int32

	d := NewDebouncer(50 * time.Millisecond)
	for i := 1; i <= 10; i++ {
		n := int32(i)
		d.Debounce("key1", func() {
			last.Store(n)
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(10), last.Load())
}

func TestDebouncer_DifferentKeys(t *testing.T) {
	var count1, count2 atomic.Int32

	d := NewDebouncer(50 * time.Millisecond)
	d.Debounce("key1", func() { count1.Add(1) })
	d.Debounce("key2", func() { count2.Add(1) })

	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, int32(1), count1.Load())
	assert.Equal(t, int32(1), count2.Load())
}

func TestDebouncer_Cancel(t *testing.T) {
	var callCount atomic.Int32

	d := NewDebouncer(50 * time.Millisecond)
	d.Debounce("key1", func() { callCount.Add(1) })
	d.Cancel("key1")

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), callCount.Load())
}

func TestDebouncer_Stop(t *testing.T) {
	var callCount atomic.Int32

	d := NewDebouncer(50 * time.Millisecond)
	d.Debounce("a", func() { callCount.Add(1) })
	d.Debounce("b", func() { callCount.Add(1) })
	d.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), callCount.Load())
	assert.Equal(t, 0, d.Pending())
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	d := NewDebouncer(0)
	assert.Equal(t, defaultDebounceDuration, d.duration)
}
