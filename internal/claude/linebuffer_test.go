// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package claude

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineBuffer_SplitAcrossChunks(t *testing.T) {
	var b LineBuffer

	assert.Equal(t, []string{`{"a":1}`}, b.Feed([]byte(`{"a":1}`+"\n"+`{"b"`)))
	assert.Equal(t, 4, b.Pending())
	assert.Equal(t, []string{`{"b":2}`}, b.Feed([]byte(`:2}`+"\n")))
	assert.Equal(t, 0, b.Pending())
}

func TestLineBuffer_SameAsSingleChunk(t *testing.T) {
	input := "one\ntwo\r\n\nthree\n"

	var whole LineBuffer
	expected := whole.Feed([]byte(input))

	var split LineBuffer
	var got []string
	for i := 0; i < len(input); i++ {
		got = append(got, split.Feed([]byte{input[i]})...)
	}

	assert.Equal(t, []string{"one", "two", "", "three"}, expected)
	assert.Equal(t, expected, got)
}

func TestLineBuffer_SplitMultibyteRune(t *testing.T) {
	var b LineBuffer
	line := []byte("✻ Working\n")

	assert.Empty(t, b.Feed(line[:1]))
	assert.Equal(t, []string{"✻ Working"}, b.Feed(line[1:]))
}

func TestLineBuffer_Flush(t *testing.T) {
	var b LineBuffer

	_, ok := b.Flush()
	assert.False(t, ok)

	b.Feed([]byte("done\npartial"))
	tail, ok := b.Flush()
	assert.True(t, ok)
	assert.Equal(t, "partial", tail)

	_, ok = b.Flush()
	assert.False(t, ok)
}
