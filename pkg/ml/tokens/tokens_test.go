// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	assert.Equal(t, []Token{Start, End}, Encode(""))
	assert.Equal(t, []Token{Start, End}, Encode(" \t\n "))
	assert.Equal(t, []Token{Start, 41, 13, End}, Encode("Hi"))
	assert.Equal(t, []Token{Start, 14, 8, 32, End}, Encode("  a \t\n b  "))
	assert.Equal(t, []Token{Start, 14, Unknown, Unknown, End}, Encode("a~é"))
	assert.Equal(t, []Token{Start, 16, 4, 84, End}, Encode(`'"&`))

	// No truncation.
	long := strings.Repeat("a", 3*MaxInputLength)
	assert.Len(t, Encode(long), 3*MaxInputLength+2)
}

func TestDefaultAlphabet(t *testing.T) {
	assert.Equal(t, 85, Default.Size())
	assert.Len(t, defaultTable, 81)
	for r, id := range defaultTable {
		got, found := Default.Lookup(r)
		require.True(t, found)
		assert.Equal(t, id, got)
	}
	_, found := Default.Lookup('~')
	assert.False(t, found)
}

func TestDecode(t *testing.T) {
	text := "Hello, World! (1+2?3)"
	assert.Equal(t, text, Decode(Encode(text)))
	assert.Equal(t, "a?b", Decode(Encode("a=b")))
	assert.Equal(t, "", Decode([]Token{Pad, Start, End}))
	assert.Equal(t, "?", Decode([]Token{Token(200)}))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(Encode("")))
	assert.True(t, IsEmpty(nil))
	assert.False(t, IsEmpty(Encode("x")))
	assert.False(t, IsEmpty(Encode("~")))
}

func TestCheckLength(t *testing.T) {
	require.NoError(t, CheckLength(strings.Repeat("a", MaxInputLength)))
	require.NoError(t, CheckLength("  "+strings.Repeat("a ", MaxInputLength/2)))
	require.ErrorIs(t, CheckLength(strings.Repeat("a", MaxInputLength+1)), ErrInputTooLong)
}

func TestNewAlphabet(t *testing.T) {
	_, err := NewAlphabet(map[rune]Token{'a': Start})
	require.Error(t, err)
	_, err = NewAlphabet(map[rune]Token{'a': 5, 'b': 5})
	require.Error(t, err)
	a, err := NewAlphabet(map[rune]Token{'a': 4})
	require.NoError(t, err)
	assert.Equal(t, 5, a.Size())
	assert.Equal(t, []Token{Start, 4, Unknown, End}, a.Encode("ab"))
}
