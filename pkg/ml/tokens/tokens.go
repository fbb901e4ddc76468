// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package tokens maps text to the token ids consumed by the handwriting synthesis model.
//
// The alphabet is fixed: it is baked into the trained model, and the ids must match the ones
// the model was trained with. Characters outside the alphabet map to Unknown.
package tokens

import (
	"strings"

	"github.com/pkg/errors"
)

// Token is the id of one input symbol.
type Token int32

// Reserved token ids.
const (
	Pad     Token = 0
	Unknown Token = 1
	Start   Token = 2
	End     Token = 3
)

// MaxInputLength is the longest text (in characters, after whitespace collapsing) a front end
// should accept. Encode itself never truncates, see CheckLength.
const MaxInputLength = 50

// ErrInputTooLong is returned by CheckLength.
var ErrInputTooLong = errors.New("input text too long")

// defaultTable is the character table the model was trained with.
var defaultTable = map[rune]Token{
	' ': 8, '"': 4, '&': 84, '(': 66, '*': 80, ',': 37, '.': 7,
	'0': 62, '2': 63, '4': 68, '6': 71, '8': 76, ':': 74,
	'B': 47, 'D': 52, 'F': 53, 'H': 41, 'J': 64, 'L': 48, 'N': 38, 'P': 46, 'R': 55, 'T': 31, 'V': 39, 'X': 79, 'Z': 78,
	'b': 32, 'd': 27, 'f': 35, 'h': 30, 'j': 43, 'l': 26, 'n': 15, 'p': 29, 'r': 6, 't': 21, 'v': 34, 'x': 44, 'z': 10,
	'!': 72, '#': 56, '\'': 16, ')': 67, '+': 82, '-': 40, '/': 77,
	'1': 59, '3': 69, '5': 61, '7': 70, '9': 60, ';': 73, '?': 51,
	'A': 9, 'C': 57, 'E': 42, 'G': 45, 'I': 23, 'K': 58, 'M': 5, 'O': 36, 'Q': 75, 'S': 18, 'U': 65, 'W': 54, 'Y': 50, '[': 81, ']': 83,
	'a': 14, 'c': 20, 'e': 19, 'g': 33, 'i': 13, 'k': 28, 'm': 12, 'o': 25, 'q': 49, 's': 17, 'u': 11, 'w': 24, 'y': 22,
}

// Alphabet is a bidirectional mapping between characters and token ids.
// It is immutable and safe for concurrent use.
type Alphabet struct {
	ids   map[rune]Token
	runes []rune // Indexed by Token, 0 for ids with no character.
}

// NewAlphabet creates an Alphabet from a character table.
// It returns an error if a character maps to a reserved id, or if two characters share an id.
func NewAlphabet(table map[rune]Token) (*Alphabet, error) {
	a := &Alphabet{ids: make(map[rune]Token, len(table))}
	size := int(End) + 1
	for r, id := range table {
		if id <= End {
			return nil, errors.Errorf("character %q mapped to reserved token id %d", r, id)
		}
		size = max(size, int(id)+1)
	}
	a.runes = make([]rune, size)
	for r, id := range table {
		if prev := a.runes[id]; prev != 0 {
			return nil, errors.Errorf("characters %q and %q both mapped to token id %d", prev, r, id)
		}
		a.runes[id] = r
		a.ids[r] = id
	}
	return a, nil
}

// Default is the alphabet the handwriting model was trained with: 81 characters plus the 4 reserved ids.
var Default = func() *Alphabet {
	a, err := NewAlphabet(defaultTable)
	if err != nil {
		panic(err)
	}
	return a
}()

// Size is the vocabulary size, including the reserved ids: the width of one-hot encodings of the tokens.
func (a *Alphabet) Size() int { return len(a.runes) }

// Lookup returns the token id for the character r, and whether r is part of the alphabet.
func (a *Alphabet) Lookup(r rune) (Token, bool) {
	id, found := a.ids[r]
	return id, found
}

// Normalize collapses every run of whitespace into a single space, and trims both ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Encode normalizes the text and maps it to token ids, framed by Start and End.
// Characters outside the alphabet become Unknown. Encode("") returns [Start, End].
func (a *Alphabet) Encode(text string) []Token {
	text = Normalize(text)
	toks := make([]Token, 0, len(text)+2)
	toks = append(toks, Start)
	for _, r := range text {
		id, found := a.ids[r]
		if !found {
			id = Unknown
		}
		toks = append(toks, id)
	}
	return append(toks, End)
}

// Decode maps tokens back to text: reserved ids other than Unknown are dropped, and Unknown
// (or any id outside the alphabet) becomes '?'.
func (a *Alphabet) Decode(toks []Token) string {
	var sb strings.Builder
	for _, id := range toks {
		switch {
		case id == Pad || id == Start || id == End:
			continue
		case id > End && int(id) < len(a.runes) && a.runes[id] != 0:
			sb.WriteRune(a.runes[id])
		default:
			sb.WriteByte('?')
		}
	}
	return sb.String()
}

// Encode encodes text with the Default alphabet.
func Encode(text string) []Token { return Default.Encode(text) }

// Decode decodes tokens with the Default alphabet.
func Decode(toks []Token) string { return Default.Decode(toks) }

// IsEmpty returns whether the sequence holds nothing but reserved framing ids.
func IsEmpty(toks []Token) bool {
	for _, id := range toks {
		if id != Pad && id != Start && id != End {
			return false
		}
	}
	return true
}

// CheckLength returns ErrInputTooLong if the normalized text is longer than MaxInputLength characters.
func CheckLength(text string) error {
	n := len([]rune(Normalize(text)))
	if n > MaxInputLength {
		return errors.Wrapf(ErrInputTooLong, "%d characters, the maximum is %d", n, MaxInputLength)
	}
	return nil
}
