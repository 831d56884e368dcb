package regex

import (
	"fmt"
	"slices"
)

// CharClass is one of the POSIX named classes usable as [:name:] inside a
// bracket expression. Only the ASCII range is classified.
type CharClass int

const (
	ClassAlnum CharClass = iota
	ClassAlpha
	ClassBlank
	ClassCntrl
	ClassDigit
	ClassGraph
	ClassLower
	ClassPrint
	ClassPunct
	ClassSpace
	ClassUpper
	ClassXdigit
)

var classNames = []string{
	ClassAlnum:  "alnum",
	ClassAlpha:  "alpha",
	ClassBlank:  "blank",
	ClassCntrl:  "cntrl",
	ClassDigit:  "digit",
	ClassGraph:  "graph",
	ClassLower:  "lower",
	ClassPrint:  "print",
	ClassPunct:  "punct",
	ClassSpace:  "space",
	ClassUpper:  "upper",
	ClassXdigit: "xdigit",
}

func (c CharClass) String() string {
	if c >= 0 && int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("CharClass(%d)", int(c))
}

// lookupClass maps the name between "[:" and ":]" to its class.
func lookupClass(name string) (CharClass, bool) {
	i := slices.Index(classNames, name)
	if i < 0 {
		return 0, false
	}
	return CharClass(i), true
}

type charRange struct {
	from byte
	to   byte
}

func (r charRange) inRange(c byte) bool {
	return c >= r.from && c <= r.to
}

var classRanges = [][]charRange{
	ClassAlnum:  {{'a', 'z'}, {'A', 'Z'}, {'0', '9'}},
	ClassAlpha:  {{'a', 'z'}, {'A', 'Z'}},
	ClassBlank:  {{' ', ' '}, {'\t', '\t'}},
	ClassCntrl:  {{0x00, 0x1f}, {0x7f, 0x7f}},
	ClassDigit:  {{'0', '9'}},
	ClassGraph:  {{0x21, 0x7e}},
	ClassLower:  {{'a', 'z'}},
	ClassPrint:  {{0x20, 0x7e}},
	ClassPunct:  {{'!', '/'}, {':', '@'}, {'[', '`'}, {'{', '~'}},
	ClassSpace:  {{'\t', '\r'}, {' ', ' '}},
	ClassUpper:  {{'A', 'Z'}},
	ClassXdigit: {{'0', '9'}, {'A', 'F'}, {'a', 'f'}},
}

// Contains reports whether c belongs to the class.
func (c CharClass) Contains(b byte) bool {
	return slices.ContainsFunc(classRanges[c], func(r charRange) bool { return r.inRange(b) })
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// swapCase returns the other-case form of an ASCII letter, c otherwise.
func swapCase(c byte) byte {
	if isLetter(c) {
		return c ^ 0x20
	}
	return c
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if lower(a[i]) != lower(b[i]) {
			return false
		}
	}
	return true
}
