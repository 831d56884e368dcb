package regex

import "fmt"

// ErrorCode mirrors the POSIX regcomp/regexec error codes. Every code except
// ErrNone is usable as an error value, so callers can test with errors.Is.
type ErrorCode int

const (
	ErrNone ErrorCode = iota
	ErrNoMatch
	ErrBadPattern
	ErrBadCollatingElement
	ErrBadCharClass
	ErrTrailingBackslash
	ErrBadBackReference
	ErrUnbalancedBracket
	ErrUnbalancedParen
	ErrUnbalancedBrace
	ErrBadRepetitionCount
	ErrBadRange
	ErrOutOfMemory
	ErrRepetitionWithoutOperand
	ErrUnsupported
)

var errorMessages = []string{
	ErrNone:                     "no error",
	ErrNoMatch:                  "no match",
	ErrBadPattern:               "invalid pattern",
	ErrBadCollatingElement:      "invalid collating element",
	ErrBadCharClass:             "invalid character class",
	ErrTrailingBackslash:        "trailing backslash",
	ErrBadBackReference:         "invalid back reference",
	ErrUnbalancedBracket:        "unbalanced '['",
	ErrUnbalancedParen:          "unbalanced '('",
	ErrUnbalancedBrace:          "unbalanced '{'",
	ErrBadRepetitionCount:       "invalid repetition count",
	ErrBadRange:                 "invalid range endpoint",
	ErrOutOfMemory:              "out of memory",
	ErrRepetitionWithoutOperand: "repetition operator without operand",
	ErrUnsupported:              "unsupported construct",
}

func (c ErrorCode) Error() string {
	if c >= 0 && int(c) < len(errorMessages) {
		return errorMessages[c]
	}
	return fmt.Sprintf("error code %d", int(c))
}

// CompileError is the first error the compiler ran into, together with the
// token at which it was detected.
type CompileError struct {
	Code  ErrorCode
	Token Token
}

func (e *CompileError) Error() string {
	if e.Token.Kind == TokenEOF {
		return fmt.Sprintf("parser error at %d: %s at end of pattern", e.Token.Position, e.Code)
	}
	return fmt.Sprintf("parser error at %d: %s near %q", e.Token.Position, e.Code, e.Token.Value)
}

func (e *CompileError) Unwrap() error {
	return e.Code
}
