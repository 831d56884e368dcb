package regex

import "fmt"

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenChar
	TokenCircumflex
	TokenPeriod
	TokenLeftParen
	TokenRightParen
	TokenLeftCurly
	TokenRightCurly
	TokenLeftBracket
	TokenRightBracket
	TokenAsterisk
	TokenEscape
	TokenDollar
	TokenPipe
	TokenPlus
	TokenComma
	TokenQuestion
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "EOF"
	case TokenChar:
		return "Char"
	case TokenCircumflex:
		return "Circumflex"
	case TokenPeriod:
		return "Period"
	case TokenLeftParen:
		return "LeftParen"
	case TokenRightParen:
		return "RightParen"
	case TokenLeftCurly:
		return "LeftCurly"
	case TokenRightCurly:
		return "RightCurly"
	case TokenLeftBracket:
		return "LeftBracket"
	case TokenRightBracket:
		return "RightBracket"
	case TokenAsterisk:
		return "Asterisk"
	case TokenEscape:
		return "Escape"
	case TokenDollar:
		return "Dollar"
	case TokenPipe:
		return "Pipe"
	case TokenPlus:
		return "Plus"
	case TokenComma:
		return "Comma"
	case TokenQuestion:
		return "Question"
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is a view into the pattern: Value is pattern[Position:Position+len(Value)].
type Token struct {
	Kind     TokenKind
	Position int
	Value    string
}

func (t Token) String() string {
	if t.Kind == TokenEOF {
		return fmt.Sprintf("EOF@%d", t.Position)
	}
	return fmt.Sprintf("%s(%q)@%d", t.Kind, t.Value, t.Position)
}

// char is the literal byte the token stands for outside of a bracket expression.
func (t Token) char() byte {
	if t.Kind == TokenEscape {
		return t.Value[1]
	}
	return t.Value[0]
}

// isEscapable reports whether c may follow a backslash in an escape sequence.
func isEscapable(c byte) bool {
	switch c {
	case '^', '.', '[', '$', '(', ')', '|', '*', '+', '?', '{', '\\':
		return true
	}
	return false
}

// Lexer splits a pattern into tokens, one at a time.
type Lexer struct {
	src string
	pos int
}

func NewLexer(pattern string) *Lexer {
	return &Lexer{src: pattern}
}

// Offset is the byte offset of the next token.
func (l *Lexer) Offset() int {
	return l.pos
}

// Reset restarts tokenizing from the beginning of the pattern.
func (l *Lexer) Reset() {
	l.pos = 0
}

// Back rewinds the cursor by n bytes. Callers must land on a token boundary;
// rewinding past the start of the pattern panics.
func (l *Lexer) Back(n int) {
	if n < 0 || n > l.pos {
		panic(fmt.Sprintf("Back: cannot rewind %d bytes from offset %d", n, l.pos))
	}
	l.pos -= n
}

// Next returns the next token and advances past it. At the end of the
// pattern it keeps returning TokenEOF.
func (l *Lexer) Next() Token {
	if l.pos >= len(l.src) {
		return Token{Kind: TokenEOF, Position: len(l.src)}
	}

	start := l.pos
	kind := TokenChar
	size := 1
	switch l.src[start] {
	case '^':
		kind = TokenCircumflex
	case '.':
		kind = TokenPeriod
	case '(':
		kind = TokenLeftParen
	case ')':
		kind = TokenRightParen
	case '{':
		kind = TokenLeftCurly
	case '}':
		kind = TokenRightCurly
	case '[':
		kind = TokenLeftBracket
	case ']':
		kind = TokenRightBracket
	case '*':
		kind = TokenAsterisk
	case '$':
		kind = TokenDollar
	case '|':
		kind = TokenPipe
	case '+':
		kind = TokenPlus
	case ',':
		kind = TokenComma
	case '?':
		kind = TokenQuestion
	case '\\':
		if start+1 < len(l.src) && isEscapable(l.src[start+1]) {
			kind = TokenEscape
			size = 2
		}
	}

	l.pos += size
	return Token{Kind: kind, Position: start, Value: l.src[start : start+size]}
}
