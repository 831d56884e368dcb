package regex

import (
	"strconv"
)

type CompileFlag uint

const (
	// CompileExtended selects ERE syntax. It is the only syntax there is, the
	// flag exists for parity with regcomp.
	CompileExtended CompileFlag = 1 << iota
	CompileIgnoreCase
	// CompileNoSub drops capture groups from the program.
	CompileNoSub
	// CompileNewline keeps '.' and non-matching lists from matching '\n' and
	// lets ^ and $ match at line boundaries.
	CompileNewline
)

// MaxRepetition is the largest count accepted in an interval (RE_DUP_MAX).
const MaxRepetition = 255

// Parser is a recursive-descent ERE compiler. Every production either
// returns a complete sealed block or reports failure, after which callers
// unwind without emitting anything. Only the first error is kept.
type Parser struct {
	pattern string
	lexer   *Lexer
	cur     Token
	flags   CompileFlag
	groups  int
	slots   int
	err     *CompileError

	// pending holds the second byte of an escape token read inside a bracket
	// expression, or -1.
	pending    int
	pendingTok Token
}

func NewParser(pattern string) *Parser {
	return &Parser{pattern: pattern, lexer: NewLexer(pattern), pending: -1}
}

// CompileProgram compiles pattern into a Program.
func CompileProgram(pattern string, flags CompileFlag) (*Program, error) {
	return NewParser(pattern).Parse(flags)
}

// Parse compiles the pattern. On failure it returns a *CompileError and no program.
func (p *Parser) Parse(flags CompileFlag) (*Program, error) {
	p.flags = flags
	p.groups = 0
	p.slots = 0
	p.err = nil
	p.pending = -1
	p.lexer.Reset()
	p.advance()

	body, minLength, ok := p.alternation()
	if ok && p.cur.Kind != TokenEOF {
		// alternation only stops early at a ')' nobody opened
		p.fail(ErrUnbalancedParen)
	}
	if p.err != nil {
		return nil, p.err
	}

	body.emit(Exit{})
	return &Program{
		Pattern:   p.pattern,
		Code:      body.code,
		Groups:    p.groups,
		MinLength: minLength,
		Flags:     flags,
	}, nil
}

func (p *Parser) advance() {
	p.cur = p.lexer.Next()
}

// peek returns the token after the current one without consuming it.
func (p *Parser) peek() Token {
	t := p.lexer.Next()
	p.lexer.Back(len(t.Value))
	return t
}

func (p *Parser) fail(code ErrorCode) bool {
	return p.failAt(code, p.cur)
}

func (p *Parser) failAt(code ErrorCode, tok Token) bool {
	if p.err == nil {
		p.err = &CompileError{Code: code, Token: tok}
	}
	return false
}

func (p *Parser) ignoreCase() bool {
	return p.flags&CompileIgnoreCase != 0
}

func (p *Parser) newline() bool {
	return p.flags&CompileNewline != 0
}

func single(in Instruction) *block {
	b := &block{}
	b.emit(in)
	return b
}

// Alternation := Branch ('|' Branch)*
//
// Each branch but the last is guarded by a ForkStay to the next one, so
// branches are tried left to right.
func (p *Parser) alternation() (*block, int, bool) {
	var branches []*block
	minLength := 0
	for {
		b, n, ok := p.branch()
		if !ok {
			return nil, 0, false
		}
		if len(branches) == 0 || n < minLength {
			minLength = n
		}
		branches = append(branches, b)
		if p.cur.Kind != TokenPipe {
			break
		}
		p.advance()
	}
	if len(branches) == 1 {
		return branches[0], minLength, true
	}

	out := &block{}
	end := out.newLabel()
	last := len(branches) - 1
	for _, b := range branches[:last] {
		next := out.newLabel()
		out.emitJump(OpForkStay, next)
		out.extend(b)
		out.emitJump(OpJump, end)
		out.bind(next)
	}
	out.extend(branches[last])
	out.bind(end)
	return out.seal(), minLength, true
}

// Branch := Term*
//
// An empty branch is accepted at the end of the pattern or group, but not in
// front of a '|'.
func (p *Parser) branch() (*block, int, bool) {
	out := &block{}
	minLength := 0
	terms := 0
	for {
		switch p.cur.Kind {
		case TokenEOF, TokenRightParen:
			return out.seal(), minLength, true
		case TokenPipe:
			if terms == 0 {
				return nil, 0, p.fail(ErrBadPattern)
			}
			return out.seal(), minLength, true
		}

		t, n, ok := p.term()
		if !ok {
			return nil, 0, false
		}
		out.extend(t)
		minLength += n
		terms++
	}
}

func (p *Parser) isQuantifier() bool {
	switch p.cur.Kind {
	case TokenAsterisk, TokenPlus, TokenQuestion, TokenLeftCurly:
		return true
	}
	return false
}

func (p *Parser) isLiteral() bool {
	switch p.cur.Kind {
	case TokenChar, TokenEscape, TokenRightBracket, TokenRightCurly, TokenComma:
		return true
	}
	return false
}

func (p *Parser) term() (*block, int, bool) {
	switch p.cur.Kind {
	case TokenAsterisk, TokenPlus, TokenQuestion, TokenLeftCurly:
		return nil, 0, p.fail(ErrRepetitionWithoutOperand)
	case TokenCircumflex, TokenDollar:
		return p.anchor()
	case TokenPeriod:
		p.advance()
		return p.quantified(single(p.compare(ArgAny{NotNewline: p.newline()})), 1)
	case TokenLeftBracket:
		b, ok := p.bracket()
		if !ok {
			return nil, 0, false
		}
		return p.quantified(b, 1)
	case TokenLeftParen:
		b, n, ok := p.group()
		if !ok {
			return nil, 0, false
		}
		return p.quantified(b, n)
	}
	if p.isLiteral() {
		return p.literals()
	}
	return nil, 0, p.fail(ErrBadPattern)
}

// anchor compiles ^ and $. They are accepted anywhere in a branch and simply
// assert the position; a quantifier after one has no operand.
func (p *Parser) anchor() (*block, int, bool) {
	var in Instruction = CheckBegin{Multiline: p.newline()}
	if p.cur.Kind == TokenDollar {
		in = CheckEnd{Multiline: p.newline()}
	}
	p.advance()
	if p.isQuantifier() {
		return nil, 0, p.fail(ErrRepetitionWithoutOperand)
	}
	return single(in), 0, true
}

func (p *Parser) compare(args ...CompareArg) Compare {
	return Compare{Args: args, Fold: p.ignoreCase()}
}

// literal returns the byte the current literal token stands for and rejects
// backslashes that do not form an escape sequence.
func (p *Parser) literal() (byte, bool) {
	if p.cur.Kind != TokenChar || p.cur.Value != `\` {
		return p.cur.char(), true
	}
	next := p.cur.Position + 1
	switch {
	case next >= len(p.pattern):
		return 0, p.fail(ErrTrailingBackslash)
	case p.pattern[next] >= '0' && p.pattern[next] <= '9':
		return 0, p.fail(ErrBadBackReference)
	}
	return 0, p.fail(ErrBadPattern)
}

// literals compiles a run of ordinary characters into one compare. If a
// quantifier follows the run, its last character is compiled separately so
// the quantifier applies to that character alone.
func (p *Parser) literals() (*block, int, bool) {
	out := &block{}
	var run []byte
	for p.isLiteral() {
		c, ok := p.literal()
		if !ok {
			return nil, 0, false
		}
		p.advance()
		if p.isQuantifier() {
			if len(run) > 0 {
				out.emit(p.compareRun(run))
			}
			q, n, ok := p.quantified(single(p.compare(ArgChar{C: c})), 1)
			if !ok {
				return nil, 0, false
			}
			out.extend(q)
			return out.seal(), len(run) + n, true
		}
		run = append(run, c)
	}
	out.emit(p.compareRun(run))
	return out.seal(), len(run), true
}

func (p *Parser) compareRun(run []byte) Compare {
	if len(run) == 1 {
		return p.compare(ArgChar{C: run[0]})
	}
	return p.compare(ArgString{S: string(run)})
}

// group compiles '(' Alternation ')'. The group number is taken when the
// opening parenthesis is seen, so groups are numbered left to right.
func (p *Parser) group() (*block, int, bool) {
	p.advance()
	id := -1
	if p.flags&CompileNoSub == 0 {
		id = p.groups
		p.groups++
	}

	inner, n, ok := p.alternation()
	if !ok {
		return nil, 0, false
	}
	if p.cur.Kind != TokenRightParen {
		return nil, 0, p.fail(ErrUnbalancedParen)
	}
	p.advance()

	if id < 0 {
		return inner, n, true
	}
	out := &block{}
	out.emit(SaveGroupStart{Group: id})
	out.extend(inner)
	out.emit(SaveGroupEnd{Group: id})
	return out.seal(), n, true
}

// quantified applies an optional quantifier to atom, whose minimum length is n.
func (p *Parser) quantified(atom *block, n int) (*block, int, bool) {
	if !p.isQuantifier() {
		return atom, n, true
	}

	lo, hi := 0, -1
	switch p.cur.Kind {
	case TokenAsterisk:
		p.advance()
	case TokenPlus:
		lo = 1
		p.advance()
	case TokenQuestion:
		hi = 1
		p.advance()
	case TokenLeftCurly:
		var ok bool
		if lo, hi, ok = p.interval(); !ok {
			return nil, 0, false
		}
	}

	greedy := true
	if p.cur.Kind == TokenQuestion {
		greedy = false
		p.advance()
	}
	if p.isQuantifier() {
		return nil, 0, p.fail(ErrRepetitionWithoutOperand)
	}
	return p.repeat(atom, n == 0, lo, hi, greedy), n * lo, true
}

// interval parses {m}, {m,} and {m,n}; hi is -1 when unbounded.
func (p *Parser) interval() (lo, hi int, ok bool) {
	p.advance()
	lo, ok = p.count()
	if !ok {
		return 0, 0, false
	}
	hi = lo
	if p.cur.Kind == TokenComma {
		p.advance()
		hi = -1
		if p.cur.Kind != TokenRightCurly {
			if hi, ok = p.count(); !ok {
				return 0, 0, false
			}
		}
	}

	switch {
	case p.cur.Kind == TokenEOF:
		return 0, 0, p.fail(ErrUnbalancedBrace)
	case p.cur.Kind != TokenRightCurly:
		return 0, 0, p.fail(ErrBadRepetitionCount)
	case hi >= 0 && hi < lo:
		return 0, 0, p.fail(ErrBadRepetitionCount)
	}
	p.advance()
	return lo, hi, true
}

// count reads a decimal repetition count.
func (p *Parser) count() (int, bool) {
	start := p.cur
	digits := ""
	for p.cur.Kind == TokenChar && p.cur.Value[0] >= '0' && p.cur.Value[0] <= '9' {
		digits += p.cur.Value
		p.advance()
	}
	if digits == "" {
		if p.cur.Kind == TokenEOF {
			return 0, p.fail(ErrUnbalancedBrace)
		}
		return 0, p.fail(ErrBadRepetitionCount)
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n > MaxRepetition {
		return 0, p.failAt(ErrBadRepetitionCount, start)
	}
	return n, true
}

// skipOp is the fork guarding an optional copy of a body: greedy bodies are
// entered first, lazy ones are skipped first.
func skipOp(greedy bool) Opcode {
	if greedy {
		return OpForkStay
	}
	return OpForkJump
}

// repeat lowers body{lo,hi} (hi < 0 meaning unbounded). Mandatory copies are
// replicated; a bounded tail is a chain of optional copies that all skip to
// the end of the block.
func (p *Parser) repeat(body *block, nullable bool, lo, hi int, greedy bool) *block {
	out := &block{}
	switch {
	case hi < 0 && lo == 0:
		p.star(out, body, nullable, greedy)
	case hi < 0:
		for i := 0; i < lo-1; i++ {
			out.extend(body)
		}
		p.plus(out, body, nullable, greedy)
	default:
		for i := 0; i < lo; i++ {
			out.extend(body)
		}
		if hi > lo {
			end := out.newLabel()
			for i := lo; i < hi; i++ {
				out.emitJump(skipOp(greedy), end)
				out.extend(body)
			}
			out.bind(end)
		}
	}
	return out.seal()
}

func (p *Parser) newSlot() int {
	p.slots++
	return p.slots - 1
}

// star emits
//
//	head: fork end; body; jump head; end:
//
// A body that may match the empty string is wrapped in a progress check so
// an empty iteration fails instead of looping forever.
func (p *Parser) star(out, body *block, nullable, greedy bool) {
	head := out.here()
	end := out.newLabel()
	out.emitJump(skipOp(greedy), end)
	if nullable {
		slot := p.newSlot()
		out.emit(SavePosition{Slot: slot})
		out.extend(body)
		out.emit(CheckProgress{Slot: slot})
	} else {
		out.extend(body)
	}
	out.emitJump(OpJump, head)
	out.bind(end)
}

// plus emits body once followed by a loop over it, so X+ runs exactly like
// XX*. A nullable body gets the star loop with its progress check; the first
// copy may still match empty.
//
// The greedy loop is
//
//	head: body; fork end; jump head; end:
//
// which records the exit and goes round again without nesting. The lazy form
// keeps the backward fork that leaves first.
func (p *Parser) plus(out, body *block, nullable, greedy bool) {
	if nullable {
		out.extend(body)
		p.star(out, body, true, greedy)
		return
	}

	head := out.here()
	out.extend(body)
	if !greedy {
		out.emitJump(OpForkStay, head)
		return
	}
	end := out.newLabel()
	out.emitJump(OpForkStay, end)
	out.emitJump(OpJump, head)
	out.bind(end)
}

// bracketAtom is one element of a bracket expression: a byte, or a named
// class, collating symbol or equivalence class.
type bracketAtom struct {
	char byte
	arg  CompareArg
	tok  Token
}

func (a bracketAtom) operand() CompareArg {
	if a.arg != nil {
		return a.arg
	}
	return ArgChar{C: a.char}
}

func (p *Parser) bracketEOF() bool {
	return p.pending < 0 && p.cur.Kind == TokenEOF
}

func (p *Parser) bracketClose() bool {
	return p.pending < 0 && p.cur.Kind == TokenRightBracket
}

func (p *Parser) bracketDash() bool {
	return p.pending < 0 && p.cur.Kind == TokenChar && p.cur.Value == "-"
}

// BracketExpr := '[' ['^'] BracketItem+ ']'
//
// Inside brackets every byte is literal except for a closing ']' that is not
// the first item, '-' between two items, and "[:", "[." and "[=".
func (p *Parser) bracket() (*block, bool) {
	p.advance()
	var args []CompareArg
	inverse := p.cur.Kind == TokenCircumflex
	if inverse {
		args = append(args, ArgInverse{})
		p.advance()
	}

	for first := true; ; first = false {
		if p.bracketEOF() {
			return nil, p.fail(ErrUnbalancedBracket)
		}
		if p.bracketClose() && !first {
			p.advance()
			break
		}

		lo, ok := p.bracketAtom()
		if !ok {
			return nil, false
		}
		if !p.bracketDash() {
			args = append(args, lo.operand())
			continue
		}
		p.advance()
		if p.bracketClose() {
			// trailing '-' is literal
			args = append(args, lo.operand(), ArgChar{C: '-'})
			continue
		}
		if p.bracketEOF() {
			return nil, p.fail(ErrUnbalancedBracket)
		}
		hi, ok := p.bracketAtom()
		if !ok {
			return nil, false
		}
		if lo.arg != nil || hi.arg != nil || hi.char < lo.char {
			return nil, p.failAt(ErrBadRange, lo.tok)
		}
		args = append(args, ArgRange{From: lo.char, To: hi.char})
	}

	if inverse && p.newline() {
		args = append(args, ArgChar{C: '\n'})
	}
	return single(p.compare(args...)), true
}

func (p *Parser) bracketAtom() (bracketAtom, bool) {
	if p.pending >= 0 {
		a := bracketAtom{char: byte(p.pending), tok: p.pendingTok}
		p.pending = -1
		return a, true
	}

	tok := p.cur
	switch tok.Kind {
	case TokenLeftBracket:
		arg, ok := p.bracketClass()
		if !ok {
			return bracketAtom{}, false
		}
		if arg != nil {
			return bracketAtom{arg: arg, tok: tok}, true
		}
	case TokenEscape:
		// a backslash is literal in brackets; hand out both bytes
		p.pending = int(tok.Value[1])
		p.pendingTok = Token{Kind: TokenChar, Position: tok.Position + 1, Value: tok.Value[1:]}
	}
	p.advance()
	return bracketAtom{char: tok.Value[0], tok: tok}, true
}

// bracketClass reads "[:name:]", "[.name.]" or "[=name=]" with p.cur on the
// opening '['. If the keyword is not terminated the lexer is rewound, p.cur
// is the '[' again and a nil argument is returned so the caller reads '[' as
// a literal.
func (p *Parser) bracketClass() (CompareArg, bool) {
	open := p.cur
	resume := p.lexer.Offset()
	rewind := func() (CompareArg, bool) {
		p.lexer.Back(p.lexer.Offset() - resume)
		p.cur = open
		return nil, true
	}

	delim := p.peek()
	switch delim.Value {
	case ":", ".", "=":
	default:
		return nil, true
	}
	p.advance()

	var name []byte
	for {
		p.advance()
		if p.cur.Kind == TokenEOF {
			return rewind()
		}
		if p.cur.Value == delim.Value && p.peek().Kind == TokenRightBracket {
			p.advance()
			p.advance()
			break
		}
		name = append(name, p.cur.Value...)
	}

	switch delim.Value {
	case ":":
		class, ok := lookupClass(string(name))
		if !ok {
			return nil, p.failAt(ErrBadCharClass, open)
		}
		return ArgClass{Class: class}, true
	case ".":
		if len(name) == 0 {
			return nil, p.failAt(ErrBadCollatingElement, open)
		}
		return ArgCollating{Name: string(name)}, true
	default:
		if len(name) == 0 {
			return nil, p.failAt(ErrBadCollatingElement, open)
		}
		return ArgEquivalence{Name: string(name)}, true
	}
}
