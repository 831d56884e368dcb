package regex

import (
	"fmt"
	"io"
	"strings"
)

type Opcode int

const (
	OpCompare Opcode = iota
	OpJump
	OpForkJump
	OpForkStay
	OpSaveGroupStart
	OpSaveGroupEnd
	OpCheckBegin
	OpCheckEnd
	OpSavePosition
	OpCheckProgress
	OpExit
)

var opcodeNames = []string{
	OpCompare:        "Compare",
	OpJump:           "Jump",
	OpForkJump:       "ForkJump",
	OpForkStay:       "ForkStay",
	OpSaveGroupStart: "SaveGroupStart",
	OpSaveGroupEnd:   "SaveGroupEnd",
	OpCheckBegin:     "CheckBegin",
	OpCheckEnd:       "CheckEnd",
	OpSavePosition:   "SavePosition",
	OpCheckProgress:  "CheckProgress",
	OpExit:           "Exit",
}

func (op Opcode) String() string {
	if op >= 0 && int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// Instruction is one word of a compiled program. The set of implementations
// is closed: Compare, Jump, ForkJump, ForkStay, SaveGroupStart, SaveGroupEnd,
// CheckBegin, CheckEnd, SavePosition, CheckProgress and Exit.
//
// Jump offsets are relative to the instruction that follows the jump, so a
// target is ip+1+Offset.
type Instruction interface {
	Op() Opcode
	String() string
}

// Compare matches the current input position against its operands.
// With Fold set, ASCII letters compare case-insensitively.
type Compare struct {
	Args []CompareArg
	Fold bool
}

// Jump continues at the target unconditionally.
type Jump struct {
	Offset int
}

// ForkJump tries the target first and falls through if that fails.
type ForkJump struct {
	Offset int
}

// ForkStay falls through first and records the target for a later retry.
type ForkStay struct {
	Offset int
}

type SaveGroupStart struct {
	Group int
}

type SaveGroupEnd struct {
	Group int
}

// CheckBegin is ^. With Multiline set it also matches right after a newline.
type CheckBegin struct {
	Multiline bool
}

// CheckEnd is $. With Multiline set it also matches right before a newline.
type CheckEnd struct {
	Multiline bool
}

// SavePosition records the input position in a progress slot.
type SavePosition struct {
	Slot int
}

// CheckProgress fails unless input was consumed since the matching SavePosition.
type CheckProgress struct {
	Slot int
}

type Exit struct{}

func (Compare) Op() Opcode        { return OpCompare }
func (Jump) Op() Opcode           { return OpJump }
func (ForkJump) Op() Opcode       { return OpForkJump }
func (ForkStay) Op() Opcode       { return OpForkStay }
func (SaveGroupStart) Op() Opcode { return OpSaveGroupStart }
func (SaveGroupEnd) Op() Opcode   { return OpSaveGroupEnd }
func (CheckBegin) Op() Opcode     { return OpCheckBegin }
func (CheckEnd) Op() Opcode       { return OpCheckEnd }
func (SavePosition) Op() Opcode   { return OpSavePosition }
func (CheckProgress) Op() Opcode  { return OpCheckProgress }
func (Exit) Op() Opcode           { return OpExit }

func (in Compare) String() string {
	args := make([]string, len(in.Args))
	for i, a := range in.Args {
		args[i] = a.String()
	}
	s := fmt.Sprintf("Compare %d [%s]", len(in.Args), strings.Join(args, ", "))
	if in.Fold {
		s += " fold"
	}
	return s
}

func (in Jump) String() string           { return fmt.Sprintf("Jump %+d", in.Offset) }
func (in ForkJump) String() string       { return fmt.Sprintf("ForkJump %+d", in.Offset) }
func (in ForkStay) String() string       { return fmt.Sprintf("ForkStay %+d", in.Offset) }
func (in SaveGroupStart) String() string { return fmt.Sprintf("SaveGroupStart %d", in.Group) }
func (in SaveGroupEnd) String() string   { return fmt.Sprintf("SaveGroupEnd %d", in.Group) }
func (in SavePosition) String() string   { return fmt.Sprintf("SavePosition %d", in.Slot) }
func (in CheckProgress) String() string  { return fmt.Sprintf("CheckProgress %d", in.Slot) }
func (Exit) String() string              { return "Exit" }

func (in CheckBegin) String() string {
	if in.Multiline {
		return "CheckBegin multiline"
	}
	return "CheckBegin"
}

func (in CheckEnd) String() string {
	if in.Multiline {
		return "CheckEnd multiline"
	}
	return "CheckEnd"
}

// target returns the absolute index a jump at ip lands on.
func target(ip int, in Instruction) (int, bool) {
	switch in := in.(type) {
	case Jump:
		return ip + 1 + in.Offset, true
	case ForkJump:
		return ip + 1 + in.Offset, true
	case ForkStay:
		return ip + 1 + in.Offset, true
	}
	return 0, false
}

// CompareArg is one operand of a Compare. The set of implementations is
// closed: ArgInverse, ArgChar, ArgString, ArgAny, ArgClass, ArgRange,
// ArgCollating and ArgEquivalence.
type CompareArg interface {
	isCompareArg()
	String() string
}

// ArgInverse turns the remaining operands of a Compare into a non-matching list.
type ArgInverse struct{}

type ArgChar struct {
	C byte
}

type ArgString struct {
	S string
}

// ArgAny is the period. NotNewline excludes '\n'.
type ArgAny struct {
	NotNewline bool
}

type ArgClass struct {
	Class CharClass
}

type ArgRange struct {
	From byte
	To   byte
}

// ArgCollating is a [.name.] collating symbol. It is kept in the program but
// cannot be evaluated.
type ArgCollating struct {
	Name string
}

// ArgEquivalence is a [=name=] equivalence class. It is kept in the program
// but cannot be evaluated.
type ArgEquivalence struct {
	Name string
}

func (ArgInverse) isCompareArg()     {}
func (ArgChar) isCompareArg()        {}
func (ArgString) isCompareArg()      {}
func (ArgAny) isCompareArg()         {}
func (ArgClass) isCompareArg()       {}
func (ArgRange) isCompareArg()       {}
func (ArgCollating) isCompareArg()   {}
func (ArgEquivalence) isCompareArg() {}

func (ArgInverse) String() string       { return "inverse" }
func (a ArgChar) String() string        { return fmt.Sprintf("char %q", a.C) }
func (a ArgString) String() string      { return fmt.Sprintf("string %q", a.S) }
func (a ArgClass) String() string       { return fmt.Sprintf("class %s", a.Class) }
func (a ArgRange) String() string       { return fmt.Sprintf("range %q-%q", a.From, a.To) }
func (a ArgCollating) String() string   { return fmt.Sprintf("collating %q", a.Name) }
func (a ArgEquivalence) String() string { return fmt.Sprintf("equivalence %q", a.Name) }

func (a ArgAny) String() string {
	if a.NotNewline {
		return "any-but-newline"
	}
	return "any"
}

// Program is a compiled pattern. It is never modified after compilation and
// may be matched from several goroutines at once.
type Program struct {
	Pattern string
	Code    []Instruction
	// Groups is the number of capture groups.
	Groups int
	// MinLength is a lower bound on the number of bytes any match consumes.
	MinLength int
	Flags     CompileFlag
}

// Match runs the program against input. See Execute.
func (p *Program) Match(input string, maxResults int, flags MatchFlag) Result {
	return Execute(p.Code, input, maxResults, p.Groups, p.MinLength, flags)
}

// Disassemble writes a numbered listing of the program, one instruction per line.
func (p *Program) Disassemble(w io.Writer) error {
	for ip, in := range p.Code {
		line := fmt.Sprintf("%04d  %s", ip, in)
		if t, ok := target(ip, in); ok {
			line += fmt.Sprintf(" -> %04d", t)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func (p *Program) String() string {
	var b strings.Builder
	_ = p.Disassemble(&b)
	return b.String()
}
