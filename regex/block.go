package regex

// label names a position inside a block. Labels are local to their block.
type label int

type fixup struct {
	at    int
	label label
}

// block is a growable code buffer. Jumps are emitted against labels and only
// turned into relative offsets by seal, after which the block is position
// independent and can be appended, or replicated, anywhere.
type block struct {
	code   []Instruction
	labels []int
	fixups []fixup
}

func (b *block) len() int {
	return len(b.code)
}

func (b *block) emit(in Instruction) {
	b.code = append(b.code, in)
}

// newLabel returns an unbound label.
func (b *block) newLabel() label {
	b.labels = append(b.labels, -1)
	return label(len(b.labels) - 1)
}

// bind points l at the next instruction to be emitted.
func (b *block) bind(l label) {
	b.labels[l] = len(b.code)
}

// here returns a label bound to the next instruction to be emitted.
func (b *block) here() label {
	l := b.newLabel()
	b.bind(l)
	return l
}

// emitJump emits a Jump, ForkJump or ForkStay (selected by op) towards l.
func (b *block) emitJump(op Opcode, l label) {
	b.fixups = append(b.fixups, fixup{at: len(b.code), label: l})
	switch op {
	case OpJump:
		b.emit(Jump{})
	case OpForkJump:
		b.emit(ForkJump{})
	case OpForkStay:
		b.emit(ForkStay{})
	default:
		panic("emitJump: " + op.String() + " is not a jump")
	}
}

// extend appends a sealed block.
func (b *block) extend(other *block) {
	if len(other.fixups) != 0 {
		panic("extend: block is not sealed")
	}
	b.code = append(b.code, other.code...)
}

// seal resolves every pending jump into an offset relative to the
// instruction after it.
func (b *block) seal() *block {
	for _, f := range b.fixups {
		to := b.labels[f.label]
		if to < 0 {
			panic("seal: unbound label")
		}
		off := to - (f.at + 1)
		switch b.code[f.at].(type) {
		case Jump:
			b.code[f.at] = Jump{Offset: off}
		case ForkJump:
			b.code[f.at] = ForkJump{Offset: off}
		case ForkStay:
			b.code[f.at] = ForkStay{Offset: off}
		}
	}
	b.fixups = nil
	b.labels = nil
	return b
}
