package regex

type MatchFlag uint

const (
	// MatchNotBOL: the start of input is not the start of a line, so ^ does
	// not match there. Together with MatchSearch or MatchAll, ^ is satisfied
	// at every position instead.
	MatchNotBOL MatchFlag = 1 << iota
	// MatchNotEOL is MatchNotBOL for $ and the end of input.
	MatchNotEOL
	// MatchAll collects every non-overlapping match.
	MatchAll
	// MatchSearch lets a match start anywhere, not only at offset 0.
	MatchSearch
	// MatchStats reports step and depth statistics in the Result.
	MatchStats
)

// MaxDepth bounds the interpreter's recursion. An attempt that needs more
// fails as a whole.
const MaxDepth = 1 << 14

// Match is one result slot. Index is the number of the whole match the slot
// belongs to. Unset groups have Start == End == -1.
type Match struct {
	Start int
	End   int
	Index int
	Text  string
}

// Result holds Count blocks of 1+groups slots: the whole match followed by
// one slot per capture group in declaration order.
type Result struct {
	Count   int
	Matches []Match

	// Statistics, only filled in with MatchStats.
	Steps         int
	Depth         int
	DepthExceeded bool
}

// retry is a deferred alternative recorded by ForkStay. snap indexes the
// register snapshot taken when it was recorded.
type retry struct {
	ip   int
	sp   int
	snap int
}

type machine struct {
	code   []Instruction
	input  string
	flags  MatchFlag
	groups int

	// regs holds three ints per group (left boundary, start and end of the
	// last completed span) followed by one int per progress slot.
	regs     []int
	saved    []int
	deferred []retry
	end      int

	steps    int
	depth    int
	exceeded bool
	aborted  bool
}

// Execute runs code against input and returns up to maxResults whole
// matches (all of them if maxResults < 0). groups and minLength come from
// the compiled program; a start offset with fewer than minLength bytes left
// is never tried.
func Execute(code []Instruction, input string, maxResults, groups, minLength int, flags MatchFlag) Result {
	m := &machine{
		code:   code,
		input:  input,
		flags:  flags,
		groups: groups,
		regs:   make([]int, 3*groups+progressSlots(code)),
	}

	var res Result
	prevEnd := -1
	for start := 0; start <= len(input) && len(input)-start >= minLength; {
		if maxResults >= 0 && res.Count >= maxResults {
			break
		}

		m.reset()
		if m.run(0, start, 0) {
			end := m.end
			// a prefix match: end may stop short of len(input)
			if flags&MatchAll == 0 {
				m.record(&res, start, end)
				break
			}
			// an empty match right behind the previous one is not reported
			if end > start || start != prevEnd {
				m.record(&res, start, end)
			}
			prevEnd = end
			if end > start {
				start = end
			} else {
				start++
			}
			continue
		}

		if flags&(MatchSearch|MatchAll) == 0 {
			break
		}
		start++
	}

	if flags&MatchStats != 0 {
		res.Steps = m.steps
		res.Depth = m.depth
		res.DepthExceeded = m.exceeded
	}
	return res
}

func progressSlots(code []Instruction) int {
	n := 0
	for _, in := range code {
		if s, ok := in.(SavePosition); ok && s.Slot >= n {
			n = s.Slot + 1
		}
	}
	return n
}

func (m *machine) reset() {
	for i := range m.regs {
		m.regs[i] = -1
	}
	m.saved = m.saved[:0]
	m.deferred = m.deferred[:0]
	m.aborted = false
}

func (m *machine) record(res *Result, start, end int) {
	index := res.Count
	res.Matches = append(res.Matches, Match{Start: start, End: end, Index: index, Text: m.input[start:end]})
	for g := 0; g < m.groups; g++ {
		sm := Match{Start: m.regs[3*g+1], End: m.regs[3*g+2], Index: index}
		if sm.Start >= 0 {
			sm.Text = m.input[sm.Start:sm.End]
		}
		res.Matches = append(res.Matches, sm)
	}
	res.Count++
}

func (m *machine) save() int {
	at := len(m.saved)
	m.saved = append(m.saved, m.regs...)
	return at
}

func (m *machine) restore(at int) {
	copy(m.regs, m.saved[at:])
	m.saved = m.saved[:at]
}

// run interprets from ip with the input at sp. Retries deferred below floor
// belong to the callers and are left alone.
func (m *machine) run(ip, sp, depth int) bool {
	if depth > MaxDepth {
		m.exceeded = true
		m.aborted = true
		return false
	}
	if depth > m.depth {
		m.depth = depth
	}

	floor := len(m.deferred)
	for {
		if ip >= len(m.code) {
			return m.exit(sp)
		}
		m.steps++

		switch in := m.code[ip].(type) {
		case Compare:
			n, ok := m.compare(in, sp)
			if !ok {
				return m.backtrack(floor, depth)
			}
			sp += n
			ip++
		case Jump:
			ip += 1 + in.Offset
		case ForkJump:
			snap := m.save()
			if m.run(ip+1+in.Offset, sp, depth+1) {
				return true
			}
			if m.aborted {
				return false
			}
			m.restore(snap)
			ip++
		case ForkStay:
			m.deferred = append(m.deferred, retry{ip: ip + 1 + in.Offset, sp: sp, snap: m.save()})
			ip++
		case SaveGroupStart:
			m.regs[3*in.Group] = sp
			ip++
		case SaveGroupEnd:
			m.regs[3*in.Group+1] = m.regs[3*in.Group]
			m.regs[3*in.Group+2] = sp
			ip++
		case CheckBegin:
			if !m.atBegin(sp, in.Multiline) {
				return m.backtrack(floor, depth)
			}
			ip++
		case CheckEnd:
			if !m.atEnd(sp, in.Multiline) {
				return m.backtrack(floor, depth)
			}
			ip++
		case SavePosition:
			m.regs[3*m.groups+in.Slot] = sp
			ip++
		case CheckProgress:
			if m.regs[3*m.groups+in.Slot] == sp {
				return m.backtrack(floor, depth)
			}
			ip++
		case Exit:
			return m.exit(sp)
		default:
			panic("unexpected instruction type")
		}
	}
}

// backtrack tries the retries deferred at this level, newest first.
func (m *machine) backtrack(floor, depth int) bool {
	for len(m.deferred) > floor {
		r := m.deferred[len(m.deferred)-1]
		m.deferred = m.deferred[:len(m.deferred)-1]
		m.restore(r.snap)
		if m.run(r.ip, r.sp, depth+1) {
			return true
		}
		if m.aborted {
			return false
		}
	}
	return false
}

func (m *machine) exit(sp int) bool {
	if sp > len(m.input) {
		return false
	}
	m.end = sp
	return true
}

func (m *machine) atBegin(sp int, multiline bool) bool {
	if multiline && sp > 0 && m.input[sp-1] == '\n' {
		return true
	}
	if m.flags&MatchNotBOL != 0 {
		return m.flags&(MatchSearch|MatchAll) != 0
	}
	return sp == 0
}

func (m *machine) atEnd(sp int, multiline bool) bool {
	if multiline && sp < len(m.input) && m.input[sp] == '\n' {
		return true
	}
	if m.flags&MatchNotEOL != 0 {
		return m.flags&(MatchSearch|MatchAll) != 0
	}
	return sp == len(m.input)
}

// compare returns how many bytes in matched at sp. In a non-matching list
// (operands after ArgInverse) any matching operand fails the compare and
// one byte is consumed when none matches.
func (m *machine) compare(in Compare, sp int) (int, bool) {
	inverse := false
	for _, arg := range in.Args {
		if _, ok := arg.(ArgInverse); ok {
			inverse = true
			continue
		}
		n, ok := m.operand(arg, sp, in.Fold)
		if !ok {
			continue
		}
		if inverse {
			return 0, false
		}
		return n, true
	}
	if inverse && sp < len(m.input) {
		return 1, true
	}
	return 0, false
}

func (m *machine) operand(arg CompareArg, sp int, fold bool) (int, bool) {
	if s, ok := arg.(ArgString); ok {
		if len(m.input)-sp < len(s.S) {
			return 0, false
		}
		got := m.input[sp : sp+len(s.S)]
		if got == s.S || fold && equalFold(got, s.S) {
			return len(s.S), true
		}
		return 0, false
	}

	if sp >= len(m.input) {
		return 0, false
	}
	c := m.input[sp]
	var ok bool
	switch a := arg.(type) {
	case ArgChar:
		ok = c == a.C || fold && lower(c) == lower(a.C)
	case ArgAny:
		ok = !a.NotNewline || c != '\n'
	case ArgClass:
		ok = a.Class.Contains(c) || fold && a.Class.Contains(swapCase(c))
	case ArgRange:
		r := charRange{from: a.From, to: a.To}
		ok = r.inRange(c) || fold && r.inRange(swapCase(c))
	case ArgCollating:
		panic("regex: collating symbol [." + a.Name + ".] is not supported")
	case ArgEquivalence:
		panic("regex: equivalence class [=" + a.Name + "=] is not supported")
	default:
		panic("unexpected compare operand type")
	}
	if !ok {
		return 0, false
	}
	return 1, true
}
