package regex

import (
	"fmt"
	"strings"
	"unicode"
)

// Regex is a compiled POSIX extended regular expression. It is safe for
// concurrent use.
type Regex struct {
	prog *Program
}

// Submatch is a matched span. Groups that did not take part in the match
// have an Offset of -1.
type Submatch struct {
	Offset int
	Str    string
}

func Compile(re string) (Regex, error) {
	return CompileFlags(re, CompileExtended)
}

func CompileFlags(re string, flags CompileFlag) (Regex, error) {
	prog, err := CompileProgram(re, flags)
	if err != nil {
		return Regex{}, fmt.Errorf("failed to construct regex from %q: %w", re, err)
	}
	return Regex{prog: prog}, nil
}

// MustCompile is like Compile but panics if the pattern is invalid.
func MustCompile(re string) Regex {
	r, err := Compile(re)
	if err != nil {
		panic(err)
	}
	return r
}

func (re Regex) Program() *Program {
	return re.prog
}

// NumSubexp returns the number of capture groups.
func (re Regex) NumSubexp() int {
	return re.prog.Groups
}

func (re Regex) String() string {
	return re.prog.Pattern
}

// FindAllSubmatches finds up to maxCount submatches of the pattern in the given string
// To return all submatches pass a maxCount of -1
func (re Regex) FindAllSubmatches(s string, maxCount int) [][]Submatch {
	res := re.prog.Match(s, maxCount, MatchSearch|MatchAll)
	return re.submatches(res)
}

func (re Regex) FindSubmatch(s string) []Submatch {
	submatches := re.submatches(re.prog.Match(s, 1, MatchSearch))
	if len(submatches) < 1 {
		return nil
	}
	return submatches[0]
}

func (re Regex) Match(s string) bool {
	return re.prog.Match(s, 1, MatchSearch).Count > 0
}

func (re Regex) submatches(res Result) [][]Submatch {
	if res.Count == 0 {
		return nil
	}
	width := 1 + re.prog.Groups
	all := make([][]Submatch, res.Count)
	for i := range all {
		block := res.Matches[i*width : (i+1)*width]
		all[i] = make([]Submatch, width)
		for j, m := range block {
			all[i][j] = Submatch{Offset: m.Start, Str: m.Text}
		}
	}
	return all
}

// Replace replaces the first match in s with with, in which $n stands for
// submatch n ($0 being the whole match).
func (re Regex) Replace(s string, with string) string {
	submatches := re.FindSubmatch(s)
	if submatches == nil {
		return s
	}

	out := strings.Builder{}
	out.WriteString(s[:submatches[0].Offset])
	for i := 0; i < len(with); i++ {
		if with[i] == '$' && i+1 < len(with) && unicode.IsDigit(rune(with[i+1])) {
			num := 0
			for j := i + 1; j < len(with) && unicode.IsDigit(rune(with[j])); j++ {
				num *= 10
				num += int(with[j] - '0')
				i++
			}

			if num < len(submatches) {
				out.WriteString(submatches[num].Str)
			}
		} else {
			out.WriteByte(with[i])
		}
	}
	out.WriteString(s[submatches[0].Offset+len(submatches[0].Str):])
	return out.String()
}
