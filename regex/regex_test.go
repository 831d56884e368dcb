package regex

import (
	"errors"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// goRegexp compiles the stdlib equivalent of an ERE. Periods match
// newlines in ERE, so the stdlib pattern runs with the s flag.
func goRegexp(t *testing.T, re string, flags string) *regexp.Regexp {
	t.Helper()
	goRe, err := regexp.Compile("(?s" + flags + ")" + re)
	if err != nil {
		t.Fatalf("golang Compile: %v", err)
	}
	return goRe
}

func TestFindSubmatch(t *testing.T) {
	tests := map[string]struct {
		givenStrings []string
		givenRe      string
	}{
		"happy banana": {
			givenRe:      ".*ba.*",
			givenStrings: []string{"banana"},
		},
		"happy complex": {
			givenRe:      "([A-Za-z]+|[0-9]{3,5})([_.-][^0-9 ]?)*([A-Za-z0-9_]{2,2}|[0-9]+)",
			givenStrings: []string{"my_value.X_Final99", "my_value.X_Final99999999999999999"},
		},
		"(ab|a)c": {
			givenRe:      "(ab|a)c",
			givenStrings: []string{"abc", "ac"},
		},
		"happy complex 2": {
			givenRe: "(ID|REF)(_?(ALPHA|BETA|[0-9]{2,4}))([_.-][A-Za-z]{3,3}|[0-9]+)*X{1,2}",
			givenStrings: []string{
				"ID_ALPHA_abcX",
				"ID_BETA_xyz.5678_ABCX",
			},
		},
		"happy complex 3": {
			givenRe: `[A-Z][a-z]*(/[^0-9_.-]+|\.[0-9]+)*[A-Z]?`,
			givenStrings: []string{
				"Root",
				"MyPath.123/segment_xyz/another.999End",
				"Folder/sub/item.123.456",
				"File/name.123",
			},
		},
		"happy complex 4": {
			givenRe: `[0-9]{2}:[0-9]{2}:[0-9]{2}(_WARN|_INFO|_ERROR)? ([A-Za-z ]+)?(\[ID:[0-9]+]|\[MSG:[^]]+])?`,
			givenStrings: []string{
				"12:00:00_WARN Another message [ID:123]",
				"01:02:03_INFO Detail here [MSG:Hello World]",
			},
		},
		"ere_complex_id_tag": {
			givenRe: "^(ID|REF)(_?(ALPHA|BETA|[0-9]{2,4}))([_.-][A-Za-z]{3}|[0-9]+)*X{1,2}$",
			givenStrings: []string{
				"IDALPHAXX",
				"REF_BETA_xyzX",
				"ID1234.5678X",
				"REF_ALPHA_abc.12_DEF.34X",
				"ID12XX",
				"REF_BETA_ghi_7890X",
			},
		},
		"ere_log_line_parser": {
			givenRe: `[0-9]{2}:[0-9]{2}:[0-9]{2}(_WARN|_INFO|_ERROR)? ([A-Za-z ]+)?(\[ID:[0-9]+]|\[MSG:[^]]+])?`,
			givenStrings: []string{
				"10:00:00",
				"12:34:56_INFO My message",
				"01:02:03_ERROR Critical Error [ID:999]",
				"23:00:00 [MSG:Data here]",
				"05:05:05 Text only",
				"00:00:00_WARN",
				"09:09:09 [ID:1]",
				"08:08:08 [MSG:Hello there, Gemini!]",
			},
		},
		"ere_tricky_greedy_star": {
			givenRe: `a.*b(c)?`,
			givenStrings: []string{
				"ab",
				"abc",
				"axb",
				"axbyc",
				"a.bc",
				"a_X_Y_b_c",
			},
		},
		"ere_tricky_alternation_priority": {
			givenRe: `(aa|a)b+`,
			givenStrings: []string{
				"aab",
				"baaabb",
				"ab",
				"aaabbbb",
			},
		},
		"ere_tricky_negated_star_optional": {
			givenRe: `x([^y]*)y?`,
			givenStrings: []string{
				"x",
				"xy",
				"xabcy",
				"x_1_2_3",
			},
		},
		"ere_tricky_literal_dot": {
			givenRe: `([.]|[a-z])\.?`,
			givenStrings: []string{
				".",
				"a",
				"a.",
				"..",
				"y",
			},
		},
		"ere_anchor_strict_enum": {
			givenRe: `^(YES|NO)$`,
			givenStrings: []string{
				"YES",
				"NO",
				"MAYBE",
				"YESNO",
			},
		},
		"ere_anchor_optional_ends": {
			givenRe: `^A?[0-9]+Z?$`,
			givenStrings: []string{
				"123",
				"A123Z",
				"A0Z",
				"AZ",
			},
		},
		"ere_anchor_negated_full_string": {
			givenRe: `^[^0-9]+$`,
			givenStrings: []string{
				"abc",
				"!@#$",
				"Spaces and tabs",
				"0AA",
				"ABC0",
			},
		},
		"capture empty groups": {
			givenRe: `(a)?(b)?c`,
			givenStrings: []string{
				"ac", "bc", "c",
			},
		},
		"lazy quantifiers": {
			givenRe: `<(.+?)>(.*?)(x{2,3}?)`,
			givenStrings: []string{
				"<a><b>xxxx",
				"<abc>d",
			},
		},
		"bounded interval on group": {
			givenRe: `(ab|a){2,3}(b*)`,
			givenStrings: []string{
				"abababb",
				"aab",
				"ab",
			},
		},
		"nested groups": {
			givenRe: `((a|b)(c|d)*)+e`,
			givenStrings: []string{
				"acdbdde",
				"bbe",
				"e",
			},
		},
		// POSIX Character Classes
		"posix_alnum": {
			givenRe:      `[[:alnum:]]+`,
			givenStrings: []string{"abc123XYZ", "Hello_World", "123Test"},
		},
		"posix_alpha": {
			givenRe:      `[[:alpha:]]+`,
			givenStrings: []string{"abcXYZ", "Hello", "AlphaBravo"},
		},
		"posix_blank": {
			givenRe:      `[[:blank:]]+`,
			givenStrings: []string{" ", "\t", "  \t "},
		},
		"posix_cntrl": {
			givenRe:      `[[:cntrl:]]+`,
			givenStrings: []string{"\x00", "\x1F", "\x7F"},
		},
		"posix_digit": {
			givenRe:      `[[:digit:]]+`,
			givenStrings: []string{"12345", "0", "987"},
		},
		"posix_graph": {
			givenRe:      `[[:graph:]]+`,
			givenStrings: []string{"!@#$ABCabc123", "NoSpacesHere!"},
		},
		"posix_lower": {
			givenRe:      `[[:lower:]]+`,
			givenStrings: []string{"abcdefg", "hello world"},
		},
		"posix_print": {
			givenRe:      `[[:print:]]+`,
			givenStrings: []string{"Printable text 123 !@#", "All visible characters"},
		},
		"posix_punct": {
			givenRe:      `[[:punct:]]+`,
			givenStrings: []string{"!@#$%^&*()", ".-_=+[]{};:'\",<>/?`~"},
		},
		"posix_space": {
			givenRe:      `[[:space:]]+`,
			givenStrings: []string{" ", "\t", "\n", "\r", "\f", "\v"},
		},
		"posix_upper": {
			givenRe:      `[[:upper:]]+`,
			givenStrings: []string{"ABCDEFG", "HELLO WORLD"},
		},
		"posix_xdigit": {
			givenRe:      `[[:xdigit:]]+`,
			givenStrings: []string{"0123456789ABCDEFabcdef"},
		},
		"posix_negated_alnum": {
			givenRe:      `[^[:alnum:]]+`,
			givenStrings: []string{"!@#$ ", ".-_", " "},
		},
		"posix_negated_digit": {
			givenRe:      `[^[:digit:]]+`,
			givenStrings: []string{"abcABC!@#", ".-_ "},
		},
		"posix_combination_alpha_space": {
			givenRe:      `[[:alpha:]][[:space:]][[:alpha:]]`,
			givenStrings: []string{"a b", "X Y", "m\tn"},
		},
		"posix_combination_digit_punct": {
			givenRe:      `[[:digit:]][[:punct:]][[:digit:]]`,
			givenStrings: []string{"1!2", "5.8", "0-9"},
		},
		"bracket with leading ] and trailing -": {
			givenRe:      `[]a-]+`,
			givenStrings: []string{"x]a-a]y", "---"},
		},
		"escaped metacharacters": {
			givenRe:      `\(\*\+\?\{\|\^\$\.\\\)`,
			givenStrings: []string{`x(*+?{|^$.\)y`},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			// when
			type combination struct {
				Re         string
				Str        string
				Submatches []string
			}

			re, gotErr := Compile(tt.givenRe)
			if gotErr != nil {
				t.Fatalf("our Compile: %v", gotErr)
			}
			gotResults := make([]combination, len(tt.givenStrings))
			for i, s := range tt.givenStrings {
				gotSubmatches := re.FindSubmatch(s)
				var gotSubmatchStrings []string
				for _, s := range gotSubmatches {
					gotSubmatchStrings = append(gotSubmatchStrings, s.Str)
				}
				gotResults[i] = combination{tt.givenRe, s, gotSubmatchStrings}
			}

			goRe := goRegexp(t, tt.givenRe, "")
			wantResults := make([]combination, len(tt.givenStrings))
			for i, s := range tt.givenStrings {
				wantResults[i] = combination{tt.givenRe, s, goRe.FindStringSubmatch(s)}
			}

			// then
			if d := cmp.Diff(wantResults, gotResults); d != "" {
				t.Errorf("got diff (-want +got):\n%s", d)
			}
		})
	}
}

func TestFindSubmatchIgnoreCase(t *testing.T) {
	tests := map[string]struct {
		givenStrings []string
		givenRe      string
	}{
		"literal run": {
			givenRe:      "hello world",
			givenStrings: []string{"HeLLo WORLD", "hello world", "help"},
		},
		"ranges and quantified char": {
			givenRe:      "[a-c]+x*",
			givenStrings: []string{"ABCaXX", "zzCx"},
		},
		"negated list": {
			givenRe:      "[^a-c]+",
			givenStrings: []string{"ABCdEF", "abc"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			re, err := CompileFlags(tt.givenRe, CompileIgnoreCase)
			if err != nil {
				t.Fatalf("our Compile: %v", err)
			}
			goRe := goRegexp(t, tt.givenRe, "i")

			for _, s := range tt.givenStrings {
				var got []string
				for _, sm := range re.FindSubmatch(s) {
					got = append(got, sm.Str)
				}
				if d := cmp.Diff(goRe.FindStringSubmatch(s), got); d != "" {
					t.Errorf("%q: got diff (-want +got):\n%s", s, d)
				}
			}
		})
	}
}

func TestReplace(t *testing.T) {
	tests := map[string]struct {
		givenRe      string
		givenStr     string
		givenReplace string
		wantReplaced string
	}{
		"complex, many replace": {
			givenRe:      `[0-9]{2}:[0-9]{2}:[0-9]{2}(_WARN|_INFO|_ERROR)? ([A-Za-z ]+)?(\[ID:[0-9]+]|\[MSG:[^]]+])?`,
			givenStr:     "01:02:03_ERROR Critical Error [ID:999]",
			givenReplace: "I$3reversed$2them$1hihi$0",
			wantReplaced: "I" + "[ID:999]" + "reversed" + "Critical Error " + "them" + "_ERROR" + "hihi" + "01:02:03_ERROR Critical Error [ID:999]",
		},
		"complex, replace with empty string if group not matched": {
			givenRe:      `(aa)b?`,
			givenStr:     "aab",
			givenReplace: "$0$2",
			wantReplaced: "aab",
		},
		"keeps text around the match": {
			givenRe:      `(b+)`,
			givenStr:     "abbbc",
			givenReplace: "<$1>",
			wantReplaced: "a<bbb>c",
		},
		"no match leaves input alone": {
			givenRe:      `z`,
			givenStr:     "abc",
			givenReplace: "y",
			wantReplaced: "abc",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			// when
			re, gotErr := Compile(tt.givenRe)
			if gotErr != nil {
				t.Fatalf("our Compile: %v", gotErr)
			}
			gotReplaced := re.Replace(tt.givenStr, tt.givenReplace)

			// then
			if d := cmp.Diff(tt.wantReplaced, gotReplaced); d != "" {
				t.Errorf("got diff (-want +got):\n%s", d)
			}
		})
	}
}

func TestFindAllSubmatches(t *testing.T) {
	tests := map[string]struct {
		givenRe     string
		givenString string
	}{
		"happy bananas": {
			givenRe:     "ba(.{0,2})na",
			givenString: "anbananaortwobananasbaxana",
		},
		"multiline - dotall and groups": {
			givenRe: "BEGIN\n(.*)\nEND",
			givenString: `Some preamble
BEGIN
  Line 1 of content
  Line 2 of content
END
Some postamble`,
		},
		"nested groups - json like structure": {
			givenRe:     `\{[[:space:]]*"id":[[:space:]]*([0-9]+),[[:space:]]*"data":[[:space:]]*"([^"]*)"[[:space:]]*}`,
			givenString: `Before {"id": 123, "data": "hello"} after {"id": 456, "data": "world"} end`,
		},
		"nested groups - path segments": {
			givenRe:     `(/([[:alnum:]_]+))+`,
			givenString: `/usr/local/bin/my_app /var/log/app.log`,
		},
		"complex nested groups with different character sets": {
			givenRe:     `\[([[:alnum:]_]+):( <([^>]+)>)?]`,
			givenString: `[Config: <Setting1>] [Type: <Boolean>] [Name:]`,
		},
		"capture empty groups": {
			givenRe:     `(a)?(b)?c`,
			givenString: `abc ac bc c`,
		},
		"empty matches between and after": {
			givenRe:     `a*`,
			givenString: `baaacaa`,
		},
		"alternation with empty branch": {
			givenRe:     `x(y|)`,
			givenString: `xyxxy`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			// when
			re, gotErr := Compile(tt.givenRe)
			if gotErr != nil {
				t.Fatalf("our Compile: %v", gotErr)
			}
			gotSubmatches := re.FindAllSubmatches(tt.givenString, -1)

			var gotSubmatchesStrings [][]string
			for _, match := range gotSubmatches {
				var submatchStrings []string
				for _, sm := range match {
					submatchStrings = append(submatchStrings, sm.Str)
				}
				gotSubmatchesStrings = append(gotSubmatchesStrings, submatchStrings)
			}

			wantMatchesStrings := goRegexp(t, tt.givenRe, "").FindAllStringSubmatch(tt.givenString, -1)

			// then
			if d := cmp.Diff(wantMatchesStrings, gotSubmatchesStrings); d != "" {
				t.Errorf("got diff (-want +got):\n%s", d)
			}
		})
	}
}

func TestFindAllSubmatchesOffsets(t *testing.T) {
	re := MustCompile("(a)|b")
	got := re.FindAllSubmatches("xaby", -1)
	want := [][]Submatch{
		{{Offset: 1, Str: "a"}, {Offset: 1, Str: "a"}},
		{{Offset: 2, Str: "b"}, {Offset: -1, Str: ""}},
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("got diff (-want +got):\n%s", d)
	}

	if d := cmp.Diff(want[:1], re.FindAllSubmatches("xaby", 1)); d != "" {
		t.Errorf("maxCount 1 diff (-want +got):\n%s", d)
	}
}

func TestCompileWrapsCompileError(t *testing.T) {
	_, err := Compile("a{3,2}")
	if !errors.Is(err, ErrBadRepetitionCount) {
		t.Fatalf("want ErrBadRepetitionCount, got %v", err)
	}
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("want a *CompileError in %v", err)
	}
	if d := cmp.Diff(Token{Kind: TokenRightCurly, Position: 5, Value: "}"}, ce.Token); d != "" {
		t.Errorf("token diff (-want +got):\n%s", d)
	}
}

func TestMatch(t *testing.T) {
	re := MustCompile("^(foo|bar)+$")
	for s, want := range map[string]bool{
		"foo":       true,
		"barfoo":    true,
		"foobarbaz": false,
		"":          false,
	} {
		if got := re.Match(s); got != want {
			t.Errorf("Match(%q) = %v, want %v", s, got, want)
		}
	}
}
