package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/mfroeh/posixre/regex"
)

var submatchColors = []*color.Color{
	color.New(color.FgRed),
	color.New(color.FgGreen),
	color.New(color.FgYellow),
	color.New(color.FgBlue),
	color.New(color.FgMagenta),
	color.New(color.FgCyan),
}

var cli struct {
	Pattern    string   `arg:"" name:"pattern" help:"Regex pattern to use in search" type:"string"`
	Paths      []string `arg:"" optional:"" name:"path" help:"Paths to search" type:"path"`
	IgnoreCase bool     `short:"i" help:"Ignore case distinctions in ASCII letters."`
	NoSub      bool     `name:"no-sub" help:"Do not highlight capture groups."`
	Count      bool     `short:"c" help:"Only print the number of matching lines per file."`
	MaxCount   int      `short:"m" default:"-1" help:"Highlight at most this many matches per line (-1 for all)."`
	Dump       bool     `help:"Print the compiled program and exit."`
	Stats      bool     `help:"Log matcher statistics per file to stderr."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("gogrep"),
		kong.Description("Recursively searches the current directory for lines matching a POSIX extended regular expression."),
		kong.UsageOnError(),
	)

	flags := regex.CompileExtended
	if cli.IgnoreCase {
		flags |= regex.CompileIgnoreCase
	}
	if cli.NoSub {
		flags |= regex.CompileNoSub
	}
	re, err := regex.CompileFlags(cli.Pattern, flags)
	if err != nil {
		log.Fatalf("failed to build regex: %v", err)
	}

	if cli.Dump {
		if err := dumpProgram(os.Stdout, re.Program()); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	s := &searcher{
		prog:     re.Program(),
		out:      os.Stdout,
		count:    cli.Count,
		maxCount: cli.MaxCount,
	}
	if cli.Stats {
		s.stats = log.New(os.Stderr, "gogrep: ", 0)
	}

	if len(cli.Paths) == 0 {
		cli.Paths = []string{"."}
	}

	for _, path := range cli.Paths {
		info, err := os.Lstat(path)
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}

		if info.IsDir() {
			err = s.recursivelySearchDir(path)
		} else {
			err = s.searchFile(path)
		}

		if err != nil {
			log.Fatalf("%v", err)
		}
	}
}

type searcher struct {
	prog     *regex.Program
	out      io.Writer
	count    bool
	maxCount int
	// stats is nil unless statistics were requested
	stats *log.Logger
}

func (s *searcher) recursivelySearchDir(path string) error {
	err := filepath.WalkDir(path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		// resolve symlinks
		var info os.FileInfo
		for {
			info, err = os.Stat(path)
			// symlinks may be broken, in that case, just ignore them
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			if info.Mode()&fs.ModeSymlink != fs.ModeSymlink {
				break
			}

			path, err = os.Readlink(path)
			if err != nil {
				return err
			}
		}

		// symlink may resolve to a directory, in which case we just ignore it
		if info.IsDir() {
			return nil
		}

		return s.searchFile(path)
	})

	return err
}

func (s *searcher) searchFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return s.search(path, string(content))
}

func (s *searcher) search(path, content string) error {
	flags := regex.MatchSearch | regex.MatchAll
	if s.stats != nil {
		flags |= regex.MatchStats
	}
	width := 1 + s.prog.Groups

	matchingLines, steps, depth, exceeded := 0, 0, 0, 0
	printFileHeader := false
	for i, line := range strings.Split(content, "\n") {
		res := s.prog.Match(line, s.maxCount, flags)
		steps += res.Steps
		depth = max(depth, res.Depth)
		if res.DepthExceeded {
			exceeded++
		}
		if res.Count == 0 {
			continue
		}
		matchingLines++
		if s.count {
			continue
		}

		if !printFileHeader {
			printFileHeader = true
			if _, err := fmt.Fprintln(s.out, path, ":"); err != nil {
				return err
			}
		}

		out := strings.Builder{}
		lastMatchEnd := 0
		for m := 0; m < res.Count; m++ {
			match := res.Matches[m*width : (m+1)*width]
			out.WriteString(line[lastMatchEnd:match[0].Start])
			out.WriteString(formatMatch(match))
			lastMatchEnd = match[0].End
		}
		out.WriteString(line[lastMatchEnd:])
		if _, err := fmt.Fprintf(s.out, "%d:%s\n", i+1, out.String()); err != nil {
			return err
		}
	}

	if s.stats != nil {
		s.stats.Printf("%s: %d matching lines, %d steps, max depth %d, %d lines over the depth limit",
			path, matchingLines, steps, depth, exceeded)
	}

	if s.count {
		_, err := fmt.Fprintf(s.out, "%s:%d\n", path, matchingLines)
		return err
	}
	if printFileHeader {
		_, err := fmt.Fprintln(s.out)
		return err
	}
	return nil
}

// formatMatch colors a whole match and the capture groups inside it. Groups
// that did not participate, or that overlap an earlier colored group, are
// left in the whole-match color.
func formatMatch(match []regex.Match) string {
	fullMatch := match[0].Text
	if len(match) == 1 || len(match) > len(submatchColors) {
		return submatchColors[0].Sprint(fullMatch)
	}

	out := strings.Builder{}
	matchOff := 0
	for i, sm := range match[1:] {
		offRelativeToMatch := sm.Start - match[0].Start
		if sm.Start < 0 || offRelativeToMatch < matchOff {
			continue
		}
		submatchColors[0].Fprint(&out, fullMatch[matchOff:offRelativeToMatch])
		submatchColors[i+1].Fprint(&out, sm.Text)
		matchOff = offRelativeToMatch + len(sm.Text)
	}
	submatchColors[0].Fprint(&out, fullMatch[matchOff:])
	return out.String()
}

var (
	compareColor = color.New(color.FgGreen)
	jumpColor    = color.New(color.FgYellow)
	groupColor   = color.New(color.FgCyan)
	checkColor   = color.New(color.FgMagenta)
	exitColor    = color.New(color.FgRed)
)

func opcodeColor(op regex.Opcode) *color.Color {
	switch op {
	case regex.OpCompare:
		return compareColor
	case regex.OpJump, regex.OpForkJump, regex.OpForkStay:
		return jumpColor
	case regex.OpSaveGroupStart, regex.OpSaveGroupEnd:
		return groupColor
	case regex.OpExit:
		return exitColor
	}
	return checkColor
}

func dumpProgram(w io.Writer, prog *regex.Program) error {
	if _, err := fmt.Fprintf(w, "pattern %q: %d groups, min length %d\n", prog.Pattern, prog.Groups, prog.MinLength); err != nil {
		return err
	}
	for ip, in := range prog.Code {
		if _, err := fmt.Fprintf(w, "%04d  %s\n", ip, opcodeColor(in.Op()).Sprint(in)); err != nil {
			return err
		}
	}
	return nil
}
