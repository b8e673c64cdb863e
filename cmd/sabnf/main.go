// Command sabnf is an interactive driver for the sabnfvm engine: it
// matches typed lines against one of the built-in demo grammars and can
// show the parse result, the trace, the AST and the statistics.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/peterh/liner"

	"github.com/chronos-tachyon/go-sabnf/sabnfvm"
)

const (
	appName     = "sabnf"
	historyFile = ".sabnf_history"
	promptMain  = "sabnf> "
)

var helpText = `
commands:
  :grammar NAME   switch demo grammar (` + "`:grammar`" + ` lists them)
  :trace on|off   record and print a trace for each parse
  :ast on|off     print the AST of each successful parse
  :stats          print statistics for the last parse
  :spew           raw dump of the last trace records
  :help           this text
  :quit           exit

anything else is parsed against the current grammar.
`

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }
func blue(s string) string  { return "\x1b[94m" + s + "\x1b[0m" }

type session struct {
	name    string
	start   string
	grammar *sabnfvm.Grammar
	parser  *sabnfvm.Parser

	traceOn bool
	astOn   bool
}

func newSession(name string) (*session, error) {
	demo, found := demoGrammars[name]
	if !found {
		return nil, fmt.Errorf("unknown grammar %q", name)
	}
	s := &session{
		name:    name,
		start:   demo.start,
		grammar: demo.grammar,
		parser:  sabnfvm.NewParser(),
	}
	s.parser.EnableStats()
	return s, nil
}

func (s *session) parse(line string) {
	if s.traceOn {
		trace := s.parser.EnableTrace()
		trace.SetRuleFilter(sabnfvm.FilterAll)
		if err := trace.SetOperatorFilter(sabnfvm.FilterAll); err != nil {
			fmt.Println(red(err.Error()))
			return
		}
	} else {
		s.parser.DisableTrace()
	}
	if s.astOn {
		ast := s.parser.EnableAST()
		for i := range s.grammar.Rules {
			ast.SetNode(s.grammar.Rules[i].Name, nil)
		}
	} else {
		s.parser.DisableAST()
	}

	result, err := s.parser.ParseString(s.grammar, s.start, line, nil)
	if err != nil {
		fmt.Println(red(err.Error()))
		return
	}

	verdict := red("no match")
	if result.Success {
		verdict = green("match")
	}
	fmt.Printf("%s  state=%s matched=%d/%d maxMatched=%d depth=%d hits=%d\n",
		verdict, result.State, result.Matched, result.Length,
		result.MaxMatched, result.MaxTreeDepth, result.NodeHits)

	if s.traceOn {
		fmt.Print(blue(s.parser.Trace().Dump()))
	}
	if s.astOn && result.Success {
		fmt.Print(blue(s.parser.AST().Dump()))
	}
}

func (s *session) printStats() {
	stats := s.parser.Stats()
	total := stats.TotalCounts()
	fmt.Printf("total: empty=%d match=%d nomatch=%d total=%d\n",
		total.Empty, total.Match, total.NoMatch, total.Total)
	for i := range s.grammar.Rules {
		name := s.grammar.Rules[i].Name
		c, _ := stats.RuleCounts(name)
		fmt.Printf("%-12s empty=%d match=%d nomatch=%d total=%d\n",
			name, c.Empty, c.Match, c.NoMatch, c.Total)
	}
}

func (s *session) spewTrace() {
	trace := s.parser.Trace()
	if trace == nil {
		fmt.Println("no trace recorded; :trace on first")
		return
	}
	spew.Dump(trace.Emit())
}

func grammarNames() string {
	names := make([]string, 0, len(demoGrammars))
	for name := range demoGrammars {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func main() {
	grammarFlag := flag.String("grammar", "float", "demo grammar to start with")
	flag.Parse()

	s, err := newSession(*grammarFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v (have: %s)\n", appName, err, grammarNames())
		os.Exit(1)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := filepath.Join(os.TempDir(), historyFile)
	if f, err := os.Open(histPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Printf("%s REPL, grammar %q. :help for commands, :quit or Ctrl+D to exit.\n", appName, s.name)
	for {
		input, err := line.Prompt(promptMain)
		if err != nil {
			fmt.Println()
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if !strings.HasPrefix(input, ":") {
			s.parse(input)
			continue
		}

		fields := strings.Fields(input)
		arg := ""
		if len(fields) > 1 {
			arg = fields[1]
		}
		switch fields[0] {
		case ":quit", ":q":
			return
		case ":help":
			fmt.Print(helpText)
		case ":grammar":
			if arg == "" {
				fmt.Printf("current: %s; available: %s\n", s.name, grammarNames())
				continue
			}
			next, err := newSession(arg)
			if err != nil {
				fmt.Println(red(err.Error() + " (have: " + grammarNames() + ")"))
				continue
			}
			next.traceOn, next.astOn = s.traceOn, s.astOn
			s = next
			fmt.Printf("grammar %q, start rule %q\n", s.name, s.start)
		case ":trace":
			s.traceOn = arg != "off"
		case ":ast":
			s.astOn = arg != "off"
		case ":stats":
			s.printStats()
		case ":spew":
			s.spewTrace()
		default:
			fmt.Println(red("unknown command " + fields[0]))
		}
	}
}
