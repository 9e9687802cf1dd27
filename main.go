package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"astbridge/pkg/config"
	"astbridge/pkg/diagnostics"
	"astbridge/pkg/native"
	"astbridge/pkg/session"
)

var (
	evalExpr   = flag.String("e", "", "Convert expression from command line")
	expandMode = flag.Bool("expand", false, "Macro-expand each form into a thunk before printing")
	configFile = flag.String("config", "", "YAML configuration file")
	wordSize   = flag.Int("word", 0, "Target word size (32 or 64, overrides config)")
	gcInterval = flag.Int("gc", -1, "Collect every N allocations (overrides config)")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "astbridge - generic/native syntax tree bridge\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [file]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -e '(call f 1 2)'           # Print the native tree\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -expand -e '(f (g x))'      # Print the expanded thunk\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -word 32 program.scm        # Convert a file for a 32-bit target\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s                             # Interactive REPL\n", os.Args[0])
	}
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		cfg.TraceLevel = "debug"
	}

	reporter := &diagnostics.Writer{W: os.Stderr, Pretty: true}
	s := session.New(cfg, reporter)

	var input string
	if *evalExpr != "" {
		input = *evalExpr
	} else if flag.NArg() > 0 {
		data, err := os.ReadFile(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
			os.Exit(1)
		}
		input = string(data)
	} else {
		runREPL(s, cfg)
		return
	}

	if err := convertAll(s, input, os.Stdout); err != nil {
		os.Exit(1)
	}
	if *verbose {
		printStats(s, os.Stderr)
	}
}

func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			return cfg, err
		}
	}
	if *wordSize != 0 {
		cfg.WordSize = *wordSize
	}
	if *gcInterval >= 0 {
		cfg.GCInterval = *gcInterval
	}
	return cfg, cfg.Validate()
}

// convertAll converts every form of input and prints the native trees.
func convertAll(s *session.Session, input string, w io.Writer) error {
	pos := 0
	for {
		v, next, err := s.ParseString(input, pos, true)
		if err != nil {
			return err
		}
		if next == pos || v == native.Nothing && next >= len(input) {
			return nil
		}
		pos = next
		if err := printForm(s, v, w); err != nil {
			return err
		}
	}
}

func printForm(s *session.Session, v native.Value, w io.Writer) error {
	if *expandMode {
		out, err := s.Expand(v)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Expansion error: %v\n", err)
			return err
		}
		if out == nil {
			return nil
		}
		v = out
	}
	fmt.Fprintln(w, native.Show(v))
	return nil
}

func printStats(s *session.Session, w io.Writer) {
	st := s.Heap.GetStats()
	fmt.Fprintf(w, "allocations: %d  collections: %d  deferred: %d  reclaimed: %d\n",
		st.Allocations, st.Collections, st.Deferred, st.Reclaimed)
	fmt.Fprintf(w, "peak pins: %d  peak root frames: %d  gensyms: %d\n",
		st.PeakPins, st.PeakFrames, s.Gensyms.Len())
}

const (
	promptMain = "astbridge> "
	promptCont = "       ... "
)

func runREPL(s *session.Session, cfg config.Config) {
	fmt.Println("astbridge REPL")
	fmt.Println("Type a form to see its native tree, 'help' for commands.")
	fmt.Println()

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := cfg.HistoryFile
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if err := os.MkdirAll(filepath.Dir(histPath), 0o755); err != nil {
				return
			}
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	for {
		code, ok := readForm(ln)
		if !ok {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(code)
		if line == "" {
			continue
		}

		switch line {
		case "quit", "exit":
			fmt.Println("Goodbye!")
			return
		case "expand":
			*expandMode = !*expandMode
			if *expandMode {
				fmt.Println("Expansion ON")
			} else {
				fmt.Println("Expansion OFF")
			}
			continue
		case "stats":
			printStats(s, os.Stdout)
			continue
		case "collect":
			fmt.Printf("reclaimed %d\n", s.Heap.Collect())
			continue
		case "help":
			printREPLHelp()
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		v, err := s.ParseInputLine(code)
		if err != nil || v == nil {
			continue
		}
		_ = printForm(s, v, os.Stdout)
	}
}

// readForm reads lines until they hold a complete form.
func readForm(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !incomplete(b.String()) {
			return b.String(), true
		}
	}
}

// incomplete reports whether src has more open than closed parentheses,
// ignoring strings, characters and comments.
func incomplete(src string) bool {
	depth := 0
	inStr := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case inStr:
			if c == '\\' {
				i++
			} else if c == '"' {
				inStr = false
			}
		case c == '"':
			inStr = true
		case c == ';':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '#' && i+1 < len(src) && src[i+1] == '\\':
			i += 2
		case c == '(':
			depth++
		case c == ')':
			depth--
		}
	}
	return inStr || depth > 0
}

func printREPLHelp() {
	fmt.Println("Commands:")
	fmt.Println("  quit     - exit the REPL")
	fmt.Println("  expand   - toggle macro expansion into thunks")
	fmt.Println("  stats    - show heap statistics")
	fmt.Println("  collect  - run a collection now")
	fmt.Println("  help     - show this help")
	fmt.Println()
	fmt.Println("Forms:")
	fmt.Println("  (lambda (a b) (var-info (locals) () () ()) (body (return a)))")
	fmt.Println("  (macrocall name args...)   - invoke a registered expander")
	fmt.Println("  (defined? name)            - query the global namespace")
	fmt.Println("  #:g12                      - generated symbol with session id 12")
	fmt.Println("  #u64 7                     - unsigned 64-bit integer")
}
