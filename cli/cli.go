package cli

import (
	"canvas-editor/handlers/api/sessions"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chzyer/readline"
)

// ErrExit is returned by Execute when the user asks to leave.
var ErrExit = errors.New("exit requested")

// CLI drives one editing session from text commands.
type CLI struct {
	Session *sessions.Session
	Out     io.Writer
}

func New(s *sessions.Session, out io.Writer) *CLI {
	return &CLI{Session: s, Out: out}
}

// Run reads and executes commands until exit, EOF or interrupt.
func (c *CLI) Run(ctx context.Context, rl *readline.Instance) error {
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return nil
			}
			continue
		} else if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}

		err = c.Execute(ctx, ParseArgs(line))
		switch {
		case errors.Is(err, ErrExit):
			return nil
		case err != nil:
			fmt.Fprintf(c.Out, "Error: %v\n", err)
		}
	}
}

// ParseArgs splits input on spaces. Double quotes group words.
func ParseArgs(input string) []string {
	var (
		args     []string
		current  strings.Builder
		inQuotes bool
		quoted   bool
	)
	flush := func() {
		if current.Len() > 0 || quoted {
			args = append(args, current.String())
			current.Reset()
		}
		quoted = false
	}

	for _, char := range strings.TrimSpace(input) {
		switch {
		case char == '"':
			inQuotes = !inQuotes
			quoted = true
		case (char == ' ' || char == '\t') && !inQuotes:
			flush()
		default:
			current.WriteRune(char)
		}
	}
	flush()
	return args
}

// Execute runs one parsed command line.
func (c *CLI) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command: %s", args[0])
	}
	return cmd.run(c, ctx, args[1:])
}

func (c *CLI) printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *CLI) printHelp(name string) {
	if name == "" {
		names := make([]string, 0, len(commands))
		for n := range commands {
			names = append(names, n)
		}
		sort.Strings(names)
		c.printf("Available commands:\n")
		for _, n := range names {
			c.printf("  %-10s %s\n", n, commands[n].summary)
		}
		c.printf("\nUse 'help <command>' for details.\n")
		return
	}
	cmd, ok := commands[name]
	if !ok {
		c.printf("Unknown command: %s\n", name)
		return
	}
	c.printf("%s\n%s\n", cmd.usage, cmd.summary)
}

// Completer offers the command names to readline.
func Completer() *readline.PrefixCompleter {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	items := make([]readline.PrefixCompleterInterface, 0, len(names))
	for _, n := range names {
		items = append(items, readline.PcItem(n))
	}
	return readline.NewPrefixCompleter(items...)
}
