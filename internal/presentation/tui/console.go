package tui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/orchestra-dev/podium/pkg/domain"
)

// ConsoleView is a line-oriented occurrence view for terminal hosts. Each
// state change prints one line; colors degrade automatically on dumb
// terminals via termenv's profile detection.
type ConsoleView struct {
	name    string
	out     io.Writer
	profile termenv.Profile
}

// NewConsoleView builds a view for one command occurrence writing to out.
func NewConsoleView(name string, out io.Writer) *ConsoleView {
	profile := termenv.Ascii
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		profile = termenv.ColorProfile()
	}
	return &ConsoleView{name: name, out: out, profile: profile}
}

// CommandName identifies the command this view displays.
func (v *ConsoleView) CommandName() string {
	return v.name
}

// Apply prints one status line for the update.
func (v *ConsoleView) Apply(update domain.PresentationUpdate) {
	line := fmt.Sprintf("%s %s", update.Icon, v.name)
	if update.Tooltip != "" {
		line += "  " + firstLine(update.Tooltip)
	}
	if update.Running {
		line = v.colorize(line, "#fbc02d")
	}
	fmt.Fprintln(v.out, line)
}

func (v *ConsoleView) colorize(s, hex string) string {
	return termenv.String(s).Foreground(v.profile.Color(hex)).String()
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

// ConsoleNotifier prints user-facing controller messages to a writer, with
// level prefixes colored when the writer is a terminal. Safe for concurrent
// use.
type ConsoleNotifier struct {
	mu      sync.Mutex
	out     io.Writer
	profile termenv.Profile
}

// NewConsoleNotifier builds a notifier writing to out.
func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	profile := termenv.Ascii
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		profile = termenv.ColorProfile()
	}
	return &ConsoleNotifier{out: out, profile: profile}
}

func (n *ConsoleNotifier) Info(msg string)    { n.print("info", "#4ade80", msg) }
func (n *ConsoleNotifier) Warning(msg string) { n.print("warn", "#fbbf24", msg) }
func (n *ConsoleNotifier) Error(msg string)   { n.print("error", "#f87171", msg) }

func (n *ConsoleNotifier) print(level, hex, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	prefix := termenv.String(level).Foreground(n.profile.Color(hex)).String()
	fmt.Fprintf(n.out, "%s: %s\n", prefix, msg)
}
