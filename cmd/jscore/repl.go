package main

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"jscore/pkg/driver"
	"jscore/pkg/vm"
)

// Styles
var (
	primaryColor = lipgloss.Color("#7C3AED")
	errorColor   = lipgloss.Color("#EF4444")
	warningColor = lipgloss.Color("#F59E0B")
	dimColor     = lipgloss.Color("#6B7280")
	okColor      = lipgloss.Color("#10B981")

	promptStyle  = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	dimStyle     = lipgloss.NewStyle().Foreground(dimColor)
	cmdStyle     = lipgloss.NewStyle().Foreground(warningColor)
	successStyle = lipgloss.NewStyle().Foreground(okColor)
	titleStyle   = lipgloss.NewStyle().Foreground(primaryColor).Bold(true).Underline(true)
)

type command struct {
	name, usage, desc string
	run               func(s *session, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{".stringify", ".stringify [indent]", "Print $ as JSON", (*session).cmdStringify},
		{".keys", ".keys", "Object.keys($)", (*session).cmdKeys},
		{".get", ".get <key>", "Replace $ with $[key]", (*session).cmdGet},
		{".freeze", ".freeze", "Object.freeze($)", objectCommand("freeze")},
		{".seal", ".seal", "Object.seal($)", objectCommand("seal")},
		{".frozen", ".frozen", "Object.isFrozen($)", objectCommand("isFrozen")},
		{".fixed", ".fixed <digits>", "$.toFixed(digits)", numberCommand("toFixed")},
		{".precision", ".precision <p>", "$.toPrecision(p)", numberCommand("toPrecision")},
		{".exponential", ".exponential [digits]", "$.toExponential(digits)", numberCommand("toExponential")},
		{".help", ".help", "Show this help", (*session).cmdHelp},
		{".exit", ".exit", "Leave the REPL", nil},
	}
}

type highlighter struct {
	lexer     chroma.Lexer
	style     *chroma.Style
	formatter chroma.Formatter
}

func newHighlighter(styleName string) *highlighter {
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}
	return &highlighter{lexer: chroma.Coalesce(lexer), style: style, formatter: formatter}
}

// highlight returns code unchanged on a nil highlighter.
func (h *highlighter) highlight(code string) string {
	if h == nil {
		return code
	}
	iterator, err := h.lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return code
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// session is one REPL: JSON input lines become values, and dot commands
// operate on the last one, also visible to scripts as the global $.
type session struct {
	rt     *driver.Runtime
	out    io.Writer
	errOut io.Writer
	indent string
	hl     *highlighter
	last   vm.Value
}

func newSession(rt *driver.Runtime, out, errOut io.Writer, indent string, hl *highlighter) *session {
	return &session{rt: rt, out: out, errOut: errOut, indent: indent, hl: hl}
}

// handle processes one input line and reports whether the session is over.
func (s *session) handle(line string) (quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, ".") {
		v, err := s.rt.ParseJSON(line, vm.Undefined)
		if err != nil {
			s.printError(line, err)
			return false
		}
		s.setLast(v)
		s.printValue(v)
		return false
	}

	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]
	for _, c := range commands {
		if c.name != name {
			continue
		}
		if c.run == nil {
			return true
		}
		if err := c.run(s, args); err != nil {
			s.printError(line, err)
		}
		return false
	}
	fmt.Fprintln(s.errOut, errorStyle.Render("Unknown command: "+name))
	fmt.Fprintln(s.errOut, dimStyle.Render("Type .help for available commands"))
	return false
}

func (s *session) setLast(v vm.Value) {
	s.last = v
	s.rt.Do(func(machine *vm.VM) error {
		return machine.SetGlobal("$", v)
	})
}

// printValue shows v as highlighted JSON when it has a JSON form.
func (s *session) printValue(v vm.Value) {
	text, ok, err := s.rt.StringifyJSON(v, s.indent)
	if err != nil || !ok {
		var buf bytes.Buffer
		s.rt.FprintResult(&buf, s.errOut, "", v, nil)
		fmt.Fprint(s.out, buf.String())
		return
	}
	fmt.Fprintln(s.out, s.hl.highlight(text))
}

func (s *session) printError(source string, err error) {
	var buf bytes.Buffer
	s.rt.FprintResult(io.Discard, &buf, source, vm.Undefined, err)
	fmt.Fprintln(s.errOut, errorStyle.Render(strings.TrimRight(buf.String(), "\n")))
}

func (s *session) cmdStringify(args []string) error {
	indent := ""
	if len(args) > 0 {
		indent = args[0]
	}
	var space vm.Value
	if indent != "" {
		space = vm.NewString(indent)
		if n, err := strconv.Atoi(indent); err == nil {
			space = vm.NumberValue(float64(n))
		}
	}
	return s.rt.Do(func(machine *vm.VM) error {
		stringify, err := builtinPath(machine, "JSON", "stringify")
		if err != nil {
			return err
		}
		v, err := machine.Call(stringify, vm.Undefined, []vm.Value{s.last, vm.Undefined, space})
		if err != nil {
			return err
		}
		if v.IsUndefined() {
			fmt.Fprintln(s.out, dimStyle.Render("undefined"))
			return nil
		}
		fmt.Fprintln(s.out, s.hl.highlight(v.AsString()))
		return nil
	})
}

func (s *session) cmdKeys(args []string) error {
	return s.callObject("keys")
}

func (s *session) cmdGet(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: .get <key>")
	}
	var result vm.Value
	err := s.rt.Do(func(machine *vm.VM) error {
		v, err := machine.GetValue(s.last, args[0])
		result = v
		return err
	})
	if err != nil {
		return err
	}
	s.setLast(result)
	s.printValue(result)
	return nil
}

func (s *session) cmdHelp(args []string) error {
	fmt.Fprintln(s.out, titleStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(s.out, "  %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-22s", c.usage)), dimStyle.Render(c.desc))
	}
	fmt.Fprintln(s.out, dimStyle.Render("Any other input is parsed as JSON and becomes $."))
	return nil
}

// callObject runs Object.<method>($) and prints the result.
func (s *session) callObject(method string) error {
	var result vm.Value
	err := s.rt.Do(func(machine *vm.VM) error {
		fn, err := builtinPath(machine, "Object", method)
		if err != nil {
			return err
		}
		result, err = machine.Call(fn, vm.Undefined, []vm.Value{s.last})
		return err
	})
	if err != nil {
		return err
	}
	s.printValue(result)
	return nil
}

func objectCommand(method string) func(*session, []string) error {
	return func(s *session, args []string) error {
		return s.callObject(method)
	}
}

// numberCommand invokes a Number.prototype formatter on $. Arguments are
// passed as strings and converted by the method itself.
func numberCommand(method string) func(*session, []string) error {
	return func(s *session, args []string) error {
		callArgs := make([]vm.Value, len(args))
		for i, a := range args {
			callArgs[i] = vm.NewString(a)
		}
		var result vm.Value
		err := s.rt.Do(func(machine *vm.VM) error {
			v, err := machine.Invoke(s.last, method, callArgs...)
			result = v
			return err
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, successStyle.Render(result.AsString()))
		return nil
	}
}

func builtinPath(machine *vm.VM, global, method string) (vm.Value, error) {
	base, ok := machine.GetGlobal(global)
	if !ok {
		return vm.Undefined, machine.NewReferenceError("%s is not defined", global)
	}
	return machine.GetValue(base, method)
}

func prompt() string {
	return promptStyle.Render("jscore") + dimStyle.Render(" > ")
}
