// Command jscore is an interactive shell over the jscore object model. Input
// lines are JSON documents; dot commands inspect and transform the last one.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/chzyer/readline"

	"jscore/pkg/driver"
	"jscore/pkg/vm"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("jscore: ")

	exprFlag := flag.String("e", "", "Parse the given JSON, print it and exit")
	indentFlag := flag.String("indent", "", "Indentation used when printing values (overrides the config file)")
	strictFlag := flag.Bool("strict", false, "Run builtins with strict-mode semantics")
	configFlag := flag.String("config", "", "Path to a YAML config file (default ~/.jscore.yaml)")
	flag.Parse()

	cfgPath, explicit := *configFlag, *configFlag != ""
	if !explicit {
		cfgPath = defaultConfigPath()
	}
	cfg, err := loadConfig(cfgPath, explicit)
	if err != nil {
		log.Fatal(err)
	}
	if *indentFlag != "" {
		cfg.Indent = *indentFlag
	}
	cfg.Strict = cfg.Strict || *strictFlag

	rt, err := driver.NewRuntime(driver.Options{VM: vm.Options{Strict: cfg.Strict}})
	if err != nil {
		log.Fatal(err)
	}

	if *exprFlag != "" {
		s := newSession(rt, os.Stdout, os.Stderr, cfg.Indent, newHighlighter(cfg.Style))
		v, err := rt.ParseJSON(*exprFlag, vm.Undefined)
		if err != nil {
			s.printError(*exprFlag, err)
			os.Exit(70) // Exit code 70: internal software error
		}
		s.printValue(v)
		return
	}

	if flag.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Usage: jscore [-e json] [-indent s] [-strict] [-config file]\n")
		os.Exit(64) // Exit code 64: command line usage error
	}
	runRepl(rt, cfg)
}

func runRepl(rt *driver.Runtime, cfg Config) {
	completer := readline.NewPrefixCompleter()
	for _, c := range commands {
		completer.Children = append(completer.Children, readline.PcItem(c.name))
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt(),
		HistoryFile:       cfg.History,
		HistoryLimit:      1000,
		AutoComplete:      completer,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		log.Fatalf("initializing readline: %v", err)
	}
	defer rl.Close()

	s := newSession(rt, rl.Stdout(), rl.Stderr(), cfg.Indent, newHighlighter(cfg.Style))
	fmt.Fprintln(rl.Stdout(), dimStyle.Render("jscore (type ")+cmdStyle.Render(".help")+dimStyle.Render(" for commands)"))
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input: %s\n", err)
			break
		}
		if s.handle(line) {
			break
		}
	}
	fmt.Fprintln(rl.Stdout(), dimStyle.Render("Goodbye!"))
}
