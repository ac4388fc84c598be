// Command monkey is the CLI front end for the interpreter: run a script,
// fetch its manifest dependencies, or drop into a line-oriented REPL.
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/monkeylang/monkey/pkg/deps"
	"github.com/monkeylang/monkey/pkg/manifest"
	"github.com/monkeylang/monkey/pkg/pipeline"
	"github.com/monkeylang/monkey/pkg/runtime"
)

const cliToolVersion = "monkey-cli 0.0.0-dev"

var log = commonlog.GetLogger("monkey.cli")

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runFile(args[1:])
	case "deps":
		return runDeps(args[1:])
	case "repl":
		return runRepl()
	default:
		return runFile(args)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage:
  monkey run <file.monkey>   evaluate a script and print each statement's result
  monkey deps                fetch dependencies named in ./monkey.yml
  monkey repl                start a line-oriented REPL
  monkey --version           print the CLI version`)
}

func runFile(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "monkey run: expected exactly one script path")
		return 1
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		log.Errorf("reading %s: %v", args[0], err)
		return 1
	}

	importer := loadImporter(filepath.Dir(args[0]))
	res := pipeline.Run(string(source), pipeline.Options{Importer: importer})
	if len(res.ParseErrors) > 0 {
		for _, e := range res.ParseErrors {
			fmt.Fprintln(os.Stderr, e)
		}
		fmt.Fprintf(os.Stderr, "%d parse error(s)\n", len(res.ParseErrors))
		return 1
	}
	for _, v := range res.Values {
		fmt.Fprintln(os.Stdout, runtime.Print(v, res.Tokens))
	}
	return 0
}

func runDeps(args []string) int {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	m, err := manifest.Load(filepath.Join(dir, "monkey.yml"))
	if err != nil {
		log.Errorf("loading monkey.yml: %v", err)
		return 1
	}
	resolver := deps.NewResolver(m, filepath.Join(dir, ".monkey-cache"), dir)
	for name := range m.Dependencies {
		if _, err := resolver.Load(name); err != nil {
			log.Errorf("fetching %s: %v", name, err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "fetched %s\n", name)
	}
	return 0
}

// runRepl is intentionally a bare line-at-a-time loop: no history, no
// multi-line editing, no completion. spec.md §1 excludes line-editor
// integration from the core language's concerns.
func runRepl() int {
	env := runtime.NewEnvironment(nil)
	importer := loadImporter(".")
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Fprintln(os.Stdout, cliToolVersion)
	for {
		fmt.Fprint(os.Stdout, ">> ")
		if !scanner.Scan() {
			return 0
		}
		line := scanner.Text()
		res := pipeline.Run(line, pipeline.Options{Env: env, Importer: importer})
		if len(res.ParseErrors) > 0 {
			for _, e := range res.ParseErrors {
				fmt.Fprintln(os.Stdout, e)
			}
			continue
		}
		fmt.Fprintln(os.Stdout, res.FinalResult())
	}
}

// loadImporter best-efforts a monkey.yml in dir; a missing manifest just
// means the `import` builtin has nothing to resolve against, not a fatal
// error — most scripts never call import.
func loadImporter(dir string) *deps.Resolver {
	m, err := manifest.Load(filepath.Join(dir, "monkey.yml"))
	if err != nil {
		return nil
	}
	return deps.NewResolver(m, filepath.Join(dir, ".monkey-cache"), dir)
}
