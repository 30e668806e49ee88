package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ajlekcahdp4/paracl-interpreter-sub000/asm"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/ast"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/chunk"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/codegen"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/disasm"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/sema"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/vm"
	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
)

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

// main() dispatches to one of the sub-commands (see package documentation).
// Exit codes are 1 for usage errors, 2 for errors in input files and 3 for
// run-time errors.
func main() {
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	confFile := flag.String("config", "", "Configuration file (TOML)")
	tlevel := flag.String("trace", "", "Trace level [Debug|Info|Error]")
	validate := flag.Bool("validate", true, "Require an empty stack when the program halts")
	steps := flag.Bool("steps", false, "Trace every executed instruction")
	input := flag.String("input", "", "File to take input for 'read' instructions from (default stdin)")
	flag.Parse()
	conf, err := loadConfig(*confFile)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) { // flags override configuration
		switch f.Name {
		case "trace":
			conf.TraceLevel = *tlevel
		case "validate":
			conf.ValidateStack = *validate
		case "steps":
			conf.TraceSteps = *steps
		}
	})
	setTraceLevel(conf.TraceLevel)
	tracer().Infof("Trace level is %s", conf.TraceLevel)
	//
	args := flag.Args()
	if len(args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd, files := args[0], args[1:]
	switch {
	case cmd == "run" && len(files) == 1:
		err = run(conf, files[0], *input)
	case cmd == "disasm" && len(files) == 1:
		err = listing(conf, files[0])
	case cmd == "asm" && len(files) == 2:
		err = assemble(files[0], files[1])
	case cmd == "compile" && len(files) == 2:
		err = compile(files[0], files[1])
	case cmd == "debug" && len(files) == 1:
		err = debug(conf, files[0], *input)
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		reportError(err)
		var rterr *vm.RuntimeError
		if errors.As(err, &rterr) {
			os.Exit(3)
		}
		os.Exit(2)
	}
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [flags] run|disasm|debug program.pcl\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "       %s [flags] asm listing.s program.pcl\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "       %s [flags] compile tree.cbor program.pcl\n", os.Args[0])
	flag.PrintDefaults()
}

func setTraceLevel(l string) {
	level := tracing.TraceLevelFromString(l)
	for _, key := range []string{"paracl.pcvm", "paracl.vm", "paracl.chunk", "paracl.asm",
		"paracl.codegen", "paracl.sema", "paracl.disasm", "paracl.builder"} {
		tracing.Select(key).SetTraceLevel(level)
	}
}

func reportError(err error) {
	var serrs sema.Errors
	if errors.As(err, &serrs) {
		for _, e := range serrs {
			pterm.Error.Println(e.Error())
		}
		return
	}
	pterm.Error.Println(err.Error())
}

// --- Sub-commands ----------------------------------------------------------

func loadChunk(path string) (*chunk.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := chunk.Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tracer().Infof("loaded %v from %s", c, path)
	return c, nil
}

func saveChunk(c *chunk.Chunk, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err = c.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	pterm.Info.Println(fmt.Sprintf("wrote %d code bytes and %d constants to %s", c.CodeLen(), c.ConstantCount(), path))
	return nil
}

// inputFile opens the file providing input for read instructions. An empty
// path selects stdin.
func inputFile(path string) (io.ReadCloser, error) {
	if path == "" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	tracer().Infof("taking input from %s", path)
	return f, nil
}

func run(conf *Config, path, inpath string) error {
	c, err := loadChunk(path)
	if err != nil {
		return err
	}
	in, err := inputFile(inpath)
	if err != nil {
		return err
	}
	defer in.Close()
	m := vm.New(c, vm.WithInput(in), vm.ValidateStack(conf.ValidateStack), vm.TraceSteps(conf.TraceSteps))
	return m.Run()
}

func listing(conf *Config, path string) error {
	c, err := loadChunk(path)
	if err != nil {
		return err
	}
	return disasm.Write(os.Stdout, c, nil, disasm.Header(conf.Disasm.Header), disasm.Labels(conf.Disasm.Labels))
}

func assemble(src, dest string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	c, err := asm.Assemble(f, nil)
	if err != nil {
		return err
	}
	return saveChunk(c, dest)
}

func compile(src, dest string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	tree, err := ast.Decode(f)
	if err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}
	c, err := codegen.Compile(tree)
	if err != nil {
		return err
	}
	return saveChunk(c, dest)
}

func debug(conf *Config, path, inpath string) error {
	c, err := loadChunk(path)
	if err != nil {
		return err
	}
	if inpath == "" {
		tracer().Infof("read instructions share stdin with the debugger prompt, consider flag -input")
	}
	in, err := inputFile(inpath)
	if err != nil {
		return err
	}
	defer in.Close()
	repl, err := readline.New("pcvm> ")
	if err != nil {
		return err
	}
	defer repl.Close()
	dbg := NewDebugger(c, vm.WithInput(in), vm.ValidateStack(conf.ValidateStack), vm.TraceSteps(conf.TraceSteps))
	pterm.Info.Println("Welcome to the ParaCL debugger, type 'help' for a list of commands")
	tracer().Infof("Quit with <ctrl>D")
	for {
		line, err := repl.Readline()
		if err != nil { // io.EOF
			break
		}
		quit, err := dbg.Execute(line)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	println("Good bye!")
	return nil
}
