package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ajlekcahdp4/paracl-interpreter-sub000/chunk"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/disasm"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/isa"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/vm"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/pterm/pterm"
)

// Debugger is an interactive single-stepper for a chunk.
type Debugger struct {
	chunk       *chunk.Chunk
	opts        []vm.Option
	m           *vm.VM
	breakpoints *treeset.Set
	quiet       bool // suppress display, for testing
}

// NewDebugger creates a debugger for chunk c. Options are handed to every
// virtual machine the debugger creates.
func NewDebugger(c *chunk.Chunk, opts ...vm.Option) *Debugger {
	dbg := &Debugger{
		chunk:       c,
		opts:        opts,
		breakpoints: treeset.NewWithIntComparator(),
	}
	dbg.restart()
	return dbg
}

func (dbg *Debugger) restart() {
	dbg.m = vm.New(dbg.chunk, dbg.opts...)
}

var errNotRunning = errors.New("program has terminated, use 'restart'")

// Execute executes one debugger command line. It returns true if the user wants
// to quit.
func (dbg *Debugger) Execute(line string) (bool, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}
	cmd, args := args[0], args[1:]
	tracer().Debugf("debugger command %s %v", cmd, args)
	switch cmd {
	case "q", "quit":
		return true, nil
	case "h", "help":
		dbg.help()
	case "s", "step":
		n := 1
		if len(args) > 0 {
			var err error
			if n, err = strconv.Atoi(args[0]); err != nil || n < 1 {
				return false, fmt.Errorf("invalid step count %q", args[0])
			}
		}
		return false, dbg.step(n)
	case "c", "continue":
		return false, dbg.cont()
	case "b", "break":
		loc, err := location(args)
		if err != nil {
			return false, err
		}
		dbg.breakpoints.Add(loc)
		dbg.info("breakpoint at 0x%04x", loc)
	case "d", "delete":
		loc, err := location(args)
		if err != nil {
			return false, err
		}
		if !dbg.breakpoints.Contains(loc) {
			return false, fmt.Errorf("no breakpoint at 0x%04x", loc)
		}
		dbg.breakpoints.Remove(loc)
	case "r", "restart":
		dbg.restart()
		dbg.info("restarted")
	case "stack":
		dbg.showStack()
	case "l", "list":
		return false, dbg.list()
	case "i", "info":
		ctx := dbg.m.Context()
		dbg.info("ip=0x%04x sp=%d depth=%d steps=%d halted=%v breakpoints=%v",
			ctx.IP(), ctx.SP(), ctx.Depth(), dbg.m.Steps(), ctx.Halted(), dbg.breakpoints.Values())
	default:
		return false, fmt.Errorf("unknown command %q, type 'help' for a list of commands", cmd)
	}
	return false, nil
}

func location(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New("expected a code location")
	}
	loc, err := strconv.ParseInt(args[0], 0, 32)
	if err != nil || loc < 0 {
		return 0, fmt.Errorf("invalid code location %q", args[0])
	}
	return int(loc), nil
}

// step executes up to n instructions, displaying each of them.
func (dbg *Debugger) step(n int) error {
	for ; n > 0; n-- {
		if dbg.m.Halted() {
			return errNotRunning
		}
		if ins, err := dbg.m.Peek(); err == nil {
			dbg.info("0x%04x  %v", ins.Loc, ins)
		}
		if err := dbg.m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// cont executes instructions until the program halts or a breakpoint is hit.
func (dbg *Debugger) cont() error {
	if dbg.m.Halted() {
		return errNotRunning
	}
	for first := true; !dbg.m.Halted(); first = false {
		ip := dbg.m.Context().IP()
		if !first && dbg.breakpoints.Contains(ip) {
			dbg.info("stopped at breakpoint 0x%04x", ip)
			return nil
		}
		if err := dbg.m.Step(); err != nil {
			return err
		}
	}
	dbg.info("program halted after %d steps", dbg.m.Steps())
	return nil
}

func (dbg *Debugger) help() {
	if dbg.quiet {
		return
	}
	pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Command", "Effect"},
		{"step [n], s", "execute n instructions (default 1)"},
		{"continue, c", "run until halt or breakpoint"},
		{"break loc, b", "set a breakpoint at a code location"},
		{"delete loc, d", "remove a breakpoint"},
		{"list, l", "show instructions around the instruction pointer"},
		{"stack", "show the execution stack"},
		{"info, i", "show registers"},
		{"restart, r", "start over"},
		{"quit, q", "leave the debugger"},
	}).Render()
}

// showStack displays the execution stack, top first, with slot offsets
// relative to the current frame base.
func (dbg *Debugger) showStack() {
	if dbg.quiet {
		return
	}
	ctx := dbg.m.Context()
	stack := ctx.Stack()
	data := pterm.TableData{{"Slot", "Rel", "Value"}}
	for i := len(stack) - 1; i >= 0; i-- {
		rel := strconv.Itoa(i - ctx.SP())
		if i == ctx.SP() {
			rel += " ← sp"
		}
		data = append(data, []string{strconv.Itoa(i), rel, strconv.Itoa(int(stack[i]))})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// list displays the instructions around the instruction pointer.
func (dbg *Debugger) list() error {
	instrs, err := disasm.Instructions(dbg.chunk, isa.ParaCL())
	if err != nil {
		return err
	}
	ip := dbg.m.Context().IP()
	at := 0
	for i, ins := range instrs {
		if ins.Loc <= ip {
			at = i
		}
	}
	from, to := at-5, at+6
	if from < 0 {
		from = 0
	}
	if to > len(instrs) {
		to = len(instrs)
	}
	if dbg.quiet {
		return nil
	}
	for _, ins := range instrs[from:to] {
		mark := "  "
		if ins.Loc == ip {
			mark = "=>"
		} else if dbg.breakpoints.Contains(ins.Loc) {
			mark = " *"
		}
		pterm.Println(fmt.Sprintf("%s 0x%04x  %v", mark, ins.Loc, ins))
	}
	return nil
}

func (dbg *Debugger) info(format string, args ...interface{}) {
	if dbg.quiet {
		return
	}
	pterm.Info.Println(fmt.Sprintf(format, args...))
}
