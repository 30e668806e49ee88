/*
Package pcvm/main provides a command line tool for ParaCL bytecode.

Usage:

    pcvm [flags] run     program.pcl
    pcvm [flags] disasm  program.pcl
    pcvm [flags] asm     listing.s  program.pcl
    pcvm [flags] compile tree.cbor  program.pcl
    pcvm [flags] debug   program.pcl

'run' executes a chunk, reading input from stdin and printing to stdout.
'disasm' writes a listing of a chunk, which 'asm' translates back into a chunk.
'compile' generates a chunk from a syntax tree delivered by a front end in
CBOR format. 'debug' starts an interactive single-stepper.

Flag -input names a file which 'run' and 'debug' take the input for read
instructions from. Without it, input is read from stdin. Under 'debug' this
means that read instructions compete with the debugger prompt for terminal
input, so programs using read should be debugged with -input.

Settings are read from a TOML file (flag -config, default 'pcvm.toml' in the
current directory, if present):

    trace-level    = "Error"
    validate-stack = true
    trace-vm-steps = false

    [disasm]
    header = true
    labels = true

Flags override settings from the configuration file.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'paracl.pcvm'
func tracer() tracing.Trace {
	return tracing.Select("paracl.pcvm")
}
