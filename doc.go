/*
Package paracl is a bytecode toolchain for the ParaCL teaching language.

ParaCL is a small imperative language with integer variables, blocks, loops,
conditionals and first-class functions. This module lowers a validated
ParaCL syntax tree into bytecode for a dedicated stack machine and executes
it. Package structure is as follows:

■ chunk: Package chunk is the container for compiled bytecode (instruction stream
plus integer constant pool) and its binary file format.

■ isa: Package isa describes the instruction set. Every instruction is a descriptor
(opcode, name, operand layout) living in an array-indexed table.

■ builder: Package builder emits instructions into a growing code buffer and supports
back-patching of operands.

■ vm: Package vm is the stack machine executing chunks.

■ disasm and asm: Textual representation of chunks, in both directions.

■ ast, symtab, sema and codegen: The compiler back end. Package ast holds the syntax
tree as an arena of homogenous nodes, sema discovers scopes and functions, and
codegen translates everything into a chunk.

The base package contains data types which are used throughout all the other packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package paracl
