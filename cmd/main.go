package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/xyproto/env/v2"
	"go.kaleido.dev/pkg"
)

func main() {
	prompt := flag.String("prompt", env.Str("KALEIDO_PROMPT", kaleido.DefaultPrompt), "prompt printed before each read")
	emitIR := flag.Bool("ir", env.Bool("KALEIDO_EMIT_IR"), "print the IR of every generated function")
	dumpAST := flag.Bool("ast", env.Bool("KALEIDO_AST"), "print every parsed unit")
	dumpModule := flag.Bool("dump", env.Bool("KALEIDO_DUMP"), "print the whole module at end of input")
	builtins := flag.Bool("libm", env.Bool("KALEIDO_LIBM"), "declare sin, cos, sqrt, exp, log and pow")
	flag.Parse()

	var input io.Reader = os.Stdin
	if flag.NArg() == 1 {
		file, err := os.Open(flag.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, "open error:", err)
			os.Exit(1)
		}
		defer file.Close()

		input = file
	}

	c := kaleido.NewCompiler(os.Stdout, os.Stderr)
	c.Prompt = *prompt
	c.EmitIR = *emitIR
	c.DumpAST = *dumpAST
	c.DumpModule = *dumpModule
	c.Builtins = *builtins

	if err := c.Run(bufio.NewReader(input)); err != nil {
		fmt.Fprintln(os.Stderr, "read error:", err)
		os.Exit(1)
	}
}
