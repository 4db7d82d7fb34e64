package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/vvka-141/csvingest/internal/cli"
	"github.com/vvka-141/csvingest/pkg/csvingest"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(csvingest.ExitPanic)
		}
	}()

	if os.Getenv("CSVINGEST_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(csvingest.ExitCodeForError(err))
	}
}
