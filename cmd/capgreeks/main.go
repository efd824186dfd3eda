package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/meenmo/pathgreeks/cmd/capgreeks/internal/commands"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		fmt.Fprintf(stderr, format+"\n", args...)
	}))
	defer undo()
	if err != nil {
		fmt.Fprintln(stderr, "maxprocs:", err)
	}

	root := commands.NewRoot(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(context.Background()); err != nil {
		root.PrintErrln("error:", err)
		return 1
	}
	return 0
}
