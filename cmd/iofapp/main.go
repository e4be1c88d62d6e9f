package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"iof-app/internal/commands"
)

func main() {
	reg := commands.NewRegistry("run")
	registerRun(reg)
	registerConfig(reg)
	registerVersion(reg)

	if err := reg.Execute(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, commands.ErrUnknownCommand) {
			reg.PrintUsage(os.Stderr)
		}
		os.Exit(1)
	}
}
