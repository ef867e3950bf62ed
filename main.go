package main

import (
	"fmt"
	"os"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "owt error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	return newRootCommand(args).Execute()
}
