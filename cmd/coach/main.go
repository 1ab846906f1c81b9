// Package main provides the coach CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/liftlab/coach-engine/cmd/coach/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
