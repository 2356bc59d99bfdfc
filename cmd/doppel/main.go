package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/doppelgang/doppel/cmd/doppel/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// Differences are a verdict, not a malfunction: the report is
		// already printed, only the exit code distinguishes it.
		if errors.Is(err, cmd.ErrDifferences) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}
