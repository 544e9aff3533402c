package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/insightlabs/insightstream/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		// Errors tagged ErrReported were already rendered by the command.
		if !errors.Is(err, cli.ErrReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
