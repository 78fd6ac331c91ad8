package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			// Interrupted by the user; exit quietly with the conventional code.
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "podpress:", err)
		os.Exit(1)
	}
}
