package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	err := newRootCommand().Execute()
	if err == nil {
		return
	}
	// A canceled context means the user interrupted the command; the signal
	// handler already said so.
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "loom: %v\n", err)
	}
	os.Exit(1)
}
