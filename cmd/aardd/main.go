package main

import (
	"fmt"
	"os"

	"aardd/internal/bootstrap"
)

// Exit codes.
const (
	exitError         = 1
	exitBindExhausted = 3
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "aardd:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if bootstrap.IsBindExhausted(err) {
		return exitBindExhausted
	}
	return exitError
}
