package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/cbwinslow/hetzner-app/internal/edgectl"
	"github.com/cbwinslow/hetzner-app/internal/tui"
)

func main() {
	args := os.Args[1:]

	var err error
	if len(args) > 0 && args[0] == "setup" {
		err = tui.StartWizard()
	} else {
		err = edgectl.Run(args)
	}
	if err == nil {
		return
	}

	// The deploy delegate's exit status is our exit status.
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.ExitCode())
	}

	fmt.Fprintf(os.Stderr, "edgectl: %v\n", err)
	os.Exit(1)
}
