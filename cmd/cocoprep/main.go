package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/MarkusFox/coco-object-detection/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// RunE implementations emit their own formatted diagnostics; cobra's
		// error printing is silenced, so only usage-level errors surface here.
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCommandError)
	}
}
