package main

import (
	"os"

	"github.com/stencilkit/stencil/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
