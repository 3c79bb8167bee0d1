package main

import (
	"os"

	"quantlab/cmd/quantlab/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
