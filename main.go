package main

import (
	"os"

	"github.com/heathj/minibrowser/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
