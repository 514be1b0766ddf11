package main

import (
	"os"

	"github.com/frankyzip/moduspractica/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
