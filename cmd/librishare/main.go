package main

import (
	"os"

	"github.com/librishare/librishare/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
