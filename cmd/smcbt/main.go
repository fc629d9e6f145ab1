package main

import (
	"os"

	"github.com/rustyeddy/smcbt/cmd/smcbt/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
