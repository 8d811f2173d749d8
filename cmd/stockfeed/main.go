package main

import (
	"os"

	"github.com/rustyeddy/stockfeed/cmd/stockfeed/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
