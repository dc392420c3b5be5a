package main

import (
	"fmt"
	"os"

	"github.com/agrihope/backend/cmd/touta/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
