package main

import (
	"fmt"
	"os"

	"github.com/MeKo-Tech/topacc/cmd/topacc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
