package main

import (
	"os"

	"github.com/dj2695/cuco/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
