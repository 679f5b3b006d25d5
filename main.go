package main

import (
	"os"

	"github.com/venturescout/vc-sourcer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
